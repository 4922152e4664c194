package implementation

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Runs against a real server only: REDIS_URL=redis://localhost:6379/15 go test ./...
func newTestRedis(t *testing.T) *redis.Client {
	t.Helper()
	url := os.Getenv("REDIS_URL")
	if url == "" {
		t.Skip("REDIS_URL not set")
	}
	opt, err := redis.ParseURL(url)
	require.NoError(t, err)

	rdb := redis.NewClient(opt)
	ctx := context.Background()
	if err := rdb.Ping(ctx).Err(); err != nil {
		t.Skipf("redis unavailable: %v", err)
	}
	t.Cleanup(func() {
		iter := rdb.Scan(ctx, 0, notebookKeyPrefix+"test-*", 100).Iterator()
		for iter.Next(ctx) {
			rdb.Del(ctx, iter.Val())
		}
		rdb.Close()
	})
	return rdb
}

func TestNotebookRedisRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewNotebookRedisRepository(newTestRedis(t), time.Hour)

	t.Run("round trip and counters", func(t *testing.T) {
		require.NoError(t, repo.Put(ctx, "test-abc", "print(1)"))

		content, found, err := repo.Get(ctx, "test-abc")
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, "print(1)", content)

		rec, found, err := repo.Stat(ctx, "test-abc")
		require.NoError(t, err)
		require.True(t, found)
		assert.Equal(t, int64(1), rec.AccessCount)
	})

	t.Run("empty content is found", func(t *testing.T) {
		require.NoError(t, repo.Put(ctx, "test-empty", ""))
		content, found, err := repo.Get(ctx, "test-empty")
		require.NoError(t, err)
		assert.True(t, found)
		assert.Empty(t, content)
	})

	t.Run("overwrite resets counter", func(t *testing.T) {
		require.NoError(t, repo.Put(ctx, "test-ow", "old"))
		_, _, _ = repo.Get(ctx, "test-ow")
		require.NoError(t, repo.Put(ctx, "test-ow", "new"))

		rec, _, err := repo.Stat(ctx, "test-ow")
		require.NoError(t, err)
		assert.Equal(t, "new", rec.Content)
		assert.Equal(t, int64(0), rec.AccessCount)
	})

	t.Run("missing", func(t *testing.T) {
		_, found, err := repo.Get(ctx, "test-missing")
		require.NoError(t, err)
		assert.False(t, found)
	})
}
