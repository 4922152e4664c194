package implementation

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"marimo-hub-be/internal/entity"
	"marimo-hub-be/internal/repository/contract"

	"github.com/redis/go-redis/v9"
)

const notebookKeyPrefix = "notebook:"

// getScript reads the content and bumps the counters in one step, so a key
// that expires mid-read is never recreated without a TTL.
var getScript = redis.NewScript(`
local c = redis.call('HGET', KEYS[1], 'content')
if not c then
  return false
end
redis.call('HINCRBY', KEYS[1], 'access_count', 1)
redis.call('HSET', KEYS[1], 'last_accessed', ARGV[1])
return c
`)

// NotebookRedisRepositoryImpl shares notebooks between instances. The key
// TTL is set on Put only, so expiry stays tied to the creation time.
type NotebookRedisRepositoryImpl struct {
	rdb       *redis.Client
	retention time.Duration
	now       func() time.Time
}

func NewNotebookRedisRepository(rdb *redis.Client, retention time.Duration) contract.NotebookRepository {
	return &NotebookRedisRepositoryImpl{
		rdb:       rdb,
		retention: retention,
		now:       time.Now,
	}
}

func (r *NotebookRedisRepositoryImpl) key(id string) string {
	return notebookKeyPrefix + id
}

func (r *NotebookRedisRepositoryImpl) Put(ctx context.Context, id, content string) error {
	key := r.key(id)
	now := r.now().UnixMilli()

	_, err := r.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		pipe.HSet(ctx, key,
			"content", content,
			"created_at", now,
			"last_accessed", now,
			"access_count", 0,
		)
		pipe.Expire(ctx, key, r.retention)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis put %s: %w", id, err)
	}
	return nil
}

func (r *NotebookRedisRepositoryImpl) Get(ctx context.Context, id string) (string, bool, error) {
	res, err := getScript.Run(ctx, r.rdb, []string{r.key(id)}, r.now().UnixMilli()).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("redis get %s: %w", id, err)
	}
	content, _ := res.(string)
	return content, true, nil
}

func (r *NotebookRedisRepositoryImpl) Stat(ctx context.Context, id string) (*entity.NotebookRecord, bool, error) {
	fields, err := r.rdb.HGetAll(ctx, r.key(id)).Result()
	if err != nil {
		return nil, false, fmt.Errorf("redis stat %s: %w", id, err)
	}
	if len(fields) == 0 {
		return nil, false, nil
	}

	created, _ := strconv.ParseInt(fields["created_at"], 10, 64)
	accessed, _ := strconv.ParseInt(fields["last_accessed"], 10, 64)
	count, _ := strconv.ParseInt(fields["access_count"], 10, 64)

	return &entity.NotebookRecord{
		Id:           id,
		Content:      fields["content"],
		CreatedAt:    time.UnixMilli(created),
		LastAccessed: time.UnixMilli(accessed),
		AccessCount:  count,
	}, true, nil
}

func (r *NotebookRedisRepositoryImpl) Count(ctx context.Context) (int, error) {
	n := 0
	iter := r.rdb.Scan(ctx, 0, notebookKeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		n++
	}
	if err := iter.Err(); err != nil {
		return 0, fmt.Errorf("redis count: %w", err)
	}
	return n, nil
}
