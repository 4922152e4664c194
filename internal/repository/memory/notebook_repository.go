package memory

import (
	"context"
	"sync"
	"time"

	"marimo-hub-be/internal/entity"
	"marimo-hub-be/internal/repository/contract"

	"github.com/patrickmn/go-cache"
)

const (
	DefaultRetention     = 24 * time.Hour
	DefaultSweepInterval = time.Hour
)

// NotebookRepository keeps notebooks in process memory. Records expire by
// creation time only; reads never extend their life. Expired records are
// removed by a sweep that Put runs at most once per sweep interval.
type NotebookRepository struct {
	cache *cache.Cache

	// mu serializes record mutation and the sweep bookkeeping; go-cache only
	// guards its own map.
	mu            sync.Mutex
	now           func() time.Time
	retention     time.Duration
	sweepInterval time.Duration
	lastSweep     time.Time
}

var _ contract.NotebookRepository = (*NotebookRepository)(nil)

type Option func(*NotebookRepository)

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(r *NotebookRepository) {
		r.now = now
	}
}

func NewNotebookRepository(retention, sweepInterval time.Duration, opts ...Option) *NotebookRepository {
	if retention <= 0 {
		retention = DefaultRetention
	}
	if sweepInterval <= 0 {
		sweepInterval = DefaultSweepInterval
	}

	r := &NotebookRepository{
		// No per-item expiration and no janitor: the sweep below owns eviction.
		cache:         cache.New(cache.NoExpiration, 0),
		now:           time.Now,
		retention:     retention,
		sweepInterval: sweepInterval,
	}
	for _, opt := range opts {
		opt(r)
	}
	r.lastSweep = r.now()
	return r
}

func (r *NotebookRepository) Put(_ context.Context, id, content string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	r.cache.Set(id, &entity.NotebookRecord{
		Id:           id,
		Content:      content,
		CreatedAt:    now,
		LastAccessed: now,
		AccessCount:  0,
	}, cache.NoExpiration)

	if now.Sub(r.lastSweep) > r.sweepInterval {
		r.sweepLocked(now)
	}
	return nil
}

func (r *NotebookRepository) Get(_ context.Context, id string) (string, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	x, found := r.cache.Get(id)
	if !found {
		return "", false, nil
	}
	rec := x.(*entity.NotebookRecord)
	rec.LastAccessed = r.now()
	rec.AccessCount++
	return rec.Content, true, nil
}

func (r *NotebookRepository) Stat(_ context.Context, id string) (*entity.NotebookRecord, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	x, found := r.cache.Get(id)
	if !found {
		return nil, false, nil
	}
	snapshot := *x.(*entity.NotebookRecord)
	return &snapshot, true, nil
}

func (r *NotebookRepository) Count(_ context.Context) (int, error) {
	return r.cache.ItemCount(), nil
}

// sweepLocked removes every record older than the retention. Callers hold mu.
func (r *NotebookRepository) sweepLocked(now time.Time) int {
	removed := 0
	for id, item := range r.cache.Items() {
		rec := item.Object.(*entity.NotebookRecord)
		if now.Sub(rec.CreatedAt) > r.retention {
			r.cache.Delete(id)
			removed++
		}
	}
	r.lastSweep = now
	return removed
}
