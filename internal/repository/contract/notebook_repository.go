package contract

import (
	"context"

	"marimo-hub-be/internal/entity"
)

// NotebookRepository is the ephemeral id -> content store.
type NotebookRepository interface {
	// Put inserts or overwrites the record for id.
	Put(ctx context.Context, id, content string) error
	// Get returns the content and bumps the access counters. found is false
	// for unknown ids; empty content with found == true is a valid record.
	Get(ctx context.Context, id string) (content string, found bool, err error)
	// Stat returns a snapshot of the record without touching its counters.
	Stat(ctx context.Context, id string) (*entity.NotebookRecord, bool, error)
	Count(ctx context.Context) (int, error)
}

// NotebookFileRepository persists notebook sources where the runtime can
// open them.
type NotebookFileRepository interface {
	Write(filename, content string) (path string, err error)
	List() ([]string, error)
	Dir() string
}
