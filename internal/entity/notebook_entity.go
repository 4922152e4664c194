package entity

import "time"

// NotebookRecord is one stored notebook. Content is replaced wholesale on
// every save; a re-save resets the timestamps and the access counter.
type NotebookRecord struct {
	Id           string
	Content      string
	CreatedAt    time.Time
	LastAccessed time.Time
	AccessCount  int64
}
