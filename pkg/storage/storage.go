package storage

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by Get when no object exists at the key.
var ErrNotFound = errors.New("object not found")

// ObjectInfo describes one stored object for listing endpoints.
type ObjectInfo struct {
	Key      string
	Size     int64
	Modified time.Time
}

// Store is the durable object store behind the message logs, media files and
// Q&A transcripts. Objects are written wholesale; there is no partial update.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, data []byte, contentType string) error
	List(ctx context.Context, prefix string) ([]ObjectInfo, error)
}
