// Package storage persists uploaded files (resumes, media) in object storage
// and hands back the stable URL clients use to reference them.
package storage

import (
	"context"
	"errors"
	"io"
)

var ErrObjectNotFound = errors.New("object not found")

// ObjectStore is implemented by MinIOStorage and MemoryStorage.
type ObjectStore interface {
	// Put stores size bytes from r under key and returns the public URL.
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
	URL(key string) string
}

// Pinger is implemented by stores backed by a remote service.
type Pinger interface {
	Ping(ctx context.Context) error
}
