package storage

import (
	"context"
	"io"
)

// ObjectStorage is a destination for saved photos.
type ObjectStorage interface {
	// Ensure prepares the destination (bucket or directory).
	Ensure(ctx context.Context) error

	// Upload stores size bytes from reader under key.
	Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error

	// Exists reports whether key is already stored.
	Exists(ctx context.Context, key string) (bool, error)

	// GetURL returns where a stored object can be reached.
	GetURL(key string) string
}
