package storage

import (
	"context"
	"io"
	"strings"
)

// BlobStore stores objects under a key and returns the URL they are publicly served from.
type BlobStore interface {
	Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) (string, error)
}

func joinURL(base, key string) string {
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(key, "/")
}
