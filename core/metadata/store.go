package metadata

import (
	"context"
	"time"
)

// ObjectInfo describes one stored object as reported by a prefix listing
type ObjectInfo struct {
	Key          string
	LastModified time.Time
}

// ObjectStore is the hierarchical key-value store holding configuration
// documents, preprocessed datasets and stage metadata records
type ObjectStore interface {
	GetObject(ctx context.Context, bucket, key string) ([]byte, error)
	PutObject(ctx context.Context, bucket, key string, body []byte) error
	ListObjects(ctx context.Context, bucket, prefix string) ([]ObjectInfo, error)
	HeadObject(ctx context.Context, bucket, key string) (ObjectInfo, error)
}
