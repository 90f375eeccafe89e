package metadata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrNoMetadata is returned when a prefix holds no objects at all
var ErrNoMetadata = errors.New("no metadata objects found under prefix")

// Resolver selects the most recently written object under a storage prefix.
// Ordering relies on the store's last-modified attribute, never on the
// cosmetic timestamp embedded in key names. Objects sharing a last-modified
// timestamp are broken arbitrarily; concurrent writers race with
// last-write-wins and that is accepted.
type Resolver struct {
	store ObjectStore
}

// NewResolver creates a resolver over the given store
func NewResolver(store ObjectStore) *Resolver {
	return &Resolver{store: store}
}

// LatestObject returns the newest object under prefix
func (r *Resolver) LatestObject(ctx context.Context, bucket, prefix string) (ObjectInfo, error) {
	objects, err := r.store.ListObjects(ctx, bucket, prefix)
	if err != nil {
		return ObjectInfo{}, fmt.Errorf("list %q: %w", prefix, err)
	}
	if len(objects) == 0 {
		return ObjectInfo{}, fmt.Errorf("%w: %s", ErrNoMetadata, prefix)
	}

	latest := objects[0]
	for _, obj := range objects[1:] {
		if obj.LastModified.After(latest.LastModified) {
			latest = obj
		}
	}
	return latest, nil
}

// LatestURI returns the newest object under prefix as an s3:// URI
func (r *Resolver) LatestURI(ctx context.Context, bucket, prefix string) (string, error) {
	latest, err := r.LatestObject(ctx, bucket, prefix)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("s3://%s/%s", bucket, latest.Key), nil
}

// LatestRecord fetches and decodes the newest JSON record under prefix,
// returning the key it was read from
func (r *Resolver) LatestRecord(ctx context.Context, bucket, prefix string, out any) (string, error) {
	latest, err := r.LatestObject(ctx, bucket, prefix)
	if err != nil {
		return "", err
	}

	body, err := r.store.GetObject(ctx, bucket, latest.Key)
	if err != nil {
		return "", fmt.Errorf("get %q: %w", latest.Key, err)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return "", fmt.Errorf("parse record %q: %w", latest.Key, err)
	}
	return latest.Key, nil
}

// Exists reports whether any object is stored under prefix
func (r *Resolver) Exists(ctx context.Context, bucket, prefix string) (bool, error) {
	objects, err := r.store.ListObjects(ctx, bucket, prefix)
	if err != nil {
		return false, fmt.Errorf("list %q: %w", prefix, err)
	}
	return len(objects) > 0, nil
}
