package metadata

import (
	"context"
	"encoding/json"
	"fmt"
)

// Writer persists stage records and configuration documents as indented JSON
type Writer struct {
	store ObjectStore
}

// NewWriter creates a writer over the given store
func NewWriter(store ObjectStore) *Writer {
	return &Writer{store: store}
}

// PutRecord marshals v and writes it at key
func (w *Writer) PutRecord(ctx context.Context, bucket, key string, v any) error {
	body, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}
	if err := w.store.PutObject(ctx, bucket, key, body); err != nil {
		return fmt.Errorf("put %q: %w", key, err)
	}
	return nil
}

// GetJSON fetches the object at key and decodes it into out
func GetJSON(ctx context.Context, store ObjectStore, bucket, key string, out any) error {
	body, err := store.GetObject(ctx, bucket, key)
	if err != nil {
		return fmt.Errorf("get %q: %w", key, err)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("parse %q: %w", key, err)
	}
	return nil
}
