package metadata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"
)

// fakeStore is an in-memory ObjectStore. Listing order is insertion order,
// deliberately unrelated to last-modified, so latest-object selection cannot
// lean on it.
type fakeStore struct {
	objects map[string][]byte
	order   []string
	mtimes  map[string]time.Time
	listErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		objects: map[string][]byte{},
		mtimes:  map[string]time.Time{},
	}
}

func (f *fakeStore) put(key string, body []byte, mtime time.Time) {
	if _, ok := f.objects[key]; !ok {
		f.order = append(f.order, key)
	}
	f.objects[key] = body
	f.mtimes[key] = mtime
}

func (f *fakeStore) GetObject(ctx context.Context, bucket, key string) ([]byte, error) {
	body, ok := f.objects[key]
	if !ok {
		return nil, fmt.Errorf("key %s not found", key)
	}
	return body, nil
}

func (f *fakeStore) PutObject(ctx context.Context, bucket, key string, body []byte) error {
	f.put(key, body, time.Now())
	return nil
}

func (f *fakeStore) ListObjects(ctx context.Context, bucket, prefix string) ([]ObjectInfo, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []ObjectInfo
	for _, key := range f.order {
		if strings.HasPrefix(key, prefix) {
			out = append(out, ObjectInfo{Key: key, LastModified: f.mtimes[key]})
		}
	}
	return out, nil
}

func (f *fakeStore) HeadObject(ctx context.Context, bucket, key string) (ObjectInfo, error) {
	mtime, ok := f.mtimes[key]
	if !ok {
		return ObjectInfo{}, fmt.Errorf("key %s not found", key)
	}
	return ObjectInfo{Key: key, LastModified: mtime}, nil
}

func TestLatestObjectPicksNewestNotListedLast(t *testing.T) {
	base := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	store := newFakeStore()
	// Newest object is inserted in the middle of the listing.
	store.put("meta/a.json", []byte("{}"), base)
	store.put("meta/b.json", []byte("{}"), base.Add(2*time.Hour))
	store.put("meta/c.json", []byte("{}"), base.Add(time.Hour))

	latest, err := NewResolver(store).LatestObject(context.Background(), "bkt", "meta/")
	if err != nil {
		t.Fatalf("LatestObject: %v", err)
	}
	if latest.Key != "meta/b.json" {
		t.Errorf("latest = %s, want meta/b.json", latest.Key)
	}
}

func TestLatestObjectEmptyPrefix(t *testing.T) {
	store := newFakeStore()
	store.put("other/a.json", []byte("{}"), time.Now())

	_, err := NewResolver(store).LatestObject(context.Background(), "bkt", "meta/")
	if !errors.Is(err, ErrNoMetadata) {
		t.Fatalf("err = %v, want ErrNoMetadata", err)
	}
}

func TestLatestURI(t *testing.T) {
	store := newFakeStore()
	store.put("meta/a.json", []byte("{}"), time.Now())

	uri, err := NewResolver(store).LatestURI(context.Background(), "bkt", "meta/")
	if err != nil {
		t.Fatalf("LatestURI: %v", err)
	}
	if uri != "s3://bkt/meta/a.json" {
		t.Errorf("uri = %s", uri)
	}
}

func TestLatestRecordDecodesNewest(t *testing.T) {
	type doc struct {
		Name string `json:"name"`
	}
	base := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	store := newFakeStore()
	store.put("meta/old.json", []byte(`{"name":"old"}`), base)
	store.put("meta/new.json", []byte(`{"name":"new"}`), base.Add(time.Minute))

	var got doc
	key, err := NewResolver(store).LatestRecord(context.Background(), "bkt", "meta/", &got)
	if err != nil {
		t.Fatalf("LatestRecord: %v", err)
	}
	if key != "meta/new.json" || got.Name != "new" {
		t.Errorf("got key=%s doc=%+v, want the newest record", key, got)
	}
}

func TestLatestRecordBadJSON(t *testing.T) {
	store := newFakeStore()
	store.put("meta/a.json", []byte("not json"), time.Now())

	var got map[string]any
	if _, err := NewResolver(store).LatestRecord(context.Background(), "bkt", "meta/", &got); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestExists(t *testing.T) {
	store := newFakeStore()
	store.put("meta/a.json", []byte("{}"), time.Now())
	r := NewResolver(store)

	if ok, err := r.Exists(context.Background(), "bkt", "meta/"); err != nil || !ok {
		t.Errorf("Exists(meta/) = %v, %v, want true", ok, err)
	}
	if ok, err := r.Exists(context.Background(), "bkt", "absent/"); err != nil || ok {
		t.Errorf("Exists(absent/) = %v, %v, want false", ok, err)
	}
}

func TestWriterPutRecordIndentsJSON(t *testing.T) {
	store := newFakeStore()
	w := NewWriter(store)

	record := map[string]string{"Stage": "processing"}
	if err := w.PutRecord(context.Background(), "bkt", "meta/rec.json", record); err != nil {
		t.Fatalf("PutRecord: %v", err)
	}

	body := store.objects["meta/rec.json"]
	if !strings.Contains(string(body), "\n  \"Stage\"") {
		t.Errorf("record body not indented: %q", body)
	}
	var round map[string]string
	if err := json.Unmarshal(body, &round); err != nil {
		t.Fatalf("stored record is not valid JSON: %v", err)
	}
}

func TestStageKeys(t *testing.T) {
	at := time.Date(2024, 7, 9, 15, 4, 5, 0, time.UTC)

	if got, want := StagePrefix("wine-quality-project", StageTuning), "wine-quality-project/pipeline-metadata/hpo-job-metadata/"; got != want {
		t.Errorf("StagePrefix = %s, want %s", got, want)
	}
	if got, want := ProcessingRecordKey("p", at), "p/pipeline-metadata/processing-job-metadata/processing_metadata-07-09-150405.json"; got != want {
		t.Errorf("ProcessingRecordKey = %s, want %s", got, want)
	}
	if got, want := TuningRecordName(at), "best_hpo_job_metadata-07-09-150405.json"; got != want {
		t.Errorf("TuningRecordName = %s, want %s", got, want)
	}
	if got, want := TrainingRecordName(at), "training_metadata-07-09-150405.json"; got != want {
		t.Errorf("TrainingRecordName = %s, want %s", got, want)
	}
	if got, want := TransformRecordKey("p", at), "p/pipeline-metadata/batch-job-metadata/batch_metadata-07-09-150405.json"; got != want {
		t.Errorf("TransformRecordKey = %s, want %s", got, want)
	}
	if got, want := PreprocessedPrefix("p", "hpo", "train"), "p/preprocessed_data/hpo/train"; got != want {
		t.Errorf("PreprocessedPrefix = %s, want %s", got, want)
	}
}
