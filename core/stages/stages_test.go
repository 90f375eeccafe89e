package stages

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"

	"model-pipeline/core/jobspec"
	"model-pipeline/core/metadata"
	"model-pipeline/core/models"
)

// Shared fakes for the stage tests. The store keeps objects in memory with
// explicit last-modified times; the launcher records every spec it is handed
// and serves canned describe results.

type nopLogger struct{}

func (nopLogger) Info(msg string, args ...any)  {}
func (nopLogger) Error(msg string, args ...any) {}

// fixedNow maps to timestamp suffix "07-09-150405"
var fixedNow = time.Date(2024, 7, 9, 15, 4, 5, 0, time.UTC)

func testOptions() Options {
	return Options{
		Project:   "wine-quality-project",
		JobPrefix: "wine-quality",
		Clock:     func() time.Time { return fixedNow },
		Log:       nopLogger{},
	}
}

type fakeStore struct {
	objects map[string][]byte
	order   []string
	mtimes  map[string]time.Time
}

func newFakeStore() *fakeStore {
	return &fakeStore{objects: map[string][]byte{}, mtimes: map[string]time.Time{}}
}

func (f *fakeStore) put(key string, body []byte, mtime time.Time) {
	if _, ok := f.objects[key]; !ok {
		f.order = append(f.order, key)
	}
	f.objects[key] = body
	f.mtimes[key] = mtime
}

func (f *fakeStore) putJSON(t *testing.T, key string, v any, mtime time.Time) {
	t.Helper()
	body, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal %s: %v", key, err)
	}
	f.put(key, body, mtime)
}

func (f *fakeStore) getJSON(t *testing.T, key string, out any) {
	t.Helper()
	body, ok := f.objects[key]
	if !ok {
		t.Fatalf("key %s not written; have %v", key, f.order)
	}
	if err := json.Unmarshal(body, out); err != nil {
		t.Fatalf("decode %s: %v", key, err)
	}
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

func (f *fakeStore) ListObjects(ctx context.Context, bucket, prefix string) ([]metadata.ObjectInfo, error) {
	var out []metadata.ObjectInfo
	for _, key := range f.order {
		if strings.HasPrefix(key, prefix) {
			out = append(out, metadata.ObjectInfo{Key: key, LastModified: f.mtimes[key]})
		}
	}
	return out, nil
}

func (f *fakeStore) HeadObject(ctx context.Context, bucket, key string) (metadata.ObjectInfo, error) {
	mtime, ok := f.mtimes[key]
	if !ok {
		return metadata.ObjectInfo{}, fmt.Errorf("key %s not found", key)
	}
	return metadata.ObjectInfo{Key: key, LastModified: mtime}, nil
}

type fakeLauncher struct {
	processingSpecs []jobspec.ProcessingJobSpec
	tuningSpecs     []jobspec.TuningJobSpec
	trainingSpecs   []jobspec.TrainingJobSpec
	transformSpecs  []jobspec.TransformJobSpec
	modelSpecs      []jobspec.ModelSpec

	processingDetail models.ProcessingJobDetail
	tuningDetail     models.TuningJobDetail
	trainingDetail   models.TrainingJobDetail
	transformDetail  models.TransformJobDetail
	modelDetail      models.ModelDetail
}

func (f *fakeLauncher) CreateProcessingJob(ctx context.Context, spec jobspec.ProcessingJobSpec) error {
	f.processingSpecs = append(f.processingSpecs, spec)
	return nil
}

func (f *fakeLauncher) DescribeProcessingJob(ctx context.Context, name string) (models.ProcessingJobDetail, error) {
	return f.processingDetail, nil
}

func (f *fakeLauncher) CreateTuningJob(ctx context.Context, spec jobspec.TuningJobSpec) error {
	f.tuningSpecs = append(f.tuningSpecs, spec)
	return nil
}

func (f *fakeLauncher) DescribeTuningJob(ctx context.Context, name string) (models.TuningJobDetail, error) {
	return f.tuningDetail, nil
}

func (f *fakeLauncher) CreateTrainingJob(ctx context.Context, spec jobspec.TrainingJobSpec) error {
	f.trainingSpecs = append(f.trainingSpecs, spec)
	return nil
}

func (f *fakeLauncher) DescribeTrainingJob(ctx context.Context, name string) (models.TrainingJobDetail, error) {
	return f.trainingDetail, nil
}

func (f *fakeLauncher) CreateTransformJob(ctx context.Context, spec jobspec.TransformJobSpec) error {
	f.transformSpecs = append(f.transformSpecs, spec)
	return nil
}

func (f *fakeLauncher) DescribeTransformJob(ctx context.Context, name string) (models.TransformJobDetail, error) {
	return f.transformDetail, nil
}

func (f *fakeLauncher) CreateModel(ctx context.Context, spec jobspec.ModelSpec) (string, error) {
	f.modelSpecs = append(f.modelSpecs, spec)
	return "arn:model/" + spec.Name, nil
}

func (f *fakeLauncher) DescribeModel(ctx context.Context, name string) (models.ModelDetail, error) {
	return f.modelDetail, nil
}

// fakeRegistry mirrors the registry contract for stage-level tests
type fakeRegistry struct {
	groups   map[string]bool
	packages map[string]*models.ModelPackage
	nextVer  int
	writes   []string
}

func newFakeRegistry() *fakeRegistry {
	return &fakeRegistry{groups: map[string]bool{}, packages: map[string]*models.ModelPackage{}}
}

func (f *fakeRegistry) add(arn string, version int, status models.ApprovalStatus, modelDataURL string) {
	f.packages[arn] = &models.ModelPackage{
		ARN:            arn,
		Version:        version,
		ModelDataURL:   modelDataURL,
		ApprovalStatus: status,
		CustomMetadata: map[string]string{},
	}
}

func (f *fakeRegistry) EnsureGroup(ctx context.Context, group string) error {
	f.groups[group] = true
	return nil
}

func (f *fakeRegistry) CreatePackage(ctx context.Context, input models.PackageInput) (string, error) {
	f.nextVer++
	arn := fmt.Sprintf("arn:pkg/%s/%d", input.Group, f.nextVer)
	meta := map[string]string{}
	for k, v := range input.CustomMetadata {
		meta[k] = v
	}
	f.packages[arn] = &models.ModelPackage{
		ARN:            arn,
		Version:        f.nextVer,
		Image:          input.Image,
		ModelDataURL:   input.ModelDataURL,
		ApprovalStatus: input.ApprovalStatus,
		CustomMetadata: meta,
	}
	return arn, nil
}

func (f *fakeRegistry) DescribePackage(ctx context.Context, arn string) (models.ModelPackage, error) {
	pkg, ok := f.packages[arn]
	if !ok {
		return models.ModelPackage{}, fmt.Errorf("package %s not found", arn)
	}
	return *pkg, nil
}

func (f *fakeRegistry) ListPackages(ctx context.Context, group string, status models.ApprovalStatus) ([]models.PackageSummary, error) {
	var out []models.PackageSummary
	for _, pkg := range f.packages {
		if pkg.ApprovalStatus == status {
			out = append(out, models.PackageSummary{ARN: pkg.ARN, ApprovalStatus: pkg.ApprovalStatus})
		}
	}
	return out, nil
}

func (f *fakeRegistry) UpdateApprovalStatus(ctx context.Context, arn string, status models.ApprovalStatus) error {
	pkg, ok := f.packages[arn]
	if !ok {
		return fmt.Errorf("package %s not found", arn)
	}
	pkg.ApprovalStatus = status
	f.writes = append(f.writes, fmt.Sprintf("%s=%s", arn, status))
	return nil
}

func (f *fakeRegistry) UpdateCustomMetadata(ctx context.Context, arn string, md map[string]string) error {
	pkg, ok := f.packages[arn]
	if !ok {
		return fmt.Errorf("package %s not found", arn)
	}
	for k, v := range md {
		pkg.CustomMetadata[k] = v
	}
	return nil
}
