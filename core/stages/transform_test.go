package stages

import (
	"context"
	"errors"
	"testing"
	"time"

	"model-pipeline/core/jobspec"
	"model-pipeline/core/models"
)

func testTransformConfig() jobspec.TransformConfig {
	return jobspec.TransformConfig{
		InstanceType:    "ml.m5.large",
		S3OutputPath:    "s3://pipeline-bucket/predictions",
		DataSourceS3URI: "s3://pipeline-bucket/wine-quality-project/preprocessed_data/",
		ModelImage:      "xgboost:1.5-1",
		RoleARN:         "arn:aws:iam::123:role/pipeline",
	}
}

func transformStore(t *testing.T) *fakeStore {
	t.Helper()
	store := newFakeStore()
	store.putJSON(t, "configs/batch.json", testTransformConfig(), time.Now())
	base := time.Date(2024, 7, 9, 13, 0, 0, 0, time.UTC)
	store.put("wine-quality-project/preprocessed_data/batch_nt/data-07-09-120000.csv", []byte("a,b"), base)
	store.put("wine-quality-project/preprocessed_data/batch_nt/data-07-09-130000.csv", []byte("a,b"), base.Add(time.Hour))
	return store
}

func TestTransformLaunch(t *testing.T) {
	store := transformStore(t)
	registry := newFakeRegistry()
	registry.add("arn:pkg/3", 3, models.ApprovalApproved, "s3://pipeline-bucket/training-output/model.tar.gz")
	launcher := &fakeLauncher{}
	stage := NewTransformStage(store, launcher, registry, testOptions())

	res, err := stage.Launch(context.Background(), models.LaunchTransformRequest{
		SourceBucket:      testBucket,
		ConfigKey:         "configs/batch.json",
		ModelPackageGroup: "wine-quality-models",
	})
	if err != nil {
		t.Fatalf("Launch: %v", err)
	}

	if res.TransformJobName != "wine-quality-predictor-07-09-150405" {
		t.Errorf("job name = %s", res.TransformJobName)
	}
	if res.ModelName != "wine-quality-model-v-3-07-09-150405" {
		t.Errorf("model name = %s", res.ModelName)
	}
	if res.ApprovedPackageARN != "arn:pkg/3" {
		t.Errorf("approved arn = %s", res.ApprovedPackageARN)
	}

	if len(launcher.modelSpecs) != 1 || len(launcher.transformSpecs) != 1 {
		t.Fatalf("created %d models, %d transform jobs; want 1 each", len(launcher.modelSpecs), len(launcher.transformSpecs))
	}
	model := launcher.modelSpecs[0]
	if model.ModelDataURL != "s3://pipeline-bucket/training-output/model.tar.gz" {
		t.Errorf("model data url = %s, want the approved package's", model.ModelDataURL)
	}
	spec := launcher.transformSpecs[0]
	if spec.ModelName != res.ModelName {
		t.Errorf("transform model = %s", spec.ModelName)
	}
	// The newest no-target dataset is selected.
	if want := "s3://pipeline-bucket/wine-quality-project/preprocessed_data/batch_nt/data-07-09-130000.csv"; spec.InputS3URI != want {
		t.Errorf("input uri = %s, want %s", spec.InputS3URI, want)
	}
}

func TestTransformLaunchNoApprovedModel(t *testing.T) {
	store := transformStore(t)
	registry := newFakeRegistry()
	registry.add("arn:pkg/1", 1, models.ApprovalRejected, "s3://m")
	launcher := &fakeLauncher{}
	stage := NewTransformStage(store, launcher, registry, testOptions())

	_, err := stage.Launch(context.Background(), models.LaunchTransformRequest{
		SourceBucket:      testBucket,
		ConfigKey:         "configs/batch.json",
		ModelPackageGroup: "wine-quality-models",
	})
	if !errors.Is(err, ErrNoApprovedModel) {
		t.Fatalf("err = %v, want ErrNoApprovedModel", err)
	}
	if len(launcher.modelSpecs) != 0 || len(launcher.transformSpecs) != 0 {
		t.Error("mutating calls made without an approved model")
	}
}

func TestTransformLaunchDebug(t *testing.T) {
	store := transformStore(t)
	registry := newFakeRegistry()
	registry.add("arn:pkg/3", 3, models.ApprovalApproved, "s3://m")
	launcher := &fakeLauncher{}
	stage := NewTransformStage(store, launcher, registry, testOptions())

	res, err := stage.Launch(context.Background(), models.LaunchTransformRequest{
		SourceBucket:      testBucket,
		ConfigKey:         "configs/batch.json",
		ModelPackageGroup: "wine-quality-models",
		Debug:             true,
	})
	if err != nil {
		t.Fatalf("Launch: %v", err)
	}
	if res.TransformJobName != "" || res.ModelName != "" {
		t.Errorf("debug result = %+v, want empty names", res)
	}
	if res.ApprovedPackageARN != "arn:pkg/3" {
		t.Errorf("approved arn = %s, still reported in debug mode", res.ApprovedPackageARN)
	}
	if len(launcher.modelSpecs) != 0 || len(launcher.transformSpecs) != 0 {
		t.Error("debug mode made mutating calls")
	}
}

func TestTransformSaveMetadata(t *testing.T) {
	start := time.Date(2024, 7, 9, 14, 50, 0, 0, time.UTC)
	end := start.Add(3 * time.Minute)

	store := newFakeStore()
	launcher := &fakeLauncher{
		transformDetail: models.TransformJobDetail{
			Name:         "wine-quality-predictor-07-09-145000",
			ARN:          "arn:transform-job",
			Status:       models.JobStatusCompleted,
			StartTime:    &start,
			EndTime:      &end,
			ModelName:    "wine-quality-model-v-3-07-09-145000",
			InputS3URI:   "s3://pipeline-bucket/batch_nt/data.csv",
			OutputS3Path: "s3://pipeline-bucket/predictions",
		},
		modelDetail: models.ModelDetail{
			Name:         "wine-quality-model-v-3-07-09-145000",
			ARN:          "arn:model",
			Image:        "xgboost:1.5-1",
			ModelDataURL: "s3://pipeline-bucket/training-output/model.tar.gz",
		},
	}
	stage := NewTransformStage(store, launcher, newFakeRegistry(), testOptions())

	res, err := stage.SaveMetadata(context.Background(), models.SaveTransformMetadataRequest{
		SourceBucket:     testBucket,
		TransformJobName: "wine-quality-predictor-07-09-145000",
	})
	if err != nil {
		t.Fatalf("SaveMetadata: %v", err)
	}

	wantKey := "wine-quality-project/pipeline-metadata/batch-job-metadata/batch_metadata-07-09-150405.json"
	if res.RecordKey != wantKey {
		t.Errorf("record key = %s", res.RecordKey)
	}

	var record models.TransformRecord
	store.getJSON(t, wantKey, &record)
	if record.TransformJobMetadata.TransformDuration != "3.00 min" {
		t.Errorf("duration = %s, want \"3.00 min\"", record.TransformJobMetadata.TransformDuration)
	}
	if record.ModelMetadata.ModelDataURL != "s3://pipeline-bucket/training-output/model.tar.gz" {
		t.Errorf("model metadata = %+v", record.ModelMetadata)
	}
}
