package stages

import (
	"context"
	"errors"
	"testing"
	"time"

	"model-pipeline/core/jobspec"
	"model-pipeline/core/models"
)

const testBucket = "pipeline-bucket"

func testProcessingConfig() jobspec.ProcessingConfig {
	return jobspec.ProcessingConfig{
		Requirements:            jobspec.S3Location{S3URI: "s3://pipeline-bucket/code/requirements.txt"},
		ProcessingScript:        jobspec.S3Location{S3URI: "s3://pipeline-bucket/code/preprocess.py"},
		InputDataLocation:       jobspec.S3Location{S3URI: "s3://pipeline-bucket/raw/data.csv"},
		OutputHPOLocation:       jobspec.S3Location{S3URI: "s3://pipeline-bucket/wine-quality-project/preprocessed_data/hpo"},
		OutputTrainingLocation:  jobspec.S3Location{S3URI: "s3://pipeline-bucket/wine-quality-project/preprocessed_data/training"},
		DatasetMetadataLocation: jobspec.S3Location{S3URI: "s3://pipeline-bucket/wine-quality-project/dataset_metadata"},
		InstanceType:            "ml.t3.medium",
		ImageURI:                "processing:latest",
		ContainerEntrypoint:     "preprocess.py",
		RoleARN:                 "arn:aws:iam::123:role/pipeline",
	}
}

func TestProcessingLaunch(t *testing.T) {
	store := newFakeStore()
	store.putJSON(t, "configs/processing.json", testProcessingConfig(), time.Now())
	launcher := &fakeLauncher{}
	stage := NewProcessingStage(store, launcher, testOptions())

	res, err := stage.Launch(context.Background(), models.LaunchProcessingRequest{
		SourceBucket: testBucket,
		ConfigKey:    "configs/processing.json",
	})
	if err != nil {
		t.Fatalf("Launch: %v", err)
	}

	if res.ProcessingJobName != "wine-quality-processor-07-09-150405" {
		t.Errorf("job name = %s", res.ProcessingJobName)
	}
	if res.SourceBucket != testBucket {
		t.Errorf("source bucket = %s", res.SourceBucket)
	}
	if len(launcher.processingSpecs) != 1 {
		t.Fatalf("launched %d jobs, want 1", len(launcher.processingSpecs))
	}
	if launcher.processingSpecs[0].Name != res.ProcessingJobName {
		t.Errorf("spec name = %s", launcher.processingSpecs[0].Name)
	}
}

func TestProcessingLaunchDebug(t *testing.T) {
	store := newFakeStore()
	store.putJSON(t, "configs/processing.json", testProcessingConfig(), time.Now())
	launcher := &fakeLauncher{}
	stage := NewProcessingStage(store, launcher, testOptions())

	res, err := stage.Launch(context.Background(), models.LaunchProcessingRequest{
		SourceBucket: testBucket,
		ConfigKey:    "configs/processing.json",
		Debug:        true,
	})
	if err != nil {
		t.Fatalf("Launch: %v", err)
	}
	if res.ProcessingJobName != "" {
		t.Errorf("job name = %q, want empty in debug mode", res.ProcessingJobName)
	}
	if len(launcher.processingSpecs) != 0 {
		t.Errorf("debug mode launched %d jobs", len(launcher.processingSpecs))
	}
}

func TestProcessingLaunchMissingEventField(t *testing.T) {
	stage := NewProcessingStage(newFakeStore(), &fakeLauncher{}, testOptions())

	_, err := stage.Launch(context.Background(), models.LaunchProcessingRequest{SourceBucket: testBucket})
	var validation *ValidationError
	if !errors.As(err, &validation) {
		t.Fatalf("err = %v, want ValidationError", err)
	}
	if validation.Field != "source_config_key" {
		t.Errorf("field = %s", validation.Field)
	}
}

func TestProcessingStatus(t *testing.T) {
	launcher := &fakeLauncher{
		processingDetail: models.ProcessingJobDetail{
			Name:   "wine-quality-processor-07-09-150405",
			Status: models.JobStatusCompleted,
		},
	}
	stage := NewProcessingStage(newFakeStore(), launcher, testOptions())

	res, err := stage.Status(context.Background(), models.ProcessingStatusRequest{
		SourceBucket:      testBucket,
		ProcessingJobName: "wine-quality-processor-07-09-150405",
	})
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if res.Status != models.JobStatusCompleted {
		t.Errorf("status = %s", res.Status)
	}

	// Debug invocations never hit the platform.
	res, err = stage.Status(context.Background(), models.ProcessingStatusRequest{
		SourceBucket: testBucket,
		Debug:        true,
	})
	if err != nil || res.Status != "" {
		t.Errorf("debug status = %+v, %v", res, err)
	}
}

func TestProcessingSaveMetadata(t *testing.T) {
	start := time.Date(2024, 7, 9, 14, 0, 0, 0, time.UTC)
	end := start.Add(10 * time.Minute)

	store := newFakeStore()
	base := "wine-quality-project/preprocessed_data"
	store.put(base+"/training/train-07-09-145500.csv", []byte("a,b"), start)
	store.put(base+"/training/train-07-09-150000.csv", []byte("a,b"), end)
	store.put(base+"/training/test-07-09-150000.csv", []byte("a,b"), end)
	store.put(base+"/hpo/train-07-09-150000.csv", []byte("a,b"), end)
	store.put(base+"/hpo/test-07-09-150000.csv", []byte("a,b"), end)

	launcher := &fakeLauncher{
		processingDetail: models.ProcessingJobDetail{
			Name:      "wine-quality-processor-07-09-150405",
			ARN:       "arn:processing-job",
			Status:    models.JobStatusCompleted,
			StartTime: &start,
			EndTime:   &end,
		},
	}
	stage := NewProcessingStage(store, launcher, testOptions())

	res, err := stage.SaveMetadata(context.Background(), models.SaveProcessingMetadataRequest{
		SourceBucket:      testBucket,
		ProcessingJobName: "wine-quality-processor-07-09-150405",
	})
	if err != nil {
		t.Fatalf("SaveMetadata: %v", err)
	}

	wantKey := "wine-quality-project/pipeline-metadata/processing-job-metadata/processing_metadata-07-09-150405.json"
	if res.RecordKey != wantKey {
		t.Errorf("record key = %s, want %s", res.RecordKey, wantKey)
	}

	var record models.ProcessingRecord
	store.getJSON(t, wantKey, &record)
	if record.ProcessingJobStatus != models.JobStatusCompleted {
		t.Errorf("record status = %s", record.ProcessingJobStatus)
	}
	if record.ProcessingDurationIn != 600 {
		t.Errorf("duration = %v, want 600", record.ProcessingDurationIn)
	}
	// The newest train split wins regardless of listing position.
	if want := "s3://pipeline-bucket/" + base + "/training/train-07-09-150000.csv"; record.DatasetProperties.TrainURI != want {
		t.Errorf("train uri = %s, want %s", record.DatasetProperties.TrainURI, want)
	}
	if record.DatasetProperties.DatasetName != "wine-quality-07-09-150000" {
		t.Errorf("dataset name = %s", record.DatasetProperties.DatasetName)
	}
	if record.DatasetProperties.HPOTestURI == "" {
		t.Error("hpo test uri missing")
	}
}

func TestDatasetDateID(t *testing.T) {
	cases := []struct{ uri, want string }{
		{"s3://bkt/p/training/train-01-15-093045.csv", "01-15-093045"},
		{"s3://bkt/p/train.csv", ""},
	}
	for _, tc := range cases {
		if got := datasetDateID(tc.uri); got != tc.want {
			t.Errorf("datasetDateID(%q) = %q, want %q", tc.uri, got, tc.want)
		}
	}
}
