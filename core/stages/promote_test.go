package stages

import (
	"context"
	"errors"
	"testing"
	"time"

	"model-pipeline/core/metadata"
	"model-pipeline/core/models"
)

func seedTrainingRecord(t *testing.T, store *fakeStore, name string, auc float64) {
	t.Helper()
	record := models.TrainingRecord{
		ModelRegistry: models.ModelRegistryEntry{
			ModelDataURL: "s3://pipeline-bucket/training-output/model.tar.gz",
			ModelMetrics: []models.MetricValue{
				{MetricName: "validation:auc", Value: auc},
				{MetricName: "train:auc", Value: auc + 0.05},
			},
		},
		TrainingJobMetadata: models.TrainingJobMetadata{
			TrainingJobName:   "wine-quality-estimator-07-09-144500",
			TrainingImage:     "xgboost:1.5-1",
			TrainingEndTime:   "2024-07-09T14:50:00Z",
			TrainingJobStatus: models.JobStatusCompleted,
		},
	}
	key := metadata.StagePrefix("wine-quality-project", metadata.StageTraining) + name
	store.putJSON(t, key, record, time.Now())
}

func promoteRequest() models.PromoteModelRequest {
	return models.PromoteModelRequest{
		SourceBucket:         testBucket,
		TrainingMetadataName: "training_metadata-07-09-150000.json",
		EvalMetric:           "auc",
		ModelPackageGroup:    "wine-quality-models",
	}
}

func TestPromoteColdStart(t *testing.T) {
	store := newFakeStore()
	seedTrainingRecord(t, store, "training_metadata-07-09-150000.json", 0.87)
	registry := newFakeRegistry()
	stage := NewPromotionStage(store, registry, testOptions())

	res, err := stage.Run(context.Background(), promoteRequest())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if res.Message != "First model package approved as there are no existing approved models." {
		t.Errorf("message = %q", res.Message)
	}
	if res.BestPackageARN != res.CandidatePackageARN {
		t.Errorf("best = %s, candidate = %s, want the same package", res.BestPackageARN, res.CandidatePackageARN)
	}

	pkg := registry.packages[res.CandidatePackageARN]
	if pkg == nil {
		t.Fatal("candidate package not registered")
	}
	if pkg.ApprovalStatus != models.ApprovalApproved {
		t.Errorf("candidate status = %s", pkg.ApprovalStatus)
	}
	if pkg.CustomMetadata["validation:auc"] != "0.87" {
		t.Errorf("metric metadata = %v", pkg.CustomMetadata)
	}
	if pkg.CustomMetadata["Model_version"] != "1.0.1" {
		t.Errorf("version metadata = %s, want 1.0.1", pkg.CustomMetadata["Model_version"])
	}
	if pkg.CustomMetadata["TrainingJobDate"] != "2024-07-09T14:50:00Z" {
		t.Errorf("training date metadata = %s", pkg.CustomMetadata["TrainingJobDate"])
	}
	if !registry.groups["wine-quality-models"] {
		t.Error("group not ensured")
	}
}

func TestPromoteCandidateWins(t *testing.T) {
	store := newFakeStore()
	seedTrainingRecord(t, store, "training_metadata-07-09-150000.json", 0.91)
	registry := newFakeRegistry()
	registry.add("arn:pkg/prod", 1, models.ApprovalApproved, "s3://old-model")
	registry.packages["arn:pkg/prod"].CustomMetadata["validation:auc"] = "0.85"
	stage := NewPromotionStage(store, registry, testOptions())

	res, err := stage.Run(context.Background(), promoteRequest())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if res.Message != "New model from last training job is the best now" {
		t.Errorf("message = %q", res.Message)
	}
	if res.BestPackageARN != res.CandidatePackageARN {
		t.Errorf("best = %s, want the candidate", res.BestPackageARN)
	}
	if got := registry.packages["arn:pkg/prod"].ApprovalStatus; got != models.ApprovalRejected {
		t.Errorf("old production status = %s, want Rejected", got)
	}
}

func TestPromoteProductionStaysOnTie(t *testing.T) {
	store := newFakeStore()
	seedTrainingRecord(t, store, "training_metadata-07-09-150000.json", 0.85)
	registry := newFakeRegistry()
	registry.add("arn:pkg/prod", 1, models.ApprovalApproved, "s3://old-model")
	registry.packages["arn:pkg/prod"].CustomMetadata["validation:auc"] = "0.85"
	stage := NewPromotionStage(store, registry, testOptions())

	res, err := stage.Run(context.Background(), promoteRequest())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if res.Message != "Production model remains the best" {
		t.Errorf("message = %q", res.Message)
	}
	if res.BestPackageARN != "arn:pkg/prod" {
		t.Errorf("best = %s, want production", res.BestPackageARN)
	}
	if got := registry.packages[res.CandidatePackageARN].ApprovalStatus; got != models.ApprovalRejected {
		t.Errorf("candidate status = %s, want Rejected", got)
	}
}

func TestPromoteMissingTrainingRecord(t *testing.T) {
	stage := NewPromotionStage(newFakeStore(), newFakeRegistry(), testOptions())

	if _, err := stage.Run(context.Background(), promoteRequest()); err == nil {
		t.Fatal("expected error when the training record is absent")
	}
}

func TestPromoteMissingEventFields(t *testing.T) {
	stage := NewPromotionStage(newFakeStore(), newFakeRegistry(), testOptions())

	req := promoteRequest()
	req.EvalMetric = ""
	_, err := stage.Run(context.Background(), req)
	var validation *ValidationError
	if !errors.As(err, &validation) {
		t.Fatalf("err = %v, want ValidationError", err)
	}
	if validation.Field != "eval_metric" {
		t.Errorf("field = %s", validation.Field)
	}
}
