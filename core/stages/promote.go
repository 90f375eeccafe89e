package stages

import (
	"context"
	"fmt"
	"strconv"

	"model-pipeline/core/metadata"
	"model-pipeline/core/models"
	"model-pipeline/core/promotion"
)

// Messages forwarded to the orchestrator describing the promotion outcome
const (
	msgFirstApproved     = "First model package approved as there are no existing approved models."
	msgProductionStays   = "Production model remains the best"
	msgCandidatePromoted = "New model from last training job is the best now"
)

// PromotionStage registers the latest trained model as a candidate package
// and decides whether it displaces the approved production model
type PromotionStage struct {
	objects  metadata.ObjectStore
	registry promotion.ModelRegistry
	decider  *promotion.Decider
	opts     Options
}

// NewPromotionStage creates the promotion stage handler
func NewPromotionStage(objects metadata.ObjectStore, registry promotion.ModelRegistry, opts Options) *PromotionStage {
	opts = opts.withDefaults()
	return &PromotionStage{
		objects:  objects,
		registry: registry,
		decider:  promotion.NewDecider(registry, opts.Log),
		opts:     opts,
	}
}

// Run reads the named training record, creates a pending model package from
// it and runs the promotion decision against the group's approved package.
// The compared metric is "validation:<eval_metric>".
func (s *PromotionStage) Run(ctx context.Context, req models.PromoteModelRequest) (models.PromoteModelResult, error) {
	if err := requireEventField("source_bucket", req.SourceBucket); err != nil {
		return models.PromoteModelResult{}, err
	}
	if err := requireEventField("TrainingMetadataJson", req.TrainingMetadataName); err != nil {
		return models.PromoteModelResult{}, err
	}
	if err := requireEventField("eval_metric", req.EvalMetric); err != nil {
		return models.PromoteModelResult{}, err
	}
	if err := requireEventField("model_package_group_name", req.ModelPackageGroup); err != nil {
		return models.PromoteModelResult{}, err
	}

	if err := s.registry.EnsureGroup(ctx, req.ModelPackageGroup); err != nil {
		return models.PromoteModelResult{}, fmt.Errorf("ensure model package group: %w", err)
	}

	candidateARN, err := s.registerCandidate(ctx, req)
	if err != nil {
		return models.PromoteModelResult{}, err
	}

	metricName := "validation:" + req.EvalMetric
	outcome, err := s.decider.Decide(ctx, req.ModelPackageGroup, candidateARN, metricName)
	if err != nil {
		return models.PromoteModelResult{}, err
	}

	message := msgProductionStays
	switch {
	case outcome.ColdStart:
		message = msgFirstApproved
	case outcome.ApprovedARN == candidateARN:
		message = msgCandidatePromoted
	}

	return models.PromoteModelResult{
		Message:             message,
		CandidatePackageARN: candidateARN,
		BestPackageARN:      outcome.ApprovedARN,
	}, nil
}

// registerCandidate creates a PendingManualApproval package from the named
// training record, copying the run's metrics into the package metadata as
// strings and stamping the registry-assigned version back onto it
func (s *PromotionStage) registerCandidate(ctx context.Context, req models.PromoteModelRequest) (string, error) {
	key := metadata.StagePrefix(s.opts.Project, metadata.StageTraining) + req.TrainingMetadataName
	var record models.TrainingRecord
	if err := metadata.GetJSON(ctx, s.objects, req.SourceBucket, key, &record); err != nil {
		return "", fmt.Errorf("fetch training metadata: %w", err)
	}

	customMetadata := map[string]string{
		"TrainingJobDate": record.TrainingJobMetadata.TrainingEndTime,
		"Model_version":   ".",
	}
	for _, metric := range record.ModelRegistry.ModelMetrics {
		customMetadata[metric.MetricName] = strconv.FormatFloat(metric.Value, 'f', -1, 64)
	}

	arn, err := s.registry.CreatePackage(ctx, models.PackageInput{
		Group:          req.ModelPackageGroup,
		Description:    ".",
		Image:          record.TrainingJobMetadata.TrainingImage,
		ModelDataURL:   record.ModelRegistry.ModelDataURL,
		ApprovalStatus: models.ApprovalPending,
		CustomMetadata: customMetadata,
	})
	if err != nil {
		return "", fmt.Errorf("create model package: %w", err)
	}

	pkg, err := s.registry.DescribePackage(ctx, arn)
	if err != nil {
		return "", fmt.Errorf("describe model package %s: %w", arn, err)
	}
	version := fmt.Sprintf("1.0.%d", pkg.Version)
	if err := s.registry.UpdateCustomMetadata(ctx, arn, map[string]string{"Model_version": version}); err != nil {
		return "", fmt.Errorf("stamp model version: %w", err)
	}
	s.opts.Log.Info("registered candidate model package", "package", arn, "version", version)

	return arn, nil
}
