package stages

import (
	"context"
	"fmt"
	"strings"

	"model-pipeline/core/jobspec"
	"model-pipeline/core/metadata"
	"model-pipeline/core/models"
	"model-pipeline/core/promotion"
)

// TransformStage runs batch inference with the approved production model:
// it creates a model object from the approved package, launches a batch
// transform over the newest no-target dataset, polls it and records the
// outcome
type TransformStage struct {
	resolver *metadata.Resolver
	writer   *metadata.Writer
	objects  metadata.ObjectStore
	launcher JobLauncher
	registry promotion.ModelRegistry
	opts     Options
}

// NewTransformStage creates the batch transform stage handler
func NewTransformStage(objects metadata.ObjectStore, launcher JobLauncher, registry promotion.ModelRegistry, opts Options) *TransformStage {
	return &TransformStage{
		resolver: metadata.NewResolver(objects),
		writer:   metadata.NewWriter(objects),
		objects:  objects,
		launcher: launcher,
		registry: registry,
		opts:     opts.withDefaults(),
	}
}

// Launch resolves the approved model package and the newest no-target batch
// dataset, creates a model object and starts the transform job. Debug mode
// suppresses both mutating calls.
func (s *TransformStage) Launch(ctx context.Context, req models.LaunchTransformRequest) (models.LaunchTransformResult, error) {
	if err := requireEventField("source_bucket", req.SourceBucket); err != nil {
		return models.LaunchTransformResult{}, err
	}
	if err := requireEventField("batch_config_key", req.ConfigKey); err != nil {
		return models.LaunchTransformResult{}, err
	}
	if err := requireEventField("model_package_group_name", req.ModelPackageGroup); err != nil {
		return models.LaunchTransformResult{}, err
	}

	var cfg jobspec.TransformConfig
	if err := metadata.GetJSON(ctx, s.objects, req.SourceBucket, req.ConfigKey, &cfg); err != nil {
		return models.LaunchTransformResult{}, fmt.Errorf("fetch batch config: %w", err)
	}

	// The no-target batch data lives under the configured data source;
	// resolving it also surfaces missing config fields before any mutation.
	inputURI, err := s.latestBatchInput(ctx, req.SourceBucket, cfg)
	if err != nil {
		return models.LaunchTransformResult{}, err
	}

	approved, err := s.registry.ListPackages(ctx, req.ModelPackageGroup, models.ApprovalApproved)
	if err != nil {
		return models.LaunchTransformResult{}, fmt.Errorf("list approved packages: %w", err)
	}
	if len(approved) == 0 {
		return models.LaunchTransformResult{}, fmt.Errorf("group %s: %w", req.ModelPackageGroup, ErrNoApprovedModel)
	}
	approvedARN := approved[0].ARN

	pkg, err := s.registry.DescribePackage(ctx, approvedARN)
	if err != nil {
		return models.LaunchTransformResult{}, fmt.Errorf("describe approved package %s: %w", approvedARN, err)
	}
	s.opts.Log.Info("using approved model package", "package", approvedARN, "version", pkg.Version)

	now := s.opts.Clock()
	modelName := fmt.Sprintf("%s-model-v-%d-%s", s.opts.JobPrefix, pkg.Version, metadata.Timestamp(now))
	jobName := fmt.Sprintf("%s-predictor-%s", s.opts.JobPrefix, metadata.Timestamp(now))

	spec, err := jobspec.AssembleTransformJob(cfg, modelName, inputURI, jobName)
	if err != nil {
		return models.LaunchTransformResult{}, err
	}

	if req.Debug {
		s.opts.Log.Info("debug mode, skipping model and transform job creation")
		return models.LaunchTransformResult{
			TransformJobName:   "",
			ApprovedPackageARN: approvedARN,
			ApprovedModelURL:   pkg.ModelDataURL,
			ModelName:          "",
			SourceBucket:       req.SourceBucket,
		}, nil
	}

	modelARN, err := s.launcher.CreateModel(ctx, jobspec.ModelSpec{
		Name:         modelName,
		Image:        cfg.ModelImage,
		ModelDataURL: pkg.ModelDataURL,
		RoleARN:      cfg.RoleARN,
	})
	if err != nil {
		return models.LaunchTransformResult{}, fmt.Errorf("create model from approved package: %w", err)
	}
	s.opts.Log.Info("created model object", "model", modelName, "arn", modelARN)

	if err := s.launcher.CreateTransformJob(ctx, spec); err != nil {
		return models.LaunchTransformResult{}, fmt.Errorf("create transform job: %w", err)
	}
	s.opts.Log.Info("created transform job", "job", jobName)

	return models.LaunchTransformResult{
		TransformJobName:   jobName,
		ApprovedPackageARN: approvedARN,
		ApprovedModelURL:   pkg.ModelDataURL,
		ModelName:          modelName,
		SourceBucket:       req.SourceBucket,
	}, nil
}

// latestBatchInput returns the newest CSV under the data source's no-target
// prefix as an s3:// URI
func (s *TransformStage) latestBatchInput(ctx context.Context, bucket string, cfg jobspec.TransformConfig) (string, error) {
	if cfg.DataSourceS3URI == "" {
		return "", &jobspec.MissingFieldError{Field: "DataSourceS3Uri"}
	}
	prefix := strings.TrimPrefix(cfg.DataSourceS3URI, fmt.Sprintf("s3://%s/", bucket)) + "batch_nt"
	uri, err := s.resolver.LatestURI(ctx, bucket, prefix)
	if err != nil {
		return "", fmt.Errorf("resolve batch input: %w", err)
	}
	s.opts.Log.Info("using last batch dataset", "uri", uri)
	return uri, nil
}

// Status reports the transform job's current state
func (s *TransformStage) Status(ctx context.Context, req models.TransformStatusRequest) (models.TransformStatusResult, error) {
	if req.Debug || req.TransformJobName == "" {
		return models.TransformStatusResult{SourceBucket: req.SourceBucket, TransformJobName: req.TransformJobName}, nil
	}

	detail, err := s.launcher.DescribeTransformJob(ctx, req.TransformJobName)
	if err != nil {
		return models.TransformStatusResult{}, fmt.Errorf("describe transform job %s: %w", req.TransformJobName, err)
	}
	s.opts.Log.Info("transform job status", "job", req.TransformJobName, "status", string(detail.Status))

	return models.TransformStatusResult{
		TransformJobName: req.TransformJobName,
		Status:           detail.Status,
		SourceBucket:     req.SourceBucket,
	}, nil
}

// SaveMetadata records the finished transform job and the model object it
// ran with
func (s *TransformStage) SaveMetadata(ctx context.Context, req models.SaveTransformMetadataRequest) (models.SaveTransformMetadataResult, error) {
	if err := requireEventField("source_bucket", req.SourceBucket); err != nil {
		return models.SaveTransformMetadataResult{}, err
	}
	if err := requireEventField("BatchJobName", req.TransformJobName); err != nil {
		return models.SaveTransformMetadataResult{}, err
	}

	job, err := s.launcher.DescribeTransformJob(ctx, req.TransformJobName)
	if err != nil {
		return models.SaveTransformMetadataResult{}, fmt.Errorf("describe transform job %s: %w", req.TransformJobName, err)
	}
	model, err := s.launcher.DescribeModel(ctx, job.ModelName)
	if err != nil {
		return models.SaveTransformMetadataResult{}, fmt.Errorf("describe model %s: %w", job.ModelName, err)
	}

	record := models.TransformRecord{
		TransformJobMetadata: models.TransformJobMetadata{
			TransformJobName:  job.Name,
			TransformJobARN:   job.ARN,
			TransformDuration: fmt.Sprintf("%.2f min", durationSeconds(job.StartTime, job.EndTime)/60),
			TransformInputURI: job.InputS3URI,
			TransformOutput:   job.OutputS3Path,
		},
		ModelMetadata: models.TransformModelMetadata{
			ModelName:    model.Name,
			Image:        model.Image,
			ModelDataURL: model.ModelDataURL,
			ModelARN:     model.ARN,
		},
	}

	key := metadata.TransformRecordKey(s.opts.Project, s.opts.Clock())
	if err := s.writer.PutRecord(ctx, req.SourceBucket, key, record); err != nil {
		return models.SaveTransformMetadataResult{}, err
	}
	s.opts.Log.Info("uploaded batch metadata", "bucket", req.SourceBucket, "key", key)

	return models.SaveTransformMetadataResult{RecordKey: key, SourceBucket: req.SourceBucket}, nil
}
