package stages

import (
	"context"

	"model-pipeline/core/jobspec"
	"model-pipeline/core/models"
)

// JobLauncher is the managed platform's control plane. Launch calls are
// fire-and-forget; completion is observed by the orchestrator re-invoking
// the matching status stage.
type JobLauncher interface {
	CreateProcessingJob(ctx context.Context, spec jobspec.ProcessingJobSpec) error
	DescribeProcessingJob(ctx context.Context, name string) (models.ProcessingJobDetail, error)

	CreateTuningJob(ctx context.Context, spec jobspec.TuningJobSpec) error
	DescribeTuningJob(ctx context.Context, name string) (models.TuningJobDetail, error)

	CreateTrainingJob(ctx context.Context, spec jobspec.TrainingJobSpec) error
	DescribeTrainingJob(ctx context.Context, name string) (models.TrainingJobDetail, error)

	CreateTransformJob(ctx context.Context, spec jobspec.TransformJobSpec) error
	DescribeTransformJob(ctx context.Context, name string) (models.TransformJobDetail, error)

	CreateModel(ctx context.Context, spec jobspec.ModelSpec) (string, error)
	DescribeModel(ctx context.Context, name string) (models.ModelDetail, error)
}
