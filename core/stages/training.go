package stages

import (
	"context"
	"fmt"

	"model-pipeline/core/jobspec"
	"model-pipeline/core/metadata"
	"model-pipeline/core/models"
)

// The training image interprets these; the objective is pinned because the
// tuned hyperparameter set from a search does not carry it
const (
	trainingObjective = "binary:logistic"
)

// TrainingStage launches the final training job with the best known
// hyperparameters, polls it and records the resulting model artifact
type TrainingStage struct {
	resolver *metadata.Resolver
	writer   *metadata.Writer
	objects  metadata.ObjectStore
	launcher JobLauncher
	opts     Options
}

// NewTrainingStage creates the training stage handler
func NewTrainingStage(objects metadata.ObjectStore, launcher JobLauncher, opts Options) *TrainingStage {
	return &TrainingStage{
		resolver: metadata.NewResolver(objects),
		writer:   metadata.NewWriter(objects),
		objects:  objects,
		launcher: launcher,
		opts:     opts.withDefaults(),
	}
}

// Launch starts a training job. Hyperparameters come from the newest tuning
// record when one exists; on a cold pipeline the default hyperparameter
// document named by the event is used instead. The evaluation metric from
// the event is injected either way.
func (s *TrainingStage) Launch(ctx context.Context, req models.LaunchTrainingRequest) (models.LaunchTrainingResult, error) {
	if err := requireEventField("source_bucket", req.SourceBucket); err != nil {
		return models.LaunchTrainingResult{}, err
	}
	if err := requireEventField("eval_metric", req.EvalMetric); err != nil {
		return models.LaunchTrainingResult{}, err
	}
	if err := requireEventField("source_config_key", req.ConfigKey); err != nil {
		return models.LaunchTrainingResult{}, err
	}
	if err := requireEventField("default_hyp_config_key", req.DefaultHyperparametersKey); err != nil {
		return models.LaunchTrainingResult{}, err
	}

	var cfg jobspec.TrainingConfig
	if err := metadata.GetJSON(ctx, s.objects, req.SourceBucket, req.ConfigKey, &cfg); err != nil {
		return models.LaunchTrainingResult{}, fmt.Errorf("fetch training config: %w", err)
	}

	hyperparameters, err := s.resolveHyperparameters(ctx, req)
	if err != nil {
		return models.LaunchTrainingResult{}, err
	}

	var processing models.ProcessingRecord
	processingPrefix := metadata.StagePrefix(s.opts.Project, metadata.StageProcessing)
	key, err := s.resolver.LatestRecord(ctx, req.SourceBucket, processingPrefix, &processing)
	if err != nil {
		return models.LaunchTrainingResult{}, fmt.Errorf("fetch processing metadata: %w", err)
	}
	s.opts.Log.Info("using datasets from last processing record", "record", key)

	jobName := fmt.Sprintf("%s-estimator-%s", s.opts.JobPrefix, metadata.Timestamp(s.opts.Clock()))
	spec, err := jobspec.AssembleTrainingJob(cfg, hyperparameters,
		processing.DatasetProperties.TrainURI, processing.DatasetProperties.TestURI, jobName)
	if err != nil {
		return models.LaunchTrainingResult{}, err
	}

	if req.Debug {
		s.opts.Log.Info("debug mode, skipping training job creation")
		return models.LaunchTrainingResult{
			TrainingJobName:   "",
			EvalMetric:        req.EvalMetric,
			SourceBucket:      req.SourceBucket,
			ModelPackageGroup: req.ModelPackageGroup,
		}, nil
	}

	if err := s.launcher.CreateTrainingJob(ctx, spec); err != nil {
		return models.LaunchTrainingResult{}, fmt.Errorf("create training job: %w", err)
	}
	s.opts.Log.Info("created training job", "job", jobName)

	return models.LaunchTrainingResult{
		TrainingJobName:   jobName,
		EvalMetric:        req.EvalMetric,
		SourceBucket:      req.SourceBucket,
		ModelPackageGroup: req.ModelPackageGroup,
	}, nil
}

// resolveHyperparameters prefers the newest tuning record and falls back to
// the default document when no search has run yet. An empty tuning prefix is
// an expected first-run condition, not an error.
func (s *TrainingStage) resolveHyperparameters(ctx context.Context, req models.LaunchTrainingRequest) (map[string]string, error) {
	tuningPrefix := metadata.StagePrefix(s.opts.Project, metadata.StageTuning)
	tuned, err := s.resolver.Exists(ctx, req.SourceBucket, tuningPrefix)
	if err != nil {
		return nil, err
	}

	hyperparameters := map[string]string{}

	if !tuned {
		var doc jobspec.HyperparametersDoc
		if err := metadata.GetJSON(ctx, s.objects, req.SourceBucket, req.DefaultHyperparametersKey, &doc); err != nil {
			return nil, fmt.Errorf("fetch default hyperparameters: %w", err)
		}
		for k, v := range doc.Hyperparameters {
			hyperparameters[k] = v
		}
		hyperparameters["eval_metric"] = req.EvalMetric
		s.opts.Log.Info("no tuning records found, using default hyperparameters")
		return hyperparameters, nil
	}

	var record models.TuningRecord
	key, err := s.resolver.LatestRecord(ctx, req.SourceBucket, tuningPrefix, &record)
	if err != nil {
		return nil, fmt.Errorf("fetch tuning metadata: %w", err)
	}
	for k, v := range record.TrainingJobMetdata.TunedHyperparameters {
		hyperparameters[k] = v
	}
	hyperparameters["objective"] = trainingObjective
	hyperparameters["eval_metric"] = req.EvalMetric
	s.opts.Log.Info("using tuned hyperparameters from last tuning record", "record", key)
	return hyperparameters, nil
}

// Status reports the job's current state
func (s *TrainingStage) Status(ctx context.Context, req models.TrainingStatusRequest) (models.TrainingStatusResult, error) {
	if req.Debug || req.TrainingJobName == "" {
		return models.TrainingStatusResult{
			SourceBucket:      req.SourceBucket,
			EvalMetric:        req.EvalMetric,
			TrainingJobName:   req.TrainingJobName,
			ModelPackageGroup: req.ModelPackageGroup,
		}, nil
	}

	detail, err := s.launcher.DescribeTrainingJob(ctx, req.TrainingJobName)
	if err != nil {
		return models.TrainingStatusResult{}, fmt.Errorf("describe training job %s: %w", req.TrainingJobName, err)
	}
	s.opts.Log.Info("training job status", "job", req.TrainingJobName, "status", string(detail.Status))

	return models.TrainingStatusResult{
		SourceBucket:      req.SourceBucket,
		EvalMetric:        req.EvalMetric,
		TrainingJobName:   req.TrainingJobName,
		Status:            detail.Status,
		ModelPackageGroup: req.ModelPackageGroup,
	}, nil
}

// SaveMetadata records the finished job's model artifact, hyperparameters
// and final metrics for the promotion stage to pick up
func (s *TrainingStage) SaveMetadata(ctx context.Context, req models.SaveTrainingMetadataRequest) (models.SaveTrainingMetadataResult, error) {
	if err := requireEventField("source_bucket", req.SourceBucket); err != nil {
		return models.SaveTrainingMetadataResult{}, err
	}
	if err := requireEventField("TrainingJobName", req.TrainingJobName); err != nil {
		return models.SaveTrainingMetadataResult{}, err
	}

	detail, err := s.launcher.DescribeTrainingJob(ctx, req.TrainingJobName)
	if err != nil {
		return models.SaveTrainingMetadataResult{}, fmt.Errorf("describe training job %s: %w", req.TrainingJobName, err)
	}

	record := models.TrainingRecord{
		ModelRegistry: models.ModelRegistryEntry{
			ModelDataURL:    detail.ModelArtifactsURL,
			Hyperparameters: detail.Hyperparameters,
			ModelMetrics:    detail.FinalMetrics,
		},
		TrainingJobMetadata: models.TrainingJobMetadata{
			TrainingJobName:    detail.Name,
			TrainingJobARN:     detail.ARN,
			TrainingJobStatus:  detail.Status,
			TrainingStartTime:  formatTime(detail.StartTime),
			TrainingEndTime:    formatTime(detail.EndTime),
			TrainingDurationIn: durationSeconds(detail.StartTime, detail.EndTime),
			TrainingImage:      detail.TrainingImage,
		},
	}

	name := metadata.TrainingRecordName(s.opts.Clock())
	prefix := metadata.StagePrefix(s.opts.Project, metadata.StageTraining)
	if err := s.writer.PutRecord(ctx, req.SourceBucket, prefix+name, record); err != nil {
		return models.SaveTrainingMetadataResult{}, err
	}
	s.opts.Log.Info("uploaded training metadata", "bucket", req.SourceBucket, "key", prefix+name)

	return models.SaveTrainingMetadataResult{
		TrainingMetadataName: name,
		SourceBucket:         req.SourceBucket,
		EvalMetric:           req.EvalMetric,
		ModelPackageGroup:    req.ModelPackageGroup,
	}, nil
}
