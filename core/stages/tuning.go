package stages

import (
	"context"
	"fmt"

	"model-pipeline/core/jobspec"
	"model-pipeline/core/metadata"
	"model-pipeline/core/models"
)

// TuningStage launches the hyperparameter search against the newest
// preprocessed HPO datasets, polls it and records its best trial
type TuningStage struct {
	resolver *metadata.Resolver
	writer   *metadata.Writer
	objects  metadata.ObjectStore
	launcher JobLauncher
	opts     Options
}

// NewTuningStage creates the tuning stage handler
func NewTuningStage(objects metadata.ObjectStore, launcher JobLauncher, opts Options) *TuningStage {
	return &TuningStage{
		resolver: metadata.NewResolver(objects),
		writer:   metadata.NewWriter(objects),
		objects:  objects,
		launcher: launcher,
		opts:     opts.withDefaults(),
	}
}

// Launch fetches the tuning config document, resolves the newest processing
// record for the dataset channels and starts the search. The event may carry
// an objective override; otherwise the config document's objective is used.
func (s *TuningStage) Launch(ctx context.Context, req models.LaunchTuningRequest) (models.LaunchTuningResult, error) {
	if err := requireEventField("source_bucket", req.SourceBucket); err != nil {
		return models.LaunchTuningResult{}, err
	}
	if err := requireEventField("source_config_key", req.ConfigKey); err != nil {
		return models.LaunchTuningResult{}, err
	}

	var cfg jobspec.TuningConfig
	if err := metadata.GetJSON(ctx, s.objects, req.SourceBucket, req.ConfigKey, &cfg); err != nil {
		return models.LaunchTuningResult{}, fmt.Errorf("fetch tuning config: %w", err)
	}

	var processing models.ProcessingRecord
	prefix := metadata.StagePrefix(s.opts.Project, metadata.StageProcessing)
	if _, err := s.resolver.LatestRecord(ctx, req.SourceBucket, prefix, &processing); err != nil {
		return models.LaunchTuningResult{}, fmt.Errorf("fetch processing metadata: %w", err)
	}

	var objective *jobspec.Objective
	if req.Objective != nil {
		objective = &jobspec.Objective{Type: req.Objective.Type, MetricName: req.Objective.MetricName}
		s.opts.Log.Info("using objective from the event", "type", objective.Type, "metric", objective.MetricName)
	} else {
		s.opts.Log.Info("using default objective from tuning config",
			"type", cfg.Objective.Type, "metric", cfg.Objective.MetricName)
	}

	jobName := fmt.Sprintf("%s-hpo-%s", s.opts.JobPrefix, metadata.Timestamp(s.opts.Clock()))
	spec, err := jobspec.AssembleTuningJob(cfg, objective,
		processing.DatasetProperties.HPOTrainURI, processing.DatasetProperties.HPOTestURI, jobName)
	if err != nil {
		return models.LaunchTuningResult{}, err
	}

	if req.Debug {
		s.opts.Log.Info("debug mode, skipping tuning job creation")
		return models.LaunchTuningResult{TuningJobName: "", SourceBucket: req.SourceBucket}, nil
	}

	if err := s.launcher.CreateTuningJob(ctx, spec); err != nil {
		return models.LaunchTuningResult{}, fmt.Errorf("create tuning job: %w", err)
	}
	s.opts.Log.Info("created tuning job", "job", jobName)

	return models.LaunchTuningResult{TuningJobName: jobName, SourceBucket: req.SourceBucket}, nil
}

// Status reports the search's current state
func (s *TuningStage) Status(ctx context.Context, req models.TuningStatusRequest) (models.TuningStatusResult, error) {
	if req.Debug || req.TuningJobName == "" {
		return models.TuningStatusResult{SourceBucket: req.SourceBucket, TuningJobName: req.TuningJobName}, nil
	}

	detail, err := s.launcher.DescribeTuningJob(ctx, req.TuningJobName)
	if err != nil {
		return models.TuningStatusResult{}, fmt.Errorf("describe tuning job %s: %w", req.TuningJobName, err)
	}
	s.opts.Log.Info("tuning job status", "job", req.TuningJobName, "status", string(detail.Status))

	return models.TuningStatusResult{
		SourceBucket:  req.SourceBucket,
		TuningJobName: req.TuningJobName,
		Status:        detail.Status,
	}, nil
}

// SaveMetadata records the best trial of the finished search, including the
// hyperparameters it settled on, for the training stage to pick up
func (s *TuningStage) SaveMetadata(ctx context.Context, req models.SaveTuningMetadataRequest) (models.SaveTuningMetadataResult, error) {
	if err := requireEventField("source_bucket", req.SourceBucket); err != nil {
		return models.SaveTuningMetadataResult{}, err
	}
	if err := requireEventField("HPOJobName", req.TuningJobName); err != nil {
		return models.SaveTuningMetadataResult{}, err
	}

	detail, err := s.launcher.DescribeTuningJob(ctx, req.TuningJobName)
	if err != nil {
		return models.SaveTuningMetadataResult{}, fmt.Errorf("describe tuning job %s: %w", req.TuningJobName, err)
	}
	if detail.Best == nil {
		return models.SaveTuningMetadataResult{}, fmt.Errorf("tuning job %s has no best training job yet", req.TuningJobName)
	}

	record := models.TuningRecord{
		TuningJobMetadata: models.TuningJobMetadata{
			TuningJobName: detail.Name,
			TuningJobARN:  detail.ARN,
			Objective:     detail.Objective,
		},
		TrainingJobMetdata: models.TrainingJobMetadata{
			TrainingJobName:      detail.Best.Name,
			TrainingJobARN:       detail.Best.ARN,
			TrainingJobStatus:    detail.Best.Status,
			TrainingStartTime:    formatTime(detail.Best.StartTime),
			TrainingEndTime:      formatTime(detail.Best.EndTime),
			TrainingDurationIn:   durationSeconds(detail.Best.StartTime, detail.Best.EndTime),
			TunedHyperparameters: detail.Best.TunedHyperparameters,
		},
	}

	name := metadata.TuningRecordName(s.opts.Clock())
	prefix := metadata.StagePrefix(s.opts.Project, metadata.StageTuning)
	if err := s.writer.PutRecord(ctx, req.SourceBucket, prefix+name, record); err != nil {
		return models.SaveTuningMetadataResult{}, err
	}
	s.opts.Log.Info("uploaded tuning metadata", "bucket", req.SourceBucket, "key", prefix+name)

	return models.SaveTuningMetadataResult{
		SourceBucket:   req.SourceBucket,
		MetadataName:   name,
		MetadataPrefix: prefix,
	}, nil
}
