package stages

import (
	"context"
	"fmt"
	"strings"

	"model-pipeline/core/jobspec"
	"model-pipeline/core/metadata"
	"model-pipeline/core/models"
)

// ProcessingStage launches the data-processing job, polls it and records
// its outcome together with the preprocessed dataset locations it produced
type ProcessingStage struct {
	resolver *metadata.Resolver
	writer   *metadata.Writer
	objects  metadata.ObjectStore
	launcher JobLauncher
	opts     Options
}

// NewProcessingStage creates the processing stage handler
func NewProcessingStage(objects metadata.ObjectStore, launcher JobLauncher, opts Options) *ProcessingStage {
	return &ProcessingStage{
		resolver: metadata.NewResolver(objects),
		writer:   metadata.NewWriter(objects),
		objects:  objects,
		launcher: launcher,
		opts:     opts.withDefaults(),
	}
}

// Launch fetches the processing config document, assembles the job spec and
// starts the job. In debug mode the launch is suppressed and an empty job
// name is forwarded so downstream stages run without side effects.
func (s *ProcessingStage) Launch(ctx context.Context, req models.LaunchProcessingRequest) (models.LaunchProcessingResult, error) {
	if err := requireEventField("source_bucket", req.SourceBucket); err != nil {
		return models.LaunchProcessingResult{}, err
	}
	if err := requireEventField("source_config_key", req.ConfigKey); err != nil {
		return models.LaunchProcessingResult{}, err
	}

	var cfg jobspec.ProcessingConfig
	if err := metadata.GetJSON(ctx, s.objects, req.SourceBucket, req.ConfigKey, &cfg); err != nil {
		return models.LaunchProcessingResult{}, fmt.Errorf("fetch processing config: %w", err)
	}

	jobName := fmt.Sprintf("%s-processor-%s", s.opts.JobPrefix, metadata.Timestamp(s.opts.Clock()))
	spec, err := jobspec.AssembleProcessingJob(cfg, jobName)
	if err != nil {
		return models.LaunchProcessingResult{}, err
	}

	if req.Debug {
		s.opts.Log.Info("debug mode, skipping processing job creation")
		return models.LaunchProcessingResult{ProcessingJobName: "", SourceBucket: req.SourceBucket}, nil
	}

	if err := s.launcher.CreateProcessingJob(ctx, spec); err != nil {
		return models.LaunchProcessingResult{}, fmt.Errorf("create processing job: %w", err)
	}
	s.opts.Log.Info("created processing job", "job", jobName)

	return models.LaunchProcessingResult{ProcessingJobName: jobName, SourceBucket: req.SourceBucket}, nil
}

// Status reports the job's current state for the orchestrator's poll loop
func (s *ProcessingStage) Status(ctx context.Context, req models.ProcessingStatusRequest) (models.ProcessingStatusResult, error) {
	if req.Debug || req.ProcessingJobName == "" {
		return models.ProcessingStatusResult{SourceBucket: req.SourceBucket}, nil
	}

	detail, err := s.launcher.DescribeProcessingJob(ctx, req.ProcessingJobName)
	if err != nil {
		return models.ProcessingStatusResult{}, fmt.Errorf("describe processing job %s: %w", req.ProcessingJobName, err)
	}
	s.opts.Log.Info("processing job status", "job", req.ProcessingJobName, "status", string(detail.Status))

	return models.ProcessingStatusResult{
		ProcessingJobName: req.ProcessingJobName,
		Status:            detail.Status,
		SourceBucket:      req.SourceBucket,
	}, nil
}

// SaveMetadata describes the finished job, resolves the newest preprocessed
// dataset objects and writes the processing stage record
func (s *ProcessingStage) SaveMetadata(ctx context.Context, req models.SaveProcessingMetadataRequest) (models.SaveProcessingMetadataResult, error) {
	if err := requireEventField("source_bucket", req.SourceBucket); err != nil {
		return models.SaveProcessingMetadataResult{}, err
	}
	if err := requireEventField("ProcessingJobName", req.ProcessingJobName); err != nil {
		return models.SaveProcessingMetadataResult{}, err
	}

	detail, err := s.launcher.DescribeProcessingJob(ctx, req.ProcessingJobName)
	if err != nil {
		return models.SaveProcessingMetadataResult{}, fmt.Errorf("describe processing job %s: %w", req.ProcessingJobName, err)
	}

	trainURI, err := s.resolver.LatestURI(ctx, req.SourceBucket, metadata.PreprocessedPrefix(s.opts.Project, "training", "train"))
	if err != nil {
		return models.SaveProcessingMetadataResult{}, err
	}
	testURI, err := s.resolver.LatestURI(ctx, req.SourceBucket, metadata.PreprocessedPrefix(s.opts.Project, "training", "test"))
	if err != nil {
		return models.SaveProcessingMetadataResult{}, err
	}
	hpoTrainURI, err := s.resolver.LatestURI(ctx, req.SourceBucket, metadata.PreprocessedPrefix(s.opts.Project, "hpo", "train"))
	if err != nil {
		return models.SaveProcessingMetadataResult{}, err
	}
	hpoTestURI, err := s.resolver.LatestURI(ctx, req.SourceBucket, metadata.PreprocessedPrefix(s.opts.Project, "hpo", "test"))
	if err != nil {
		return models.SaveProcessingMetadataResult{}, err
	}

	record := models.ProcessingRecord{
		ProcessingJobName:    detail.Name,
		ProcessingJobARN:     detail.ARN,
		ProcessingJobStatus:  detail.Status,
		ProcessingStartTime:  formatTime(detail.StartTime),
		ProcessingEndTime:    formatTime(detail.EndTime),
		ProcessingDurationIn: durationSeconds(detail.StartTime, detail.EndTime),
		DatasetProperties: models.DatasetProperties{
			DatasetName: fmt.Sprintf("%s-%s", s.opts.JobPrefix, datasetDateID(trainURI)),
			S3Prefix:    fmt.Sprintf("%s/preprocessed_data/training", s.opts.Project),
			TrainURI:    trainURI,
			TestURI:     testURI,
			HPOTrainURI: hpoTrainURI,
			HPOTestURI:  hpoTestURI,
		},
	}

	key := metadata.ProcessingRecordKey(s.opts.Project, s.opts.Clock())
	if err := s.writer.PutRecord(ctx, req.SourceBucket, key, record); err != nil {
		return models.SaveProcessingMetadataResult{}, err
	}
	s.opts.Log.Info("uploaded processing metadata", "bucket", req.SourceBucket, "key", key)

	return models.SaveProcessingMetadataResult{RecordKey: key, SourceBucket: req.SourceBucket}, nil
}

// datasetDateID recovers the timestamp suffix a processing job embedded in
// its output object names, e.g. "01-15-093045" from ".../train-01-15-093045.csv"
func datasetDateID(uri string) string {
	parts := strings.Split(uri, "-")
	if len(parts) < 3 {
		return ""
	}
	id := strings.Join(parts[len(parts)-3:], "-")
	if dot := strings.Index(id, "."); dot >= 0 {
		id = id[:dot]
	}
	return id
}
