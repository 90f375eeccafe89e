package metadata

import (
	"fmt"
	"time"
)

// TimestampLayout is the human-facing suffix appended to job names and
// record keys. It exists for operators browsing the store; record ordering
// never depends on it.
const TimestampLayout = "01-02-150405"

// Timestamp formats t for embedding in job names and record keys
func Timestamp(t time.Time) string {
	return t.Format(TimestampLayout)
}

// Stage names used in the metadata prefix scheme
const (
	StageProcessing = "processing"
	StageTuning     = "hpo"
	StageTraining   = "training"
	StageTransform  = "batch"
)

// StagePrefix returns the metadata prefix one stage writes its records under
func StagePrefix(project, stage string) string {
	return fmt.Sprintf("%s/pipeline-metadata/%s-job-metadata/", project, stage)
}

// ProcessingRecordKey names a processing stage record
func ProcessingRecordKey(project string, t time.Time) string {
	return StagePrefix(project, StageProcessing) + fmt.Sprintf("processing_metadata-%s.json", Timestamp(t))
}

// TuningRecordName names a tuning stage record (the best-trial document)
func TuningRecordName(t time.Time) string {
	return fmt.Sprintf("best_hpo_job_metadata-%s.json", Timestamp(t))
}

// TrainingRecordName names a training stage record
func TrainingRecordName(t time.Time) string {
	return fmt.Sprintf("training_metadata-%s.json", Timestamp(t))
}

// TransformRecordKey names a batch stage record
func TransformRecordKey(project string, t time.Time) string {
	return StagePrefix(project, StageTransform) + fmt.Sprintf("batch_metadata-%s.json", Timestamp(t))
}

// PreprocessedPrefix returns the prefix a processing job writes one dataset
// split under. Purpose is "training" or "hpo"; split is "train" or "test".
func PreprocessedPrefix(project, purpose, split string) string {
	return fmt.Sprintf("%s/preprocessed_data/%s/%s", project, purpose, split)
}
