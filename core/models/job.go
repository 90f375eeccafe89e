package models

import "time"

// JobStatus is the lifecycle state reported by the managed platform.
// The exact value set is owned by the platform; these cover the states
// the pipeline reacts to.
type JobStatus string

const (
	JobStatusInProgress JobStatus = "InProgress"
	JobStatusCompleted  JobStatus = "Completed"
	JobStatusFailed     JobStatus = "Failed"
	JobStatusStopping   JobStatus = "Stopping"
	JobStatusStopped    JobStatus = "Stopped"
)

// TuningObjective is the optimization target of a hyperparameter search
type TuningObjective struct {
	Type       string `json:"Type"`
	MetricName string `json:"MetricName"`
}

// ProcessingJobDetail describes a data-processing job
type ProcessingJobDetail struct {
	Name      string
	ARN       string
	Status    JobStatus
	StartTime *time.Time
	EndTime   *time.Time
}

// TrainingJobDetail describes a training job and its outputs
type TrainingJobDetail struct {
	Name              string
	ARN               string
	Status            JobStatus
	StartTime         *time.Time
	EndTime           *time.Time
	TrainingImage     string
	ModelArtifactsURL string
	Hyperparameters   map[string]string
	FinalMetrics      []MetricValue
}

// BestTrainingJob is the winning trial of a hyperparameter search
type BestTrainingJob struct {
	Name                 string
	ARN                  string
	Status               JobStatus
	StartTime            *time.Time
	EndTime              *time.Time
	TunedHyperparameters map[string]string
}

// TuningJobDetail describes a hyperparameter tuning job
type TuningJobDetail struct {
	Name      string
	ARN       string
	Status    JobStatus
	Objective TuningObjective
	Best      *BestTrainingJob
}

// TransformJobDetail describes a batch transform job
type TransformJobDetail struct {
	Name         string
	ARN          string
	Status       JobStatus
	StartTime    *time.Time
	EndTime      *time.Time
	ModelName    string
	InputS3URI   string
	OutputS3Path string
}

// ModelDetail describes a deployable model object
type ModelDetail struct {
	Name         string
	ARN          string
	Image        string
	ModelDataURL string
}
