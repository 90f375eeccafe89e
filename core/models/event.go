package models

// Stage events and results. Field names on the wire match the payloads the
// workflow orchestrator forwards between stages, so a stage's result can be
// fed directly into the next stage's request.

// LaunchProcessingRequest triggers the data-processing stage
type LaunchProcessingRequest struct {
	SourceBucket string `json:"source_bucket"`
	ConfigKey    string `json:"source_config_key"`
	Debug        bool   `json:"debug_,omitempty"`
}

// LaunchProcessingResult forwards the launched job to the status stage
type LaunchProcessingResult struct {
	ProcessingJobName string `json:"ProcessingJobName"`
	SourceBucket      string `json:"source_bucket"`
}

// ProcessingStatusRequest polls a processing job
type ProcessingStatusRequest struct {
	SourceBucket      string `json:"source_bucket"`
	ProcessingJobName string `json:"ProcessingJobName"`
	Debug             bool   `json:"debug_,omitempty"`
}

// ProcessingStatusResult reports the polled status
type ProcessingStatusResult struct {
	ProcessingJobName string    `json:"ProcessingJobName"`
	Status            JobStatus `json:"Status"`
	SourceBucket      string    `json:"source_bucket"`
}

// SaveProcessingMetadataRequest records a finished processing job
type SaveProcessingMetadataRequest struct {
	SourceBucket      string `json:"source_bucket"`
	ProcessingJobName string `json:"ProcessingJobName"`
}

// SaveProcessingMetadataResult reports where the record was written
type SaveProcessingMetadataResult struct {
	RecordKey    string `json:"MetadataKey"`
	SourceBucket string `json:"source_bucket"`
}

// LaunchTuningRequest triggers the hyperparameter search stage. Objective,
// when present, overrides the objective from the static config document.
type LaunchTuningRequest struct {
	SourceBucket string           `json:"source_bucket"`
	ConfigKey    string           `json:"source_config_key"`
	Objective    *TuningObjective `json:"objective_input,omitempty"`
	Debug        bool             `json:"debug_,omitempty"`
}

// LaunchTuningResult forwards the launched tuning job
type LaunchTuningResult struct {
	TuningJobName string `json:"HPOJobName"`
	SourceBucket  string `json:"source_bucket"`
}

// TuningStatusRequest polls a tuning job
type TuningStatusRequest struct {
	SourceBucket  string `json:"source_bucket"`
	TuningJobName string `json:"HPOJobName"`
	Debug         bool   `json:"debug_,omitempty"`
}

// TuningStatusResult reports the polled status
type TuningStatusResult struct {
	SourceBucket  string    `json:"source_bucket"`
	TuningJobName string    `json:"HPOJobName"`
	Status        JobStatus `json:"Status"`
}

// SaveTuningMetadataRequest records the best trial of a finished search
type SaveTuningMetadataRequest struct {
	SourceBucket  string `json:"source_bucket"`
	TuningJobName string `json:"HPOJobName"`
}

// SaveTuningMetadataResult reports where the record was written
type SaveTuningMetadataResult struct {
	SourceBucket   string `json:"source_bucket"`
	MetadataName   string `json:"MetadataJsonName"`
	MetadataPrefix string `json:"MetadataKey"`
}

// LaunchTrainingRequest triggers the training stage. Tuned hyperparameters
// from the latest search record are preferred; DefaultHyperparametersKey
// names the fallback document used when no search has run yet.
type LaunchTrainingRequest struct {
	SourceBucket              string `json:"source_bucket"`
	EvalMetric                string `json:"eval_metric"`
	ConfigKey                 string `json:"source_config_key"`
	DefaultHyperparametersKey string `json:"default_hyp_config_key"`
	ModelPackageGroup         string `json:"model_package_group_name"`
	Debug                     bool   `json:"debug_,omitempty"`
}

// LaunchTrainingResult forwards the launched training job
type LaunchTrainingResult struct {
	TrainingJobName   string `json:"TrainingJobName"`
	EvalMetric        string `json:"eval_metric"`
	SourceBucket      string `json:"source_bucket"`
	ModelPackageGroup string `json:"model_package_group_name"`
}

// TrainingStatusRequest polls a training job
type TrainingStatusRequest struct {
	SourceBucket      string `json:"source_bucket"`
	EvalMetric        string `json:"eval_metric"`
	TrainingJobName   string `json:"TrainingJobName"`
	ModelPackageGroup string `json:"model_package_group_name"`
	Debug             bool   `json:"debug_,omitempty"`
}

// TrainingStatusResult reports the polled status
type TrainingStatusResult struct {
	SourceBucket      string    `json:"source_bucket"`
	EvalMetric        string    `json:"eval_metric"`
	TrainingJobName   string    `json:"TrainingJobName"`
	Status            JobStatus `json:"Status"`
	ModelPackageGroup string    `json:"model_package_group_name"`
}

// SaveTrainingMetadataRequest records a finished training job
type SaveTrainingMetadataRequest struct {
	SourceBucket      string `json:"source_bucket"`
	EvalMetric        string `json:"eval_metric"`
	TrainingJobName   string `json:"TrainingJobName"`
	ModelPackageGroup string `json:"model_package_group_name"`
}

// SaveTrainingMetadataResult forwards the record name to the promotion stage
type SaveTrainingMetadataResult struct {
	TrainingMetadataName string `json:"TrainingMetadataJson"`
	SourceBucket         string `json:"source_bucket"`
	EvalMetric           string `json:"eval_metric"`
	ModelPackageGroup    string `json:"model_package_group_name"`
}

// PromoteModelRequest registers the latest trained model as a candidate
// package and decides whether it displaces the approved one
type PromoteModelRequest struct {
	SourceBucket         string `json:"source_bucket"`
	TrainingMetadataName string `json:"TrainingMetadataJson"`
	EvalMetric           string `json:"eval_metric"`
	ModelPackageGroup    string `json:"model_package_group_name"`
}

// PromoteModelResult reports the promotion outcome
type PromoteModelResult struct {
	Message             string `json:"message"`
	CandidatePackageARN string `json:"CandidateModelPackageArn"`
	BestPackageARN      string `json:"BestModelPackageArn"`
}

// LaunchTransformRequest triggers a batch transform with the approved model
type LaunchTransformRequest struct {
	SourceBucket      string `json:"source_bucket"`
	ConfigKey         string `json:"batch_config_key"`
	ModelPackageGroup string `json:"model_package_group_name"`
	Debug             bool   `json:"debug_,omitempty"`
}

// LaunchTransformResult forwards the launched transform job
type LaunchTransformResult struct {
	TransformJobName   string `json:"BatchJobName"`
	ApprovedPackageARN string `json:"ApprovedModelPackageArn"`
	ApprovedModelURL   string `json:"ApprovedModelPackageUrl"`
	ModelName          string `json:"ModelName"`
	SourceBucket       string `json:"source_bucket"`
}

// TransformStatusRequest polls a transform job
type TransformStatusRequest struct {
	SourceBucket     string `json:"source_bucket"`
	TransformJobName string `json:"BatchJobName"`
	Debug            bool   `json:"debug_,omitempty"`
}

// TransformStatusResult reports the polled status
type TransformStatusResult struct {
	TransformJobName string    `json:"BatchJobName"`
	Status           JobStatus `json:"Status"`
	SourceBucket     string    `json:"source_bucket"`
}

// SaveTransformMetadataRequest records a finished transform job
type SaveTransformMetadataRequest struct {
	SourceBucket     string `json:"source_bucket"`
	TransformJobName string `json:"BatchJobName"`
}

// SaveTransformMetadataResult reports where the record was written
type SaveTransformMetadataResult struct {
	RecordKey    string `json:"MetadataKey"`
	SourceBucket string `json:"source_bucket"`
}

// DatasetProfileRequest asks for metadata describing a stored CSV dataset
type DatasetProfileRequest struct {
	FilePath string `json:"file_path"`
}
