package jobspec

import "encoding/json"

// Static per-stage configuration documents, fetched as JSON from the object
// store. Field names follow the documents the pipeline's notebooks upload.

// S3Location wraps an s3_uri field
type S3Location struct {
	S3URI string `json:"s3_uri"`
}

// ProcessingConfig configures the data-processing stage
type ProcessingConfig struct {
	Requirements            S3Location `json:"requirements"`
	ProcessingScript        S3Location `json:"processing_script"`
	InputDataLocation       S3Location `json:"input_data_location"`
	OutputHPOLocation       S3Location `json:"output_hpo_location"`
	OutputTrainingLocation  S3Location `json:"output_training_location"`
	DatasetMetadataLocation S3Location `json:"dataset_metadata_location"`
	InstanceType            string     `json:"InstanceType"`
	ImageURI                string     `json:"ImageUri"`
	ContainerEntrypoint     string     `json:"ContainerEntrypointScript"`
	RoleARN                 string     `json:"role"`
}

// ResourceLimits caps a hyperparameter search. The document may carry the
// counts as strings or numbers; json.Number tolerates both.
type ResourceLimits struct {
	MaxTrainingJobs json.Number `json:"MaxNumberOfTrainingJobs"`
	MaxParallelJobs json.Number `json:"MaxParallelTrainingJobs"`
}

// Objective is a tuning objective as stored in the config document
type Objective struct {
	Type       string `json:"Type"`
	MetricName string `json:"MetricName"`
}

// NumericRange is an integer or continuous parameter range. Bounds are kept
// as json.Number and rendered to strings for the platform API.
type NumericRange struct {
	Name        string      `json:"Name"`
	MinValue    json.Number `json:"MinValue"`
	MaxValue    json.Number `json:"MaxValue"`
	ScalingType string      `json:"ScalingType"`
}

// CategoricalRange enumerates the values of a categorical parameter
type CategoricalRange struct {
	Name   string   `json:"Name"`
	Values []string `json:"Values"`
}

// ParameterRanges groups the searchable hyperparameter ranges
type ParameterRanges struct {
	Categorical []CategoricalRange `json:"CategoricalParameterRanges"`
	Integer     []NumericRange     `json:"IntegerParameterRanges"`
	Continuous  []NumericRange     `json:"ContinuousParameterRanges"`
}

// TuningConfig configures the hyperparameter search stage
type TuningConfig struct {
	Strategy        string          `json:"Strategy"`
	ResourceLimits  ResourceLimits  `json:"ResourceLimits"`
	Objective       Objective       `json:"HyperParameterTuningJobObjective"`
	ParameterRanges ParameterRanges `json:"ParameterRanges"`
	TrainingImage   string          `json:"TrainingImage"`
	S3OutputPath    string          `json:"S3OutputPath"`
	InstanceType    string          `json:"InstanceType"`
	RoleARN         string          `json:"RoleArn"`
}

// TrainingConfig configures the training stage
type TrainingConfig struct {
	TrainingImage string `json:"TrainingImage"`
	RoleARN       string `json:"RoleArn"`
	InstanceType  string `json:"InstanceType"`
	S3OutputPath  string `json:"S3OutputPath"`
}

// HyperparametersDoc is the default-hyperparameters fallback document used
// when no tuning record exists yet
type HyperparametersDoc struct {
	Hyperparameters map[string]string `json:"HyperParameters"`
}

// TransformConfig configures the batch transform stage
type TransformConfig struct {
	InstanceType    string `json:"InstanceType"`
	S3OutputPath    string `json:"S3OutputPath"`
	DataSourceS3URI string `json:"DataSourceS3Uri"`
	ModelImage      string `json:"TrainingImage"`
	RoleARN         string `json:"RoleArn"`
}
