package models

// Stage metadata records. Each stage writes one timestamped JSON document
// under its well-known prefix; the next stage consumes the most recently
// written one. Field names are stable: records already in the store must
// keep parsing across deployments.

// DatasetProperties points at the preprocessed datasets a processing run produced
type DatasetProperties struct {
	DatasetName string `json:"DatasetName"`
	S3Prefix    string `json:"s3_prefix"`
	TrainURI    string `json:"train_uri"`
	TestURI     string `json:"test_uri"`
	HPOTrainURI string `json:"hpo_train_uri"`
	HPOTestURI  string `json:"hpo_test_uri"`
}

// ProcessingRecord is the processing stage's outcome document
type ProcessingRecord struct {
	ProcessingJobName    string            `json:"ProcessingJobName"`
	ProcessingJobARN     string            `json:"ProcessingJobArn"`
	ProcessingJobStatus  JobStatus         `json:"ProcessingJobStatus"`
	ProcessingStartTime  string            `json:"ProcessingStartTime"`
	ProcessingEndTime    string            `json:"ProcessingEndTime"`
	ProcessingDurationIn float64           `json:"ProcessingDurationInSeconds"`
	DatasetProperties    DatasetProperties `json:"DatasetProperties"`
}

// TuningJobMetadata identifies a finished hyperparameter search
type TuningJobMetadata struct {
	TuningJobName string          `json:"HyperParameterTuningJobName"`
	TuningJobARN  string          `json:"HyperParameterTuningJobArn"`
	Objective     TuningObjective `json:"HyperParameterTuningJobObjective"`
}

// TrainingJobMetadata identifies a finished training job
type TrainingJobMetadata struct {
	TrainingJobName      string            `json:"TrainingJobName"`
	TrainingJobARN       string            `json:"TrainingJobArn"`
	TrainingJobStatus    JobStatus         `json:"TrainingJobStatus"`
	TrainingStartTime    string            `json:"TrainingStartTime"`
	TrainingEndTime      string            `json:"TrainingEndTime"`
	TrainingDurationIn   float64           `json:"TrainingDurationInSeconds"`
	TrainingImage        string            `json:"TrainingImage,omitempty"`
	TunedHyperparameters map[string]string `json:"TunedHyperParameters,omitempty"`
}

// TuningRecord is the search stage's outcome document: the best trial
// and the hyperparameters it settled on
type TuningRecord struct {
	TuningJobMetadata  TuningJobMetadata   `json:"HyperParameterTuningJobMetadata"`
	TrainingJobMetdata TrainingJobMetadata `json:"TrainingJobMetadata"`
}

// ModelRegistryEntry is the registry-facing part of a training record
type ModelRegistryEntry struct {
	ModelDataURL    string            `json:"ModelDataUrl"`
	Hyperparameters map[string]string `json:"Hyperparameters"`
	ModelMetrics    []MetricValue     `json:"ModelMetrics"`
}

// TrainingRecord is the training stage's outcome document
type TrainingRecord struct {
	ModelRegistry       ModelRegistryEntry  `json:"ModelRegistry"`
	TrainingJobMetadata TrainingJobMetadata `json:"TrainingJobMetadata"`
}

// TransformJobMetadata identifies a finished batch transform job
type TransformJobMetadata struct {
	TransformJobName  string `json:"TransformJobName"`
	TransformJobARN   string `json:"TransformJobArn"`
	TransformDuration string `json:"TransformJobDurationInMinutes"`
	TransformInputURI string `json:"TransformInputS3Uri"`
	TransformOutput   string `json:"TransformOutputS3Path"`
}

// TransformModelMetadata identifies the model object a transform ran with
type TransformModelMetadata struct {
	ModelName    string `json:"ModelName"`
	Image        string `json:"Image"`
	ModelDataURL string `json:"ModelDataUrl"`
	ModelARN     string `json:"ModelArn"`
}

// TransformRecord is the batch stage's outcome document
type TransformRecord struct {
	TransformJobMetadata TransformJobMetadata   `json:"TransformJobMetadata"`
	ModelMetadata        TransformModelMetadata `json:"ModelMetadata"`
}
