package jobspec

// Assembled job-specification documents handed to the managed platform.
// They are transport-neutral: the AWS provider maps them onto the SageMaker
// API, fakes consume them directly in tests.

// ProcessingInput maps a stored input into the processing container
type ProcessingInput struct {
	Name      string
	S3URI     string
	LocalPath string
}

// ProcessingOutput maps a container path to a stored output location
type ProcessingOutput struct {
	Name      string
	S3URI     string
	LocalPath string
}

// ProcessingJobSpec describes one data-processing job
type ProcessingJobSpec struct {
	Name              string
	Inputs            []ProcessingInput
	Outputs           []ProcessingOutput
	InstanceType      string
	InstanceCount     int
	VolumeSizeGB      int
	ImageURI          string
	Entrypoint        []string
	RoleARN           string
	MaxRuntimeSeconds int
}

// DataChannel feeds one named dataset split into a training container
type DataChannel struct {
	Name        string
	S3URI       string
	ContentType string
}

// MetricDefinition teaches the platform to scrape one metric from
// container logs
type MetricDefinition struct {
	Name  string
	Regex string
}

// StringRange is a parameter range with bounds rendered as strings, the
// form the platform API consumes
type StringRange struct {
	Name        string
	MinValue    string
	MaxValue    string
	ScalingType string
}

// TuningJobSpec describes one hyperparameter tuning job
type TuningJobSpec struct {
	Name              string
	Strategy          string
	MaxTrainingJobs   int
	MaxParallelJobs   int
	ObjectiveType     string
	ObjectiveMetric   string
	Categorical       []CategoricalRange
	Integer           []StringRange
	Continuous        []StringRange
	TrainingImage     string
	MetricDefinitions []MetricDefinition
	Channels          []DataChannel
	OutputPath        string
	InstanceType      string
	InstanceCount     int
	VolumeSizeGB      int
	RoleARN           string
	MaxRuntimeSeconds int
	MaxWaitSeconds    int
	SpotTraining      bool
}

// TrainingJobSpec describes one training job
type TrainingJobSpec struct {
	Name              string
	Hyperparameters   map[string]string
	TrainingImage     string
	Channels          []DataChannel
	OutputPath        string
	InstanceType      string
	InstanceCount     int
	VolumeSizeGB      int
	RoleARN           string
	MaxRuntimeSeconds int
	MaxWaitSeconds    int
	SpotTraining      bool
	NetworkIsolation  bool
}

// TransformJobSpec describes one batch transform job
type TransformJobSpec struct {
	Name          string
	ModelName     string
	InputS3URI    string
	ContentType   string
	SplitType     string
	OutputPath    string
	InstanceType  string
	InstanceCount int
}

// ModelSpec describes a deployable model object created from an approved
// model package
type ModelSpec struct {
	Name         string
	Image        string
	ModelDataURL string
	RoleARN      string
}
