package jobspec

// Assembly merges a stage's static configuration document with the dynamic
// outputs of prior stages into one job specification. Every required field
// is checked up front; nothing is launched on a partial document.

// Fixed bounds enforced by the platform at launch time
const (
	processingVolumeGB  = 30
	processingRuntimeS  = 3600
	tuningVolumeGB      = 30
	tuningRuntimeS      = 6000
	tuningMaxWaitS      = 8200
	trainingVolumeGB    = 5
	trainingRuntimeS    = 3600
	trainingMaxWaitS    = 3600
	singleInstanceCount = 1
)

// Container paths the processing image expects its inputs and outputs under
const (
	requirementsLocalPath    = "/opt/ml/processing/input/requirements"
	codeLocalPath            = "/opt/ml/processing/input/code"
	datasetLocalPath         = "/opt/ml/processing/input/dataset"
	hpoOutputLocalPath       = "/opt/ml/processing/output/hpo"
	trainingOutputLocalPath  = "/opt/ml/processing/output/training"
	datasetMetadataLocalPath = "/opt/ml/processing/output/dataset_metadata"
)

// AssembleProcessingJob builds a processing job spec from its config document
func AssembleProcessingJob(cfg ProcessingConfig, jobName string) (ProcessingJobSpec, error) {
	required := []struct{ name, value string }{
		{"requirements.s3_uri", cfg.Requirements.S3URI},
		{"processing_script.s3_uri", cfg.ProcessingScript.S3URI},
		{"input_data_location.s3_uri", cfg.InputDataLocation.S3URI},
		{"output_hpo_location.s3_uri", cfg.OutputHPOLocation.S3URI},
		{"output_training_location.s3_uri", cfg.OutputTrainingLocation.S3URI},
		{"dataset_metadata_location.s3_uri", cfg.DatasetMetadataLocation.S3URI},
		{"InstanceType", cfg.InstanceType},
		{"ImageUri", cfg.ImageURI},
		{"ContainerEntrypointScript", cfg.ContainerEntrypoint},
		{"role", cfg.RoleARN},
	}
	for _, f := range required {
		if err := requireField(f.name, f.value); err != nil {
			return ProcessingJobSpec{}, err
		}
	}

	return ProcessingJobSpec{
		Name: jobName,
		Inputs: []ProcessingInput{
			{Name: "requirements-input", S3URI: cfg.Requirements.S3URI, LocalPath: requirementsLocalPath},
			{Name: "code-input", S3URI: cfg.ProcessingScript.S3URI, LocalPath: codeLocalPath},
			{Name: "data-input", S3URI: cfg.InputDataLocation.S3URI, LocalPath: datasetLocalPath},
		},
		Outputs: []ProcessingOutput{
			{Name: "preprocessed_hpo_data", S3URI: cfg.OutputHPOLocation.S3URI, LocalPath: hpoOutputLocalPath},
			{Name: "preprocessed_training_data", S3URI: cfg.OutputTrainingLocation.S3URI, LocalPath: trainingOutputLocalPath},
			{Name: "dataset_metadata", S3URI: cfg.DatasetMetadataLocation.S3URI, LocalPath: datasetMetadataLocalPath},
		},
		InstanceType:      cfg.InstanceType,
		InstanceCount:     singleInstanceCount,
		VolumeSizeGB:      processingVolumeGB,
		ImageURI:          cfg.ImageURI,
		Entrypoint:        []string{"python3", cfg.ContainerEntrypoint, "-d", cfg.InputDataLocation.S3URI},
		RoleARN:           cfg.RoleARN,
		MaxRuntimeSeconds: processingRuntimeS,
	}, nil
}

// AssembleTuningJob builds a tuning job spec. objective, when non-nil,
// overrides the objective from the config document. trainURI and testURI are
// the newest preprocessed HPO splits resolved from the processing record.
func AssembleTuningJob(cfg TuningConfig, objective *Objective, trainURI, testURI, jobName string) (TuningJobSpec, error) {
	required := []struct{ name, value string }{
		{"Strategy", cfg.Strategy},
		{"ResourceLimits.MaxNumberOfTrainingJobs", cfg.ResourceLimits.MaxTrainingJobs.String()},
		{"ResourceLimits.MaxParallelTrainingJobs", cfg.ResourceLimits.MaxParallelJobs.String()},
		{"TrainingImage", cfg.TrainingImage},
		{"S3OutputPath", cfg.S3OutputPath},
		{"InstanceType", cfg.InstanceType},
		{"RoleArn", cfg.RoleARN},
	}
	for _, f := range required {
		if err := requireField(f.name, f.value); err != nil {
			return TuningJobSpec{}, err
		}
	}

	obj := Objective{Type: cfg.Objective.Type, MetricName: cfg.Objective.MetricName}
	if objective != nil {
		obj = *objective
	}
	if err := requireField("HyperParameterTuningJobObjective.Type", obj.Type); err != nil {
		return TuningJobSpec{}, err
	}
	if err := requireField("HyperParameterTuningJobObjective.MetricName", obj.MetricName); err != nil {
		return TuningJobSpec{}, err
	}

	maxJobs, err := atoiField("ResourceLimits.MaxNumberOfTrainingJobs", cfg.ResourceLimits.MaxTrainingJobs)
	if err != nil {
		return TuningJobSpec{}, err
	}
	maxParallel, err := atoiField("ResourceLimits.MaxParallelTrainingJobs", cfg.ResourceLimits.MaxParallelJobs)
	if err != nil {
		return TuningJobSpec{}, err
	}

	return TuningJobSpec{
		Name:              jobName,
		Strategy:          cfg.Strategy,
		MaxTrainingJobs:   maxJobs,
		MaxParallelJobs:   maxParallel,
		ObjectiveType:     obj.Type,
		ObjectiveMetric:   obj.MetricName,
		Categorical:       cfg.ParameterRanges.Categorical,
		Integer:           stringRanges(cfg.ParameterRanges.Integer),
		Continuous:        stringRanges(cfg.ParameterRanges.Continuous),
		TrainingImage:     cfg.TrainingImage,
		MetricDefinitions: TrainingMetricDefinitions(),
		Channels: []DataChannel{
			{Name: "train", S3URI: trainURI, ContentType: "text/csv"},
			{Name: "validation", S3URI: testURI, ContentType: "text/csv"},
		},
		OutputPath:        cfg.S3OutputPath,
		InstanceType:      cfg.InstanceType,
		InstanceCount:     singleInstanceCount,
		VolumeSizeGB:      tuningVolumeGB,
		RoleARN:           cfg.RoleARN,
		MaxRuntimeSeconds: tuningRuntimeS,
		MaxWaitSeconds:    tuningMaxWaitS,
		SpotTraining:      true,
	}, nil
}

// AssembleTrainingJob builds a training job spec from its config document,
// the hyperparameter set chosen by the caller and the newest preprocessed
// training splits
func AssembleTrainingJob(cfg TrainingConfig, hyperparameters map[string]string, trainURI, testURI, jobName string) (TrainingJobSpec, error) {
	required := []struct{ name, value string }{
		{"TrainingImage", cfg.TrainingImage},
		{"RoleArn", cfg.RoleARN},
		{"InstanceType", cfg.InstanceType},
		{"S3OutputPath", cfg.S3OutputPath},
	}
	for _, f := range required {
		if err := requireField(f.name, f.value); err != nil {
			return TrainingJobSpec{}, err
		}
	}

	return TrainingJobSpec{
		Name:            jobName,
		Hyperparameters: hyperparameters,
		TrainingImage:   cfg.TrainingImage,
		Channels: []DataChannel{
			{Name: "train", S3URI: trainURI, ContentType: "text/csv"},
			{Name: "validation", S3URI: testURI, ContentType: "text/csv"},
		},
		OutputPath:        cfg.S3OutputPath,
		InstanceType:      cfg.InstanceType,
		InstanceCount:     singleInstanceCount,
		VolumeSizeGB:      trainingVolumeGB,
		RoleARN:           cfg.RoleARN,
		MaxRuntimeSeconds: trainingRuntimeS,
		MaxWaitSeconds:    trainingMaxWaitS,
		SpotTraining:      true,
		NetworkIsolation:  false,
	}, nil
}

// AssembleTransformJob builds a batch transform job spec around an already
// created model object and the newest no-target batch dataset
func AssembleTransformJob(cfg TransformConfig, modelName, inputURI, jobName string) (TransformJobSpec, error) {
	required := []struct{ name, value string }{
		{"InstanceType", cfg.InstanceType},
		{"S3OutputPath", cfg.S3OutputPath},
		{"DataSourceS3Uri", cfg.DataSourceS3URI},
		{"TrainingImage", cfg.ModelImage},
		{"RoleArn", cfg.RoleARN},
	}
	for _, f := range required {
		if err := requireField(f.name, f.value); err != nil {
			return TransformJobSpec{}, err
		}
	}

	return TransformJobSpec{
		Name:          jobName,
		ModelName:     modelName,
		InputS3URI:    inputURI,
		ContentType:   "text/csv",
		SplitType:     "Line",
		OutputPath:    cfg.S3OutputPath,
		InstanceType:  cfg.InstanceType,
		InstanceCount: singleInstanceCount,
	}, nil
}

func stringRanges(ranges []NumericRange) []StringRange {
	out := make([]StringRange, 0, len(ranges))
	for _, r := range ranges {
		out = append(out, StringRange{
			Name:        r.Name,
			MinValue:    r.MinValue.String(),
			MaxValue:    r.MaxValue.String(),
			ScalingType: r.ScalingType,
		})
	}
	return out
}
