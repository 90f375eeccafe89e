package aws

import (
	"context"
	"errors"
	"fmt"

	"model-pipeline/core/jobspec"
	"model-pipeline/core/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sagemaker"
	"github.com/aws/aws-sdk-go-v2/service/sagemaker/types"
	"github.com/aws/smithy-go"
)

// Launcher implements stages.JobLauncher on the SageMaker control plane
type Launcher struct {
	client *sagemaker.Client
}

// NewLauncher creates the SageMaker-backed job launcher
func NewLauncher(client *sagemaker.Client) *Launcher {
	return &Launcher{client: client}
}

// wrapAPIError surfaces the platform's error code (ResourceLimitExceeded,
// ResourceInUse, ValidationException, ...) alongside the wrapped cause
func wrapAPIError(op string, err error) error {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("sagemaker %s: %s: %w", op, apiErr.ErrorCode(), err)
	}
	return fmt.Errorf("sagemaker %s: %w", op, err)
}

// CreateProcessingJob launches a data-processing job
func (l *Launcher) CreateProcessingJob(ctx context.Context, spec jobspec.ProcessingJobSpec) error {
	inputs := make([]types.ProcessingInput, 0, len(spec.Inputs))
	for _, in := range spec.Inputs {
		inputs = append(inputs, types.ProcessingInput{
			InputName: aws.String(in.Name),
			S3Input: &types.ProcessingS3Input{
				S3Uri:                  aws.String(in.S3URI),
				LocalPath:              aws.String(in.LocalPath),
				S3DataType:             types.ProcessingS3DataType("S3Prefix"),
				S3InputMode:            types.ProcessingS3InputMode("File"),
				S3DataDistributionType: types.ProcessingS3DataDistributionType("FullyReplicated"),
			},
		})
	}

	outputs := make([]types.ProcessingOutput, 0, len(spec.Outputs))
	for _, out := range spec.Outputs {
		outputs = append(outputs, types.ProcessingOutput{
			OutputName: aws.String(out.Name),
			S3Output: &types.ProcessingS3Output{
				S3Uri:        aws.String(out.S3URI),
				LocalPath:    aws.String(out.LocalPath),
				S3UploadMode: types.ProcessingS3UploadMode("EndOfJob"),
			},
		})
	}

	_, err := l.client.CreateProcessingJob(ctx, &sagemaker.CreateProcessingJobInput{
		ProcessingJobName: aws.String(spec.Name),
		ProcessingInputs:  inputs,
		ProcessingOutputConfig: &types.ProcessingOutputConfig{
			Outputs: outputs,
		},
		ProcessingResources: &types.ProcessingResources{
			ClusterConfig: &types.ProcessingClusterConfig{
				InstanceCount:  aws.Int32(int32(spec.InstanceCount)),
				InstanceType:   types.ProcessingInstanceType(spec.InstanceType),
				VolumeSizeInGB: aws.Int32(int32(spec.VolumeSizeGB)),
			},
		},
		AppSpecification: &types.AppSpecification{
			ImageUri:            aws.String(spec.ImageURI),
			ContainerEntrypoint: spec.Entrypoint,
		},
		RoleArn: aws.String(spec.RoleARN),
		StoppingCondition: &types.ProcessingStoppingCondition{
			MaxRuntimeInSeconds: aws.Int32(int32(spec.MaxRuntimeSeconds)),
		},
	})
	if err != nil {
		return wrapAPIError("create processing job", err)
	}
	return nil
}

// DescribeProcessingJob reports one processing job's state
func (l *Launcher) DescribeProcessingJob(ctx context.Context, name string) (models.ProcessingJobDetail, error) {
	out, err := l.client.DescribeProcessingJob(ctx, &sagemaker.DescribeProcessingJobInput{
		ProcessingJobName: aws.String(name),
	})
	if err != nil {
		return models.ProcessingJobDetail{}, wrapAPIError("describe processing job", err)
	}

	return models.ProcessingJobDetail{
		Name:      aws.ToString(out.ProcessingJobName),
		ARN:       aws.ToString(out.ProcessingJobArn),
		Status:    models.JobStatus(out.ProcessingJobStatus),
		StartTime: out.ProcessingStartTime,
		EndTime:   out.ProcessingEndTime,
	}, nil
}

// CreateTuningJob launches a hyperparameter tuning job
func (l *Launcher) CreateTuningJob(ctx context.Context, spec jobspec.TuningJobSpec) error {
	metricDefinitions := make([]types.MetricDefinition, 0, len(spec.MetricDefinitions))
	for _, def := range spec.MetricDefinitions {
		metricDefinitions = append(metricDefinitions, types.MetricDefinition{
			Name:  aws.String(def.Name),
			Regex: aws.String(def.Regex),
		})
	}

	categorical := make([]types.CategoricalParameterRange, 0, len(spec.Categorical))
	for _, r := range spec.Categorical {
		categorical = append(categorical, types.CategoricalParameterRange{
			Name:   aws.String(r.Name),
			Values: r.Values,
		})
	}
	integer := make([]types.IntegerParameterRange, 0, len(spec.Integer))
	for _, r := range spec.Integer {
		integer = append(integer, types.IntegerParameterRange{
			Name:        aws.String(r.Name),
			MinValue:    aws.String(r.MinValue),
			MaxValue:    aws.String(r.MaxValue),
			ScalingType: types.HyperParameterScalingType(r.ScalingType),
		})
	}
	continuous := make([]types.ContinuousParameterRange, 0, len(spec.Continuous))
	for _, r := range spec.Continuous {
		continuous = append(continuous, types.ContinuousParameterRange{
			Name:        aws.String(r.Name),
			MinValue:    aws.String(r.MinValue),
			MaxValue:    aws.String(r.MaxValue),
			ScalingType: types.HyperParameterScalingType(r.ScalingType),
		})
	}

	_, err := l.client.CreateHyperParameterTuningJob(ctx, &sagemaker.CreateHyperParameterTuningJobInput{
		HyperParameterTuningJobName: aws.String(spec.Name),
		HyperParameterTuningJobConfig: &types.HyperParameterTuningJobConfig{
			Strategy: types.HyperParameterTuningJobStrategyType(spec.Strategy),
			ResourceLimits: &types.ResourceLimits{
				MaxNumberOfTrainingJobs: aws.Int32(int32(spec.MaxTrainingJobs)),
				MaxParallelTrainingJobs: aws.Int32(int32(spec.MaxParallelJobs)),
			},
			HyperParameterTuningJobObjective: &types.HyperParameterTuningJobObjective{
				Type:       types.HyperParameterTuningJobObjectiveType(spec.ObjectiveType),
				MetricName: aws.String(spec.ObjectiveMetric),
			},
			ParameterRanges: &types.ParameterRanges{
				CategoricalParameterRanges: categorical,
				IntegerParameterRanges:     integer,
				ContinuousParameterRanges:  continuous,
			},
		},
		TrainingJobDefinition: &types.HyperParameterTrainingJobDefinition{
			AlgorithmSpecification: &types.HyperParameterAlgorithmSpecification{
				TrainingImage:     aws.String(spec.TrainingImage),
				TrainingInputMode: types.TrainingInputMode("File"),
				MetricDefinitions: metricDefinitions,
			},
			InputDataConfig: channels(spec.Channels),
			OutputDataConfig: &types.OutputDataConfig{
				S3OutputPath: aws.String(spec.OutputPath),
			},
			ResourceConfig: &types.ResourceConfig{
				InstanceType:   types.TrainingInstanceType(spec.InstanceType),
				InstanceCount:  aws.Int32(int32(spec.InstanceCount)),
				VolumeSizeInGB: aws.Int32(int32(spec.VolumeSizeGB)),
			},
			RoleArn: aws.String(spec.RoleARN),
			StoppingCondition: &types.StoppingCondition{
				MaxRuntimeInSeconds:  aws.Int32(int32(spec.MaxRuntimeSeconds)),
				MaxWaitTimeInSeconds: aws.Int32(int32(spec.MaxWaitSeconds)),
			},
			EnableManagedSpotTraining: aws.Bool(spec.SpotTraining),
		},
	})
	if err != nil {
		return wrapAPIError("create tuning job", err)
	}
	return nil
}

// DescribeTuningJob reports one tuning job's state and best trial
func (l *Launcher) DescribeTuningJob(ctx context.Context, name string) (models.TuningJobDetail, error) {
	out, err := l.client.DescribeHyperParameterTuningJob(ctx, &sagemaker.DescribeHyperParameterTuningJobInput{
		HyperParameterTuningJobName: aws.String(name),
	})
	if err != nil {
		return models.TuningJobDetail{}, wrapAPIError("describe tuning job", err)
	}

	detail := models.TuningJobDetail{
		Name:   aws.ToString(out.HyperParameterTuningJobName),
		ARN:    aws.ToString(out.HyperParameterTuningJobArn),
		Status: models.JobStatus(out.HyperParameterTuningJobStatus),
	}
	if cfg := out.HyperParameterTuningJobConfig; cfg != nil && cfg.HyperParameterTuningJobObjective != nil {
		detail.Objective = models.TuningObjective{
			Type:       string(cfg.HyperParameterTuningJobObjective.Type),
			MetricName: aws.ToString(cfg.HyperParameterTuningJobObjective.MetricName),
		}
	}
	if best := out.BestTrainingJob; best != nil {
		detail.Best = &models.BestTrainingJob{
			Name:                 aws.ToString(best.TrainingJobName),
			ARN:                  aws.ToString(best.TrainingJobArn),
			Status:               models.JobStatus(best.TrainingJobStatus),
			StartTime:            best.TrainingStartTime,
			EndTime:              best.TrainingEndTime,
			TunedHyperparameters: best.TunedHyperParameters,
		}
	}
	return detail, nil
}

// CreateTrainingJob launches a training job
func (l *Launcher) CreateTrainingJob(ctx context.Context, spec jobspec.TrainingJobSpec) error {
	_, err := l.client.CreateTrainingJob(ctx, &sagemaker.CreateTrainingJobInput{
		TrainingJobName: aws.String(spec.Name),
		HyperParameters: spec.Hyperparameters,
		AlgorithmSpecification: &types.AlgorithmSpecification{
			TrainingImage:     aws.String(spec.TrainingImage),
			TrainingInputMode: types.TrainingInputMode("File"),
		},
		RoleArn:         aws.String(spec.RoleARN),
		InputDataConfig: channels(spec.Channels),
		OutputDataConfig: &types.OutputDataConfig{
			S3OutputPath: aws.String(spec.OutputPath),
		},
		ResourceConfig: &types.ResourceConfig{
			InstanceType:   types.TrainingInstanceType(spec.InstanceType),
			InstanceCount:  aws.Int32(int32(spec.InstanceCount)),
			VolumeSizeInGB: aws.Int32(int32(spec.VolumeSizeGB)),
		},
		StoppingCondition: &types.StoppingCondition{
			MaxRuntimeInSeconds:  aws.Int32(int32(spec.MaxRuntimeSeconds)),
			MaxWaitTimeInSeconds: aws.Int32(int32(spec.MaxWaitSeconds)),
		},
		EnableNetworkIsolation:    aws.Bool(spec.NetworkIsolation),
		EnableManagedSpotTraining: aws.Bool(spec.SpotTraining),
	})
	if err != nil {
		return wrapAPIError("create training job", err)
	}
	return nil
}

// DescribeTrainingJob reports one training job's state and outputs
func (l *Launcher) DescribeTrainingJob(ctx context.Context, name string) (models.TrainingJobDetail, error) {
	out, err := l.client.DescribeTrainingJob(ctx, &sagemaker.DescribeTrainingJobInput{
		TrainingJobName: aws.String(name),
	})
	if err != nil {
		return models.TrainingJobDetail{}, wrapAPIError("describe training job", err)
	}

	detail := models.TrainingJobDetail{
		Name:            aws.ToString(out.TrainingJobName),
		ARN:             aws.ToString(out.TrainingJobArn),
		Status:          models.JobStatus(out.TrainingJobStatus),
		StartTime:       out.TrainingStartTime,
		EndTime:         out.TrainingEndTime,
		Hyperparameters: out.HyperParameters,
	}
	if out.AlgorithmSpecification != nil {
		detail.TrainingImage = aws.ToString(out.AlgorithmSpecification.TrainingImage)
	}
	if out.ModelArtifacts != nil {
		detail.ModelArtifactsURL = aws.ToString(out.ModelArtifacts.S3ModelArtifacts)
	}
	detail.FinalMetrics = finalMetrics(out.FinalMetricDataList)
	return detail, nil
}

// finalMetrics converts the control plane's metric list, which carries
// float32 pointers, into the domain's plain float64 values
func finalMetrics(in []types.MetricData) []models.MetricValue {
	out := make([]models.MetricValue, 0, len(in))
	for _, metric := range in {
		out = append(out, models.MetricValue{
			MetricName: aws.ToString(metric.MetricName),
			Value:      float64(aws.ToFloat32(metric.Value)),
		})
	}
	return out
}

// CreateTransformJob launches a batch transform job
func (l *Launcher) CreateTransformJob(ctx context.Context, spec jobspec.TransformJobSpec) error {
	_, err := l.client.CreateTransformJob(ctx, &sagemaker.CreateTransformJobInput{
		TransformJobName: aws.String(spec.Name),
		ModelName:        aws.String(spec.ModelName),
		TransformInput: &types.TransformInput{
			DataSource: &types.TransformDataSource{
				S3DataSource: &types.TransformS3DataSource{
					S3DataType: types.S3DataType("S3Prefix"),
					S3Uri:      aws.String(spec.InputS3URI),
				},
			},
			ContentType: aws.String(spec.ContentType),
			SplitType:   types.SplitType(spec.SplitType),
		},
		TransformOutput: &types.TransformOutput{
			S3OutputPath: aws.String(spec.OutputPath),
		},
		TransformResources: &types.TransformResources{
			InstanceType:  types.TransformInstanceType(spec.InstanceType),
			InstanceCount: aws.Int32(int32(spec.InstanceCount)),
		},
	})
	if err != nil {
		return wrapAPIError("create transform job", err)
	}
	return nil
}

// DescribeTransformJob reports one transform job's state
func (l *Launcher) DescribeTransformJob(ctx context.Context, name string) (models.TransformJobDetail, error) {
	out, err := l.client.DescribeTransformJob(ctx, &sagemaker.DescribeTransformJobInput{
		TransformJobName: aws.String(name),
	})
	if err != nil {
		return models.TransformJobDetail{}, wrapAPIError("describe transform job", err)
	}

	detail := models.TransformJobDetail{
		Name:      aws.ToString(out.TransformJobName),
		ARN:       aws.ToString(out.TransformJobArn),
		Status:    models.JobStatus(out.TransformJobStatus),
		StartTime: out.TransformStartTime,
		EndTime:   out.TransformEndTime,
		ModelName: aws.ToString(out.ModelName),
	}
	if in := out.TransformInput; in != nil && in.DataSource != nil && in.DataSource.S3DataSource != nil {
		detail.InputS3URI = aws.ToString(in.DataSource.S3DataSource.S3Uri)
	}
	if out.TransformOutput != nil {
		detail.OutputS3Path = aws.ToString(out.TransformOutput.S3OutputPath)
	}
	return detail, nil
}

// CreateModel creates a deployable model object
func (l *Launcher) CreateModel(ctx context.Context, spec jobspec.ModelSpec) (string, error) {
	out, err := l.client.CreateModel(ctx, &sagemaker.CreateModelInput{
		ModelName: aws.String(spec.Name),
		PrimaryContainer: &types.ContainerDefinition{
			Image:        aws.String(spec.Image),
			ModelDataUrl: aws.String(spec.ModelDataURL),
		},
		ExecutionRoleArn:       aws.String(spec.RoleARN),
		EnableNetworkIsolation: aws.Bool(false),
	})
	if err != nil {
		return "", wrapAPIError("create model", err)
	}
	return aws.ToString(out.ModelArn), nil
}

// DescribeModel reports one model object
func (l *Launcher) DescribeModel(ctx context.Context, name string) (models.ModelDetail, error) {
	out, err := l.client.DescribeModel(ctx, &sagemaker.DescribeModelInput{
		ModelName: aws.String(name),
	})
	if err != nil {
		return models.ModelDetail{}, wrapAPIError("describe model", err)
	}

	detail := models.ModelDetail{
		Name: aws.ToString(out.ModelName),
		ARN:  aws.ToString(out.ModelArn),
	}
	if out.PrimaryContainer != nil {
		detail.Image = aws.ToString(out.PrimaryContainer.Image)
		detail.ModelDataURL = aws.ToString(out.PrimaryContainer.ModelDataUrl)
	}
	return detail, nil
}

func channels(in []jobspec.DataChannel) []types.Channel {
	out := make([]types.Channel, 0, len(in))
	for _, ch := range in {
		out = append(out, types.Channel{
			ChannelName: aws.String(ch.Name),
			DataSource: &types.DataSource{
				S3DataSource: &types.S3DataSource{
					S3DataType:             types.S3DataType("S3Prefix"),
					S3Uri:                  aws.String(ch.S3URI),
					S3DataDistributionType: types.S3DataDistribution("FullyReplicated"),
				},
			},
			ContentType:     aws.String(ch.ContentType),
			CompressionType: types.CompressionType("None"),
		})
	}
	return out
}
