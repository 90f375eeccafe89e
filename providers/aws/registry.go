package aws

import (
	"context"

	"model-pipeline/core/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sagemaker"
	"github.com/aws/aws-sdk-go-v2/service/sagemaker/types"
)

// Registry implements promotion.ModelRegistry on the SageMaker model registry
type Registry struct {
	client *sagemaker.Client
}

// NewRegistry creates the SageMaker-backed model registry
func NewRegistry(client *sagemaker.Client) *Registry {
	return &Registry{client: client}
}

// EnsureGroup creates the model package group if it does not exist yet
func (r *Registry) EnsureGroup(ctx context.Context, group string) error {
	paginator := sagemaker.NewListModelPackageGroupsPaginator(r.client, &sagemaker.ListModelPackageGroupsInput{
		NameContains: aws.String(group),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return wrapAPIError("list model package groups", err)
		}
		for _, summary := range page.ModelPackageGroupSummaryList {
			if aws.ToString(summary.ModelPackageGroupName) == group {
				return nil
			}
		}
	}

	_, err := r.client.CreateModelPackageGroup(ctx, &sagemaker.CreateModelPackageGroupInput{
		ModelPackageGroupName:        aws.String(group),
		ModelPackageGroupDescription: aws.String("Model package group for " + group),
	})
	if err != nil {
		return wrapAPIError("create model package group", err)
	}
	return nil
}

// CreatePackage registers a new versioned package in the group and
// returns its ARN
func (r *Registry) CreatePackage(ctx context.Context, input models.PackageInput) (string, error) {
	out, err := r.client.CreateModelPackage(ctx, &sagemaker.CreateModelPackageInput{
		ModelPackageGroupName:   aws.String(input.Group),
		ModelPackageDescription: aws.String(input.Description),
		ModelApprovalStatus:     types.ModelApprovalStatus(input.ApprovalStatus),
		InferenceSpecification: &types.InferenceSpecification{
			Containers: []types.ModelPackageContainerDefinition{
				{
					Image:        aws.String(input.Image),
					ModelDataUrl: aws.String(input.ModelDataURL),
				},
			},
			SupportedContentTypes:      []string{"text/csv"},
			SupportedResponseMIMETypes: []string{"text/csv"},
		},
		CustomerMetadataProperties: input.CustomMetadata,
	})
	if err != nil {
		return "", wrapAPIError("create model package", err)
	}
	return aws.ToString(out.ModelPackageArn), nil
}

// DescribePackage fetches one package by ARN
func (r *Registry) DescribePackage(ctx context.Context, arn string) (models.ModelPackage, error) {
	out, err := r.client.DescribeModelPackage(ctx, &sagemaker.DescribeModelPackageInput{
		ModelPackageName: aws.String(arn),
	})
	if err != nil {
		return models.ModelPackage{}, wrapAPIError("describe model package", err)
	}

	pkg := models.ModelPackage{
		ARN:            aws.ToString(out.ModelPackageArn),
		Version:        int(aws.ToInt32(out.ModelPackageVersion)),
		ApprovalStatus: models.ApprovalStatus(out.ModelApprovalStatus),
		CustomMetadata: out.CustomerMetadataProperties,
	}
	if spec := out.InferenceSpecification; spec != nil && len(spec.Containers) > 0 {
		pkg.Image = aws.ToString(spec.Containers[0].Image)
		pkg.ModelDataURL = aws.ToString(spec.Containers[0].ModelDataUrl)
	}
	return pkg, nil
}

// ListPackages lists the group's packages holding the given approval status
func (r *Registry) ListPackages(ctx context.Context, group string, status models.ApprovalStatus) ([]models.PackageSummary, error) {
	var summaries []models.PackageSummary
	paginator := sagemaker.NewListModelPackagesPaginator(r.client, &sagemaker.ListModelPackagesInput{
		ModelPackageGroupName: aws.String(group),
		ModelApprovalStatus:   types.ModelApprovalStatus(status),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, wrapAPIError("list model packages", err)
		}
		for _, summary := range page.ModelPackageSummaryList {
			summaries = append(summaries, models.PackageSummary{
				ARN:            aws.ToString(summary.ModelPackageArn),
				ApprovalStatus: models.ApprovalStatus(summary.ModelApprovalStatus),
			})
		}
	}
	return summaries, nil
}

// UpdateApprovalStatus moves one package to the given approval status
func (r *Registry) UpdateApprovalStatus(ctx context.Context, arn string, status models.ApprovalStatus) error {
	_, err := r.client.UpdateModelPackage(ctx, &sagemaker.UpdateModelPackageInput{
		ModelPackageArn:     aws.String(arn),
		ModelApprovalStatus: types.ModelApprovalStatus(status),
	})
	if err != nil {
		return wrapAPIError("update model package status", err)
	}
	return nil
}

// UpdateCustomMetadata replaces the package's customer metadata properties
func (r *Registry) UpdateCustomMetadata(ctx context.Context, arn string, metadata map[string]string) error {
	_, err := r.client.UpdateModelPackage(ctx, &sagemaker.UpdateModelPackageInput{
		ModelPackageArn:            aws.String(arn),
		CustomerMetadataProperties: metadata,
	})
	if err != nil {
		return wrapAPIError("update model package metadata", err)
	}
	return nil
}
