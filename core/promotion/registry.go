package promotion

import (
	"context"

	"model-pipeline/core/models"
)

// ModelRegistry is the external registry of versioned model packages.
// Exactly one package per group may hold Approved status; the Approved
// listing is the authority for what currently serves production.
type ModelRegistry interface {
	EnsureGroup(ctx context.Context, group string) error
	CreatePackage(ctx context.Context, input models.PackageInput) (string, error)
	DescribePackage(ctx context.Context, arn string) (models.ModelPackage, error)
	ListPackages(ctx context.Context, group string, status models.ApprovalStatus) ([]models.PackageSummary, error)
	UpdateApprovalStatus(ctx context.Context, arn string, status models.ApprovalStatus) error
	UpdateCustomMetadata(ctx context.Context, arn string, metadata map[string]string) error
}
