// Package aws implements the pipeline's external collaborators on top of
// Amazon S3 (object store) and SageMaker (managed job launcher and model
// registry).
package aws

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sagemaker"
)

// Clients bundles the AWS service clients one invocation works with
type Clients struct {
	S3        *s3.Client
	SageMaker *sagemaker.Client
}

// NewClients creates the AWS clients for the given region
func NewClients(ctx context.Context, region string) (*Clients, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	return &Clients{
		S3:        s3.NewFromConfig(cfg),
		SageMaker: sagemaker.NewFromConfig(cfg),
	}, nil
}
