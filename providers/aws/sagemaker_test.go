package aws

import (
	"errors"
	"strings"
	"testing"

	"model-pipeline/core/jobspec"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sagemaker/types"
	"github.com/aws/smithy-go"
)

func TestFinalMetrics(t *testing.T) {
	in := []types.MetricData{
		{MetricName: aws.String("validation:auc"), Value: aws.Float32(0.91)},
		{MetricName: aws.String("train:rmse"), Value: nil},
	}

	out := finalMetrics(in)
	if len(out) != 2 {
		t.Fatalf("len = %d, want 2", len(out))
	}
	if out[0].MetricName != "validation:auc" {
		t.Errorf("MetricName = %q", out[0].MetricName)
	}
	if got := float32(out[0].Value); got != 0.91 {
		t.Errorf("Value = %v, want 0.91", out[0].Value)
	}
	// A metric the platform never populated reads as zero, not a panic.
	if out[1].Value != 0 {
		t.Errorf("unpopulated Value = %v, want 0", out[1].Value)
	}
}

func TestChannels(t *testing.T) {
	in := []jobspec.DataChannel{
		{Name: "train", S3URI: "s3://bkt/train", ContentType: "text/csv"},
		{Name: "validation", S3URI: "s3://bkt/test", ContentType: "text/csv"},
	}

	out := channels(in)
	if len(out) != 2 {
		t.Fatalf("len = %d, want 2", len(out))
	}
	ch := out[0]
	if aws.ToString(ch.ChannelName) != "train" {
		t.Errorf("ChannelName = %q", aws.ToString(ch.ChannelName))
	}
	src := ch.DataSource.S3DataSource
	if aws.ToString(src.S3Uri) != "s3://bkt/train" {
		t.Errorf("S3Uri = %q", aws.ToString(src.S3Uri))
	}
	if string(src.S3DataType) != "S3Prefix" {
		t.Errorf("S3DataType = %q", src.S3DataType)
	}
	if string(src.S3DataDistributionType) != "FullyReplicated" {
		t.Errorf("S3DataDistributionType = %q", src.S3DataDistributionType)
	}
	if string(ch.CompressionType) != "None" {
		t.Errorf("CompressionType = %q", ch.CompressionType)
	}
}

func TestWrapAPIError(t *testing.T) {
	cause := &smithy.GenericAPIError{Code: "ResourceLimitExceeded", Message: "limit"}
	err := wrapAPIError("create training job", cause)
	if !strings.Contains(err.Error(), "ResourceLimitExceeded") {
		t.Errorf("error = %q, want the platform error code surfaced", err)
	}
	if !errors.Is(err, cause) {
		t.Error("wrapped cause lost")
	}

	plain := errors.New("dial tcp: timeout")
	err = wrapAPIError("describe training job", plain)
	if !errors.Is(err, plain) {
		t.Error("wrapped cause lost for non-API error")
	}
}
