package aws

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"model-pipeline/core/metadata"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// ObjectStore implements metadata.ObjectStore on S3
type ObjectStore struct {
	client *s3.Client
}

// NewObjectStore creates the S3-backed object store
func NewObjectStore(client *s3.Client) *ObjectStore {
	return &ObjectStore{client: client}
}

// GetObject fetches one object's full body
func (s *ObjectStore) GetObject(ctx context.Context, bucket, key string) ([]byte, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("s3 get s3://%s/%s: %w", bucket, key, err)
	}
	defer out.Body.Close()

	body, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("s3 read s3://%s/%s: %w", bucket, key, err)
	}
	return body, nil
}

// PutObject writes one object
func (s *ObjectStore) PutObject(ctx context.Context, bucket, key string, body []byte) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(body),
	})
	if err != nil {
		return fmt.Errorf("s3 put s3://%s/%s: %w", bucket, key, err)
	}
	return nil
}

// ListObjects returns every object under prefix with its last-modified
// timestamp, following pagination
func (s *ObjectStore) ListObjects(ctx context.Context, bucket, prefix string) ([]metadata.ObjectInfo, error) {
	var objects []metadata.ObjectInfo

	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(bucket),
		Prefix: aws.String(prefix),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("s3 list s3://%s/%s: %w", bucket, prefix, err)
		}
		for _, obj := range page.Contents {
			info := metadata.ObjectInfo{Key: aws.ToString(obj.Key)}
			if obj.LastModified != nil {
				info.LastModified = *obj.LastModified
			}
			objects = append(objects, info)
		}
	}
	return objects, nil
}

// HeadObject returns one object's metadata without its body
func (s *ObjectStore) HeadObject(ctx context.Context, bucket, key string) (metadata.ObjectInfo, error) {
	out, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return metadata.ObjectInfo{}, fmt.Errorf("s3 head s3://%s/%s: %w", bucket, key, err)
	}

	info := metadata.ObjectInfo{Key: key}
	if out.LastModified != nil {
		info.LastModified = *out.LastModified
	}
	return info, nil
}
