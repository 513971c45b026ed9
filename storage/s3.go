package storage

import (
	"context"
	"fmt"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// AttachmentStore hands out presigned S3 PUT/GET URLs so attachment bytes
// never pass through the API. A nil store means uploads are disabled for the
// deployment.
type AttachmentStore struct {
	presigner *s3.PresignClient
	bucket    string
}

func NewAttachmentStore(ctx context.Context, bucket, region string) (*AttachmentStore, error) {
	if bucket == "" {
		return nil, nil
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}

	client := s3.NewFromConfig(cfg)
	return &AttachmentStore{
		presigner: s3.NewPresignClient(client),
		bucket:    bucket,
	}, nil
}

func (s *AttachmentStore) Enabled() bool {
	return s != nil
}

func (s *AttachmentStore) Bucket() string {
	return s.bucket
}

// PresignUpload generates a presigned PUT URL for the given object key.
func (s *AttachmentStore) PresignUpload(ctx context.Context, key, contentType string, expiry time.Duration) (string, error) {
	input := &s3.PutObjectInput{
		Bucket:      &s.bucket,
		Key:         &key,
		ContentType: &contentType,
	}

	presigned, err := s.presigner.PresignPutObject(ctx, input, func(o *s3.PresignOptions) {
		o.Expires = expiry
	})
	if err != nil {
		return "", fmt.Errorf("failed to presign put object: %w", err)
	}
	return presigned.URL, nil
}

// PresignDownload generates a presigned GET URL for the given object key.
func (s *AttachmentStore) PresignDownload(ctx context.Context, key string, expiry time.Duration) (string, error) {
	input := &s3.GetObjectInput{
		Bucket: &s.bucket,
		Key:    &key,
	}

	presigned, err := s.presigner.PresignGetObject(ctx, input, func(o *s3.PresignOptions) {
		o.Expires = expiry
	})
	if err != nil {
		return "", fmt.Errorf("failed to presign get object: %w", err)
	}
	return presigned.URL, nil
}
