package storage

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/google/uuid"
)

// S3Service stores uploads in Amazon S3 (or compatible APIs).
type S3Service struct {
	client   *s3.Client
	uploader *manager.Uploader
	region   string
	endpoint string
}

func NewS3Service(client *s3.Client, region, endpoint string) *S3Service {
	return &S3Service{
		client:   client,
		uploader: manager.NewUploader(client),
		region:   region,
		endpoint: strings.TrimRight(endpoint, "/"),
	}
}

func (s *S3Service) Upload(ctx context.Context, in UploadInput) (Object, error) {
	if in.Bucket == "" {
		return Object{}, fmt.Errorf("storage bucket is required")
	}
	if in.Body == nil {
		return Object{}, fmt.Errorf("upload body is required")
	}

	key := buildKey(in.KeyPrefix, in.Filename)

	putInput := &s3.PutObjectInput{
		Bucket: aws.String(in.Bucket),
		Key:    aws.String(key),
		Body:   in.Body,
		ACL:    types.ObjectCannedACLPublicRead,
	}
	if in.ContentType != "" {
		putInput.ContentType = aws.String(in.ContentType)
	}

	if _, err := s.uploader.Upload(ctx, putInput); err != nil {
		return Object{}, fmt.Errorf("upload %s: %w", key, err)
	}

	return Object{Key: key, URL: s.objectURL(in.Bucket, key)}, nil
}

func (s *S3Service) Delete(ctx context.Context, bucket, key string) error {
	if bucket == "" {
		return fmt.Errorf("storage bucket is required")
	}
	if strings.TrimSpace(key) == "" {
		return fmt.Errorf("object key is required")
	}

	if _, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	}); err != nil {
		return fmt.Errorf("delete object %s: %w", key, err)
	}
	return nil
}

// objectURL derives a public URL: path style against a custom endpoint,
// virtual-hosted style against AWS proper.
func (s *S3Service) objectURL(bucket, key string) string {
	if s.endpoint != "" {
		return fmt.Sprintf("%s/%s/%s", s.endpoint, bucket, key)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", bucket, s.region, key)
}

func buildKey(prefix, filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	name := uuid.NewString() + ext

	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		return name
	}
	return prefix + "/" + name
}

var _ Service = (*S3Service)(nil)
