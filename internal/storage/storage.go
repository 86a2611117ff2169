package storage

import (
	"context"
	"io"
)

// UploadInput describes a single object upload.
type UploadInput struct {
	Bucket      string
	KeyPrefix   string
	Filename    string
	ContentType string
	Body        io.Reader
}

// Object is the result of a successful upload.
type Object struct {
	Key string
	URL string
}

// Service stores uploaded images in remote object storage.
type Service interface {
	Upload(ctx context.Context, in UploadInput) (Object, error)
	Delete(ctx context.Context, bucket, key string) error
}
