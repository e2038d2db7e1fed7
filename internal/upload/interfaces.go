package upload

import (
	"context"
	"io"

	"s3copy/internal/s3"
)

// S3Client interface for dependency injection and testing
type S3Client interface {
	Bucket() string
	BucketExists(ctx context.Context) (bool, error)
	CreateBucket(ctx context.Context) error
	PutObject(ctx context.Context, key string, body io.Reader, size int64, headers map[string]string) error
	CreateMultipartUpload(ctx context.Context, key string, headers map[string]string) (string, error)
	UploadPart(ctx context.Context, key, uploadID string, partNumber int32, body io.Reader, size int64) (string, error)
	CompleteMultipartUpload(ctx context.Context, key, uploadID string, parts []s3.PartInfo) error
	AbortMultipartUpload(ctx context.Context, key, uploadID string) error
}

var _ S3Client = (*s3.Client)(nil)
