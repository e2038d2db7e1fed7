package s3

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3Types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
)

// DefaultRegion is used for bucket creation when no region is configured.
const DefaultRegion = "us-west-2"

var (
	// ErrNoCredentials is returned when the access key or secret is missing.
	ErrNoCredentials = errors.New("s3: no AWS credentials provided")

	// ErrBucketNotFound indicates the bucket does not exist.
	ErrBucketNotFound = errors.New("s3: bucket not found")
)

// API is the subset of *s3.Client used here.
type API interface {
	HeadBucket(ctx context.Context, params *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error)
	CreateBucket(ctx context.Context, params *s3.CreateBucketInput, optFns ...func(*s3.Options)) (*s3.CreateBucketOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	CreateMultipartUpload(ctx context.Context, params *s3.CreateMultipartUploadInput, optFns ...func(*s3.Options)) (*s3.CreateMultipartUploadOutput, error)
	UploadPart(ctx context.Context, params *s3.UploadPartInput, optFns ...func(*s3.Options)) (*s3.UploadPartOutput, error)
	CompleteMultipartUpload(ctx context.Context, params *s3.CompleteMultipartUploadInput, optFns ...func(*s3.Options)) (*s3.CompleteMultipartUploadOutput, error)
	AbortMultipartUpload(ctx context.Context, params *s3.AbortMultipartUploadInput, optFns ...func(*s3.Options)) (*s3.AbortMultipartUploadOutput, error)
}

var _ API = (*s3.Client)(nil)

type Client struct {
	s3Client API
	bucket   string
	region   string
}

func NewClient(ctx context.Context, region, bucket, accessKey, secretKey, endpoint string) (*Client, error) {
	if accessKey == "" || secretKey == "" {
		return nil, ErrNoCredentials
	}
	if region == "" {
		region = DefaultRegion
	}

	cfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(accessKey, secretKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	s3Client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		}
	})

	return NewClientFromAPI(s3Client, bucket, region), nil
}

// NewClientFromAPI wraps an existing API implementation.
func NewClientFromAPI(api API, bucket, region string) *Client {
	if region == "" {
		region = DefaultRegion
	}
	return &Client{
		s3Client: api,
		bucket:   bucket,
		region:   region,
	}
}

func (c *Client) Bucket() string { return c.bucket }

func (c *Client) Region() string { return c.region }

// BucketExists reports whether the bucket is reachable with the configured credentials.
func (c *Client) BucketExists(ctx context.Context) (bool, error) {
	_, err := c.s3Client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(c.bucket),
	})
	if err == nil {
		return true, nil
	}
	if errors.Is(convertAWSError(err), ErrBucketNotFound) {
		return false, nil
	}
	return false, err
}

// CreateBucket creates the bucket in the client's region. A bucket already
// owned by the caller counts as success, so concurrent creators do not fail.
func (c *Client) CreateBucket(ctx context.Context) error {
	input := &s3.CreateBucketInput{
		Bucket: aws.String(c.bucket),
	}
	// us-east-1 rejects an explicit location constraint
	if c.region != "us-east-1" {
		input.CreateBucketConfiguration = &s3Types.CreateBucketConfiguration{
			LocationConstraint: s3Types.BucketLocationConstraint(c.region),
		}
	}

	_, err := c.s3Client.CreateBucket(ctx, input)
	if err != nil && !isAlreadyOwned(err) {
		return err
	}
	return nil
}

func (c *Client) PutObject(ctx context.Context, key string, body io.Reader, size int64, headers map[string]string) error {
	input := &s3.PutObjectInput{
		Bucket:        aws.String(c.bucket),
		Key:           aws.String(key),
		Body:          body,
		ContentLength: aws.Int64(size),
	}
	if contentType, ok := headers["Content-Type"]; ok {
		input.ContentType = aws.String(contentType)
	}

	_, err := c.s3Client.PutObject(ctx, input)
	return err
}

// CreateMultipartUpload creates a multipart upload and returns the upload ID
func (c *Client) CreateMultipartUpload(ctx context.Context, key string, headers map[string]string) (string, error) {
	input := &s3.CreateMultipartUploadInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	}

	if contentType, ok := headers["Content-Type"]; ok {
		input.ContentType = aws.String(contentType)
	}

	result, err := c.s3Client.CreateMultipartUpload(ctx, input)
	if err != nil {
		return "", err
	}

	return aws.ToString(result.UploadId), nil
}

// UploadPart uploads one part and returns its ETag
func (c *Client) UploadPart(ctx context.Context, key, uploadID string, partNumber int32, body io.Reader, size int64) (string, error) {
	input := &s3.UploadPartInput{
		Bucket:        aws.String(c.bucket),
		Key:           aws.String(key),
		UploadId:      aws.String(uploadID),
		PartNumber:    aws.Int32(partNumber),
		Body:          body,
		ContentLength: aws.Int64(size),
	}

	result, err := c.s3Client.UploadPart(ctx, input)
	if err != nil {
		return "", err
	}

	return aws.ToString(result.ETag), nil
}

// CompleteMultipartUpload completes a multipart upload
func (c *Client) CompleteMultipartUpload(ctx context.Context, key, uploadID string, parts []PartInfo) error {
	completedParts := make([]s3Types.CompletedPart, len(parts))
	for i, part := range parts {
		completedParts[i] = s3Types.CompletedPart{
			ETag:       aws.String(part.ETag),
			PartNumber: aws.Int32(int32(part.PartNumber)),
		}
	}

	input := &s3.CompleteMultipartUploadInput{
		Bucket:   aws.String(c.bucket),
		Key:      aws.String(key),
		UploadId: aws.String(uploadID),
		MultipartUpload: &s3Types.CompletedMultipartUpload{
			Parts: completedParts,
		},
	}

	_, err := c.s3Client.CompleteMultipartUpload(ctx, input)
	return err
}

// AbortMultipartUpload aborts a multipart upload
func (c *Client) AbortMultipartUpload(ctx context.Context, key, uploadID string) error {
	input := &s3.AbortMultipartUploadInput{
		Bucket:   aws.String(c.bucket),
		Key:      aws.String(key),
		UploadId: aws.String(uploadID),
	}

	_, err := c.s3Client.AbortMultipartUpload(ctx, input)
	return err
}

// PartInfo represents a completed part for multipart upload
type PartInfo struct {
	ETag       string
	PartNumber int
}

func convertAWSError(err error) error {
	var notFound *s3Types.NotFound
	if errors.As(err, &notFound) {
		return ErrBucketNotFound
	}
	var noSuchBucket *s3Types.NoSuchBucket
	if errors.As(err, &noSuchBucket) {
		return ErrBucketNotFound
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NotFound", "NoSuchBucket":
			return ErrBucketNotFound
		}
	}
	return err
}

func isAlreadyOwned(err error) bool {
	var owned *s3Types.BucketAlreadyOwnedByYou
	if errors.As(err, &owned) {
		return true
	}
	var apiErr smithy.APIError
	return errors.As(err, &apiErr) && apiErr.ErrorCode() == "BucketAlreadyOwnedByYou"
}
