package upload

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"go.uber.org/zap"

	"s3copy/internal/s3"
)

const abortTimeout = 30 * time.Second

type Service struct {
	s3Client S3Client
	logger   *zap.Logger
	options  Options
	progress func(key string) ProgressFunc
}

func NewService(s3Client S3Client, logger *zap.Logger, options Options) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		s3Client: s3Client,
		logger:   logger,
		options:  options.WithDefaults(),
		progress: func(key string) ProgressFunc { return LogProgress(logger, key) },
	}
}

// WithProgress replaces the default logging progress reporter. A nil
// factory disables progress reporting.
func (s *Service) WithProgress(fn func(key string) ProgressFunc) *Service {
	if fn == nil {
		fn = func(string) ProgressFunc { return nil }
	}
	s.progress = fn
	return s
}

// Upload copies every file of the target into the bucket. The first failure
// stops the run; files already uploaded stay in place.
func (s *Service) Upload(ctx context.Context, target Target) error {
	if err := target.Validate(); err != nil {
		return err
	}
	if err := s.options.Validate(); err != nil {
		return err
	}
	if s.s3Client != nil && s.s3Client.Bucket() != target.Bucket {
		return newError(KindConfig, "validate", "", target.Bucket,
			fmt.Errorf("%w: client is bound to %q", ErrBucketMismatch, s.s3Client.Bucket()))
	}

	files, err := ResolveFiles(target, s.logger)
	if err != nil {
		return err
	}

	if s.options.DryRun {
		for _, f := range files {
			plan := PlanFor(f.Size, s.options)
			s.logger.Info("dry run",
				zap.String("path", f.Path),
				zap.String("key", f.Key),
				zap.Int64("size", f.Size),
				zap.String("strategy", string(plan.Strategy)),
				zap.Int("parts", plan.Parts),
			)
		}
		return nil
	}

	if err := s.ensureBucket(ctx, target.Bucket); err != nil {
		return err
	}

	for _, f := range files {
		if err := s.uploadFile(ctx, f); err != nil {
			return err
		}
	}

	s.logger.Info("upload complete", zap.String("bucket", target.Bucket), zap.Int("files", len(files)))
	return nil
}

func (s *Service) ensureBucket(ctx context.Context, bucket string) error {
	exists, err := s.s3Client.BucketExists(ctx)
	if err != nil {
		return newError(KindTransport, "lookupBucket", "", bucket, err)
	}
	if exists {
		return nil
	}

	s.logger.Info("creating bucket", zap.String("bucket", bucket))
	if err := s.s3Client.CreateBucket(ctx); err != nil {
		return newError(KindTransport, "createBucket", "", bucket, err)
	}
	return nil
}

func (s *Service) uploadFile(ctx context.Context, f FileEntry) error {
	plan := PlanFor(f.Size, s.options)
	if plan.Parts > MaxParts {
		return newError(KindConfig, "plan", f.Path, f.Key,
			fmt.Errorf("%w: %d parts exceeds limit of %d", ErrInvalidOptions, plan.Parts, MaxParts))
	}

	headers := map[string]string{"Content-Type": contentType(f.Path)}
	s.logger.Info("uploading file",
		zap.String("path", f.Path),
		zap.String("key", f.Key),
		zap.Int64("size", f.Size),
	)

	if plan.Strategy == StrategyMultipart {
		s.logger.Debug("multipart upload", zap.String("key", f.Key), zap.Int("parts", plan.Parts))
		return s.uploadMultipart(ctx, f, plan, headers)
	}

	s.logger.Debug("single-part upload", zap.String("key", f.Key))
	return s.uploadSingle(ctx, f, headers)
}

func (s *Service) uploadSingle(ctx context.Context, f FileEntry, headers map[string]string) error {
	file, err := os.Open(f.Path)
	if err != nil {
		return newError(KindFilesystem, "open", f.Path, f.Key, err)
	}
	defer file.Close()

	body := newProgressReader(file, f.Size, s.options.ProgressCallbacks, s.progress(f.Key))
	if err := s.s3Client.PutObject(ctx, f.Key, body, f.Size, headers); err != nil {
		return newError(KindTransport, "putObject", f.Path, f.Key, err)
	}
	return nil
}

func (s *Service) uploadMultipart(ctx context.Context, f FileEntry, plan Plan, headers map[string]string) (err error) {
	file, err := os.Open(f.Path)
	if err != nil {
		return newError(KindFilesystem, "open", f.Path, f.Key, err)
	}
	defer file.Close()

	uploadID, err := s.s3Client.CreateMultipartUpload(ctx, f.Key, headers)
	if err != nil {
		return newError(KindTransport, "createMultipartUpload", f.Path, f.Key, err)
	}

	defer func() {
		if err != nil {
			s.abort(ctx, f.Key, uploadID)
		}
	}()

	parts, err := s.uploadParts(ctx, file, f, plan, uploadID)
	if err != nil {
		return err
	}

	if err := s.s3Client.CompleteMultipartUpload(ctx, f.Key, uploadID, parts); err != nil {
		return newError(KindTransport, "completeMultipartUpload", f.Path, f.Key, err)
	}
	return nil
}

func (s *Service) uploadParts(ctx context.Context, r io.Reader, f FileEntry, plan Plan, uploadID string) ([]s3.PartInfo, error) {
	every := plan.Parts / s.options.ProgressCallbacks
	if every < 1 {
		every = 1
	}
	progress := s.progress(f.Key)

	parts := make([]s3.PartInfo, 0, plan.Parts)
	buf := make([]byte, plan.PartSize)
	var offset int64
	partNumber := 0

	for offset < f.Size {
		if err := ctx.Err(); err != nil {
			return nil, newError(KindTransport, "uploadPart", f.Path, f.Key, err)
		}

		want := plan.PartSize
		if remaining := f.Size - offset; remaining < want {
			want = remaining
		}
		n, err := io.ReadFull(r, buf[:want])
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				err = ErrShortRead
			}
			return nil, newError(KindFilesystem, "read", f.Path, f.Key, err)
		}

		partNumber++
		s.logger.Debug("uploading part", zap.String("key", f.Key), zap.Int("part", partNumber), zap.Int("size", n))

		etag, err := s.s3Client.UploadPart(ctx, f.Key, uploadID, int32(partNumber), bytes.NewReader(buf[:n]), int64(n))
		if err != nil {
			return nil, newError(KindTransport, "uploadPart", f.Path, f.Key, fmt.Errorf("part %d: %w", partNumber, err))
		}
		parts = append(parts, s3.PartInfo{ETag: etag, PartNumber: partNumber})
		offset += int64(n)

		if progress != nil && (partNumber%every == 0 || offset == f.Size) {
			progress(offset, f.Size)
		}
	}

	return parts, nil
}

// abort runs detached from ctx so a cancelled run still cleans up.
func (s *Service) abort(ctx context.Context, key, uploadID string) {
	abortCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), abortTimeout)
	defer cancel()

	if err := s.s3Client.AbortMultipartUpload(abortCtx, key, uploadID); err != nil {
		s.logger.Warn("failed to abort multipart upload",
			zap.String("key", key),
			zap.String("upload_id", uploadID),
			zap.Error(err),
		)
		return
	}
	s.logger.Debug("aborted multipart upload", zap.String("key", key), zap.String("upload_id", uploadID))
}

func contentType(path string) string {
	mtype, err := mimetype.DetectFile(path)
	if err != nil {
		return "application/octet-stream"
	}
	return mtype.String()
}
