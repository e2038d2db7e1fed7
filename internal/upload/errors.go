package upload

import (
	"errors"
	"fmt"
)

// Kind classifies where a failure came from.
type Kind string

const (
	KindConfig     Kind = "config"
	KindTransport  Kind = "transport"
	KindFilesystem Kind = "filesystem"
)

var (
	// ErrNoSource is returned when neither an input file nor a source directory is given.
	ErrNoSource = errors.New("either input file or source directory required")

	// ErrNoBucket is returned when the target has no bucket name.
	ErrNoBucket = errors.New("bucket name required")

	// ErrBucketMismatch is returned when the target names a bucket other than the client's.
	ErrBucketMismatch = errors.New("target bucket does not match client bucket")

	// ErrInvalidOptions is returned for thresholds S3 cannot honour.
	ErrInvalidOptions = errors.New("invalid upload options")

	// ErrNotRegular is returned when the input file is a directory or device.
	ErrNotRegular = errors.New("not a regular file")

	// ErrShortRead is returned when a file yields fewer bytes than its size.
	ErrShortRead = errors.New("file shrank during upload")
)

// Error carries the failing operation and the file it concerned.
type Error struct {
	Kind Kind
	Op   string
	Path string
	Key  string
	Err  error
}

func (e *Error) Error() string {
	switch {
	case e.Path != "" && e.Key != "":
		return fmt.Sprintf("upload.%s %s -> %s: %v", e.Op, e.Path, e.Key, e.Err)
	case e.Path != "":
		return fmt.Sprintf("upload.%s %s: %v", e.Op, e.Path, e.Err)
	case e.Key != "":
		return fmt.Sprintf("upload.%s %s: %v", e.Op, e.Key, e.Err)
	}
	return fmt.Sprintf("upload.%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(kind Kind, op, path, key string, err error) *Error {
	return &Error{Kind: kind, Op: op, Path: path, Key: key, Err: err}
}

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return "", false
}

func IsConfig(err error) bool {
	k, ok := KindOf(err)
	return ok && k == KindConfig
}

func IsTransport(err error) bool {
	k, ok := KindOf(err)
	return ok && k == KindTransport
}

func IsFilesystem(err error) bool {
	k, ok := KindOf(err)
	return ok && k == KindFilesystem
}
