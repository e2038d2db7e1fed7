package upload

import (
	"fmt"
	"path"
	"strings"
)

const (
	// MaxSingleSize is the largest file sent with a single PUT.
	MaxSingleSize int64 = 20 * 1000 * 1000
	// PartSize is the size of each part in a multipart upload.
	PartSize int64 = 6 * 1000 * 1000
	// MinPartSize is the S3 lower bound for every part except the last.
	MinPartSize int64 = 5 * 1024 * 1024
	// MaxParts is the S3 upper bound on parts per upload.
	MaxParts = 10000
	// DefaultProgressCallbacks is how many progress reports a transfer emits.
	DefaultProgressCallbacks = 10
)

// Target describes where files come from and where they go.
type Target struct {
	Bucket    string
	Prefix    string
	InputFile string
	SourceDir string
}

// Validate checks the target before any storage call is made.
func (t Target) Validate() error {
	if t.Bucket == "" {
		return newError(KindConfig, "validate", "", "", ErrNoBucket)
	}
	if t.InputFile == "" && t.SourceDir == "" {
		return newError(KindConfig, "validate", "", "", ErrNoSource)
	}
	return nil
}

// FileEntry is a local file resolved to its remote key.
type FileEntry struct {
	Path string
	Key  string
	Size int64
}

// Strategy is the upload mode chosen for a file.
type Strategy string

const (
	StrategySingle    Strategy = "single"
	StrategyMultipart Strategy = "multipart"
)

// Plan is the upload decision for one file.
type Plan struct {
	Strategy Strategy
	PartSize int64
	Parts    int
}

// Options tunes the dispatcher. Zero fields fall back to defaults.
type Options struct {
	MultipartThreshold int64 `yaml:"multipart_threshold_bytes"`
	PartSize           int64 `yaml:"part_size_bytes"`
	ProgressCallbacks  int   `yaml:"progress_callbacks"`
	DryRun             bool  `yaml:"-"`
}

// DefaultOptions returns the built-in thresholds.
func DefaultOptions() Options {
	return Options{
		MultipartThreshold: MaxSingleSize,
		PartSize:           PartSize,
		ProgressCallbacks:  DefaultProgressCallbacks,
	}
}

// WithDefaults fills zero fields from DefaultOptions.
func (o Options) WithDefaults() Options {
	def := DefaultOptions()
	if o.MultipartThreshold <= 0 {
		o.MultipartThreshold = def.MultipartThreshold
	}
	if o.PartSize <= 0 {
		o.PartSize = def.PartSize
	}
	if o.ProgressCallbacks <= 0 {
		o.ProgressCallbacks = def.ProgressCallbacks
	}
	return o
}

// Validate rejects part sizes S3 would refuse.
func (o Options) Validate() error {
	if o.PartSize < MinPartSize {
		return newError(KindConfig, "options", "", "",
			fmt.Errorf("%w: part size %d below minimum %d", ErrInvalidOptions, o.PartSize, MinPartSize))
	}
	if o.MultipartThreshold < o.PartSize {
		return newError(KindConfig, "options", "", "",
			fmt.Errorf("%w: threshold %d smaller than part size %d", ErrInvalidOptions, o.MultipartThreshold, o.PartSize))
	}
	return nil
}

// ObjectKey returns "/prefix/name" when a prefix is set, otherwise name.
func ObjectKey(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return "/" + path.Join(strings.Trim(prefix, "/"), name)
}

// PlanFor classifies a file of the given size.
func PlanFor(size int64, opts Options) Plan {
	if size <= opts.MultipartThreshold {
		return Plan{Strategy: StrategySingle, Parts: 1}
	}
	return Plan{
		Strategy: StrategyMultipart,
		PartSize: opts.PartSize,
		Parts:    int((size + opts.PartSize - 1) / opts.PartSize),
	}
}
