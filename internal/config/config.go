package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"s3copy/internal/upload"
)

// Keys shared by cobra flags and viper.
const (
	KeyAWSKey       = "aws_key"
	KeyAWSSecretKey = "aws_secret_key"
	KeyBucket       = "s3_bucket"
	KeyFolder       = "s3_folder"
	KeyInputFile    = "input_file"
	KeySourceDir    = "source_dir"
	KeyRegion       = "region"
	KeyEndpoint     = "endpoint"
	KeyConfigPath   = "config"
	KeyLogLevel     = "log_level"
	KeyDryRun       = "dry_run"
)

const (
	DefaultRegion     = "us-west-2"
	DefaultConfigPath = "upload-config.yaml"
	DefaultLogLevel   = "info"
)

var (
	ErrMissingCredentials = errors.New("aws key and secret key are required")
	ErrMissingBucket      = errors.New("s3 bucket is required")
)

type Config struct {
	AWSAccessKey string
	AWSSecretKey string
	S3Bucket     string
	S3Folder     string
	InputFile    string
	SourceDir    string
	S3Region     string
	Endpoint     string
	ConfigPath   string
	LogLevel     string
	DryRun       bool
}

// BindEnv maps config keys to the environment variables they fall back to.
func BindEnv(v *viper.Viper) error {
	bindings := map[string]string{
		KeyAWSKey:       "AWS_ACCESS_KEY_ID",
		KeyAWSSecretKey: "AWS_SECRET_ACCESS_KEY",
		KeyBucket:       "S3_BUCKET",
		KeyFolder:       "S3_FOLDER",
		KeyRegion:       "S3_REGION",
		KeyEndpoint:     "AWS_ENDPOINT_URL_S3",
		KeyConfigPath:   "UPLOAD_CONFIG_PATH",
		KeyLogLevel:     "LOG_LEVEL",
	}
	for key, env := range bindings {
		if err := v.BindEnv(key, env); err != nil {
			return fmt.Errorf("bind %s: %w", key, err)
		}
	}
	v.SetDefault(KeyRegion, DefaultRegion)
	v.SetDefault(KeyConfigPath, DefaultConfigPath)
	v.SetDefault(KeyLogLevel, DefaultLogLevel)
	return nil
}

func Load(v *viper.Viper) *Config {
	return &Config{
		AWSAccessKey: v.GetString(KeyAWSKey),
		AWSSecretKey: v.GetString(KeyAWSSecretKey),
		S3Bucket:     v.GetString(KeyBucket),
		S3Folder:     v.GetString(KeyFolder),
		InputFile:    v.GetString(KeyInputFile),
		SourceDir:    v.GetString(KeySourceDir),
		S3Region:     v.GetString(KeyRegion),
		Endpoint:     v.GetString(KeyEndpoint),
		ConfigPath:   v.GetString(KeyConfigPath),
		LogLevel:     v.GetString(KeyLogLevel),
		DryRun:       v.GetBool(KeyDryRun),
	}
}

func (c *Config) Validate() error {
	if c.S3Bucket == "" {
		return ErrMissingBucket
	}
	if c.DryRun {
		return nil
	}
	if c.AWSAccessKey == "" || c.AWSSecretKey == "" {
		return ErrMissingCredentials
	}
	return nil
}

// Target builds the upload target described by the config.
func (c *Config) Target() upload.Target {
	return upload.Target{
		Bucket:    c.S3Bucket,
		Prefix:    c.S3Folder,
		InputFile: c.InputFile,
		SourceDir: c.SourceDir,
	}
}

type UploadConfig struct {
	Upload upload.Options `yaml:"upload"`
}

// LoadUploadOptions reads thresholds from path. A missing file at the default
// path yields the defaults; a missing file anywhere else is an error.
func LoadUploadOptions(path string) (upload.Options, error) {
	if path == "" {
		path = DefaultConfigPath
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && path == DefaultConfigPath {
			return upload.DefaultOptions(), nil
		}
		return upload.Options{}, fmt.Errorf("failed to read upload config: %w", err)
	}

	var cfg UploadConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return upload.Options{}, fmt.Errorf("failed to parse upload config: %w", err)
	}

	return cfg.Upload.WithDefaults(), nil
}
