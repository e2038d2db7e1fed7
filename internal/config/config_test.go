package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"s3copy/internal/upload"
)

func TestLoad_EnvFallbacks(t *testing.T) {
	t.Setenv("AWS_ACCESS_KEY_ID", "env-key")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "env-secret")
	t.Setenv("S3_BUCKET", "env-bucket")
	t.Setenv("S3_REGION", "")

	v := viper.New()
	require.NoError(t, BindEnv(v))
	v.Set(KeySourceDir, "/data")

	cfg := Load(v)
	assert.Equal(t, "env-key", cfg.AWSAccessKey)
	assert.Equal(t, "env-secret", cfg.AWSSecretKey)
	assert.Equal(t, "env-bucket", cfg.S3Bucket)
	assert.Equal(t, DefaultRegion, cfg.S3Region)
	assert.Equal(t, DefaultLogLevel, cfg.LogLevel)
	assert.Equal(t, "/data", cfg.SourceDir)
	assert.NoError(t, cfg.Validate())
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name     string
		cfg      Config
		expected error
	}{
		{name: "Complete", cfg: Config{AWSAccessKey: "k", AWSSecretKey: "s", S3Bucket: "b"}},
		{name: "Missing bucket", cfg: Config{AWSAccessKey: "k", AWSSecretKey: "s"}, expected: ErrMissingBucket},
		{name: "Missing secret", cfg: Config{AWSAccessKey: "k", S3Bucket: "b"}, expected: ErrMissingCredentials},
		{name: "Dry run needs no credentials", cfg: Config{S3Bucket: "b", DryRun: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.expected == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.expected)
		})
	}
}

func TestConfig_Target(t *testing.T) {
	cfg := Config{S3Bucket: "b", S3Folder: "archive", InputFile: "a.txt", SourceDir: "/data"}
	assert.Equal(t, upload.Target{Bucket: "b", Prefix: "archive", InputFile: "a.txt", SourceDir: "/data"}, cfg.Target())
}

func TestLoadUploadOptions(t *testing.T) {
	t.Run("Parses overrides", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "upload.yaml")
		content := "upload:\n  multipart_threshold_bytes: 50000000\n  part_size_bytes: 8000000\n"
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

		opts, err := LoadUploadOptions(path)
		require.NoError(t, err)
		assert.Equal(t, int64(50000000), opts.MultipartThreshold)
		assert.Equal(t, int64(8000000), opts.PartSize)
		assert.Equal(t, upload.DefaultProgressCallbacks, opts.ProgressCallbacks)
	})

	t.Run("Missing default file yields defaults", func(t *testing.T) {
		wd, err := os.Getwd()
		require.NoError(t, err)
		require.NoError(t, os.Chdir(t.TempDir()))
		t.Cleanup(func() { _ = os.Chdir(wd) })
		opts, err := LoadUploadOptions("")
		require.NoError(t, err)
		assert.Equal(t, upload.DefaultOptions(), opts)
	})

	t.Run("Missing explicit file fails", func(t *testing.T) {
		_, err := LoadUploadOptions(filepath.Join(t.TempDir(), "missing.yaml"))
		assert.Error(t, err)
	})

	t.Run("Invalid yaml fails", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bad.yaml")
		require.NoError(t, os.WriteFile(path, []byte("upload: [unterminated"), 0o644))
		_, err := LoadUploadOptions(path)
		assert.Error(t, err)
	})
}
