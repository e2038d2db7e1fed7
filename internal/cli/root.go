package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	utils "s3copy/internal"
	"s3copy/internal/config"
	"s3copy/internal/s3"
	"s3copy/internal/upload"
)

// ClientFactory builds the storage client for a run.
type ClientFactory func(ctx context.Context, cfg *config.Config) (upload.S3Client, error)

func defaultClientFactory(ctx context.Context, cfg *config.Config) (upload.S3Client, error) {
	return s3.NewClient(ctx, cfg.S3Region, cfg.S3Bucket, cfg.AWSAccessKey, cfg.AWSSecretKey, cfg.Endpoint)
}

// RootCmd creates the s3copy command.
func RootCmd() *cobra.Command {
	return newRootCmd(viper.New(), defaultClientFactory)
}

func newRootCmd(v *viper.Viper, newClient ClientFactory) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "s3copy",
		Short: "Copy a file or a flat directory from this host to S3",
		Long: `Copy a single file or every file of a directory (non-recursive) into an S3 bucket.
Files larger than the multipart threshold are sent as multipart uploads.
The bucket is created in --region when it does not exist.`,
		Example: `  s3copy -k KEY -s SECRET -b my-bucket -l archive -d /var/log/app
  s3copy -k KEY -s SECRET -b my-bucket -d /data -f dump.sql.gz`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load(v)
			if err := cfg.Validate(); err != nil {
				return err
			}

			logger, err := utils.NewLogger(cfg.LogLevel)
			if err != nil {
				return err
			}
			defer logger.Sync() //nolint:errcheck

			return run(cmd.Context(), cfg, logger, newClient)
		},
	}

	flags := cmd.Flags()
	flags.StringP(config.KeyAWSKey, "k", "", "aws key (env AWS_ACCESS_KEY_ID)")
	flags.StringP(config.KeyAWSSecretKey, "s", "", "aws secret key (env AWS_SECRET_ACCESS_KEY)")
	flags.StringP(config.KeyBucket, "b", "", "aws s3 bucket (env S3_BUCKET)")
	flags.StringP(config.KeyFolder, "l", "", "aws s3 folder under bucket")
	flags.StringP(config.KeyInputFile, "f", "", "input file to copy to s3")
	flags.StringP(config.KeySourceDir, "d", "", "source directory")
	flags.String(config.KeyRegion, config.DefaultRegion, "region used when the bucket has to be created (env S3_REGION)")
	flags.String(config.KeyEndpoint, "", "custom S3 endpoint, e.g. MinIO (env AWS_ENDPOINT_URL_S3)")
	flags.String(config.KeyConfigPath, config.DefaultConfigPath, "upload options file (env UPLOAD_CONFIG_PATH)")
	flags.String(config.KeyLogLevel, config.DefaultLogLevel, "log level. debug|info|warn|error")
	flags.Bool(config.KeyDryRun, false, "plan the upload without contacting S3")

	if err := config.BindEnv(v); err != nil {
		panic(err)
	}
	if err := v.BindPFlags(flags); err != nil {
		panic(err)
	}

	return cmd
}

func run(ctx context.Context, cfg *config.Config, logger *zap.Logger, newClient ClientFactory) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := utils.WithSignalCancel(ctx, logger)
	defer cancel()

	opts, err := config.LoadUploadOptions(cfg.ConfigPath)
	if err != nil {
		return err
	}
	opts.DryRun = cfg.DryRun

	target := cfg.Target()
	if err := target.Validate(); err != nil {
		return err
	}

	var client upload.S3Client
	if !cfg.DryRun {
		client, err = newClient(ctx, cfg)
		if err != nil {
			return fmt.Errorf("failed to create s3 client: %w", err)
		}
	}

	logger.Info("starting upload",
		zap.String("bucket", cfg.S3Bucket),
		zap.String("folder", cfg.S3Folder),
		zap.String("input_file", cfg.InputFile),
		zap.String("source_dir", cfg.SourceDir),
		zap.String("region", cfg.S3Region),
	)

	return upload.NewService(client, logger, opts).Upload(ctx, target)
}

// Execute runs the command and exits non-zero on failure.
func Execute(rootCmd *cobra.Command) {
	if err := rootCmd.Execute(); err != nil {
		utils.Shutdown(err.Error())
	}
}
