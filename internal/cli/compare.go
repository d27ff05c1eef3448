package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ralt/repodiff/internal/config"
	"github.com/ralt/repodiff/internal/fetcher"
	"github.com/ralt/repodiff/internal/models"
	"github.com/ralt/repodiff/internal/orchestrator"
	"github.com/ralt/repodiff/internal/signer"
	"github.com/ralt/repodiff/internal/sink"
	"github.com/ralt/repodiff/internal/version"
)

const defaultTimeout = 5 * time.Minute

func addCompareFlags(cmd *cobra.Command, config *models.CompareConfig) {
	cmd.Flags().String("config", "", "Path to a YAML config file")

	// Input/Output flags
	cmd.Flags().StringVarP(&config.OutputDir, "output-dir", "o", ".", "Directory the Comparison folders are written to")
	cmd.Flags().StringVar(&config.APIURL, "api-url", fetcher.DefaultAPIURL, "Base URL of the repository database API")
	cmd.Flags().DurationVar(&config.Timeout, "timeout", defaultTimeout, "Timeout of each API request")
	cmd.Flags().StringVar(&config.DumpDir, "dump-dir", "", "Save fetched package lists to this directory")
	cmd.Flags().BoolVar(&config.CompressDumps, "compress-dumps", false, "Gzip saved package lists")
	cmd.Flags().BoolVar(&config.Offline, "offline", false, "Read package lists from --dump-dir instead of the API")

	// Comparison flags
	cmd.Flags().StringVar(&config.VersionOrder, "version-order", version.OrderLexicographic,
		"Version order of the newer-version comparison (lexicographic, rpm)")
	cmd.Flags().IntVarP(&config.Workers, "workers", "j", 1, "Architectures compared in parallel")

	// Output extras
	cmd.Flags().BoolVar(&config.Manifest, "manifest", false, "Write manifest.json listing every report and its digest")
	cmd.Flags().StringVar(&config.GPGKeyPath, "gpg-key", "", "Path to a GPG private key used to sign reports")
	cmd.Flags().StringVar(&config.GPGPassphrase, "gpg-passphrase", "", "GPG key passphrase")

	// S3 flags
	cmd.Flags().StringVar(&config.S3Bucket, "s3-bucket", "", "Upload reports to this S3 bucket instead of --output-dir")
	cmd.Flags().StringVar(&config.S3Prefix, "s3-prefix", "", "Key prefix inside the S3 bucket")
	cmd.Flags().StringVar(&config.S3Region, "s3-region", "", "AWS region of the bucket")
	cmd.Flags().StringVar(&config.AWSProfile, "aws-profile", "", "AWS shared config profile")
}

// loadConfigFile merges the --config file under the explicitly set flags
func loadConfigFile(cmd *cobra.Command, cfg *models.CompareConfig) error {
	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		return nil
	}

	logrus.Debugf("Loading config file %s", path)
	file, err := config.Load(path)
	if err != nil {
		return &models.CompareError{
			Type: models.ErrInvalidConfig,
			Err:  err,
		}
	}
	file.Apply(cfg, cmd.Flags())
	return nil
}

func validateConfig(cfg *models.CompareConfig) error {
	// Allow-list first, so a bad repository is reported before any other setting
	if err := models.CheckRepositories(models.KnownRepositories, cfg.Left, cfg.Right); err != nil {
		return err
	}

	if cfg.Workers < 1 {
		return &models.CompareError{
			Type: models.ErrInvalidConfig,
			Err:  fmt.Errorf("workers must be at least 1, got %d", cfg.Workers),
		}
	}

	if _, err := version.ForName(cfg.VersionOrder); err != nil {
		return &models.CompareError{
			Type: models.ErrInvalidConfig,
			Err:  err,
		}
	}

	if cfg.Offline && cfg.DumpDir == "" {
		return &models.CompareError{
			Type: models.ErrInvalidConfig,
			Err:  fmt.Errorf("offline mode requires --dump-dir"),
		}
	}

	if cfg.S3Bucket == "" && cfg.OutputDir == "" {
		return &models.CompareError{
			Type: models.ErrInvalidConfig,
			Err:  fmt.Errorf("output-dir is required"),
		}
	}

	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}

	return nil
}

func runCompare(ctx context.Context, cfg *models.CompareConfig) (*models.Summary, error) {
	// Step 1: Package list source
	var f fetcher.Fetcher
	if cfg.Offline {
		logrus.Infof("Offline mode, reading package lists from %s", cfg.DumpDir)
		f = fetcher.NewDumpFetcher(cfg.DumpDir)
	} else {
		opts := []fetcher.HTTPOption{fetcher.WithTimeout(cfg.Timeout)}
		if cfg.DumpDir != "" {
			opts = append(opts, fetcher.WithDumpDir(cfg.DumpDir, cfg.CompressDumps))
		}
		f = fetcher.NewHTTPFetcher(cfg.APIURL, opts...)
	}

	// Step 2: Initialize signer
	var sinkOpts []sink.Option
	if cfg.GPGKeyPath != "" {
		gpgSigner, err := signer.NewGPGSigner(cfg.GPGKeyPath, cfg.GPGPassphrase)
		if err != nil {
			return nil, &models.CompareError{
				Type: models.ErrSigning,
				Err:  fmt.Errorf("failed to initialize GPG signer: %w", err),
			}
		}
		logrus.Info("GPG signer initialized")
		sinkOpts = append(sinkOpts, sink.WithSigner(gpgSigner))
	}

	// Step 3: Report destination
	var s sink.Sink
	if cfg.S3Bucket != "" {
		client, err := sink.LoadS3Client(ctx, cfg.S3Region, cfg.AWSProfile)
		if err != nil {
			return nil, &models.CompareError{
				Type: models.ErrInvalidConfig,
				Err:  fmt.Errorf("failed to load AWS config: %w", err),
			}
		}
		s = sink.NewS3Sink(client, cfg.S3Bucket, cfg.S3Prefix, sinkOpts...)
	} else {
		s = sink.NewFileSystemSink(cfg.OutputDir, sinkOpts...)
	}

	// Step 4: Compare
	cmp, err := version.ForName(cfg.VersionOrder)
	if err != nil {
		return nil, &models.CompareError{Type: models.ErrInvalidConfig, Err: err}
	}

	o := orchestrator.New(f, s,
		orchestrator.WithComparator(cmp),
		orchestrator.WithWorkers(cfg.Workers),
		orchestrator.WithManifest(cfg.Manifest),
	)

	summary, err := o.Run(ctx, cfg.Left, cfg.Right)
	if err != nil {
		return summary, err
	}

	if cfg.S3Bucket != "" {
		logrus.Infof("Reports uploaded to s3://%s/%s", cfg.S3Bucket, cfg.S3Prefix)
	} else {
		logrus.Infof("Output directory: %s", cfg.OutputDir)
	}
	return summary, nil
}

// redacted hides secrets before the config is logged
func redacted(cfg models.CompareConfig) models.CompareConfig {
	if cfg.GPGPassphrase != "" {
		cfg.GPGPassphrase = "***"
	}
	return cfg
}
