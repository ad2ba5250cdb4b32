// Package main implements the site-deploy command line tool. It parses
// flags and the optional deploy file, initializes the AWS clients, and runs
// the deploy pipeline.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cloudfront"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/Shri19-web/staticwebsite/aws"
	"github.com/Shri19-web/staticwebsite/config"
	"github.com/Shri19-web/staticwebsite/deploy"
	"github.com/Shri19-web/staticwebsite/notify"
	"github.com/Shri19-web/staticwebsite/record"
)

// version is set at build time via -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		cfg      config.Config
		cfgFile  string
		debug    bool
		noDelete bool
	)

	cmd := &cobra.Command{
		Use:          "site-deploy",
		Short:        "Deploy a static website to Amazon S3",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			// Values from a .env file fill gaps in the environment, never
			// override it.
			_ = godotenv.Load()

			setupLogging(debug)

			if cfgFile != "" {
				fc, err := config.LoadFile(cfgFile)
				if err != nil {
					return err
				}
				fc.Apply(&cfg)
			}
			applyEnv(&cfg)
			cfg.Delete = cfg.Delete && !noDelete

			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}

			return run(cmd.Context(), &cfg)
		},
	}

	fl := cmd.Flags()
	fl.StringVar(&cfg.Bucket, "bucket", "", "Target S3 bucket (S3_BUCKET)")
	fl.StringVar(&cfg.Region, "region", "", "AWS region of the bucket (AWS_REGION)")
	fl.StringVar(&cfg.SourceDir, "source", ".", "Root of the site to deploy")
	fl.StringVar(&cfg.IndexDocument, "index", "index.html", "Entry file, must exist at the source root")
	fl.StringVar(&cfg.ErrorDocument, "error-page", "", "Error document for website hosting")
	fl.StringArrayVar(&cfg.Excludes, "exclude", nil, "Extra path name to exclude from staging (repeatable)")
	fl.IntVar(&cfg.Workers, "workers", 8, "Number of concurrent upload workers")
	fl.BoolVar(&cfg.DryRun, "dry-run", false, "Plan only, upload nothing")
	fl.BoolVar(&noDelete, "no-delete", false, "Keep remote objects that no longer exist locally")
	fl.BoolVar(&cfg.Invalidate, "invalidate", false, "Invalidate the CloudFront distribution after deploy (ENABLE_CLOUDFRONT_INVALIDATION)")
	fl.StringVar(&cfg.DistributionID, "distribution-id", "", "CloudFront distribution id (CLOUDFRONT_DISTRIBUTION_ID)")
	fl.StringVar(&cfg.RecordURI, "record", "", "Deploy record URI (s3://bucket/key or file:///path)")
	fl.BoolVar(&cfg.SkipWebsite, "skip-website", false, "Leave bucket website configuration and policy untouched")
	fl.StringVar(&cfgFile, "config", "", "YAML deploy file; flags override its values")
	fl.BoolVar(&debug, "debug", false, "Enable debug logging")

	cfg.Delete = true

	cmd.AddCommand(newVersionCmd())
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the site-deploy version",
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Println(version)
		},
	}
}

// applyEnv fills unset parameters from the environment, mirroring the
// trigger-time inputs of the hosted pipeline this tool replaces.
func applyEnv(cfg *config.Config) {
	if cfg.Bucket == "" {
		cfg.Bucket = os.Getenv("S3_BUCKET")
	}
	if cfg.Region == "" {
		cfg.Region = os.Getenv("AWS_REGION")
	}
	if !cfg.Invalidate {
		cfg.Invalidate = os.Getenv("ENABLE_CLOUDFRONT_INVALIDATION") == "true"
	}
	if cfg.DistributionID == "" {
		cfg.DistributionID = os.Getenv("CLOUDFRONT_DISTRIBUTION_ID")
	}
	cfg.WebhookURL = os.Getenv("SLACK_WEBHOOK_URL")
}

func setupLogging(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	h := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(h))
}

func run(ctx context.Context, cfg *config.Config) error {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
	)
	if err != nil {
		return fmt.Errorf("failed to load AWS config: %w", err)
	}

	s3Client := aws.NewS3Client(s3.NewFromConfig(awsCfg))
	cfClient := aws.NewCloudFrontClient(cloudfront.NewFromConfig(awsCfg))

	store, err := record.NewStore(s3Client, cfg.RecordURI)
	if err != nil {
		return fmt.Errorf("failed to create record store: %w", err)
	}

	notifier := notify.NewSlack(cfg.WebhookURL)

	d := deploy.New(cfg, s3Client, cfClient, store, notifier, slog.Default())

	fmt.Printf("Deploying %s to s3://%s (%s)\n", cfg.SourceDir, cfg.Bucket, cfg.Region)
	if err := d.Run(ctx); err != nil {
		return fmt.Errorf("deploy failed: %w", err)
	}

	fmt.Println("Deploy completed successfully")
	return nil
}
