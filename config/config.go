// Package config holds the deploy configuration and its validation. Values
// come from command-line flags, an optional YAML file, and the environment;
// flags win over file values.
package config

import (
	"fmt"
	"net/url"
	"strings"
)

// Config holds all configuration for a deploy run.
type Config struct {
	Bucket         string   // Target S3 bucket name
	Region         string   // AWS region for the bucket
	SourceDir      string   // Root of the site to deploy
	IndexDocument  string   // Entry file, must exist under SourceDir
	ErrorDocument  string   // Error page for website hosting
	Excludes       []string // Path names excluded from staging, on top of the defaults
	Workers        int      // Number of concurrent upload workers
	DryRun         bool     // If true, plan only; no AWS calls that mutate state
	Delete         bool     // If true, prune remote objects absent locally
	Invalidate     bool     // If true, invalidate the CloudFront distribution
	DistributionID string   // CloudFront distribution to invalidate
	RecordURI      string   // Where to persist the deploy record (s3:// or file://)
	WebhookURL     string   // Slack incoming webhook; empty disables notification
	SkipWebsite    bool     // If true, leave bucket website config and policy untouched
}

// Validate ensures all required fields are present and have valid values.
func (c *Config) Validate() error {
	if c.Bucket == "" {
		return fmt.Errorf("bucket is required")
	}
	if strings.Contains(c.Bucket, "/") {
		return fmt.Errorf("bucket must be a bare bucket name, not a path: %s", c.Bucket)
	}

	if c.Region == "" {
		return fmt.Errorf("region is required")
	}

	if c.SourceDir == "" {
		return fmt.Errorf("source directory is required")
	}

	if c.IndexDocument == "" {
		return fmt.Errorf("index document is required")
	}
	if strings.Contains(c.IndexDocument, "/") {
		return fmt.Errorf("index document must be a root-level file name: %s", c.IndexDocument)
	}

	if c.ErrorDocument != "" && strings.Contains(c.ErrorDocument, "/") {
		return fmt.Errorf("error document must be a root-level file name: %s", c.ErrorDocument)
	}

	if c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1")
	}

	if c.RecordURI != "" {
		u, err := url.Parse(c.RecordURI)
		if err != nil {
			return fmt.Errorf("invalid record URI: %w", err)
		}
		if u.Scheme != "s3" && u.Scheme != "file" {
			return fmt.Errorf("record URI must use s3 or file scheme, got %q", u.Scheme)
		}
	}

	return nil
}
