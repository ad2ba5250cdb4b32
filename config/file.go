package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// FileConfig mirrors the optional YAML deploy file. All fields are optional;
// anything unset falls through to the flag or built-in default.
type FileConfig struct {
	Bucket         string   `yaml:"bucket"`
	Region         string   `yaml:"region"`
	Source         string   `yaml:"source"`
	Index          string   `yaml:"index"`
	ErrorPage      string   `yaml:"error_page"`
	Excludes       []string `yaml:"excludes"`
	Workers        int      `yaml:"workers"`
	Delete         *bool    `yaml:"delete"`
	Invalidate     *bool    `yaml:"invalidate"`
	DistributionID string   `yaml:"distribution_id"`
	Record         string   `yaml:"record"`
	SkipWebsite    *bool    `yaml:"skip_website"`
}

// LoadFile reads and parses a YAML deploy file.
func LoadFile(path string) (FileConfig, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return FileConfig{}, fmt.Errorf("failed to read config file: %w", err)
	}

	var fc FileConfig
	if err := yaml.Unmarshal(b, &fc); err != nil {
		return FileConfig{}, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	return fc, nil
}

// Apply copies the file values onto cfg for every field the file sets.
// Flag values already present in cfg are only replaced when they still hold
// the zero value, so flags take precedence over the file.
func (fc FileConfig) Apply(cfg *Config) {
	if cfg.Bucket == "" {
		cfg.Bucket = fc.Bucket
	}
	if cfg.Region == "" {
		cfg.Region = fc.Region
	}
	if cfg.SourceDir == "" || cfg.SourceDir == "." {
		if fc.Source != "" {
			cfg.SourceDir = fc.Source
		}
	}
	if fc.Index != "" && cfg.IndexDocument == "" {
		cfg.IndexDocument = fc.Index
	}
	if fc.ErrorPage != "" && cfg.ErrorDocument == "" {
		cfg.ErrorDocument = fc.ErrorPage
	}
	cfg.Excludes = append(cfg.Excludes, fc.Excludes...)
	if cfg.Workers == 0 && fc.Workers > 0 {
		cfg.Workers = fc.Workers
	}
	if fc.Delete != nil {
		cfg.Delete = *fc.Delete
	}
	if fc.Invalidate != nil && !cfg.Invalidate {
		cfg.Invalidate = *fc.Invalidate
	}
	if cfg.DistributionID == "" {
		cfg.DistributionID = fc.DistributionID
	}
	if cfg.RecordURI == "" {
		cfg.RecordURI = fc.Record
	}
	if fc.SkipWebsite != nil && !cfg.SkipWebsite {
		cfg.SkipWebsite = *fc.SkipWebsite
	}
}
