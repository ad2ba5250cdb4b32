// Package website configures S3 static-website hosting on the target bucket:
// index and error documents plus the public-read bucket policy that website
// hosting requires.
package website

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	json "github.com/goccy/go-json"

	"github.com/Shri19-web/staticwebsite/aws"
)

// Configurator applies website hosting settings to one bucket.
type Configurator struct {
	client aws.S3Client
	bucket string
}

// NewConfigurator creates a Configurator for the given bucket
func NewConfigurator(client aws.S3Client, bucket string) *Configurator {
	return &Configurator{client: client, bucket: bucket}
}

// Configure enables website hosting with the given index and error documents.
// An empty errorDoc leaves the error document unset.
func (c *Configurator) Configure(ctx context.Context, indexDoc, errorDoc string) error {
	cfg := &types.WebsiteConfiguration{
		IndexDocument: &types.IndexDocument{Suffix: &indexDoc},
	}
	if errorDoc != "" {
		cfg.ErrorDocument = &types.ErrorDocument{Key: &errorDoc}
	}

	_, err := c.client.PutBucketWebsite(ctx, &s3.PutBucketWebsiteInput{
		Bucket:               &c.bucket,
		WebsiteConfiguration: cfg,
	})
	if err != nil {
		return fmt.Errorf("failed to configure website hosting on %s: %w", c.bucket, err)
	}
	return nil
}

// policyDocument is the shape of an S3 bucket policy.
type policyDocument struct {
	Version   string            `json:"Version"`
	Statement []policyStatement `json:"Statement"`
}

type policyStatement struct {
	Sid       string `json:"Sid"`
	Effect    string `json:"Effect"`
	Principal string `json:"Principal"`
	Action    string `json:"Action"`
	Resource  string `json:"Resource"`
}

// PublicReadPolicy renders the canonical public-read policy for a bucket.
func PublicReadPolicy(bucket string) (string, error) {
	doc := policyDocument{
		Version: "2012-10-17",
		Statement: []policyStatement{
			{
				Sid:       "PublicReadGetObject",
				Effect:    "Allow",
				Principal: "*",
				Action:    "s3:GetObject",
				Resource:  fmt.Sprintf("arn:aws:s3:::%s/*", bucket),
			},
		},
	}

	b, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("failed to encode bucket policy: %w", err)
	}
	return string(b), nil
}

// AllowPublicRead attaches the public-read policy to the bucket so website
// visitors can fetch objects anonymously.
func (c *Configurator) AllowPublicRead(ctx context.Context) error {
	policy, err := PublicReadPolicy(c.bucket)
	if err != nil {
		return err
	}

	_, err = c.client.PutBucketPolicy(ctx, &s3.PutBucketPolicyInput{
		Bucket: &c.bucket,
		Policy: &policy,
	})
	if err != nil {
		return fmt.Errorf("failed to set bucket policy on %s: %w", c.bucket, err)
	}
	return nil
}

// URL returns the website endpoint for the bucket in the given region.
func URL(bucket, region string) string {
	return fmt.Sprintf("http://%s.s3-website-%s.amazonaws.com", bucket, region)
}
