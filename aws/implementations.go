// Package aws provides thin interfaces over the AWS service clients used by
// the deploy pipeline. This file contains the concrete implementations that
// delegate to the SDK clients.
package aws

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/cloudfront"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3ClientImpl implements S3Client by delegating to the AWS SDK S3 client.
type S3ClientImpl struct {
	client *s3.Client
}

// NewS3Client creates a new S3ClientImpl instance
func NewS3Client(client *s3.Client) *S3ClientImpl {
	return &S3ClientImpl{client: client}
}

// PutObject implements the S3Client interface for uploading objects
func (c *S3ClientImpl) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	return c.client.PutObject(ctx, params, optFns...)
}

// GetObject implements the S3Client interface for reading objects
func (c *S3ClientImpl) GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	return c.client.GetObject(ctx, params, optFns...)
}

// HeadObject implements the S3Client interface for retrieving object metadata
func (c *S3ClientImpl) HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
	return c.client.HeadObject(ctx, params, optFns...)
}

// CopyObject implements the S3Client interface for server-side copies
func (c *S3ClientImpl) CopyObject(ctx context.Context, params *s3.CopyObjectInput, optFns ...func(*s3.Options)) (*s3.CopyObjectOutput, error) {
	return c.client.CopyObject(ctx, params, optFns...)
}

// ListObjectsV2 implements the S3Client interface for listing bucket contents
func (c *S3ClientImpl) ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	return c.client.ListObjectsV2(ctx, params, optFns...)
}

// DeleteObjects implements the S3Client interface for batch deletions
func (c *S3ClientImpl) DeleteObjects(ctx context.Context, params *s3.DeleteObjectsInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectsOutput, error) {
	return c.client.DeleteObjects(ctx, params, optFns...)
}

// PutBucketWebsite implements the S3Client interface for website hosting configuration
func (c *S3ClientImpl) PutBucketWebsite(ctx context.Context, params *s3.PutBucketWebsiteInput, optFns ...func(*s3.Options)) (*s3.PutBucketWebsiteOutput, error) {
	return c.client.PutBucketWebsite(ctx, params, optFns...)
}

// PutBucketPolicy implements the S3Client interface for bucket policy assignment
func (c *S3ClientImpl) PutBucketPolicy(ctx context.Context, params *s3.PutBucketPolicyInput, optFns ...func(*s3.Options)) (*s3.PutBucketPolicyOutput, error) {
	return c.client.PutBucketPolicy(ctx, params, optFns...)
}

// CloudFrontClientImpl implements CloudFrontClient by delegating to the AWS SDK
// CloudFront client.
type CloudFrontClientImpl struct {
	client *cloudfront.Client
}

// NewCloudFrontClient creates a new CloudFrontClientImpl instance
func NewCloudFrontClient(client *cloudfront.Client) *CloudFrontClientImpl {
	return &CloudFrontClientImpl{client: client}
}

// CreateInvalidation implements the CloudFrontClient interface for cache invalidation
func (c *CloudFrontClientImpl) CreateInvalidation(ctx context.Context, params *cloudfront.CreateInvalidationInput, optFns ...func(*cloudfront.Options)) (*cloudfront.CreateInvalidationOutput, error) {
	return c.client.CreateInvalidation(ctx, params, optFns...)
}
