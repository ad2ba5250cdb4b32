// Package cdn issues CloudFront cache invalidations after a deploy.
package cdn

import (
	"context"
	"fmt"
	"time"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudfront"
	"github.com/aws/aws-sdk-go-v2/service/cloudfront/types"
	"github.com/google/uuid"

	"github.com/Shri19-web/staticwebsite/aws"
)

// ShouldInvalidate reports whether the invalidation stage runs: the flag
// must be enabled and a distribution id must be present. An enabled flag
// with no distribution id skips the stage rather than failing the deploy.
func ShouldInvalidate(enabled bool, distributionID string) bool {
	return enabled && distributionID != ""
}

// Invalidator creates invalidations against one CloudFront distribution.
type Invalidator struct {
	client aws.CloudFrontClient
}

// NewInvalidator creates a new Invalidator
func NewInvalidator(client aws.CloudFrontClient) *Invalidator {
	return &Invalidator{client: client}
}

// InvalidateAll requests invalidation of every path on the distribution.
// The caller reference is a fresh UUID so repeated deploys never collide.
// Returns the invalidation id assigned by CloudFront.
func (i *Invalidator) InvalidateAll(ctx context.Context, distributionID string) (string, error) {
	ref := fmt.Sprintf("site-deploy-%s-%s", time.Now().UTC().Format("20060102T150405Z"), uuid.NewString())

	out, err := i.client.CreateInvalidation(ctx, &cloudfront.CreateInvalidationInput{
		DistributionId: &distributionID,
		InvalidationBatch: &types.InvalidationBatch{
			CallerReference: &ref,
			Paths: &types.Paths{
				Quantity: awssdk.Int32(1),
				Items:    []string{"/*"},
			},
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to create invalidation for distribution %s: %w", distributionID, err)
	}

	id := ""
	if out.Invalidation != nil && out.Invalidation.Id != nil {
		id = *out.Invalidation.Id
	}
	return id, nil
}
