package mock

import (
	"context"
	"fmt"
	"sync"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudfront"
	"github.com/aws/aws-sdk-go-v2/service/cloudfront/types"
)

// Invalidation records one CreateInvalidation call.
type Invalidation struct {
	DistributionID  string
	CallerReference string
	Paths           []string
}

// CloudFrontClient is an in-memory implementation of the aws.CloudFrontClient
// interface that records every invalidation request.
type CloudFrontClient struct {
	mu            sync.Mutex
	Invalidations []Invalidation

	// Err, when set, is returned by every CreateInvalidation call.
	Err error
}

// NewCloudFrontClient creates an empty mock CloudFront client
func NewCloudFrontClient() *CloudFrontClient {
	return &CloudFrontClient{}
}

// CreateInvalidation records the request and returns a synthetic id.
func (m *CloudFrontClient) CreateInvalidation(_ context.Context, params *cloudfront.CreateInvalidationInput, _ ...func(*cloudfront.Options)) (*cloudfront.CreateInvalidationOutput, error) {
	if m.Err != nil {
		return nil, m.Err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	inv := Invalidation{
		DistributionID:  awssdk.ToString(params.DistributionId),
		CallerReference: awssdk.ToString(params.InvalidationBatch.CallerReference),
		Paths:           params.InvalidationBatch.Paths.Items,
	}
	m.Invalidations = append(m.Invalidations, inv)

	id := fmt.Sprintf("I%04d", len(m.Invalidations))
	return &cloudfront.CreateInvalidationOutput{
		Invalidation: &types.Invalidation{
			Id:     awssdk.String(id),
			Status: awssdk.String("InProgress"),
		},
	}, nil
}
