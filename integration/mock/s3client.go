// Package mock provides in-memory implementations of the AWS client
// interfaces for testing the deploy pipeline without network access.
package mock

import (
	"bytes"
	"context"
	"crypto/md5"
	"fmt"
	"io"
	"net/url"
	"sort"
	"strings"
	"sync"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// object is one stored mock object.
type object struct {
	data         []byte
	contentType  string
	cacheControl string
}

// S3Client is an in-memory implementation of the aws.S3Client interface.
// Objects are keyed by "bucket/key". All methods are safe for concurrent
// use; the uploader hits the mock from several workers at once.
type S3Client struct {
	mu      sync.Mutex
	objects map[string]*object

	// WebsiteConfigs records PutBucketWebsite calls by bucket.
	WebsiteConfigs map[string]*types.WebsiteConfiguration
	// Policies records PutBucketPolicy calls by bucket.
	Policies map[string]string

	// PutErr, when set, is returned by every PutObject call.
	PutErr error

	// Gets counts GetObject calls.
	Gets int
}

// NewS3Client creates an empty mock S3 client
func NewS3Client() *S3Client {
	return &S3Client{
		objects:        make(map[string]*object),
		WebsiteConfigs: make(map[string]*types.WebsiteConfiguration),
		Policies:       make(map[string]string),
	}
}

// Put seeds an object directly, bypassing the API surface.
func (m *S3Client) Put(bucket, key string, data []byte, contentType, cacheControl string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[bucket+"/"+key] = &object{
		data:         append([]byte(nil), data...),
		contentType:  contentType,
		cacheControl: cacheControl,
	}
}

// Object returns a stored object's content, content type, and cache control.
func (m *S3Client) Object(bucket, key string) (data []byte, contentType, cacheControl string, ok bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	obj, ok := m.objects[bucket+"/"+key]
	if !ok {
		return nil, "", "", false
	}
	return obj.data, obj.contentType, obj.cacheControl, true
}

// Keys returns the sorted keys stored in the bucket.
func (m *S3Client) Keys(bucket string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var keys []string
	prefix := bucket + "/"
	for k := range m.objects {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, strings.TrimPrefix(k, prefix))
		}
	}
	sort.Strings(keys)
	return keys
}

func etagOf(data []byte) string {
	return fmt.Sprintf("\"%x\"", md5.Sum(data))
}

// PutObject stores the object body and metadata.
func (m *S3Client) PutObject(_ context.Context, params *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if m.PutErr != nil {
		return nil, m.PutErr
	}

	data, err := io.ReadAll(params.Body)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[*params.Bucket+"/"+*params.Key] = &object{
		data:         data,
		contentType:  awssdk.ToString(params.ContentType),
		cacheControl: awssdk.ToString(params.CacheControl),
	}

	return &s3.PutObjectOutput{ETag: awssdk.String(etagOf(data))}, nil
}

// GetObject returns the object body, or a NoSuchKey error.
func (m *S3Client) GetObject(_ context.Context, params *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Gets++

	obj, ok := m.objects[*params.Bucket+"/"+*params.Key]
	if !ok {
		return nil, &types.NoSuchKey{}
	}

	return &s3.GetObjectOutput{
		Body:        io.NopCloser(bytes.NewReader(obj.data)),
		ContentType: awssdk.String(obj.contentType),
		ETag:        awssdk.String(etagOf(obj.data)),
	}, nil
}

// HeadObject returns object metadata, or a NotFound error.
func (m *S3Client) HeadObject(_ context.Context, params *s3.HeadObjectInput, _ ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	obj, ok := m.objects[*params.Bucket+"/"+*params.Key]
	if !ok {
		return nil, &types.NotFound{}
	}

	return &s3.HeadObjectOutput{
		ContentType:   awssdk.String(obj.contentType),
		CacheControl:  awssdk.String(obj.cacheControl),
		ContentLength: awssdk.Int64(int64(len(obj.data))),
		ETag:          awssdk.String(etagOf(obj.data)),
	}, nil
}

// CopyObject performs a server-side copy. With MetadataDirective REPLACE the
// copy takes the content type and cache control from the request.
func (m *S3Client) CopyObject(_ context.Context, params *s3.CopyObjectInput, _ ...func(*s3.Options)) (*s3.CopyObjectOutput, error) {
	source, err := url.PathUnescape(awssdk.ToString(params.CopySource))
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	src, ok := m.objects[source]
	if !ok {
		return nil, &types.NoSuchKey{}
	}

	dst := &object{
		data:         append([]byte(nil), src.data...),
		contentType:  src.contentType,
		cacheControl: src.cacheControl,
	}
	if params.MetadataDirective == types.MetadataDirectiveReplace {
		dst.contentType = awssdk.ToString(params.ContentType)
		dst.cacheControl = awssdk.ToString(params.CacheControl)
	}
	m.objects[*params.Bucket+"/"+*params.Key] = dst

	return &s3.CopyObjectOutput{}, nil
}

// ListObjectsV2 lists the bucket in one page.
func (m *S3Client) ListObjectsV2(_ context.Context, params *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	prefix := *params.Bucket + "/"
	var keys []string
	for k := range m.objects {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, strings.TrimPrefix(k, prefix))
		}
	}
	sort.Strings(keys)

	contents := make([]types.Object, 0, len(keys))
	for _, key := range keys {
		obj := m.objects[prefix+key]
		contents = append(contents, types.Object{
			Key:  awssdk.String(key),
			ETag: awssdk.String(etagOf(obj.data)),
			Size: awssdk.Int64(int64(len(obj.data))),
		})
	}

	return &s3.ListObjectsV2Output{
		Contents:    contents,
		IsTruncated: awssdk.Bool(false),
		KeyCount:    awssdk.Int32(int32(len(contents))),
	}, nil
}

// DeleteObjects removes the requested keys. Missing keys are ignored, as S3
// does.
func (m *S3Client) DeleteObjects(_ context.Context, params *s3.DeleteObjectsInput, _ ...func(*s3.Options)) (*s3.DeleteObjectsOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, id := range params.Delete.Objects {
		delete(m.objects, *params.Bucket+"/"+awssdk.ToString(id.Key))
	}
	return &s3.DeleteObjectsOutput{}, nil
}

// PutBucketWebsite records the website configuration.
func (m *S3Client) PutBucketWebsite(_ context.Context, params *s3.PutBucketWebsiteInput, _ ...func(*s3.Options)) (*s3.PutBucketWebsiteOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.WebsiteConfigs[*params.Bucket] = params.WebsiteConfiguration
	return &s3.PutBucketWebsiteOutput{}, nil
}

// PutBucketPolicy records the bucket policy.
func (m *S3Client) PutBucketPolicy(_ context.Context, params *s3.PutBucketPolicyInput, _ ...func(*s3.Options)) (*s3.PutBucketPolicyOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Policies[*params.Bucket] = awssdk.ToString(params.Policy)
	return &s3.PutBucketPolicyOutput{}, nil
}
