package plan

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/Shri19-web/staticwebsite/aws"
)

// RemoteObjects lists the bucket and returns a map of object key to bare
// ETag (surrounding quotes stripped). Pagination follows the continuation
// token until the listing is exhausted.
func RemoteObjects(ctx context.Context, client aws.S3Client, bucket string) (map[string]string, error) {
	remote := make(map[string]string)

	var continuation *string
	for {
		out, err := client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
			Bucket:            &bucket,
			ContinuationToken: continuation,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to list bucket %s: %w", bucket, err)
		}

		for _, obj := range out.Contents {
			if obj.Key == nil {
				continue
			}
			etag := ""
			if obj.ETag != nil {
				etag = strings.Trim(*obj.ETag, "\"")
			}
			remote[*obj.Key] = etag
		}

		if out.IsTruncated == nil || !*out.IsTruncated {
			break
		}
		continuation = out.NextContinuationToken
	}

	return remote, nil
}

// sortUploads orders uploads assets-first, then by key for deterministic runs.
func sortUploads(objects []Object) {
	sort.Slice(objects, func(i, j int) bool {
		if objects[i].Pass != objects[j].Pass {
			return objects[i].Pass < objects[j].Pass
		}
		return objects[i].Key < objects[j].Key
	})
}

func sortKeys(keys []string) {
	sort.Strings(keys)
}
