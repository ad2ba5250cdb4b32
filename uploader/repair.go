package uploader

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/Shri19-web/staticwebsite/plan"
)

// RepairContentTypes checks every page object in the bucket and rewrites the
// ones stored with a content type that does not match the classification.
// The rewrite is a server-side self-copy with replaced metadata, so the
// object body never travels back through the client. Returns the number of
// objects rewritten.
func (u *Uploader) RepairContentTypes(ctx context.Context, pages []plan.Object) (int, error) {
	repaired := 0

	for _, obj := range pages {
		head, err := u.client.HeadObject(ctx, &s3.HeadObjectInput{
			Bucket: &u.bucket,
			Key:    &obj.Key,
		})
		if err != nil {
			return repaired, fmt.Errorf("failed to head %s: %w", obj.Key, err)
		}

		stored := ""
		if head.ContentType != nil {
			stored = *head.ContentType
		}
		if sameMediaType(stored, obj.ContentType) {
			continue
		}

		copySource := url.PathEscape(u.bucket + "/" + obj.Key)
		_, err = u.client.CopyObject(ctx, &s3.CopyObjectInput{
			Bucket:            &u.bucket,
			Key:               &obj.Key,
			CopySource:        &copySource,
			ContentType:       &obj.ContentType,
			CacheControl:      &obj.CacheControl,
			MetadataDirective: types.MetadataDirectiveReplace,
		})
		if err != nil {
			return repaired, fmt.Errorf("failed to repair content type of %s: %w", obj.Key, err)
		}

		repaired++
		u.metrics.RecordRepaired()
		u.log.Info("repaired content type",
			"key", obj.Key,
			"from", stored,
			"to", obj.ContentType)
	}

	return repaired, nil
}

// sameMediaType compares content types ignoring parameters, so
// "text/html; charset=utf-8" matches "text/html".
func sameMediaType(a, b string) bool {
	return mediaType(a) == mediaType(b)
}

func mediaType(ct string) string {
	if i := strings.Index(ct, ";"); i >= 0 {
		ct = ct[:i]
	}
	return strings.ToLower(strings.TrimSpace(ct))
}
