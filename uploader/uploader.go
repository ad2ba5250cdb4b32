// Package uploader pushes the planned objects to S3 using a pool of workers.
// Uploads run in two passes (long-cache assets first, then no-cache pages),
// remote strays are pruned in batches, and a repair pass rewrites objects
// stored with a wrong content type.
package uploader

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/Shri19-web/staticwebsite/aws"
	"github.com/Shri19-web/staticwebsite/metrics"
	"github.com/Shri19-web/staticwebsite/plan"
)

// deleteBatchSize is the DeleteObjects API limit per request.
const deleteBatchSize = 1000

// Uploader writes planned objects to a bucket.
type Uploader struct {
	client  aws.S3Client
	bucket  string
	workers int
	metrics *metrics.Metrics
	log     *slog.Logger
}

// New creates an Uploader. workers must be at least 1.
func New(client aws.S3Client, bucket string, workers int, m *metrics.Metrics, log *slog.Logger) *Uploader {
	return &Uploader{
		client:  client,
		bucket:  bucket,
		workers: workers,
		metrics: m,
		log:     log,
	}
}

// Sync uploads the plan in two passes and records skips. The assets pass
// completes before the pages pass starts so no live page ever references an
// asset that is not yet in the bucket.
func (u *Uploader) Sync(ctx context.Context, p plan.Plan) error {
	var assets, pages []plan.Object
	for _, obj := range p.Uploads {
		if obj.Pass == plan.PassAssets {
			assets = append(assets, obj)
		} else {
			pages = append(pages, obj)
		}
	}

	if err := u.uploadAll(ctx, assets); err != nil {
		return fmt.Errorf("asset pass failed: %w", err)
	}
	if err := u.uploadAll(ctx, pages); err != nil {
		return fmt.Errorf("page pass failed: %w", err)
	}

	for range p.Skipped {
		u.metrics.RecordSkipped()
	}

	return nil
}

// uploadAll distributes the objects over the worker pool and collects the
// first errors from each worker.
func (u *Uploader) uploadAll(ctx context.Context, objects []plan.Object) error {
	if len(objects) == 0 {
		return nil
	}

	tasks := make(chan plan.Object)
	results := make(chan error, u.workers)
	var wg sync.WaitGroup

	for i := 0; i < u.workers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			if err := u.worker(ctx, tasks); err != nil {
				results <- fmt.Errorf("worker %d failed: %w", workerID, err)
			}
		}(i)
	}

	send := func() error {
		defer close(tasks)
		for _, obj := range objects {
			select {
			case tasks <- obj:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		return nil
	}
	sendErr := send()

	wg.Wait()
	close(results)

	var errs []error
	for err := range results {
		errs = append(errs, err)
	}
	if sendErr != nil {
		return sendErr
	}
	if len(errs) > 0 {
		return fmt.Errorf("some uploads failed: %v", errs)
	}
	return nil
}

// worker drains the task channel, uploading one object at a time. After the
// first upload error it stops uploading but keeps draining, so the sender
// never blocks on a pool where every worker has failed.
func (u *Uploader) worker(ctx context.Context, tasks <-chan plan.Object) error {
	var firstErr error
	for obj := range tasks {
		if firstErr != nil {
			continue
		}
		if err := u.upload(ctx, obj); err != nil {
			firstErr = fmt.Errorf("failed to upload %s: %w", obj.Key, err)
		}
	}
	return firstErr
}

func (u *Uploader) upload(ctx context.Context, obj plan.Object) error {
	f, err := os.Open(obj.Path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", obj.Path, err)
	}
	defer func() { _ = f.Close() }()

	start := time.Now()
	_, err = u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:       &u.bucket,
		Key:          &obj.Key,
		Body:         f,
		ContentType:  &obj.ContentType,
		CacheControl: &obj.CacheControl,
	})
	if err != nil {
		return err
	}
	u.metrics.RecordUploadTime(time.Since(start))
	u.metrics.RecordUploaded(obj.Size)

	u.log.Debug("uploaded",
		"key", obj.Key,
		"contentType", obj.ContentType,
		"cacheControl", obj.CacheControl,
		"size", obj.Size)
	return nil
}

// Prune deletes remote keys that have no local counterpart, in batches of
// up to 1000 keys per DeleteObjects call.
func (u *Uploader) Prune(ctx context.Context, keys []string) error {
	for start := 0; start < len(keys); start += deleteBatchSize {
		end := start + deleteBatchSize
		if end > len(keys) {
			end = len(keys)
		}

		batch := make([]types.ObjectIdentifier, 0, end-start)
		for _, key := range keys[start:end] {
			batch = append(batch, types.ObjectIdentifier{Key: awssdk.String(key)})
		}

		out, err := u.client.DeleteObjects(ctx, &s3.DeleteObjectsInput{
			Bucket: &u.bucket,
			Delete: &types.Delete{
				Objects: batch,
				Quiet:   awssdk.Bool(true),
			},
		})
		if err != nil {
			return fmt.Errorf("failed to delete remote objects: %w", err)
		}
		if len(out.Errors) > 0 {
			first := out.Errors[0]
			return fmt.Errorf("failed to delete %d remote objects, first: %s",
				len(out.Errors), awssdk.ToString(first.Message))
		}

		u.metrics.RecordDeleted(int64(end - start))
		for _, key := range keys[start:end] {
			u.log.Debug("deleted", "key", key)
		}
	}
	return nil
}
