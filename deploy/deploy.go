// Package deploy orchestrates the pipeline: validate the entry file, stage
// the site, lint the pages, sync to S3 in two passes, repair content types,
// configure website hosting, invalidate the CDN, persist the deploy record,
// and notify. The first stage error aborts the run; the failure
// notification still fires.
package deploy

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/google/uuid"

	"github.com/Shri19-web/staticwebsite/aws"
	"github.com/Shri19-web/staticwebsite/cdn"
	"github.com/Shri19-web/staticwebsite/config"
	"github.com/Shri19-web/staticwebsite/gitrev"
	"github.com/Shri19-web/staticwebsite/metrics"
	"github.com/Shri19-web/staticwebsite/notify"
	"github.com/Shri19-web/staticwebsite/plan"
	"github.com/Shri19-web/staticwebsite/record"
	"github.com/Shri19-web/staticwebsite/site"
	"github.com/Shri19-web/staticwebsite/uploader"
	"github.com/Shri19-web/staticwebsite/website"
)

// Deployer runs the full deploy pipeline against one bucket.
type Deployer struct {
	cfg      *config.Config
	s3       aws.S3Client
	cf       aws.CloudFrontClient
	store    record.Store
	notifier *notify.Slack
	metrics  *metrics.Metrics
	log      *slog.Logger

	deployID  string
	startedAt time.Time
}

// New creates a Deployer with all dependencies. cf may be nil when
// invalidation is disabled.
func New(
	cfg *config.Config,
	s3Client aws.S3Client,
	cfClient aws.CloudFrontClient,
	store record.Store,
	notifier *notify.Slack,
	log *slog.Logger,
) *Deployer {
	return &Deployer{
		cfg:      cfg,
		s3:       s3Client,
		cf:       cfClient,
		store:    store,
		notifier: notifier,
		metrics:  metrics.NewMetrics(),
		log:      log,
	}
}

// Run executes the pipeline. It installs signal handling so an interrupt
// cancels in-flight uploads, and sends the outcome notification whether the
// run succeeded or failed.
func (d *Deployer) Run(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt)
	defer cancel()

	d.deployID = uuid.NewString()
	d.startedAt = time.Now()

	err := d.run(ctx)
	d.notifyOutcome(ctx, err)
	return err
}

func (d *Deployer) run(ctx context.Context) error {
	cfg := d.cfg
	log := d.log.With("deployId", d.deployID, "bucket", cfg.Bucket)

	rev, err := gitrev.Describe(cfg.SourceDir)
	if err != nil {
		log.Warn("could not resolve source revision", "error", err)
	}
	if rev.Commit != "" {
		log = log.With("commit", rev.Short())
	}

	// Stage 1: entry file must exist before anything else happens.
	if err := site.Validate(cfg.SourceDir, cfg.IndexDocument); err != nil {
		return err
	}
	log.Info("validated entry file", "index", cfg.IndexDocument)

	// Stage 2: copy into staging, minus VCS and build metadata.
	staging, err := os.MkdirTemp("", "site-deploy-*")
	if err != nil {
		return fmt.Errorf("failed to create staging directory: %w", err)
	}
	defer func() { _ = os.RemoveAll(staging) }()

	if err := site.Stage(cfg.SourceDir, staging, cfg.Excludes); err != nil {
		return fmt.Errorf("failed to stage site: %w", err)
	}
	log.Info("staged site", "dir", staging)

	// Stage 3: soft HTML checks. Warnings are logged, never fatal.
	warnings, err := site.Lint(staging)
	if err != nil {
		return fmt.Errorf("failed to lint staged site: %w", err)
	}
	for _, w := range warnings {
		d.metrics.RecordWarning()
		log.Warn("html check", "file", w.Path, "problem", w.Message)
	}

	// Stage 4: plan the sync.
	objects, err := plan.Build(staging)
	if err != nil {
		return fmt.Errorf("failed to build upload plan: %w", err)
	}

	if cfg.DryRun {
		return d.dryRun(log, objects)
	}

	// The record lookup is informational, but it may hit S3, so it stays
	// behind the dry-run gate.
	if prev, err := d.store.Load(ctx); err != nil {
		log.Warn("could not load previous deploy record", "error", err)
	} else if prev.DeployID != "" {
		log.Info("previous deploy",
			"deployId", prev.DeployID,
			"finishedAt", prev.FinishedAt,
			"commit", prev.Commit)
	}

	remote, err := plan.RemoteObjects(ctx, d.s3, cfg.Bucket)
	if err != nil {
		return err
	}
	// The deploy record may live in the site bucket; it must never be
	// pruned as a stray.
	if s3Store, ok := d.store.(*record.S3Store); ok {
		if bucket, key := s3Store.Location(); bucket == cfg.Bucket {
			delete(remote, key)
		}
	}

	p := plan.Diff(objects, remote)
	log.Info("planned sync",
		"uploads", len(p.Uploads),
		"unchanged", len(p.Skipped),
		"strays", len(p.Deletes))

	// Stage 5: two-pass upload, then prune strays.
	up := uploader.New(d.s3, cfg.Bucket, cfg.Workers, d.metrics, d.log)
	if err := up.Sync(ctx, p); err != nil {
		return err
	}
	if cfg.Delete && len(p.Deletes) > 0 {
		if err := up.Prune(ctx, p.Deletes); err != nil {
			return err
		}
	}

	// Stage 6: rewrite any page stored with a wrong content type.
	repaired, err := up.RepairContentTypes(ctx, plan.PagesOf(objects))
	if err != nil {
		return err
	}
	if repaired > 0 {
		log.Info("repaired content types", "count", repaired)
	}

	// Stage 7: website hosting and public-read policy.
	if !cfg.SkipWebsite {
		wc := website.NewConfigurator(d.s3, cfg.Bucket)
		if err := wc.Configure(ctx, cfg.IndexDocument, cfg.ErrorDocument); err != nil {
			return err
		}
		if err := wc.AllowPublicRead(ctx); err != nil {
			return err
		}
		log.Info("website hosting configured", "url", website.URL(cfg.Bucket, cfg.Region))
	}

	// Stage 8: invalidation runs only when enabled and a distribution id is
	// present; an enabled flag without an id skips the stage.
	if cdn.ShouldInvalidate(cfg.Invalidate, cfg.DistributionID) {
		inv := cdn.NewInvalidator(d.cf)
		id, err := inv.InvalidateAll(ctx, cfg.DistributionID)
		if err != nil {
			return err
		}
		log.Info("cache invalidation created", "distribution", cfg.DistributionID, "invalidationId", id)
	}

	// Stage 9: persist the deploy record.
	report := d.metrics.GenerateReport()
	rec := record.Record{
		DeployID:      d.deployID,
		Bucket:        cfg.Bucket,
		Commit:        rev.Commit,
		Branch:        rev.Branch,
		FilesUploaded: report.FilesUploaded,
		FilesSkipped:  report.FilesSkipped,
		FilesDeleted:  report.FilesDeleted,
		BytesSent:     report.BytesSent,
		StartedAt:     d.startedAt,
		FinishedAt:    time.Now(),
	}
	if err := d.store.Save(ctx, rec); err != nil {
		return fmt.Errorf("failed to save deploy record: %w", err)
	}

	fmt.Println(report)
	return nil
}

// dryRun prints what a real run would upload and stops before any AWS call.
func (d *Deployer) dryRun(log *slog.Logger, objects []plan.Object) error {
	log.Info("dry run, nothing will be uploaded", "files", len(objects))
	for _, obj := range objects {
		fmt.Printf("would upload %s (%s, %s)\n", obj.Key, obj.ContentType, obj.CacheControl)
	}
	return nil
}

// notifyOutcome posts the success or failure message. A cancelled run still
// notifies, on a detached context so the post is not itself cancelled.
func (d *Deployer) notifyOutcome(ctx context.Context, runErr error) {
	if !d.notifier.Enabled() {
		return
	}

	nctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 15*time.Second)
	defer cancel()

	var text string
	if runErr != nil {
		text = fmt.Sprintf("Deploy of %s failed: %v", d.cfg.Bucket, runErr)
	} else {
		report := d.metrics.GenerateReport()
		text = fmt.Sprintf("Deployed %s: %d uploaded, %d deleted, %d unchanged. %s",
			d.cfg.Bucket,
			report.FilesUploaded,
			report.FilesDeleted,
			report.FilesSkipped,
			website.URL(d.cfg.Bucket, d.cfg.Region))
	}

	if err := d.notifier.Post(nctx, text); err != nil {
		d.log.Warn("notification failed", "error", err)
	}
}
