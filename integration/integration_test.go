package integration

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Shri19-web/staticwebsite/config"
	"github.com/Shri19-web/staticwebsite/deploy"
	"github.com/Shri19-web/staticwebsite/integration/mock"
	"github.com/Shri19-web/staticwebsite/notify"
	"github.com/Shri19-web/staticwebsite/plan"
	"github.com/Shri19-web/staticwebsite/record"
)

const testBucket = "my-site-bucket"

// newSite writes a small but realistic site tree including files that must
// never reach the bucket.
func newSite(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"index.html":     "<!DOCTYPE html><html><body>home</body></html>",
		"about.html":     "<!DOCTYPE html><html><body>about</body></html>",
		"css/style.css":  "body { margin: 0 }",
		"js/app.js":      "console.log('hi')",
		"img/logo.png":   "not-really-a-png",
		"sitemap.xml":    "<?xml version=\"1.0\"?><urlset></urlset>",
		".git/HEAD":      "ref: refs/heads/main",
		"Jenkinsfile":    "pipeline {}",
		"README.md":      "# my site",
		".gitignore":     "dist/",
		".github/ci.yml": "jobs: []",
	}
	for rel, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func testConfig(sourceDir string) *config.Config {
	return &config.Config{
		Bucket:        testBucket,
		Region:        "us-east-1",
		SourceDir:     sourceDir,
		IndexDocument: "index.html",
		ErrorDocument: "404.html",
		Workers:       4,
		Delete:        true,
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func runDeploy(t *testing.T, cfg *config.Config, s3 *mock.S3Client, cf *mock.CloudFrontClient, store record.Store, notifier *notify.Slack) error {
	t.Helper()
	if store == nil {
		store = record.NewMemoryStore()
	}
	if notifier == nil {
		notifier = notify.NewSlack("")
	}
	d := deploy.New(cfg, s3, cf, store, notifier, discardLogger())
	return d.Run(context.Background())
}

func TestDeployUploadsSite(t *testing.T) {
	cfg := testConfig(newSite(t))
	s3 := mock.NewS3Client()

	if err := runDeploy(t, cfg, s3, mock.NewCloudFrontClient(), nil, nil); err != nil {
		t.Fatalf("deploy failed: %v", err)
	}

	wantKeys := []string{"about.html", "css/style.css", "img/logo.png", "index.html", "js/app.js", "sitemap.xml"}
	gotKeys := s3.Keys(testBucket)
	if len(gotKeys) != len(wantKeys) {
		t.Fatalf("bucket keys mismatch:\n got %v\nwant %v", gotKeys, wantKeys)
	}
	for i, key := range wantKeys {
		if gotKeys[i] != key {
			t.Errorf("key %d: got %s, want %s", i, gotKeys[i], key)
		}
	}
}

func TestDeployExcludesMetadata(t *testing.T) {
	cfg := testConfig(newSite(t))
	s3 := mock.NewS3Client()

	if err := runDeploy(t, cfg, s3, mock.NewCloudFrontClient(), nil, nil); err != nil {
		t.Fatalf("deploy failed: %v", err)
	}

	for _, key := range s3.Keys(testBucket) {
		if strings.HasPrefix(key, ".git") || key == "Jenkinsfile" || key == "README.md" {
			t.Errorf("excluded file reached the bucket: %s", key)
		}
	}
}

func TestDeployFailsWithoutIndex(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "about.html"), []byte("<html></html>"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg := testConfig(dir)
	s3 := mock.NewS3Client()

	err := runDeploy(t, cfg, s3, mock.NewCloudFrontClient(), nil, nil)
	if err == nil {
		t.Fatal("expected deploy to fail without index.html")
	}
	if len(s3.Keys(testBucket)) != 0 {
		t.Error("expected nothing uploaded after a failed validation")
	}
}

func TestDeployCacheHeaders(t *testing.T) {
	cfg := testConfig(newSite(t))
	s3 := mock.NewS3Client()

	if err := runDeploy(t, cfg, s3, mock.NewCloudFrontClient(), nil, nil); err != nil {
		t.Fatalf("deploy failed: %v", err)
	}

	testCases := []struct {
		key          string
		cacheControl string
	}{
		{"index.html", plan.CacheNone},
		{"about.html", plan.CacheNone},
		{"sitemap.xml", plan.CacheNone},
		{"css/style.css", plan.CacheForever},
		{"js/app.js", plan.CacheForever},
		{"img/logo.png", plan.CacheForever},
	}
	for _, tc := range testCases {
		t.Run(tc.key, func(t *testing.T) {
			_, _, cacheControl, ok := s3.Object(testBucket, tc.key)
			if !ok {
				t.Fatalf("missing object %s", tc.key)
			}
			if cacheControl != tc.cacheControl {
				t.Errorf("cache control mismatch for %s: got %q, want %q", tc.key, cacheControl, tc.cacheControl)
			}
		})
	}
}

func TestDeployPrunesStrays(t *testing.T) {
	cfg := testConfig(newSite(t))
	s3 := mock.NewS3Client()
	s3.Put(testBucket, "stale/gone.html", []byte("old page"), "text/html", "")

	if err := runDeploy(t, cfg, s3, mock.NewCloudFrontClient(), nil, nil); err != nil {
		t.Fatalf("deploy failed: %v", err)
	}

	if _, _, _, ok := s3.Object(testBucket, "stale/gone.html"); ok {
		t.Error("expected stray remote object to be pruned")
	}
}

func TestDeployKeepsStraysWithoutDelete(t *testing.T) {
	cfg := testConfig(newSite(t))
	cfg.Delete = false
	s3 := mock.NewS3Client()
	s3.Put(testBucket, "stale/gone.html", []byte("old page"), "text/html", "")

	if err := runDeploy(t, cfg, s3, mock.NewCloudFrontClient(), nil, nil); err != nil {
		t.Fatalf("deploy failed: %v", err)
	}

	if _, _, _, ok := s3.Object(testBucket, "stale/gone.html"); !ok {
		t.Error("expected stray remote object to survive with delete disabled")
	}
}

func TestDeployConfiguresWebsite(t *testing.T) {
	cfg := testConfig(newSite(t))
	s3 := mock.NewS3Client()

	if err := runDeploy(t, cfg, s3, mock.NewCloudFrontClient(), nil, nil); err != nil {
		t.Fatalf("deploy failed: %v", err)
	}

	wcfg := s3.WebsiteConfigs[testBucket]
	if wcfg == nil {
		t.Fatal("expected website configuration")
	}
	if *wcfg.IndexDocument.Suffix != "index.html" {
		t.Errorf("index document mismatch: %s", *wcfg.IndexDocument.Suffix)
	}
	if *wcfg.ErrorDocument.Key != "404.html" {
		t.Errorf("error document mismatch: %s", *wcfg.ErrorDocument.Key)
	}

	policy := s3.Policies[testBucket]
	if !strings.Contains(policy, "arn:aws:s3:::"+testBucket+"/*") {
		t.Errorf("expected public-read policy, got %s", policy)
	}
}

func TestDeploySkipWebsite(t *testing.T) {
	cfg := testConfig(newSite(t))
	cfg.SkipWebsite = true
	s3 := mock.NewS3Client()

	if err := runDeploy(t, cfg, s3, mock.NewCloudFrontClient(), nil, nil); err != nil {
		t.Fatalf("deploy failed: %v", err)
	}

	if len(s3.WebsiteConfigs) != 0 || len(s3.Policies) != 0 {
		t.Error("expected bucket website config and policy to be untouched")
	}
}

func TestDeployInvalidation(t *testing.T) {
	testCases := []struct {
		name           string
		invalidate     bool
		distributionID string
		wantCalls      int
	}{
		{"enabled with id", true, "E2ABCDEF123456", 1},
		{"enabled without id", true, "", 0},
		{"disabled with id", false, "E2ABCDEF123456", 0},
		{"disabled without id", false, "", 0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := testConfig(newSite(t))
			cfg.Invalidate = tc.invalidate
			cfg.DistributionID = tc.distributionID
			cf := mock.NewCloudFrontClient()

			if err := runDeploy(t, cfg, mock.NewS3Client(), cf, nil, nil); err != nil {
				t.Fatalf("deploy failed: %v", err)
			}

			if len(cf.Invalidations) != tc.wantCalls {
				t.Errorf("expected %d invalidations, got %d", tc.wantCalls, len(cf.Invalidations))
			}
		})
	}
}

func TestDeploySecondRunSkipsUnchanged(t *testing.T) {
	src := newSite(t)
	cfg := testConfig(src)
	s3 := mock.NewS3Client()
	cf := mock.NewCloudFrontClient()

	if err := runDeploy(t, cfg, s3, cf, nil, nil); err != nil {
		t.Fatalf("first deploy failed: %v", err)
	}

	// Change one file, redeploy, and check only that file was rewritten.
	if err := os.WriteFile(filepath.Join(src, "about.html"),
		[]byte("<!DOCTYPE html><html><body>about v2</body></html>"), 0o644); err != nil {
		t.Fatal(err)
	}

	store := record.NewMemoryStore()
	notifier := notify.NewSlack("")
	d := deploy.New(testConfig(src), s3, cf, store, notifier, discardLogger())
	if err := d.Run(context.Background()); err != nil {
		t.Fatalf("second deploy failed: %v", err)
	}

	data, _, _, ok := s3.Object(testBucket, "about.html")
	if !ok || !strings.Contains(string(data), "about v2") {
		t.Error("expected about.html to be re-uploaded with new content")
	}
}

func TestDeploySavesRecordInBucket(t *testing.T) {
	cfg := testConfig(newSite(t))
	cfg.RecordURI = "s3://" + testBucket + "/.deploy/record.json"
	s3 := mock.NewS3Client()

	store, err := record.NewStore(s3, cfg.RecordURI)
	if err != nil {
		t.Fatal(err)
	}

	if err := runDeploy(t, cfg, s3, mock.NewCloudFrontClient(), store, nil); err != nil {
		t.Fatalf("deploy failed: %v", err)
	}

	rec, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("failed to load record: %v", err)
	}
	if rec.DeployID == "" {
		t.Error("expected a saved deploy record")
	}
	if rec.Bucket != testBucket {
		t.Errorf("record bucket mismatch: %s", rec.Bucket)
	}
	if rec.FilesUploaded == 0 {
		t.Error("expected non-zero upload count in record")
	}

	// A second deploy must not prune the record as a stray.
	if err := runDeploy(t, cfg, s3, mock.NewCloudFrontClient(), store, nil); err != nil {
		t.Fatalf("second deploy failed: %v", err)
	}
	if _, _, _, ok := s3.Object(testBucket, ".deploy/record.json"); !ok {
		t.Error("expected deploy record to survive the sync prune")
	}
}

func TestDeployDryRun(t *testing.T) {
	cfg := testConfig(newSite(t))
	cfg.DryRun = true
	s3 := mock.NewS3Client()

	if err := runDeploy(t, cfg, s3, mock.NewCloudFrontClient(), nil, nil); err != nil {
		t.Fatalf("dry run failed: %v", err)
	}

	if len(s3.Keys(testBucket)) != 0 {
		t.Error("expected dry run to upload nothing")
	}
	if len(s3.WebsiteConfigs) != 0 {
		t.Error("expected dry run to leave website config untouched")
	}
}

func TestDeployDryRunMakesNoCalls(t *testing.T) {
	cfg := testConfig(newSite(t))
	cfg.DryRun = true
	cfg.RecordURI = "s3://" + testBucket + "/.deploy/record.json"
	s3 := mock.NewS3Client()

	store, err := record.NewStore(s3, cfg.RecordURI)
	if err != nil {
		t.Fatal(err)
	}

	if err := runDeploy(t, cfg, s3, mock.NewCloudFrontClient(), store, nil); err != nil {
		t.Fatalf("dry run failed: %v", err)
	}

	// Even the previous-record lookup must stay local on a dry run.
	if s3.Gets != 0 {
		t.Errorf("expected no GetObject calls during dry run, got %d", s3.Gets)
	}
	if len(s3.Keys(testBucket)) != 0 {
		t.Error("expected dry run to write nothing")
	}
}

func TestDeployNotifiesOnSuccess(t *testing.T) {
	var posted string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		posted = string(body)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	cfg := testConfig(newSite(t))
	notifier := notify.NewSlack(srv.URL)

	if err := runDeploy(t, cfg, mock.NewS3Client(), mock.NewCloudFrontClient(), nil, notifier); err != nil {
		t.Fatalf("deploy failed: %v", err)
	}

	if !strings.Contains(posted, "Deployed "+testBucket) {
		t.Errorf("unexpected notification payload: %s", posted)
	}
}

func TestDeployNotifiesOnFailure(t *testing.T) {
	var posted string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		posted = string(body)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	cfg := testConfig(t.TempDir()) // no index.html
	notifier := notify.NewSlack(srv.URL)

	err := runDeploy(t, cfg, mock.NewS3Client(), mock.NewCloudFrontClient(), nil, notifier)
	if err == nil {
		t.Fatal("expected deploy to fail")
	}
	if !strings.Contains(posted, "failed") {
		t.Errorf("expected failure notification, got: %s", posted)
	}
}
