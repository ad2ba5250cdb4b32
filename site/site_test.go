package site

import (
	"os"
	"path/filepath"
	"testing"
)

// writeTree creates files under root from a map of relative path to content.
func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("failed to create directory: %v", err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("failed to write %s: %v", rel, err)
		}
	}
}

func TestValidatePresent(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, map[string]string{"index.html": "<!DOCTYPE html><html></html>"})

	if err := Validate(dir, "index.html"); err != nil {
		t.Errorf("expected validation to pass, got: %v", err)
	}
}

func TestValidateMissing(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, map[string]string{"about.html": "<!DOCTYPE html><html></html>"})

	if err := Validate(dir, "index.html"); err == nil {
		t.Error("expected error for missing entry file")
	}
}

func TestValidateEntryIsDirectory(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "index.html"), 0o755); err != nil {
		t.Fatal(err)
	}

	if err := Validate(dir, "index.html"); err == nil {
		t.Error("expected error when entry file is a directory")
	}
}

func TestStageCopiesTree(t *testing.T) {
	src := t.TempDir()
	dst := t.TempDir()
	writeTree(t, src, map[string]string{
		"index.html":     "<!DOCTYPE html><html></html>",
		"css/style.css":  "body{}",
		"img/logo.png":   "png-bytes",
		"blog/post.html": "<!DOCTYPE html><html></html>",
	})

	if err := Stage(src, dst, nil); err != nil {
		t.Fatalf("failed to stage: %v", err)
	}

	for _, rel := range []string{"index.html", "css/style.css", "img/logo.png", "blog/post.html"} {
		if _, err := os.Stat(filepath.Join(dst, filepath.FromSlash(rel))); err != nil {
			t.Errorf("expected %s in staging, got: %v", rel, err)
		}
	}
}

func TestStageExcludesDefaults(t *testing.T) {
	src := t.TempDir()
	dst := t.TempDir()
	writeTree(t, src, map[string]string{
		"index.html":       "<!DOCTYPE html><html></html>",
		".git/HEAD":        "ref: refs/heads/main",
		".github/ci.yml":   "jobs: []",
		".gitignore":       "dist/",
		"Jenkinsfile":      "pipeline {}",
		"README.md":        "# site",
		"node_modules/a/x": "junk",
	})

	if err := Stage(src, dst, nil); err != nil {
		t.Fatalf("failed to stage: %v", err)
	}

	if _, err := os.Stat(filepath.Join(dst, "index.html")); err != nil {
		t.Errorf("expected index.html in staging: %v", err)
	}
	for _, rel := range []string{".git", ".github", ".gitignore", "Jenkinsfile", "README.md", "node_modules"} {
		if _, err := os.Stat(filepath.Join(dst, rel)); !os.IsNotExist(err) {
			t.Errorf("expected %s to be excluded from staging", rel)
		}
	}
}

func TestStageExcludesCustom(t *testing.T) {
	src := t.TempDir()
	dst := t.TempDir()
	writeTree(t, src, map[string]string{
		"index.html":       "<!DOCTYPE html><html></html>",
		"drafts/wip.html":  "<html>",
		"deep/drafts/x.md": "wip",
	})

	if err := Stage(src, dst, []string{"drafts"}); err != nil {
		t.Fatalf("failed to stage: %v", err)
	}

	if _, err := os.Stat(filepath.Join(dst, "drafts")); !os.IsNotExist(err) {
		t.Error("expected drafts to be excluded")
	}
	// Exclusion applies at any depth.
	if _, err := os.Stat(filepath.Join(dst, "deep", "drafts")); !os.IsNotExist(err) {
		t.Error("expected nested drafts to be excluded")
	}
}

func TestStagePreservesContent(t *testing.T) {
	src := t.TempDir()
	dst := t.TempDir()
	writeTree(t, src, map[string]string{"index.html": "<!DOCTYPE html><html><body>hello</body></html>"})

	if err := Stage(src, dst, nil); err != nil {
		t.Fatalf("failed to stage: %v", err)
	}

	b, err := os.ReadFile(filepath.Join(dst, "index.html"))
	if err != nil {
		t.Fatalf("failed to read staged file: %v", err)
	}
	if string(b) != "<!DOCTYPE html><html><body>hello</body></html>" {
		t.Errorf("staged content mismatch: %q", b)
	}
}
