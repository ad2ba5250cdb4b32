// Package site prepares a static site for upload: it checks that the entry
// file exists, copies the source tree into a staging directory while
// filtering out VCS and build metadata, and runs a superficial HTML sanity
// check over the staged pages.
package site

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// DefaultExcludes are the path names never copied into staging. They cover
// VCS metadata, CI definitions, and repository documentation that has no
// business being served.
var DefaultExcludes = []string{
	".git",
	".github",
	".gitignore",
	"Jenkinsfile",
	"README.md",
	"node_modules",
}

// Validate checks that the entry file exists at the root of the source tree.
// A missing entry file aborts the deploy before anything is uploaded.
func Validate(sourceDir, index string) error {
	path := filepath.Join(sourceDir, index)
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("entry file %s not found in %s", index, sourceDir)
		}
		return fmt.Errorf("failed to stat entry file: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("entry file %s is a directory", path)
	}
	return nil
}

// Stage copies the source tree into destDir, skipping every path whose base
// name matches an exclude. Exclusion applies at any depth: an excluded
// directory is pruned with its entire subtree.
func Stage(sourceDir, destDir string, excludes []string) error {
	excluded := make(map[string]bool, len(DefaultExcludes)+len(excludes))
	for _, name := range DefaultExcludes {
		excluded[name] = true
	}
	for _, name := range excludes {
		excluded[name] = true
	}

	return filepath.WalkDir(sourceDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path == sourceDir {
			return nil
		}

		if excluded[d.Name()] {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		rel, err := filepath.Rel(sourceDir, path)
		if err != nil {
			return fmt.Errorf("failed to relativize %s: %w", path, err)
		}
		target := filepath.Join(destDir, rel)

		if d.IsDir() {
			return os.MkdirAll(target, 0o755)
		}
		if !d.Type().IsRegular() {
			// Symlinks and other special files are not uploadable content.
			return nil
		}

		return copyFile(path, target)
	})
}

func copyFile(src, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", dst, err)
	}

	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", src, err)
	}
	defer func() { _ = in.Close() }()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", dst, err)
	}

	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return fmt.Errorf("failed to copy %s: %w", src, err)
	}
	return out.Close()
}
