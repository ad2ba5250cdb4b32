// Package plan turns a staged site tree into an upload plan: every file gets
// an S3 key, a content type, a cache policy, and an upload pass, and the
// local tree is diffed against the remote bucket inventory so unchanged
// objects are skipped and remote strays can be pruned.
package plan

import (
	"crypto/md5"
	"fmt"
	"io"
	"io/fs"
	"mime"
	"os"
	"path/filepath"
	"strings"
)

// Pass orders uploads so that long-lived assets land before the pages that
// reference them. A page must never go live ahead of a fingerprinted asset
// it links to.
type Pass int

const (
	PassAssets Pass = iota // Long-cache assets: CSS, JS, images, fonts
	PassPages              // No-cache documents: HTML, XML, JSON
)

// Cache-Control values for the two passes. Assets are immutable for a year;
// documents are revalidated on every request so a deploy is visible
// immediately.
const (
	CacheForever = "public, max-age=31536000"
	CacheNone    = "no-cache, max-age=0"
)

// Object is one staged file scheduled for upload.
type Object struct {
	Key          string // S3 object key (slash-separated relative path)
	Path         string // Absolute path of the staged file
	ContentType  string
	CacheControl string
	Pass         Pass
	Size         int64
	MD5          string // Hex MD5 of the file content, compared against the remote ETag
}

// Plan is the result of diffing the staged tree against the bucket.
type Plan struct {
	Uploads []Object // Objects to upload, already sorted assets-first
	Deletes []string // Remote keys with no local counterpart
	Skipped []Object // Local files whose remote copy is already current
}

// noCacheExts are the extensions synced with a zero-cache header. Everything
// else gets the long-lived asset header.
var noCacheExts = map[string]bool{
	".html": true,
	".htm":  true,
	".xml":  true,
	".json": true,
}

// extraTypes pins the types for extensions the platform mime database
// misses or reports inconsistently across systems. Uploads must not change
// content type depending on which machine ran the deploy.
var extraTypes = map[string]string{
	".js":          "text/javascript",
	".xml":         "text/xml",
	".css":         "text/css",
	".svg":         "image/svg+xml",
	".wasm":        "application/wasm",
	".webmanifest": "application/manifest+json",
	".woff2":       "font/woff2",
	".ico":         "image/x-icon",
	".map":         "application/json",
}

// Classify returns the content type, cache policy, and upload pass for a key.
func Classify(key string) (contentType, cacheControl string, pass Pass) {
	ext := strings.ToLower(filepath.Ext(key))

	contentType = extraTypes[ext]
	if contentType == "" {
		contentType = mime.TypeByExtension(ext)
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	if noCacheExts[ext] {
		return contentType, CacheNone, PassPages
	}
	return contentType, CacheForever, PassAssets
}

// Build walks the staged tree and produces one Object per regular file.
func Build(dir string) ([]Object, error) {
	var objects []Object

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}

		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return fmt.Errorf("failed to relativize %s: %w", path, err)
		}
		key := filepath.ToSlash(rel)

		info, err := d.Info()
		if err != nil {
			return fmt.Errorf("failed to stat %s: %w", path, err)
		}

		sum, err := fileMD5(path)
		if err != nil {
			return err
		}

		contentType, cacheControl, pass := Classify(key)
		objects = append(objects, Object{
			Key:          key,
			Path:         path,
			ContentType:  contentType,
			CacheControl: cacheControl,
			Pass:         pass,
			Size:         info.Size(),
			MD5:          sum,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	return objects, nil
}

// Diff compares the staged objects against the remote inventory (key to
// bare ETag). Unchanged objects are skipped, remote keys without a local
// counterpart become deletions, and uploads come back assets-first.
func Diff(local []Object, remote map[string]string) Plan {
	var p Plan

	seen := make(map[string]bool, len(local))
	for _, obj := range local {
		seen[obj.Key] = true
		// A multipart-upload ETag contains a dash and never matches a plain
		// MD5, so such objects are always re-uploaded.
		if etag, ok := remote[obj.Key]; ok && etag == obj.MD5 {
			p.Skipped = append(p.Skipped, obj)
			continue
		}
		p.Uploads = append(p.Uploads, obj)
	}

	for key := range remote {
		if !seen[key] {
			p.Deletes = append(p.Deletes, key)
		}
	}
	sortUploads(p.Uploads)
	sortKeys(p.Deletes)

	return p
}

// PagesOf filters the objects down to the no-cache document pass.
func PagesOf(objects []Object) []Object {
	var pages []Object
	for _, obj := range objects {
		if obj.Pass == PassPages {
			pages = append(pages, obj)
		}
	}
	return pages
}

func fileMD5(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	h := md5.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("failed to hash %s: %w", path, err)
	}
	return fmt.Sprintf("%x", h.Sum(nil)), nil
}
