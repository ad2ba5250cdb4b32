// Package record persists a small JSON document describing each successful
// deploy so the next run can report what it is replacing. Records can live
// in S3 next to the site or on the local filesystem.
package record

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	json "github.com/goccy/go-json"

	"github.com/Shri19-web/staticwebsite/aws"
)

// Record describes one completed deploy.
type Record struct {
	DeployID      string    `json:"deployId"`      // UUID assigned at the start of the run
	Bucket        string    `json:"bucket"`        // Target bucket
	Commit        string    `json:"commit"`        // Source HEAD commit, empty outside a repository
	Branch        string    `json:"branch"`        // Source branch name
	FilesUploaded int64     `json:"filesUploaded"` // Objects written
	FilesSkipped  int64     `json:"filesSkipped"`  // Unchanged objects
	FilesDeleted  int64     `json:"filesDeleted"`  // Remote objects pruned
	BytesSent     int64     `json:"bytesSent"`     // Total bytes uploaded
	StartedAt     time.Time `json:"startedAt"`
	FinishedAt    time.Time `json:"finishedAt"`
}

// Store saves and loads deploy records. Load returns a zero Record when no
// record exists yet.
type Store interface {
	Load(ctx context.Context) (Record, error)
	Save(ctx context.Context, r Record) error
}

// NewStore builds a Store from a record URI: s3://bucket/key or
// file:///path. An empty URI yields an in-memory store, which makes the
// record stage a no-op that still exercises the same code path.
func NewStore(client aws.S3Client, uri string) (Store, error) {
	if uri == "" {
		return NewMemoryStore(), nil
	}

	u, err := url.Parse(uri)
	if err != nil {
		return nil, fmt.Errorf("invalid record URI: %w", err)
	}
	switch u.Scheme {
	case "s3":
		return NewS3Store(client, uri)
	case "file":
		return NewFileStore(uri)
	default:
		return nil, fmt.Errorf("unsupported record URI scheme: %s", u.Scheme)
	}
}

// S3Store keeps the deploy record as an S3 object.
type S3Store struct {
	client aws.S3Client
	bucket string
	key    string
}

// NewS3Store creates an S3Store from an s3:// URI.
func NewS3Store(client aws.S3Client, uri string) (*S3Store, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return nil, fmt.Errorf("invalid S3 URI: %w", err)
	}
	if u.Scheme != "s3" {
		return nil, fmt.Errorf("invalid S3 URI scheme: %s", u.Scheme)
	}

	return &S3Store{
		client: client,
		bucket: u.Host,
		key:    strings.TrimPrefix(u.Path, "/"),
	}, nil
}

// Location returns the bucket and key holding the record. The deploy
// pipeline uses it to keep the record out of the sync prune when it lives
// in the site bucket itself.
func (s *S3Store) Location() (bucket, key string) {
	return s.bucket, s.key
}

// Load fetches the previous deploy record. A missing object is not an
// error: the first deploy has nothing to load.
func (s *S3Store) Load(ctx context.Context) (Record, error) {
	resp, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: &s.bucket,
		Key:    &s.key,
	})
	if err != nil {
		var noSuchKey *types.NoSuchKey
		if errors.As(err, &noSuchKey) {
			return Record{}, nil
		}
		// Some S3-compatible stores return NotFound instead.
		var notFound *types.NotFound
		if errors.As(err, &notFound) {
			return Record{}, nil
		}
		return Record{}, fmt.Errorf("failed to get deploy record: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	var r Record
	if err := json.NewDecoder(resp.Body).Decode(&r); err != nil {
		return Record{}, fmt.Errorf("failed to decode deploy record: %w", err)
	}

	return r, nil
}

// Save writes the deploy record.
func (s *S3Store) Save(ctx context.Context, r Record) error {
	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("failed to encode deploy record: %w", err)
	}

	contentType := "application/json"
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      &s.bucket,
		Key:         &s.key,
		Body:        bytes.NewReader(data),
		ContentType: &contentType,
	})
	if err != nil {
		return fmt.Errorf("failed to save deploy record: %w", err)
	}

	return nil
}

// FileStore keeps the deploy record on the local filesystem.
type FileStore struct {
	path string
}

// NewFileStore creates a FileStore from a file:// URI. The path must be
// absolute and is cleaned before use.
func NewFileStore(uri string) (*FileStore, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return nil, fmt.Errorf("invalid file URI: %w", err)
	}
	if u.Scheme != "file" {
		return nil, fmt.Errorf("invalid file URI scheme: %s", u.Scheme)
	}

	cleanPath := filepath.Clean(u.Path)
	if !filepath.IsAbs(cleanPath) {
		return nil, fmt.Errorf("record path must be absolute: %s", cleanPath)
	}

	if err := os.MkdirAll(filepath.Dir(cleanPath), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	return &FileStore{path: cleanPath}, nil
}

// Load reads the record file, returning a zero Record when it is absent.
func (f *FileStore) Load(_ context.Context) (Record, error) {
	b, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return Record{}, nil
		}
		return Record{}, fmt.Errorf("failed to read deploy record: %w", err)
	}

	var r Record
	if err := json.Unmarshal(b, &r); err != nil {
		return Record{}, fmt.Errorf("failed to decode deploy record: %w", err)
	}
	return r, nil
}

// Save writes the record file.
func (f *FileStore) Save(_ context.Context, r Record) error {
	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("failed to encode deploy record: %w", err)
	}
	if err := os.WriteFile(f.path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write deploy record: %w", err)
	}
	return nil
}
