// Package metrics collects counters during a deploy and produces the final
// report printed at the end of the run and embedded in the deploy record.
package metrics

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	json "github.com/goccy/go-json"
)

// Metrics collects deploy counters. Counter updates use atomic operations so
// upload workers can record concurrently.
type Metrics struct {
	mu sync.RWMutex

	filesUploaded int64 // Objects written to S3
	filesSkipped  int64 // Local files whose remote copy was already current
	filesDeleted  int64 // Remote objects pruned
	filesRepaired int64 // Objects whose content type was rewritten
	warnings      int64 // Lint warnings emitted
	bytesSent     int64 // Total bytes uploaded

	uploadTime time.Duration // Cumulative time spent in PutObject calls
	startTime  time.Time     // When the deploy started
}

// NewMetrics creates a new Metrics instance with the start time set
func NewMetrics() *Metrics {
	return &Metrics{
		startTime: time.Now(),
	}
}

// RecordUploaded counts one uploaded object of the given size
func (m *Metrics) RecordUploaded(size int64) {
	atomic.AddInt64(&m.filesUploaded, 1)
	atomic.AddInt64(&m.bytesSent, size)
}

// RecordSkipped counts one unchanged object that was not re-uploaded
func (m *Metrics) RecordSkipped() {
	atomic.AddInt64(&m.filesSkipped, 1)
}

// RecordDeleted counts pruned remote objects
func (m *Metrics) RecordDeleted(n int64) {
	atomic.AddInt64(&m.filesDeleted, n)
}

// RecordRepaired counts one object whose content type was corrected
func (m *Metrics) RecordRepaired() {
	atomic.AddInt64(&m.filesRepaired, 1)
}

// RecordWarning counts one lint warning
func (m *Metrics) RecordWarning() {
	atomic.AddInt64(&m.warnings, 1)
}

// RecordUploadTime records the wall time of one upload call
func (m *Metrics) RecordUploadTime(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.uploadTime += d
}

// Report contains the final deploy metrics, ready for JSON output.
type Report struct {
	StartTime     time.Time     `json:"startTime"`     // When the deploy started
	EndTime       time.Time     `json:"endTime"`       // When the deploy completed
	FilesUploaded int64         `json:"filesUploaded"` // Objects written to S3
	FilesSkipped  int64         `json:"filesSkipped"`  // Unchanged objects left alone
	FilesDeleted  int64         `json:"filesDeleted"`  // Remote objects pruned
	FilesRepaired int64         `json:"filesRepaired"` // Content types corrected
	Warnings      int64         `json:"warnings"`      // Lint warnings
	BytesSent     int64         `json:"bytesSent"`     // Total bytes uploaded
	Duration      time.Duration `json:"duration"`      // Total duration of the deploy
	UploadTime    time.Duration `json:"uploadTime"`    // Cumulative time spent in PutObject calls
	Throughput    float64       `json:"throughput"`    // Bytes uploaded per second
}

// GenerateReport snapshots the counters into a Report.
func (m *Metrics) GenerateReport() Report {
	endTime := time.Now()
	duration := endTime.Sub(m.startTime)

	var throughput float64
	if duration > 0 {
		throughput = float64(atomic.LoadInt64(&m.bytesSent)) / duration.Seconds()
	}

	m.mu.RLock()
	uploadTime := m.uploadTime
	m.mu.RUnlock()

	return Report{
		StartTime:     m.startTime,
		EndTime:       endTime,
		FilesUploaded: atomic.LoadInt64(&m.filesUploaded),
		FilesSkipped:  atomic.LoadInt64(&m.filesSkipped),
		FilesDeleted:  atomic.LoadInt64(&m.filesDeleted),
		FilesRepaired: atomic.LoadInt64(&m.filesRepaired),
		Warnings:      atomic.LoadInt64(&m.warnings),
		BytesSent:     atomic.LoadInt64(&m.bytesSent),
		Duration:      duration,
		UploadTime:    uploadTime,
		Throughput:    throughput,
	}
}

// MarshalJSON implements json.Marshaler to render the duration as a
// human-readable string in the JSON report.
func (r Report) MarshalJSON() ([]byte, error) {
	type Alias Report
	return json.Marshal(&struct {
		Alias
		Duration   string `json:"duration"`
		UploadTime string `json:"uploadTime"`
	}{
		Alias:      Alias(r),
		Duration:   r.Duration.String(),
		UploadTime: r.UploadTime.String(),
	})
}

// String returns the human-readable summary printed after a deploy.
func (r Report) String() string {
	return fmt.Sprintf(
		"Deploy completed in %s\n"+
			"Uploaded: %d files (%d bytes) in %s\n"+
			"Skipped: %d unchanged\n"+
			"Deleted: %d remote\n"+
			"Repaired: %d content types\n"+
			"Warnings: %d",
		r.Duration,
		r.FilesUploaded,
		r.BytesSent,
		r.UploadTime,
		r.FilesSkipped,
		r.FilesDeleted,
		r.FilesRepaired,
		r.Warnings,
	)
}
