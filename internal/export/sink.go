// Package export hands finished assessment reports and their feature vectors
// to an external blob store. Sinks only write; they own no schema.
package export

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path"
	"path/filepath"

	"github.com/psyscore/psyscore/pkg/assessment"
	"github.com/psyscore/psyscore/pkg/config"
	"github.com/psyscore/psyscore/pkg/features"
)

// Sink abstracts blob storage for reports and feature vectors.
type Sink interface {
	PutReport(ctx context.Context, reportID string, data []byte) error
	PutVector(ctx context.Context, reportID string, data []byte) error
}

// vectorDoc is the payload handed to the model service.
type vectorDoc struct {
	ReportID     string `json:"report_id"`
	SubmissionID string `json:"submission_id,omitempty"`
	Length       int    `json:"length"`
	Vector       []int  `json:"vector"`
}

// Publish writes the report and its feature vector to the sink.
func Publish(ctx context.Context, s Sink, r *assessment.Report) error {
	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("marshaling report %s: %w", r.ID, err)
	}
	if err := s.PutReport(ctx, r.ID, data); err != nil {
		return fmt.Errorf("publishing report %s: %w", r.ID, err)
	}

	vec, err := json.Marshal(vectorDoc{
		ReportID:     r.ID,
		SubmissionID: r.SubmissionID,
		Length:       features.Length,
		Vector:       r.Vector.Slice(),
	})
	if err != nil {
		return fmt.Errorf("marshaling vector %s: %w", r.ID, err)
	}
	if err := s.PutVector(ctx, r.ID, vec); err != nil {
		return fmt.Errorf("publishing vector %s: %w", r.ID, err)
	}
	return nil
}

// New creates the sink selected by cfg.Backend.
func New(ctx context.Context, cfg config.ExportConfig) (Sink, error) {
	switch cfg.Backend {
	case "", "local":
		return NewLocalSink(cfg.Dir), nil
	case "s3":
		return NewS3Sink(ctx, S3Config{
			Bucket:    cfg.Bucket,
			Prefix:    cfg.Prefix,
			Region:    cfg.Region,
			Endpoint:  cfg.Endpoint,
			AccessKey: cfg.AccessKey,
			SecretKey: cfg.SecretKey,
		})
	case "gcs":
		return NewGCSSink(ctx, cfg.Bucket, cfg.Prefix)
	}
	return nil, fmt.Errorf("unknown export backend %q", cfg.Backend)
}

// objectKey is the blob key shared by the remote backends.
func objectKey(prefix, kind, id string) string {
	return path.Join(prefix, kind, id+".json")
}

// LocalSink implements Sink using the local filesystem.
// Useful for development and testing.
type LocalSink struct {
	BaseDir string
}

// NewLocalSink creates a LocalSink rooted at the given directory.
func NewLocalSink(baseDir string) *LocalSink {
	return &LocalSink{BaseDir: baseDir}
}

func (s *LocalSink) path(kind, id string) string {
	return filepath.Join(s.BaseDir, kind, id+".json")
}

func (s *LocalSink) put(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// PutReport stores a report blob.
func (s *LocalSink) PutReport(ctx context.Context, reportID string, data []byte) error {
	return s.put(s.path("reports", reportID), data)
}

// PutVector stores a feature vector blob.
func (s *LocalSink) PutVector(ctx context.Context, reportID string, data []byte) error {
	return s.put(s.path("vectors", reportID), data)
}
