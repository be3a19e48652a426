package export

import (
	"context"
	"fmt"

	gcs "cloud.google.com/go/storage"
)

// GCSSink implements Sink using Google Cloud Storage.
type GCSSink struct {
	client *gcs.Client
	bucket string
	prefix string
}

// NewGCSSink creates a GCS-backed Sink.
// It uses Application Default Credentials (works with Workload Identity, SA keys, gcloud auth).
func NewGCSSink(ctx context.Context, bucket, prefix string) (*GCSSink, error) {
	if bucket == "" {
		return nil, fmt.Errorf("gcs sink: bucket is required")
	}
	client, err := gcs.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("create gcs client: %w", err)
	}
	return &GCSSink{client: client, bucket: bucket, prefix: prefix}, nil
}

func (s *GCSSink) put(ctx context.Context, key string, data []byte) error {
	w := s.client.Bucket(s.bucket).Object(key).NewWriter(ctx)
	w.ContentType = "application/json"
	if _, err := w.Write(data); err != nil {
		w.Close()
		return fmt.Errorf("gcs write %s: %w", key, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("gcs close %s: %w", key, err)
	}
	return nil
}

func (s *GCSSink) PutReport(ctx context.Context, reportID string, data []byte) error {
	return s.put(ctx, objectKey(s.prefix, "reports", reportID), data)
}

func (s *GCSSink) PutVector(ctx context.Context, reportID string, data []byte) error {
	return s.put(ctx, objectKey(s.prefix, "vectors", reportID), data)
}

// Close releases the underlying client.
func (s *GCSSink) Close() error {
	return s.client.Close()
}
