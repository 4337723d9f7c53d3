// Package export writes JSON reports to Cloud Storage, a local file or stdout.
package export

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"cloud.google.com/go/storage"
)

const gcsScheme = "gs://"

// Stdout is the destination that writes to the exporter's standard output.
const Stdout = "-"

// ObjectStore uploads a blob to a bucket.
type ObjectStore interface {
	Put(ctx context.Context, bucket, object string, data []byte) error
}

// GCSObjectStore uploads to Google Cloud Storage using Application Default Credentials.
type GCSObjectStore struct {
	client *storage.Client
}

// NewGCSObjectStore creates a storage client. Close releases it.
func NewGCSObjectStore(ctx context.Context) (*GCSObjectStore, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}
	return &GCSObjectStore{client: client}, nil
}

// Close closes the underlying client.
func (s *GCSObjectStore) Close() error {
	return s.client.Close()
}

// Put writes data to gs://bucket/object as application/json.
func (s *GCSObjectStore) Put(ctx context.Context, bucket, object string, data []byte) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	w := s.client.Bucket(bucket).Object(object).NewWriter(ctx)
	w.ContentType = "application/json"

	if _, err := io.Copy(w, bytes.NewReader(data)); err != nil {
		_ = w.Close()
		return fmt.Errorf("copy report to GCS writer: %w", err)
	}
	// Close finalizes the upload.
	if err := w.Close(); err != nil {
		return fmt.Errorf("finalize upload: %w", err)
	}
	return nil
}

// Exporter routes a report to its destination.
type Exporter struct {
	objects ObjectStore
	stdout  io.Writer
}

// New creates an Exporter. objects may be nil when no gs:// destination is used.
func New(objects ObjectStore, stdout io.Writer) *Exporter {
	if stdout == nil {
		stdout = os.Stdout
	}
	return &Exporter{objects: objects, stdout: stdout}
}

// Write JSON-encodes v (indented) and sends it to dest: "-" for stdout, a gs://bucket/object
// URI, or a local file path whose parent directories are created as needed.
func (e *Exporter) Write(ctx context.Context, dest string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("Write: encode report: %w", err)
	}
	data = append(data, '\n')

	switch {
	case dest == Stdout || dest == "":
		if _, err := e.stdout.Write(data); err != nil {
			return fmt.Errorf("Write: stdout: %w", err)
		}
		return nil

	case strings.HasPrefix(dest, gcsScheme):
		bucket, object, err := ParseGCSURI(dest)
		if err != nil {
			return fmt.Errorf("Write: %w", err)
		}
		if e.objects == nil {
			return fmt.Errorf("Write: no object store configured for %s", dest)
		}
		if err := e.objects.Put(ctx, bucket, object, data); err != nil {
			return fmt.Errorf("Write: upload %s: %w", dest, err)
		}
		return nil

	default:
		if dir := filepath.Dir(dest); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("Write: create directory %q: %w", dir, err)
			}
		}
		if err := os.WriteFile(dest, data, 0o644); err != nil {
			return fmt.Errorf("Write: write file %q: %w", dest, err)
		}
		return nil
	}
}

// ParseGCSURI splits gs://bucket/path/to/object into its bucket and object name.
func ParseGCSURI(uri string) (bucket, object string, err error) {
	if !strings.HasPrefix(uri, gcsScheme) {
		return "", "", fmt.Errorf("invalid GCS URI: %s", uri)
	}
	parts := strings.SplitN(strings.TrimPrefix(uri, gcsScheme), "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid GCS URI (no object path): %s", uri)
	}
	return parts[0], parts[1], nil
}

// ReportURI names a report object for a tool under bucket. The timestamp orders
// objects; id keeps two reports written in the same second apart.
func ReportURI(bucket, tool string, at time.Time, id string) string {
	return fmt.Sprintf("%s%s/reports/%s/%s-%s.json", gcsScheme, bucket, tool, at.UTC().Format("20060102T150405Z"), id)
}
