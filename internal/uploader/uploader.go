// Package uploader abstracts media storage behind a small interface and
// provides the MinIO-backed implementation the editor uses in production.
package uploader

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"path"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/virtues-os/scribe/internal/plugin"
)

// Result describes a stored file.
type Result struct {
	URL      string
	Filename string
}

// Progress receives upload completion fractions in [0, 1]. Values never
// decrease.
type Progress func(fraction float64)

// Uploader stores a file and reports progress while doing so.
type Uploader interface {
	Upload(ctx context.Context, file plugin.File, onProgress Progress) (Result, error)
}

// Config holds MinIO connection settings.
type Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
	// PublicURL is the base under which stored objects are reachable. When
	// empty the endpoint is used.
	PublicURL string
}

// Minio stores files in a MinIO (or S3-compatible) bucket.
type Minio struct {
	client *minio.Client
	cfg    Config
}

// NewMinio connects to the configured MinIO endpoint.
func NewMinio(cfg Config) (*Minio, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("connect minio: %w", err)
	}
	return &Minio{client: client, cfg: cfg}, nil
}

// Upload implements Uploader. Objects are keyed by a fresh UUID so uploads
// never collide; the original filename survives in the result only.
func (m *Minio) Upload(ctx context.Context, file plugin.File, onProgress Progress) (Result, error) {
	key := uuid.NewString() + path.Ext(file.Name)
	size := int64(len(file.Content))
	reader := newProgressReader(bytes.NewReader(file.Content), size, onProgress)

	_, err := m.client.PutObject(ctx, m.cfg.Bucket, key, reader, size, minio.PutObjectOptions{
		ContentType: file.MIME,
	})
	if err != nil {
		return Result{}, fmt.Errorf("put object %s: %w", key, err)
	}
	return Result{URL: m.objectURL(key), Filename: file.Name}, nil
}

func (m *Minio) objectURL(key string) string {
	if m.cfg.PublicURL != "" {
		return m.cfg.PublicURL + "/" + m.cfg.Bucket + "/" + url.PathEscape(key)
	}
	scheme := "http"
	if m.cfg.UseSSL {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s/%s/%s", scheme, m.cfg.Endpoint, m.cfg.Bucket, url.PathEscape(key))
}

// progressReader reports monotonic progress as the underlying reader drains.
type progressReader struct {
	r        io.Reader
	total    int64
	read     int64
	last     float64
	progress Progress
}

func newProgressReader(r io.Reader, total int64, progress Progress) *progressReader {
	return &progressReader{r: r, total: total, progress: progress}
}

func (p *progressReader) Read(buf []byte) (int, error) {
	n, err := p.r.Read(buf)
	p.read += int64(n)
	if p.progress != nil && p.total > 0 {
		frac := float64(p.read) / float64(p.total)
		if frac > 1 {
			frac = 1
		}
		// Retried chunks must never report backwards.
		if frac > p.last {
			p.last = frac
			p.progress(frac)
		}
	}
	return n, err
}
