// Package storage abstracts where uploaded post images live. The local
// backend writes to a directory served as static files; the minio backend
// puts objects in a bucket.
package storage

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"inkwell/internal/config"
	"inkwell/internal/observability"

	"github.com/google/uuid"
)

// BlobStore stores uploaded files and returns the path clients use to
// reference them.
type BlobStore interface {
	Save(ctx context.Context, fileName string, r io.Reader, size int64) (string, error)
	Remove(ctx context.Context, path string) error
}

// New selects a backend from config.
func New(cfg *config.Config) (BlobStore, error) {
	switch cfg.StorageBackend {
	case "minio":
		return NewMinIOStore(cfg)
	case "local":
		return NewLocalStore(cfg.UploadDir)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}
}

// objectName builds a collision-free name that keeps the original extension
// so content type can be inferred when serving.
func objectName(fileName string) string {
	ext := strings.ToLower(filepath.Ext(fileName))
	return uuid.New().String() + ext
}

func recordUpload(backend string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	observability.UploadsTotal.WithLabelValues(backend, outcome).Inc()
}
