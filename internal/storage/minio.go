package storage

import (
	"context"
	"fmt"
	"io"
	"mime"
	"path/filepath"
	"strings"

	"inkwell/internal/config"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinIOStore keeps uploads in an object bucket. The returned path is
// "<bucket>/<object>" so it round-trips through Remove.
type MinIOStore struct {
	client *minio.Client
	bucket string
}

func NewMinIOStore(cfg *config.Config) (*MinIOStore, error) {
	client, err := minio.New(cfg.MinIOEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinIOAccessKey, cfg.MinIOSecretKey, ""),
		Secure: cfg.MinIOUseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("creating minio client: %w", err)
	}
	return &MinIOStore{client: client, bucket: cfg.MinIOBucket}, nil
}

func (s *MinIOStore) Save(ctx context.Context, fileName string, r io.Reader, size int64) (path string, err error) {
	defer func() { recordUpload("minio", err) }()

	name := objectName(fileName)
	contentType := mime.TypeByExtension(filepath.Ext(name))
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	_, err = s.client.PutObject(ctx, s.bucket, name, r, size, minio.PutObjectOptions{
		ContentType:  contentType,
		UserMetadata: map[string]string{"original-filename": fileName},
	})
	if err != nil {
		return "", fmt.Errorf("uploading to minio: %w", err)
	}
	return s.bucket + "/" + name, nil
}

func (s *MinIOStore) Remove(ctx context.Context, path string) error {
	name := strings.TrimPrefix(path, s.bucket+"/")
	err := s.client.RemoveObject(ctx, s.bucket, name, minio.RemoveObjectOptions{})
	if err != nil {
		return fmt.Errorf("removing from minio: %w", err)
	}
	return nil
}
