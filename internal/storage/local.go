package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// LocalStore writes uploads to a directory on disk. Paths it returns are
// relative to the uploads mount, e.g. "uploads/3f2a….png".
type LocalStore struct {
	dir string
}

func NewLocalStore(dir string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating upload dir: %w", err)
	}
	return &LocalStore{dir: dir}, nil
}

func (s *LocalStore) Save(ctx context.Context, fileName string, r io.Reader, size int64) (path string, err error) {
	defer func() { recordUpload("local", err) }()

	name := objectName(fileName)
	f, err := os.Create(filepath.Join(s.dir, name))
	if err != nil {
		return "", fmt.Errorf("creating upload file: %w", err)
	}
	defer f.Close()

	if _, err = io.Copy(f, r); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("writing upload: %w", err)
	}
	return "uploads/" + name, nil
}

func (s *LocalStore) Remove(ctx context.Context, path string) error {
	name := strings.TrimPrefix(path, "uploads/")
	// Refuse anything that escapes the upload dir.
	if name == "" || name != filepath.Base(name) {
		return fmt.Errorf("invalid upload path %q", path)
	}
	err := os.Remove(filepath.Join(s.dir, name))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Dir returns the directory uploads are written to, for static serving.
func (s *LocalStore) Dir() string {
	return s.dir
}
