package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// LocalStorage writes uploads to a directory on disk. The API serves the
// directory under /files/data-room.
type LocalStorage struct {
	dir string
}

// NewLocalStorage creates the upload directory if needed.
func NewLocalStorage(dir string) (*LocalStorage, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload dir: %w", err)
	}
	return &LocalStorage{dir: dir}, nil
}

// Save streams the body into the upload directory.
func (s *LocalStorage) Save(ctx context.Context, filename string, contentType string, body io.Reader) (string, error) {
	dst, err := os.Create(filepath.Join(s.dir, filename))
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, io.LimitReader(body, MaxUploadSize)); err != nil {
		return "", fmt.Errorf("failed to write file: %w", err)
	}
	return "/files/data-room/" + filename, nil
}
