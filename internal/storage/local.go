package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// LocalService keeps blobs on local disk. Default backend when no S3
// bucket is configured; the server mounts root under /media.
type LocalService struct {
	root    string
	baseURL string
}

func NewLocalService(root, baseURL string) *LocalService {
	return &LocalService{
		root:    filepath.Clean(root),
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

var _ Service = (*LocalService)(nil)

func (s *LocalService) path(key string) (string, error) {
	clean := filepath.Clean("/" + key)
	if clean == "/" {
		return "", fmt.Errorf("storage key is required")
	}
	return filepath.Join(s.root, clean), nil
}

func (s *LocalService) Save(ctx context.Context, key string, r io.Reader) error {
	path, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create media dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", key, err)
	}
	_, copyErr := io.Copy(f, r)
	closeErr := f.Close()
	if copyErr != nil {
		return fmt.Errorf("write %s: %w", key, copyErr)
	}
	if closeErr != nil {
		return fmt.Errorf("close %s: %w", key, closeErr)
	}
	return nil
}

func (s *LocalService) Delete(ctx context.Context, key string) error {
	path, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove %s: %w", key, err)
	}
	return nil
}

func (s *LocalService) URL(ctx context.Context, key string) (string, error) {
	return s.baseURL + "/" + strings.TrimLeft(key, "/"), nil
}
