package storage

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/recipegram/apiserver/config"
)

// LocalClient stores objects on the local filesystem under a media root.
// It is the default backend for single-machine deployments.
type LocalClient struct {
	root string
}

// NewLocalClient constructs a filesystem-backed client from config.
func NewLocalClient(cfg config.LocalStorageConfig) (*LocalClient, error) {
	if strings.TrimSpace(cfg.Root) == "" {
		return nil, errors.New("media root is required")
	}
	return &LocalClient{root: cfg.Root}, nil
}

// EnsureBucket ensures the media root directory exists.
func (l *LocalClient) EnsureBucket(ctx context.Context) error {
	return os.MkdirAll(l.root, 0o755)
}

// Put writes an object under the media root.
func (l *LocalClient) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	path := filepath.Join(l.root, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// Get opens a reader for an object under the media root.
func (l *LocalClient) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	return os.Open(filepath.Join(l.root, filepath.FromSlash(key)))
}

// Delete removes an object from the media root.
func (l *LocalClient) Delete(ctx context.Context, key string) error {
	return os.Remove(filepath.Join(l.root, filepath.FromSlash(key)))
}

// Bucket returns the media root path.
func (l *LocalClient) Bucket() string {
	return l.root
}
