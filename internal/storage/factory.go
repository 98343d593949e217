package storage

import (
	"context"
	"fmt"

	"github.com/recipegram/apiserver/config"
)

// Open constructs the configured object-storage backend and ensures its
// bucket exists.
func Open(ctx context.Context, cfg config.StorageConfig) (*Storage, error) {
	var (
		backend ObjectStorage
		err     error
	)
	switch cfg.Backend {
	case "", "local":
		backend, err = NewLocalClient(cfg.Local)
	case "minio":
		backend, err = NewMinioClient(cfg.Minio)
	case "gcs":
		backend, err = NewGCSClient(ctx, cfg.GCS)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
	if err != nil {
		return nil, err
	}

	store := NewStorage(backend)
	if err := store.EnsureBucket(ctx); err != nil {
		return nil, err
	}
	return store, nil
}
