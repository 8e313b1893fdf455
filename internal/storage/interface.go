package storage

import (
	"context"
	"fmt"
	"io"

	"github.com/MarcosNahuel/aps-preliquidacion-app/internal/config"
)

// Storage holds uploaded originals and generated error workbooks. Download
// returns errors.ErrFileNotFound for unknown keys.
type Storage interface {
	Download(ctx context.Context, key string) (io.ReadCloser, error)
	Upload(ctx context.Context, key string, data io.Reader, contentType string) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}

// New builds the backend named by cfg.Storage.Driver.
func New(cfg *config.Config) (Storage, error) {
	switch cfg.Storage.Driver {
	case "s3":
		return NewS3Storage(cfg)
	case "memory":
		return NewMemoryStorage(), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}

// ReadAll downloads key fully.
func ReadAll(ctx context.Context, s Storage, key string) ([]byte, error) {
	rc, err := s.Download(ctx, key)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	return io.ReadAll(rc)
}
