// Package app assembles the intake service from configuration for the binaries.
package app

import (
	"fmt"
	"io"

	"github.com/MarcosNahuel/aps-preliquidacion-app/internal/config"
	"github.com/MarcosNahuel/aps-preliquidacion-app/internal/db"
	"github.com/MarcosNahuel/aps-preliquidacion-app/internal/intake"
	"github.com/MarcosNahuel/aps-preliquidacion-app/internal/storage"
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// NewRepository opens the repository named by cfg.Database.Driver. The returned
// closer releases the connection pool.
func NewRepository(cfg *config.Config) (db.Repository, io.Closer, error) {
	switch cfg.Database.Driver {
	case "mysql":
		conn, err := db.NewConnection(cfg)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		return db.NewRepository(conn), conn, nil
	case "memory":
		return db.NewMemoryRepository(), nopCloser{}, nil
	default:
		return nil, nil, fmt.Errorf("unknown database driver %q", cfg.Database.Driver)
	}
}

// NewService builds the intake service with the configured layout and backends.
// queue may be nil.
func NewService(cfg *config.Config, queue intake.JobQueue) (*intake.Service, io.Closer, error) {
	layout, err := cfg.Schema.Layout()
	if err != nil {
		return nil, nil, err
	}

	repo, closer, err := NewRepository(cfg)
	if err != nil {
		return nil, nil, err
	}

	store, err := storage.New(cfg)
	if err != nil {
		closer.Close()
		return nil, nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	return intake.NewService(cfg, layout, repo, store, queue), closer, nil
}
