// Package storage keeps uploaded binaries outside the database.
// Records only hold the opaque reference returned by Save.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"

	"intranet-cesfam/backend/config"
)

// ErrNotFound reference does not resolve to a stored object
var ErrNotFound = errors.New("stored file not found")

// Storage byte-stream store keyed by opaque references
type Storage interface {
	// Save stores r under dir and returns the reference to persist.
	Save(ctx context.Context, dir, filename string, r io.Reader, size int64, contentType string) (string, error)
	// Open streams a stored object back.
	Open(ctx context.Context, ref string) (io.ReadCloser, error)
	// Delete removes an object; a missing object is not an error.
	Delete(ctx context.Context, ref string) error
}

// New picks the backend named by cfg.Driver
func New(ctx context.Context, cfg *config.StorageConfig, logger *zap.Logger) (Storage, error) {
	switch cfg.Driver {
	case "local", "":
		return NewLocalStorage(cfg.LocalPath, logger)
	case "minio":
		return NewMinIOStorage(ctx, cfg, logger)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}
