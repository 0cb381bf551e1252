// Package storage archives review artifacts in object storage.
package storage

import (
	"context"
	"fmt"
	"io"
	"time"

	"proposal-reviewer/pkg/logger"
	"proposal-reviewer/pkg/storage/minio"
)

// Type selects a storage backend.
type Type string

const TypeMinio Type = "minio"

// Storage holds review artifacts (pipeline results serialized as JSON)
// for audit. Archiving is best-effort: the review flow never depends
// on it succeeding. Reads happen out of band with object-store tooling,
// so the interface is write-and-expire only.
type Storage interface {
	// Store writes an artifact under the given key.
	Store(ctx context.Context, reader io.Reader, key string, size int64) (string, error)
	// CleanupBefore removes artifacts older than the threshold.
	CleanupBefore(ctx context.Context, threshold time.Time) error
}

// New creates a storage backend of the given type.
func New(storageType Type, cfg *minio.Config, log logger.Logger) (Storage, error) {
	switch storageType {
	case TypeMinio:
		return minio.NewArchive(cfg, log)
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", storageType)
	}
}
