package store

import (
	"context"
	"errors"
	"time"

	"orphansweep/pkg/db/models"
)

// ErrNotFound is returned by Lookup when no digest is cached for the
// requested (path, mtime, size) triple.
var ErrNotFound = errors.New("fingerprint not found")

// CacheStats is a read-only snapshot of the cache contents.
type CacheStats struct {
	Entries    int64
	TotalBytes int64
	Newest     []models.Fingerprint
}

// FingerprintStore defines the interface for the persistent fingerprint
// cache. Lookup and Enqueue are safe for concurrent use; Enqueue buffers
// writes in memory and flushes them as a batch once the configured
// threshold is reached. Callers must Flush before acting on results.
type FingerprintStore interface {
	// Lifecycle
	Connect(ctx context.Context) error
	Close() error
	Migrate(ctx context.Context) error

	// Cache operations
	Lookup(ctx context.Context, path string, modTime time.Time, size int64) (string, error)
	Enqueue(ctx context.Context, entry models.Fingerprint) error
	Flush(ctx context.Context) error

	// Maintenance
	Clear(ctx context.Context) error
	Stats(ctx context.Context) (*CacheStats, error)
}
