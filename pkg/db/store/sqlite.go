package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"orphansweep/pkg/db/migrations"
	"orphansweep/pkg/db/models"
)

const defaultFlushThreshold = 100

// SQLiteStore implements FingerprintStore using SQLite
type SQLiteStore struct {
	db   *gorm.DB
	path string

	mu             sync.Mutex
	pending        []models.Fingerprint
	flushThreshold int
}

// DB returns the underlying GORM database instance
func (s *SQLiteStore) DB() *gorm.DB {
	return s.db
}

// SQLiteConfig holds SQLite-specific configuration
type SQLiteConfig struct {
	Path           string
	FlushThreshold int
	LogLevel       logger.LogLevel
}

// NewSQLiteStore creates a new SQLite-backed fingerprint store
func NewSQLiteStore(cfg SQLiteConfig) (*SQLiteStore, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("sqlite path is required")
	}

	// Default to silent logging
	if cfg.LogLevel == 0 {
		cfg.LogLevel = logger.Silent
	}
	if cfg.FlushThreshold <= 0 {
		cfg.FlushThreshold = defaultFlushThreshold
	}

	db, err := gorm.Open(sqlite.Open(cfg.Path), &gorm.Config{
		Logger: logger.Default.LogMode(cfg.LogLevel),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	return &SQLiteStore{
		db:             db,
		path:           cfg.Path,
		flushThreshold: cfg.FlushThreshold,
	}, nil
}

// Connect initializes the database connection
func (s *SQLiteStore) Connect(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}

	// Configure connection pool
	sqlDB.SetMaxOpenConns(1) // SQLite only supports 1 writer
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetConnMaxLifetime(time.Hour)

	return sqlDB.PingContext(ctx)
}

// Close flushes any pending entries and closes the database connection
func (s *SQLiteStore) Close() error {
	flushErr := s.Flush(context.Background())

	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}
	if err := sqlDB.Close(); err != nil {
		return err
	}
	return flushErr
}

// Migrate runs database migrations
func (s *SQLiteStore) Migrate(ctx context.Context) error {
	return migrations.NewMigrator(s.db).Migrate(ctx)
}

// Lookup returns the cached digest for the (path, mtime, size) triple, or
// ErrNotFound on a cache miss.
func (s *SQLiteStore) Lookup(ctx context.Context, path string, modTime time.Time, size int64) (string, error) {
	var row models.Fingerprint
	err := s.db.WithContext(ctx).
		Where("path = ? AND mod_time_ns = ? AND size = ?", path, modTime.UnixNano(), size).
		Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to query fingerprint cache: %w", err)
	}
	return row.Digest, nil
}

// Enqueue adds an entry to the pending batch, flushing once the batch
// reaches the configured threshold.
func (s *SQLiteStore) Enqueue(ctx context.Context, entry models.Fingerprint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.pending = append(s.pending, entry)
	if len(s.pending) >= s.flushThreshold {
		return s.flushLocked(ctx)
	}
	return nil
}

// Flush writes all pending entries as a single upsert batch.
func (s *SQLiteStore) Flush(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.flushLocked(ctx)
}

func (s *SQLiteStore) flushLocked(ctx context.Context) error {
	if len(s.pending) == 0 {
		return nil
	}

	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		CreateInBatches(s.pending, defaultFlushThreshold).Error
	if err != nil {
		return fmt.Errorf("failed to flush %d pending fingerprints: %w", len(s.pending), err)
	}

	s.pending = s.pending[:0]
	return nil
}

// Clear removes every cached fingerprint, including unflushed ones.
func (s *SQLiteStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	s.pending = s.pending[:0]
	s.mu.Unlock()

	if err := s.db.WithContext(ctx).Exec("DELETE FROM fingerprints").Error; err != nil {
		return fmt.Errorf("failed to clear fingerprint cache: %w", err)
	}
	return nil
}

// Stats reports entry count, total tracked bytes and the newest entries.
func (s *SQLiteStore) Stats(ctx context.Context) (*CacheStats, error) {
	stats := &CacheStats{}

	if err := s.db.WithContext(ctx).Model(&models.Fingerprint{}).Count(&stats.Entries).Error; err != nil {
		return nil, fmt.Errorf("failed to count fingerprints: %w", err)
	}

	err := s.db.WithContext(ctx).Model(&models.Fingerprint{}).
		Select("COALESCE(SUM(size), 0)").
		Scan(&stats.TotalBytes).Error
	if err != nil {
		return nil, fmt.Errorf("failed to sum tracked sizes: %w", err)
	}

	err = s.db.WithContext(ctx).
		Order("mod_time_ns DESC").
		Limit(5).
		Find(&stats.Newest).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list newest fingerprints: %w", err)
	}

	return stats, nil
}
