package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"orphansweep/pkg/db/models"
)

func newTestStore(t *testing.T, flushThreshold int) *SQLiteStore {
	t.Helper()

	st, err := NewSQLiteStore(SQLiteConfig{
		Path:           filepath.Join(t.TempDir(), "cache.db"),
		FlushThreshold: flushThreshold,
	})
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, st.Connect(ctx))
	require.NoError(t, st.Migrate(ctx))

	t.Cleanup(func() { st.Close() })
	return st
}

func entry(path string, modTime time.Time, size int64, digest string) models.Fingerprint {
	return models.Fingerprint{
		Path:      path,
		ModTimeNS: modTime.UnixNano(),
		Size:      size,
		Digest:    digest,
	}
}

func TestLookupMiss(t *testing.T) {
	st := newTestStore(t, 100)

	_, err := st.Lookup(context.Background(), "/media/a.mkv", time.Now(), 1000)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestEnqueueFlushLookup(t *testing.T) {
	st := newTestStore(t, 100)
	ctx := context.Background()

	modTime := time.Unix(1700000000, 123456789)
	require.NoError(t, st.Enqueue(ctx, entry("/media/a.mkv", modTime, 1000, "digest-a")))

	// Still buffered, not visible yet
	_, err := st.Lookup(ctx, "/media/a.mkv", modTime, 1000)
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, st.Flush(ctx))

	digest, err := st.Lookup(ctx, "/media/a.mkv", modTime, 1000)
	require.NoError(t, err)
	assert.Equal(t, "digest-a", digest)
}

func TestAutoFlushAtThreshold(t *testing.T) {
	st := newTestStore(t, 2)
	ctx := context.Background()

	modTime := time.Unix(1700000000, 0)
	require.NoError(t, st.Enqueue(ctx, entry("/media/a.mkv", modTime, 1000, "digest-a")))
	require.NoError(t, st.Enqueue(ctx, entry("/media/b.mkv", modTime, 2000, "digest-b")))

	// Threshold reached, both rows must be visible without an explicit flush
	digest, err := st.Lookup(ctx, "/media/b.mkv", modTime, 2000)
	require.NoError(t, err)
	assert.Equal(t, "digest-b", digest)
}

func TestUpsertReplacesOnConflict(t *testing.T) {
	st := newTestStore(t, 100)
	ctx := context.Background()

	modTime := time.Unix(1700000000, 0)
	require.NoError(t, st.Enqueue(ctx, entry("/media/a.mkv", modTime, 1000, "digest-old")))
	require.NoError(t, st.Flush(ctx))

	require.NoError(t, st.Enqueue(ctx, entry("/media/a.mkv", modTime, 1000, "digest-new")))
	require.NoError(t, st.Flush(ctx))

	digest, err := st.Lookup(ctx, "/media/a.mkv", modTime, 1000)
	require.NoError(t, err)
	assert.Equal(t, "digest-new", digest)

	stats, err := st.Stats(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, stats.Entries)
}

func TestChangedFileKeepsStaleEntry(t *testing.T) {
	st := newTestStore(t, 100)
	ctx := context.Background()

	oldTime := time.Unix(1700000000, 0)
	newTime := time.Unix(1700005000, 0)
	require.NoError(t, st.Enqueue(ctx, entry("/media/a.mkv", oldTime, 1000, "digest-old")))
	require.NoError(t, st.Enqueue(ctx, entry("/media/a.mkv", newTime, 1200, "digest-new")))
	require.NoError(t, st.Flush(ctx))

	// A changed file is a new row; the stale row survives untouched
	stats, err := st.Stats(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, stats.Entries)

	digest, err := st.Lookup(ctx, "/media/a.mkv", oldTime, 1000)
	require.NoError(t, err)
	assert.Equal(t, "digest-old", digest)

	digest, err = st.Lookup(ctx, "/media/a.mkv", newTime, 1200)
	require.NoError(t, err)
	assert.Equal(t, "digest-new", digest)
}

func TestClear(t *testing.T) {
	st := newTestStore(t, 100)
	ctx := context.Background()

	modTime := time.Unix(1700000000, 0)
	require.NoError(t, st.Enqueue(ctx, entry("/media/a.mkv", modTime, 1000, "digest-a")))
	require.NoError(t, st.Flush(ctx))

	// One more pending row that must not survive the clear either
	require.NoError(t, st.Enqueue(ctx, entry("/media/b.mkv", modTime, 2000, "digest-b")))

	require.NoError(t, st.Clear(ctx))
	require.NoError(t, st.Flush(ctx))

	stats, err := st.Stats(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 0, stats.Entries)
	assert.EqualValues(t, 0, stats.TotalBytes)

	_, err = st.Lookup(ctx, "/media/a.mkv", modTime, 1000)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestStats(t *testing.T) {
	st := newTestStore(t, 100)
	ctx := context.Background()

	older := time.Unix(1700000000, 0)
	newer := time.Unix(1700009000, 0)
	require.NoError(t, st.Enqueue(ctx, entry("/media/a.mkv", older, 100, "digest-a")))
	require.NoError(t, st.Enqueue(ctx, entry("/media/b.mkv", newer, 200, "digest-b")))
	require.NoError(t, st.Flush(ctx))

	stats, err := st.Stats(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, stats.Entries)
	assert.EqualValues(t, 300, stats.TotalBytes)

	require.Len(t, stats.Newest, 2)
	assert.Equal(t, "/media/b.mkv", stats.Newest[0].Path)
	assert.Equal(t, newer.UnixNano(), stats.Newest[0].ModTimeNS)
}

func TestMigrateIsIdempotent(t *testing.T) {
	st := newTestStore(t, 100)
	require.NoError(t, st.Migrate(context.Background()))
}
