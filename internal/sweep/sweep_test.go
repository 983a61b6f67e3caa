package sweep

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"orphansweep/internal/config"
	"orphansweep/pkg/db/store"
	"orphansweep/pkg/log"
)

func testConfig(cachePath string) *config.BaseConfig {
	return &config.BaseConfig{
		Cache: config.CacheConfig{Path: cachePath},
		Scan: config.ScanConfig{
			Extensions:   []string{".mkv"},
			MinFileSize:  1,
			ExcludeNames: []string{"sample"},
		},
		Hash: config.HashConfig{
			Workers:         2,
			SampleThreshold: 1 << 30,
			SampleSize:      1024,
			FlushThreshold:  100,
		},
	}
}

func newTestSweeper(t *testing.T, input string, opts Options) *Sweeper {
	t.Helper()

	cfg := testConfig(filepath.Join(t.TempDir(), "cache.db"))

	st, err := store.NewSQLiteStore(store.SQLiteConfig{
		Path:           cfg.Cache.Path,
		FlushThreshold: cfg.Hash.FlushThreshold,
	})
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, st.Connect(ctx))
	require.NoError(t, st.Migrate(ctx))
	t.Cleanup(func() { st.Close() })

	opts.Input = strings.NewReader(input)
	opts.Output = &bytes.Buffer{}

	return New(cfg, log.NewNopLogger(), st, opts)
}

func writeMedia(t *testing.T, path string, content []byte, modTime time.Time) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, content, 0644))
	require.NoError(t, os.Chtimes(path, modTime, modTime))
}

func TestRunNoOrphans(t *testing.T) {
	source := t.TempDir()
	dest := t.TempDir()

	content := []byte("identical movie bytes")
	writeMedia(t, filepath.Join(source, "a.mkv"), content, time.Unix(1700000000, 0))
	writeMedia(t, filepath.Join(dest, "renamed.mkv"), content, time.Unix(1700009999, 0))

	s := newTestSweeper(t, "", Options{})
	summary, err := s.Run(context.Background(), source, []string{dest})
	require.NoError(t, err)

	assert.Equal(t, 0, summary.Detected)
	assert.FileExists(t, filepath.Join(source, "a.mkv"))
}

func TestRunDryRunKeepsFiles(t *testing.T) {
	source := t.TempDir()
	dest := t.TempDir()

	orphan := filepath.Join(source, "c.mkv")
	writeMedia(t, orphan, []byte("unique bytes"), time.Unix(1700000000, 0))
	writeMedia(t, filepath.Join(dest, "other.mkv"), []byte("different"), time.Unix(1700001111, 0))

	s := newTestSweeper(t, "", Options{DryRun: true})
	summary, err := s.Run(context.Background(), source, []string{dest})
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Detected)
	assert.Equal(t, 1, summary.Deleted)
	assert.FileExists(t, orphan)
}

func TestRunAutoDeleteRemovesOrphan(t *testing.T) {
	source := t.TempDir()
	dest := t.TempDir()

	orphan := filepath.Join(source, "c.mkv")
	content := []byte("unique bytes")
	writeMedia(t, orphan, content, time.Unix(1700000000, 0))
	writeMedia(t, filepath.Join(dest, "other.mkv"), []byte("different"), time.Unix(1700001111, 0))

	s := newTestSweeper(t, "", Options{AutoDelete: true})
	summary, err := s.Run(context.Background(), source, []string{dest})
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Detected)
	assert.Equal(t, 1, summary.Deleted)
	assert.EqualValues(t, len(content), summary.FreedBytes)
	assert.NoFileExists(t, orphan)
}

func TestRunRemovesParentFolderNamedAfterStem(t *testing.T) {
	source := t.TempDir()
	dest := t.TempDir()

	folder := filepath.Join(source, "Some.Release")
	orphan := filepath.Join(folder, "Some.Release.mkv")
	writeMedia(t, orphan, []byte("unique bytes"), time.Unix(1700000000, 0))
	writeMedia(t, filepath.Join(dest, "other.mkv"), []byte("different"), time.Unix(1700001111, 0))

	s := newTestSweeper(t, "", Options{AutoDelete: true})
	_, err := s.Run(context.Background(), source, []string{dest})
	require.NoError(t, err)

	assert.NoFileExists(t, orphan)
	assert.NoDirExists(t, folder)
}

func TestRunForceDeleteFoldersRemovesLeftovers(t *testing.T) {
	source := t.TempDir()
	dest := t.TempDir()

	folder := filepath.Join(source, "Some.Release")
	orphan := filepath.Join(folder, "Some.Release.mkv")
	leftover := filepath.Join(folder, "Some.Release.nfo")
	writeMedia(t, orphan, []byte("unique bytes"), time.Unix(1700000000, 0))
	require.NoError(t, os.WriteFile(leftover, []byte("nfo"), 0644))
	writeMedia(t, filepath.Join(dest, "other.mkv"), []byte("different"), time.Unix(1700001111, 0))

	s := newTestSweeper(t, "", Options{AutoDelete: true, ForceDeleteFolders: true})
	_, err := s.Run(context.Background(), source, []string{dest})
	require.NoError(t, err)

	assert.NoDirExists(t, folder)
}

func TestRunDeclinedOrphanSurvives(t *testing.T) {
	source := t.TempDir()
	dest := t.TempDir()

	orphan := filepath.Join(source, "c.mkv")
	writeMedia(t, orphan, []byte("unique bytes"), time.Unix(1700000000, 0))
	writeMedia(t, filepath.Join(dest, "other.mkv"), []byte("different"), time.Unix(1700001111, 0))

	s := newTestSweeper(t, "n\n", Options{})
	summary, err := s.Run(context.Background(), source, []string{dest})
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Detected)
	assert.Equal(t, 0, summary.Deleted)
	assert.Equal(t, 1, summary.Skipped)
	assert.FileExists(t, orphan)
}

func TestRunQuitAborts(t *testing.T) {
	source := t.TempDir()
	dest := t.TempDir()

	writeMedia(t, filepath.Join(source, "c.mkv"), []byte("unique bytes"), time.Unix(1700000000, 0))
	writeMedia(t, filepath.Join(source, "d.mkv"), []byte("also unique!!"), time.Unix(1700000050, 0))
	writeMedia(t, filepath.Join(dest, "other.mkv"), []byte("different"), time.Unix(1700001111, 0))

	s := newTestSweeper(t, "q\n", Options{})
	_, err := s.Run(context.Background(), source, []string{dest})
	require.ErrorIs(t, err, ErrAborted)

	assert.FileExists(t, filepath.Join(source, "c.mkv"))
	assert.FileExists(t, filepath.Join(source, "d.mkv"))
}

func TestRunYesToAll(t *testing.T) {
	source := t.TempDir()
	dest := t.TempDir()

	writeMedia(t, filepath.Join(source, "c.mkv"), []byte("unique bytes"), time.Unix(1700000000, 0))
	writeMedia(t, filepath.Join(source, "d.mkv"), []byte("also unique!!"), time.Unix(1700000050, 0))
	writeMedia(t, filepath.Join(dest, "other.mkv"), []byte("different"), time.Unix(1700001111, 0))

	// Single "all" answer covers both orphans
	s := newTestSweeper(t, "a\n", Options{})
	summary, err := s.Run(context.Background(), source, []string{dest})
	require.NoError(t, err)

	assert.Equal(t, 2, summary.Deleted)
	assert.NoFileExists(t, filepath.Join(source, "c.mkv"))
	assert.NoFileExists(t, filepath.Join(source, "d.mkv"))
}

func TestRunRejectsIdenticalSourceAndDest(t *testing.T) {
	dir := t.TempDir()

	s := newTestSweeper(t, "", Options{})
	_, err := s.Run(context.Background(), dir, []string{dir})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "identical")
}

func TestRunPropagatesCancellation(t *testing.T) {
	source := t.TempDir()
	dest := t.TempDir()

	writeMedia(t, filepath.Join(source, "c.mkv"), []byte("unique bytes"), time.Unix(1700000000, 0))
	writeMedia(t, filepath.Join(dest, "other.mkv"), []byte("different"), time.Unix(1700001111, 0))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := newTestSweeper(t, "", Options{AutoDelete: true})
	_, err := s.Run(ctx, source, []string{dest})
	require.ErrorIs(t, err, context.Canceled)

	assert.FileExists(t, filepath.Join(source, "c.mkv"))
}

func TestMatchRootsPairsCommonSubdirs(t *testing.T) {
	source := t.TempDir()
	dest1 := t.TempDir()
	dest2 := t.TempDir()

	for _, dir := range []string{"films", "series", "misc"} {
		require.NoError(t, os.MkdirAll(filepath.Join(source, dir), 0755))
	}
	require.NoError(t, os.MkdirAll(filepath.Join(dest1, "films"), 0755))
	require.NoError(t, os.MkdirAll(filepath.Join(dest2, "series"), 0755))

	s := newTestSweeper(t, "", Options{})
	sourceRoots, destRoots, err := s.matchRoots(source, []string{dest1, dest2})
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{
		filepath.Join(source, "films"),
		filepath.Join(source, "series"),
	}, sourceRoots)
	assert.ElementsMatch(t, []string{
		filepath.Join(dest1, "films"),
		filepath.Join(dest2, "series"),
	}, destRoots)
}

func TestMatchRootsFallsBackToWholeRoots(t *testing.T) {
	source := t.TempDir()
	dest := t.TempDir()

	require.NoError(t, os.MkdirAll(filepath.Join(source, "films"), 0755))
	require.NoError(t, os.MkdirAll(filepath.Join(dest, "backups"), 0755))

	s := newTestSweeper(t, "", Options{})
	sourceRoots, destRoots, err := s.matchRoots(source, []string{dest})
	require.NoError(t, err)

	assert.Equal(t, []string{source}, sourceRoots)
	assert.Equal(t, []string{dest}, destRoots)
}
