package scanner

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"orphansweep/internal/config"
	"orphansweep/pkg/log"
)

// FileRecord describes one scanned file. Records are immutable once
// produced; identity for cache and metadata purposes is the
// (Path, ModTime, Size) triple.
type FileRecord struct {
	Path    string
	Size    int64
	ModTime time.Time
}

func (r FileRecord) Name() string {
	return filepath.Base(r.Path)
}

// Scanner walks directory trees and yields records for files passing the
// configured policy filters (extension allow-list, minimum size, name
// exclude substrings).
type Scanner struct {
	extensions map[string]struct{}
	minSize    int64
	excludes   []string
	log        log.LoggerService
}

func New(cfg config.ScanConfig, logger log.LoggerService) *Scanner {
	extensions := make(map[string]struct{}, len(cfg.Extensions))
	for _, ext := range cfg.Extensions {
		extensions[strings.ToLower(ext)] = struct{}{}
	}

	excludes := make([]string, 0, len(cfg.ExcludeNames))
	for _, name := range cfg.ExcludeNames {
		excludes = append(excludes, strings.ToLower(name))
	}

	return &Scanner{
		extensions: extensions,
		minSize:    cfg.MinFileSize,
		excludes:   excludes,
		log:        logger,
	}
}

// Scan walks root recursively and returns all matching records.
// Unreadable entries are skipped with a warning; a missing or non-directory
// root is an error.
func (s *Scanner) Scan(root string) ([]FileRecord, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("failed to access scan root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("scan root %s is not a directory", root)
	}

	s.log.Info("Scanning %s", root)

	var records []FileRecord
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			s.log.Warn("Skipping unreadable entry %s: %v", path, err)
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}

		if _, ok := s.extensions[strings.ToLower(filepath.Ext(path))]; !ok {
			return nil
		}

		name := strings.ToLower(d.Name())
		for _, exclude := range s.excludes {
			if strings.Contains(name, exclude) {
				return nil
			}
		}

		fi, err := d.Info()
		if err != nil {
			s.log.Warn("Skipping %s: %v", path, err)
			return nil
		}
		if fi.Size() < s.minSize {
			return nil
		}

		records = append(records, FileRecord{
			Path:    path,
			Size:    fi.Size(),
			ModTime: fi.ModTime(),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", root, err)
	}

	return records, nil
}

// Subdirs returns the names of the first-level subdirectories of root.
func Subdirs(root string) (map[string]struct{}, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", root, err)
	}

	names := make(map[string]struct{})
	for _, entry := range entries {
		if entry.IsDir() {
			names[entry.Name()] = struct{}{}
		}
	}
	return names, nil
}
