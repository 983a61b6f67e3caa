package sweep

import (
	"os"
	"path/filepath"
	"strings"
)

// deleteFile removes one orphan. When the parent directory is named after
// the file's stem (the usual one-release-per-folder layout) the folder is
// cleaned up as well. Returns whether the file was (or would be) removed.
func (s *Sweeper) deleteFile(path string) bool {
	parent := filepath.Dir(path)
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	cleanupParent := filepath.Base(parent) == stem

	if s.opts.DryRun {
		s.log.Info("[dry-run] %s", filepath.Base(path))
		if cleanupParent {
			s.log.Info("[dry-run] Folder: %s/", filepath.Base(parent))
		}
		return true
	}

	if err := os.Remove(path); err != nil {
		s.log.Error("Failed to delete %s: %v", path, err)
		return false
	}
	s.log.Info("Deleted: %s", filepath.Base(path))

	if cleanupParent {
		s.removeParentDir(parent)
	}
	return true
}

func (s *Sweeper) removeParentDir(dir string) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return
	}

	if len(entries) == 0 {
		if err := os.Remove(dir); err == nil {
			s.log.Info("Folder deleted: %s/", filepath.Base(dir))
		}
		return
	}

	s.log.Warn("Folder not empty: %s/ (%d remaining entries)", filepath.Base(dir), len(entries))
	for _, entry := range entries {
		s.log.Info("  remaining: %s", entry.Name())
	}

	if !s.opts.ForceDeleteFolders {
		if !s.promptYesNo("Delete remaining files and folder?") {
			return
		}
	}

	for _, entry := range entries {
		target := filepath.Join(dir, entry.Name())
		if err := os.RemoveAll(target); err != nil {
			s.log.Error("Failed to delete %s: %v", entry.Name(), err)
		} else {
			s.log.Info("Deleted: %s", entry.Name())
		}
	}

	if err := os.Remove(dir); err != nil {
		s.log.Error("Failed to delete folder %s/: %v", filepath.Base(dir), err)
	} else {
		s.log.Info("Folder deleted: %s/", filepath.Base(dir))
	}
}
