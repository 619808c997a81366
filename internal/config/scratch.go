package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// EnsureUploadDir creates the scratch directory for uploads and intermediate
// artifacts. Each request writes uniquely named files inside it, so no
// locking is needed across concurrent requests.
func EnsureUploadDir(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create upload directory: %w", err)
	}
	return nil
}

// SweepUploadDir removes scratch files older than maxAge. The normal path
// deletes a request's files before it returns; this catches leftovers from
// crashes or kills. Returns the number of files removed.
func SweepUploadDir(dir string, maxAge time.Duration) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, fmt.Errorf("read upload directory: %w", err)
	}

	cutoff := time.Now().Add(-maxAge)
	removed := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(dir, entry.Name())); err != nil {
			// Keep sweeping; a locked file should not abort startup.
			fmt.Fprintf(os.Stderr, "warning: failed to remove stale scratch file %s: %v\n", entry.Name(), err)
			continue
		}
		removed++
	}
	return removed, nil
}
