// Package store implements the shared filesystem stores the pipeline stages
// hand work through, plus the readiness-marker protocol that orders them.
//
// Every artifact is published with write-then-rename so a consumer polling
// the store never observes a half-written file. Marker files are published
// only after every artifact they reference has been renamed into place;
// marker existence is the sole cross-process synchronization signal.
package store

import (
	"fmt"
	"os"
	"path/filepath"
)

// writeFileAtomic stages data in a temp file in the target directory and
// renames it into place. Rename within one directory is atomic on POSIX
// filesystems, which is what makes marker-gated publication safe against
// fast-polling readers.
func writeFileAtomic(dir, name string, data []byte) error {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("create dir %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, ".stage-*")
	if err != nil {
		return fmt.Errorf("stage temp file in %s: %w", dir, err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()           //nolint:errcheck // write error takes precedence
		os.Remove(tmpName)    //nolint:errcheck // best-effort cleanup
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName) //nolint:errcheck // best-effort cleanup
		return fmt.Errorf("close temp file: %w", err)
	}
	target := filepath.Join(dir, name)
	if err := os.Rename(tmpName, target); err != nil {
		os.Remove(tmpName) //nolint:errcheck // best-effort cleanup
		return fmt.Errorf("publish %s: %w", target, err)
	}
	return nil
}

// listStems returns the sorted file-name stems of entries in dir matching
// ext. A missing directory is an empty listing, not an error.
func listStems(dir, ext string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("list %s: %w", dir, err)
	}
	stems := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if filepath.Ext(name) != ext {
			continue
		}
		stems = append(stems, name[:len(name)-len(ext)])
	}
	// os.ReadDir returns entries sorted by name, which gives the fixed
	// lexicographic order the analysis stage depends on.
	return stems, nil
}
