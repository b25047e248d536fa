package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/parkerlow/corpusmill/internal/corpus"
)

// MarkerStore publishes and inspects readiness markers. A producer calls
// Publish only after every artifact the marker vouches for has been renamed
// into place; that ordering is the protocol's whole durability guarantee.
type MarkerStore struct {
	dir string
}

// NewMarkerStore returns a store rooted at dir.
func NewMarkerStore(dir string) *MarkerStore {
	return &MarkerStore{dir: dir}
}

// Publish atomically writes the named marker.
func (s *MarkerStore) Publish(name string, m corpus.Marker) error {
	payload, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal marker %s: %w", name, err)
	}
	return writeFileAtomic(s.dir, name, payload)
}

// Exists reports whether the named marker has been published.
func (s *MarkerStore) Exists(name string) bool {
	_, err := os.Stat(filepath.Join(s.dir, name))
	return err == nil
}

// Path returns the marker's location on disk.
func (s *MarkerStore) Path(name string) string {
	return filepath.Join(s.dir, name)
}
