package store

import (
	"fmt"
	"os"
	"path/filepath"
)

const rawExt = ".html"

// RawStore reads and writes raw HTML documents. The fetch stage is its only
// writer; the extraction stage is its only reader.
type RawStore struct {
	dir string
}

// NewRawStore returns a store rooted at dir.
func NewRawStore(dir string) *RawStore {
	return &RawStore{dir: dir}
}

// List returns the sorted stems of all raw documents present right now.
// The extraction stage takes this listing exactly once per pass.
func (s *RawStore) List() ([]string, error) {
	return listStems(s.dir, rawExt)
}

// Read returns the raw markup for one document stem.
func (s *RawStore) Read(stem string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, stem+rawExt))
	if err != nil {
		return nil, fmt.Errorf("read raw document %s: %w", stem, err)
	}
	return data, nil
}

// Write durably publishes one raw document.
func (s *RawStore) Write(stem string, body []byte) (string, error) {
	name := stem + rawExt
	if err := writeFileAtomic(s.dir, name, body); err != nil {
		return "", err
	}
	return name, nil
}
