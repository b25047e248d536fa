package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/parkerlow/corpusmill/internal/corpus"
)

const processedExt = ".json"

// ProcessedStore persists normalized per-document records. Each record is
// written once, durably, before the extraction stage moves to the next
// document; a crash mid-batch loses only unwritten records.
type ProcessedStore struct {
	dir string
}

// NewProcessedStore returns a store rooted at dir.
func NewProcessedStore(dir string) *ProcessedStore {
	return &ProcessedStore{dir: dir}
}

// Put publishes one processed record and returns its file name.
func (s *ProcessedStore) Put(stem string, doc corpus.ProcessedDocument) (string, error) {
	payload, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal processed record %s: %w", stem, err)
	}
	name := stem + processedExt
	if err := writeFileAtomic(s.dir, name, payload); err != nil {
		return "", err
	}
	return name, nil
}

// List returns the sorted stems of all processed records.
func (s *ProcessedStore) List() ([]string, error) {
	return listStems(s.dir, processedExt)
}

// Get loads one processed record by stem.
func (s *ProcessedStore) Get(stem string) (corpus.ProcessedDocument, error) {
	path := filepath.Join(s.dir, stem+processedExt)
	data, err := os.ReadFile(path)
	if err != nil {
		return corpus.ProcessedDocument{}, fmt.Errorf("read processed record %s: %w", stem, err)
	}
	var doc corpus.ProcessedDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return corpus.ProcessedDocument{}, fmt.Errorf("decode processed record %s: %w", stem, err)
	}
	return doc, nil
}

// FileName returns the record file name for a stem.
func (s *ProcessedStore) FileName(stem string) string {
	return stem + processedExt
}
