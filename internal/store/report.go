package store

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/parkerlow/corpusmill/internal/corpus"
)

// ReportFileName is the analysis stage's single output artifact.
const ReportFileName = "final_report.json"

// ReportStore publishes the corpus report. The report is staged and renamed
// so no partial report is ever externally observable.
type ReportStore struct {
	dir string
}

// NewReportStore returns a store rooted at dir.
func NewReportStore(dir string) *ReportStore {
	return &ReportStore{dir: dir}
}

// Publish writes the report exactly once per run and returns its path.
func (s *ReportStore) Publish(report corpus.CorpusReport) (string, error) {
	payload, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal corpus report: %w", err)
	}
	if err := writeFileAtomic(s.dir, ReportFileName, payload); err != nil {
		return "", err
	}
	return filepath.Join(s.dir, ReportFileName), nil
}
