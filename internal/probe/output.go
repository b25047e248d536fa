package probe

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Output file names under the probe output directory.
const (
	ResponsesFileName = "responses.json"
	SummaryFileName   = "summary.json"
	ErrorsFileName    = "errors.log"
)

// WriteOutputs persists a probe run: the full per-URL result array, the run
// summary, and an errors.log with one timestamped line per failed URL.
func WriteOutputs(dir string, results []Result, summary Summary) error {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	respData, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal responses: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, ResponsesFileName), respData, 0o600); err != nil {
		return fmt.Errorf("write responses: %w", err)
	}

	sumData, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal summary: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, SummaryFileName), sumData, 0o600); err != nil {
		return fmt.Errorf("write summary: %w", err)
	}

	var lines strings.Builder
	for _, res := range results {
		if res.Success() || res.Error == nil {
			continue
		}
		fmt.Fprintf(&lines, "[%s] [%s]: %s\n", res.Timestamp, res.URL, *res.Error)
	}
	if err := os.WriteFile(filepath.Join(dir, ErrorsFileName), []byte(lines.String()), 0o600); err != nil {
		return fmt.Errorf("write error log: %w", err)
	}
	return nil
}
