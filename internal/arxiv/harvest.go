package arxiv

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/parkerlow/corpusmill/internal/corpus"
)

// Output file names under the harvest output directory.
const (
	PapersFileName   = "papers.json"
	AnalysisFileName = "corpus_analysis.json"
	LogFileName      = "processing.log"
)

// MaxResultsLimit bounds a single harvest request.
const MaxResultsLimit = 100

// Paper is one published record in papers.json.
type Paper struct {
	ArxivID       string        `json:"arxiv_id"`
	Title         string        `json:"title"`
	Authors       []string      `json:"authors"`
	Abstract      string        `json:"abstract"`
	Categories    []string      `json:"categories"`
	Published     string        `json:"published"`
	Updated       string        `json:"updated"`
	AbstractStats AbstractStats `json:"abstract_stats"`
}

// CorpusWord is one row of the corpus-wide top-50 table. Documents counts
// the abstracts whose own top-word table contained the word.
type CorpusWord struct {
	Word      string `json:"word"`
	Frequency int    `json:"frequency"`
	Documents int    `json:"documents"`
}

// CorpusStats aggregates abstract lengths across the harvest.
type CorpusStats struct {
	TotalAbstracts        int     `json:"total_abstracts"`
	TotalWords            int     `json:"total_words"`
	UniqueWordsGlobal     int     `json:"unique_words_global"`
	AvgAbstractLength     float64 `json:"avg_abstract_length"`
	LongestAbstractWords  int     `json:"longest_abstract_words"`
	ShortestAbstractWords int     `json:"shortest_abstract_words"`
}

// TechnicalTerms groups term extractions across all abstracts.
type TechnicalTerms struct {
	UppercaseTerms  []string `json:"uppercase_terms"`
	NumericTerms    []string `json:"numeric_terms"`
	HyphenatedTerms []string `json:"hyphenated_terms"`
}

// CorpusAnalysis is the corpus_analysis.json document.
type CorpusAnalysis struct {
	Query                string         `json:"query"`
	PapersProcessed      int            `json:"papers_processed"`
	ProcessingTimestamp  string         `json:"processing_timestamp"`
	CorpusStats          CorpusStats    `json:"corpus_stats"`
	Top50Words           []CorpusWord   `json:"top_50_words"`
	TechnicalTerms       TechnicalTerms `json:"technical_terms"`
	CategoryDistribution map[string]int `json:"category_distribution"`
}

const corpusTopWords = 50

// RunLog appends timestamped lines to processing.log. A nil RunLog is a
// valid no-op writer.
type RunLog struct {
	file  *os.File
	clock corpus.Clock
}

// OpenRunLog opens (appending) the run log at path.
func OpenRunLog(path string, clock corpus.Clock) (*RunLog, error) {
	if clock == nil {
		clock = corpus.SystemClock{}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, fmt.Errorf("open run log: %w", err)
	}
	return &RunLog{file: f, clock: clock}, nil
}

// Printf appends one timestamped line.
func (l *RunLog) Printf(format string, args ...any) {
	if l == nil || l.file == nil {
		return
	}
	ts := l.clock.Now().UTC().Format(time.RFC3339)
	fmt.Fprintf(l.file, "%s %s\n", ts, fmt.Sprintf(format, args...))
}

// Close closes the underlying file.
func (l *RunLog) Close() error {
	if l == nil || l.file == nil {
		return nil
	}
	return l.file.Close()
}

// Harvester runs one fetch-parse-analyze-write pass.
type Harvester struct {
	client *Client
	clock  corpus.Clock
	logger *zap.Logger
}

// NewHarvester constructs a Harvester.
func NewHarvester(client *Client, clock corpus.Clock, logger *zap.Logger) *Harvester {
	if clock == nil {
		clock = corpus.SystemClock{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Harvester{client: client, clock: clock, logger: logger}
}

// Run queries the feed and writes papers.json, corpus_analysis.json, and
// processing.log under outDir. maxResults must be in 1..MaxResultsLimit.
func (h *Harvester) Run(ctx context.Context, query string, maxResults int, outDir string) error {
	if maxResults < 1 || maxResults > MaxResultsLimit {
		return fmt.Errorf("max results must be in 1..%d, got %d", MaxResultsLimit, maxResults)
	}
	if err := os.MkdirAll(outDir, 0o750); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	runLog, err := OpenRunLog(filepath.Join(outDir, LogFileName), h.clock)
	if err != nil {
		return err
	}
	defer runLog.Close()

	runLog.Printf("Starting arXiv query: %s", query)
	data, err := h.client.FetchFeed(ctx, query, maxResults, runLog)
	if err != nil {
		return fmt.Errorf("fetch feed: %w", err)
	}

	entries := ParseFeed(data, h.logger)
	runLog.Printf("Fetched %d result entries after parsing", len(entries))

	papers, analysis := h.analyze(query, entries)

	if err := writeJSON(filepath.Join(outDir, PapersFileName), papers); err != nil {
		return err
	}
	if err := writeJSON(filepath.Join(outDir, AnalysisFileName), analysis); err != nil {
		return err
	}

	runLog.Printf("Completed processing: %d papers", len(papers))
	h.logger.Info("harvest complete",
		zap.String("query", query),
		zap.Int("papers", len(papers)),
		zap.String("out", outDir),
	)
	return nil
}

func (h *Harvester) analyze(query string, entries []Entry) ([]Paper, CorpusAnalysis) {
	papers := make([]Paper, 0, len(entries))
	analysis := CorpusAnalysis{
		Query:                query,
		ProcessingTimestamp:  h.clock.Now().UTC().Format(time.RFC3339),
		Top50Words:           []CorpusWord{},
		CategoryDistribution: make(map[string]int),
	}

	globalUnique := make(map[string]struct{})
	wordDocCounts := make(map[string]int)
	corpusFreq := make(map[string]int)
	upper := make(map[string]struct{})
	numeric := make(map[string]struct{})
	hyphenated := make(map[string]struct{})
	shortest := -1

	for _, e := range entries {
		detail := analyzeAbstract(e.Abstract)
		papers = append(papers, Paper{
			ArxivID:       e.ArxivID,
			Title:         e.Title,
			Authors:       e.Authors,
			Abstract:      e.Abstract,
			Categories:    e.Categories,
			Published:     e.Published,
			Updated:       e.Updated,
			AbstractStats: detail.Stats,
		})

		analysis.CorpusStats.TotalWords += detail.Stats.TotalWords
		if detail.Stats.TotalWords > analysis.CorpusStats.LongestAbstractWords {
			analysis.CorpusStats.LongestAbstractWords = detail.Stats.TotalWords
		}
		if shortest < 0 || detail.Stats.TotalWords < shortest {
			shortest = detail.Stats.TotalWords
		}

		for _, w := range abstractWordPattern.FindAllString(strings.ToLower(e.Abstract), -1) {
			globalUnique[w] = struct{}{}
			if _, skip := stopwords[w]; !skip {
				corpusFreq[w]++
			}
		}
		for _, wc := range detail.TopWords {
			wordDocCounts[wc.Word]++
		}
		for _, t := range detail.UppercaseTerms {
			upper[t] = struct{}{}
		}
		for _, t := range detail.NumericTerms {
			numeric[t] = struct{}{}
		}
		for _, t := range detail.HyphenatedTerms {
			hyphenated[t] = struct{}{}
		}
		for _, c := range e.Categories {
			analysis.CategoryDistribution[c]++
		}
	}

	analysis.PapersProcessed = len(papers)
	analysis.CorpusStats.TotalAbstracts = len(papers)
	analysis.CorpusStats.UniqueWordsGlobal = len(globalUnique)
	if len(papers) > 0 {
		analysis.CorpusStats.AvgAbstractLength = float64(analysis.CorpusStats.TotalWords) / float64(len(papers))
	}
	if shortest >= 0 {
		analysis.CorpusStats.ShortestAbstractWords = shortest
	}

	for _, wc := range rankWordCounts(corpusFreq, corpusTopWords) {
		analysis.Top50Words = append(analysis.Top50Words, CorpusWord{
			Word:      wc.Word,
			Frequency: wc.Count,
			Documents: wordDocCounts[wc.Word],
		})
	}
	analysis.TechnicalTerms = TechnicalTerms{
		UppercaseTerms:  setToSorted(upper),
		NumericTerms:    setToSorted(numeric),
		HyphenatedTerms: setToSorted(hyphenated),
	}
	return papers, analysis
}

func setToSorted(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for v := range set {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	return nil
}
