package pipeline

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/parkerlow/corpusmill/internal/analyze"
	"github.com/parkerlow/corpusmill/internal/corpus"
	"github.com/parkerlow/corpusmill/internal/metrics"
	"github.com/parkerlow/corpusmill/internal/progress"
	"github.com/parkerlow/corpusmill/internal/store"
)

// AnalyzeStage implements the analysis stage: it waits for the
// process-complete marker, loads the full processed store in lexicographic
// order, and publishes the corpus report.
type AnalyzeStage struct {
	processed *store.ProcessedStore
	reports   *store.ReportStore
	waiter    store.Waiter
	clock     corpus.Clock
	limits    analyze.Limits
	logger    *zap.Logger
	hub       *progress.Hub
}

// NewAnalyzeStage constructs an AnalyzeStage.
func NewAnalyzeStage(
	processed *store.ProcessedStore,
	reports *store.ReportStore,
	waiter store.Waiter,
	clock corpus.Clock,
	limits analyze.Limits,
	logger *zap.Logger,
	hub *progress.Hub,
) *AnalyzeStage {
	if clock == nil {
		clock = corpus.SystemClock{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AnalyzeStage{
		processed: processed,
		reports:   reports,
		waiter:    waiter,
		clock:     clock,
		limits:    limits,
		logger:    logger,
		hub:       hub,
	}
}

// Run executes one analysis pass and writes the report exactly once.
// A structurally corrupted processed record is skipped with a logged
// warning; the rest of the corpus is still analyzed.
func (s *AnalyzeStage) Run(ctx context.Context) error {
	runID := uuid.New()
	start := s.clock.Now()
	s.hub.Emit(progress.Event{RunID: runID, TS: start, Kind: progress.KindRunStart, Stage: StageAnalyze})

	if err := s.waiter.Wait(ctx); err != nil {
		return fmt.Errorf("wait for process marker: %w", err)
	}
	metrics.ObserveMarkerWait(corpus.ProcessCompleteMarker, s.clock.Now().Sub(start))

	stems, err := s.processed.List()
	if err != nil {
		return fmt.Errorf("list processed store: %w", err)
	}

	docs := make([]analyze.Document, 0, len(stems))
	for _, stem := range stems {
		record, err := s.processed.Get(stem)
		if err != nil {
			s.logger.Warn("skipping corrupted processed record", zap.String("stem", stem), zap.Error(err))
			s.hub.Emit(progress.Event{
				RunID: runID, TS: s.clock.Now(), Kind: progress.KindDocSkipped,
				Stage: StageAnalyze, Doc: stem, Note: err.Error(),
			})
			continue
		}
		docs = append(docs, analyze.Document{
			Name:   s.processed.FileName(stem),
			Tokens: corpus.TokenizeFold(record.Text),
		})
		s.hub.Emit(progress.Event{
			RunID: runID, TS: s.clock.Now(), Kind: progress.KindDocDone,
			Stage: StageAnalyze, Doc: s.processed.FileName(stem),
		})
	}

	report := analyze.BuildReport(docs, s.limits, s.clock.Now())
	path, err := s.reports.Publish(report)
	if err != nil {
		return fmt.Errorf("publish corpus report: %w", err)
	}

	dur := s.clock.Now().Sub(start)
	s.hub.Emit(progress.Event{RunID: runID, TS: s.clock.Now(), Kind: progress.KindRunDone, Stage: StageAnalyze, Dur: dur})
	s.logger.Info("analysis pass complete",
		zap.Int("documents", report.DocumentsProcessed),
		zap.Int("total_words", report.TotalWords),
		zap.Int("unique_words", report.UniqueWords),
		zap.String("report", path),
		zap.Duration("dur", dur),
	)
	return nil
}
