// Package pipeline orchestrates the stages: fetch populates the raw store,
// process converts raw documents into normalized records, analyze computes
// the corpus report. Stages are independently scheduled processes that hand
// off work exclusively through the shared stores, ordered by readiness
// markers.
package pipeline

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/parkerlow/corpusmill/internal/corpus"
	"github.com/parkerlow/corpusmill/internal/extract"
	"github.com/parkerlow/corpusmill/internal/metrics"
	"github.com/parkerlow/corpusmill/internal/progress"
	"github.com/parkerlow/corpusmill/internal/store"
)

// Stage names used in events and metrics.
const (
	StageFetch   = "fetch"
	StageProcess = "process"
	StageAnalyze = "analyze"
)

// ProcessStage implements the extraction stage: it waits for the upstream
// fetch-complete marker, converts every raw document present at that moment,
// and publishes the process-complete marker naming the produced records.
type ProcessStage struct {
	raw         *store.RawStore
	processed   *store.ProcessedStore
	markers     *store.MarkerStore
	waiter      store.Waiter
	clock       corpus.Clock
	concurrency int
	logger      *zap.Logger
	hub         *progress.Hub
}

// NewProcessStage constructs a ProcessStage.
func NewProcessStage(
	raw *store.RawStore,
	processed *store.ProcessedStore,
	markers *store.MarkerStore,
	waiter store.Waiter,
	clock corpus.Clock,
	concurrency int,
	logger *zap.Logger,
	hub *progress.Hub,
) *ProcessStage {
	if clock == nil {
		clock = corpus.SystemClock{}
	}
	if concurrency <= 0 {
		concurrency = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProcessStage{
		raw:         raw,
		processed:   processed,
		markers:     markers,
		waiter:      waiter,
		clock:       clock,
		concurrency: concurrency,
		logger:      logger,
		hub:         hub,
	}
}

// Run executes one extraction pass. It blocks until the upstream marker
// exists, converts the static raw listing, and publishes the downstream
// marker. Documents that arrive after the listing is taken are not picked up.
func (s *ProcessStage) Run(ctx context.Context) error {
	runID := uuid.New()
	start := s.clock.Now()
	s.emit(progress.Event{RunID: runID, TS: start, Kind: progress.KindRunStart, Stage: StageProcess})

	if err := s.waiter.Wait(ctx); err != nil {
		return fmt.Errorf("wait for fetch marker: %w", err)
	}
	metrics.ObserveMarkerWait(corpus.FetchCompleteMarker, s.clock.Now().Sub(start))

	stems, err := s.raw.List()
	if err != nil {
		s.emitError(runID, err)
		return fmt.Errorf("list raw store: %w", err)
	}
	s.logger.Info("extraction pass starting",
		zap.Int("documents", len(stems)),
		zap.Int("concurrency", s.concurrency),
	)

	var mu sync.Mutex
	produced := make([]string, 0, len(stems))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for _, stem := range stems {
		stem := stem
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			name, ok := s.processOne(stem, runID)
			if !ok {
				return nil
			}
			mu.Lock()
			produced = append(produced, name)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		s.emitError(runID, err)
		return fmt.Errorf("extraction pass: %w", err)
	}

	// Parallel completion order is nondeterministic; the marker listing is
	// sorted so reruns produce identical content.
	sort.Strings(produced)

	marker := corpus.Marker{Timestamp: s.clock.Now(), Files: produced}
	if err := s.markers.Publish(corpus.ProcessCompleteMarker, marker); err != nil {
		s.emitError(runID, err)
		return fmt.Errorf("publish process marker: %w", err)
	}

	dur := s.clock.Now().Sub(start)
	s.emit(progress.Event{RunID: runID, TS: s.clock.Now(), Kind: progress.KindRunDone, Stage: StageProcess, Dur: dur})
	s.logger.Info("extraction pass complete",
		zap.Int("produced", len(produced)),
		zap.Int("skipped", len(stems)-len(produced)),
		zap.Duration("dur", dur),
	)
	return nil
}

// processOne converts a single document. Unreadable documents and failed
// record writes are skipped with a logged warning; the marker only vouches
// for records that were durably written, so a skip never weakens the
// protocol's guarantee.
func (s *ProcessStage) processOne(stem string, runID uuid.UUID) (string, bool) {
	body, err := s.raw.Read(stem)
	if err != nil {
		s.logger.Warn("skipping unreadable raw document", zap.String("stem", stem), zap.Error(err))
		s.emit(progress.Event{
			RunID: runID, TS: s.clock.Now(), Kind: progress.KindDocSkipped,
			Stage: StageProcess, Doc: stem, Note: err.Error(),
		})
		return "", false
	}

	docStart := s.clock.Now()
	doc := extract.Document(stem+".html", string(body), s.clock.Now())
	name, err := s.processed.Put(stem, doc)
	if err != nil {
		s.logger.Error("failed to persist processed record", zap.String("stem", stem), zap.Error(err))
		s.emit(progress.Event{
			RunID: runID, TS: s.clock.Now(), Kind: progress.KindDocSkipped,
			Stage: StageProcess, Doc: stem, Note: err.Error(),
		})
		return "", false
	}

	s.emit(progress.Event{
		RunID: runID, TS: s.clock.Now(), Kind: progress.KindDocDone,
		Stage: StageProcess, Doc: name, Dur: s.clock.Now().Sub(docStart),
	})
	return name, true
}

func (s *ProcessStage) emit(evt progress.Event) {
	s.hub.Emit(evt)
}

func (s *ProcessStage) emitError(runID uuid.UUID, err error) {
	s.emit(progress.Event{
		RunID: runID, TS: s.clock.Now(), Kind: progress.KindRunError,
		Stage: StageProcess, Note: err.Error(),
	})
}
