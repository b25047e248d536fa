package pipeline

import (
	"context"
	"crypto/sha256"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/parkerlow/corpusmill/internal/corpus"
	"github.com/parkerlow/corpusmill/internal/progress"
	"github.com/parkerlow/corpusmill/internal/retry"
	"github.com/parkerlow/corpusmill/internal/store"
)

// Fetcher retrieves one URL's body. Implementations live in internal/fetch.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, int, error)
}

// FetchStage populates the raw store from a seed URL list and publishes the
// fetch-complete marker. It is the upstream collaborator of the extraction
// stage and owns the raw store's write side.
type FetchStage struct {
	fetcher Fetcher
	raw     *store.RawStore
	markers *store.MarkerStore
	policy  *retry.Policy
	clock   corpus.Clock
	logger  *zap.Logger
	hub     *progress.Hub
}

// NewFetchStage constructs a FetchStage.
func NewFetchStage(
	fetcher Fetcher,
	raw *store.RawStore,
	markers *store.MarkerStore,
	policy *retry.Policy,
	clock corpus.Clock,
	logger *zap.Logger,
	hub *progress.Hub,
) *FetchStage {
	if clock == nil {
		clock = corpus.SystemClock{}
	}
	if policy == nil {
		policy = retry.NewDefaultPolicy()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FetchStage{
		fetcher: fetcher,
		raw:     raw,
		markers: markers,
		policy:  policy,
		clock:   clock,
		logger:  logger,
		hub:     hub,
	}
}

// Run fetches every seed URL once, persisting each successful body before
// moving on, then publishes the fetch-complete marker. Failed URLs are
// logged and excluded from the marker listing.
func (s *FetchStage) Run(ctx context.Context, urls []string) error {
	runID := uuid.New()
	start := s.clock.Now()
	s.hub.Emit(progress.Event{RunID: runID, TS: start, Kind: progress.KindRunStart, Stage: StageFetch})

	produced := make([]string, 0, len(urls))
	for _, url := range urls {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("fetch pass interrupted: %w", err)
		}
		body, status, err := s.fetchWithRetry(ctx, url)
		if err != nil {
			s.logger.Warn("skipping unfetchable url", zap.String("url", url), zap.Error(err))
			s.hub.Emit(progress.Event{
				RunID: runID, TS: s.clock.Now(), Kind: progress.KindDocSkipped,
				Stage: StageFetch, Doc: url, Note: err.Error(),
			})
			continue
		}
		if status < 200 || status >= 300 {
			s.logger.Warn("skipping non-2xx url", zap.String("url", url), zap.Int("status", status))
			s.hub.Emit(progress.Event{
				RunID: runID, TS: s.clock.Now(), Kind: progress.KindDocSkipped,
				Stage: StageFetch, Doc: url, Note: fmt.Sprintf("status %d", status),
			})
			continue
		}

		name, err := s.raw.Write(DocumentStem(url), body)
		if err != nil {
			return fmt.Errorf("persist raw document for %s: %w", url, err)
		}
		produced = append(produced, name)
		s.hub.Emit(progress.Event{
			RunID: runID, TS: s.clock.Now(), Kind: progress.KindDocDone,
			Stage: StageFetch, Doc: name,
		})
	}

	marker := corpus.Marker{Timestamp: s.clock.Now(), Files: produced}
	if err := s.markers.Publish(corpus.FetchCompleteMarker, marker); err != nil {
		return fmt.Errorf("publish fetch marker: %w", err)
	}

	dur := s.clock.Now().Sub(start)
	s.hub.Emit(progress.Event{RunID: runID, TS: s.clock.Now(), Kind: progress.KindRunDone, Stage: StageFetch, Dur: dur})
	s.logger.Info("fetch pass complete",
		zap.Int("fetched", len(produced)),
		zap.Int("skipped", len(urls)-len(produced)),
		zap.Duration("dur", dur),
	)
	return nil
}

func (s *FetchStage) fetchWithRetry(ctx context.Context, url string) ([]byte, int, error) {
	attempt := 0
	for {
		body, status, err := s.fetcher.Fetch(ctx, url)
		if err == nil {
			return body, status, nil
		}
		if !s.policy.ShouldRetry(err, attempt) {
			return nil, 0, err
		}
		s.logger.Debug("retrying fetch",
			zap.String("url", url),
			zap.Int("attempt", attempt+1),
			zap.Error(err),
		)
		if serr := s.policy.Sleep(ctx, attempt); serr != nil {
			return nil, 0, serr
		}
		attempt++
	}
}

// DocumentStem derives the raw-store stem for a URL. Content-addressed names
// keep rewrites of the same URL idempotent.
func DocumentStem(url string) string {
	sum := sha256.Sum256([]byte(url))
	return fmt.Sprintf("%x", sum[:8])
}
