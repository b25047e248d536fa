package arxiv

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func noSleep(context.Context, time.Duration) error { return nil }

func feedServer(t *testing.T, rateLimited int32) (*httptest.Server, *int32) {
	t.Helper()
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		n := atomic.AddInt32(&calls, 1)
		if n <= rateLimited {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Header().Set("Content-Type", "application/atom+xml")
		_, _ = w.Write([]byte(sampleFeed))
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func TestHarvesterRun(t *testing.T) {
	t.Parallel()

	srv, _ := feedServer(t, 0)
	client := NewClient(srv.Client(), srv.URL, noSleep, zap.NewNop())
	h := NewHarvester(client, nil, zap.NewNop())

	dir := t.TempDir()
	require.NoError(t, h.Run(context.Background(), "cat:cs.CL", 10, dir))

	papersData, err := os.ReadFile(filepath.Join(dir, PapersFileName))
	require.NoError(t, err)
	var papers []Paper
	require.NoError(t, json.Unmarshal(papersData, &papers))
	require.Len(t, papers, 2)
	require.Equal(t, "2301.00001v1", papers[0].ArxivID)
	require.Greater(t, papers[0].AbstractStats.TotalWords, 0)

	analysisData, err := os.ReadFile(filepath.Join(dir, AnalysisFileName))
	require.NoError(t, err)
	var analysis CorpusAnalysis
	require.NoError(t, json.Unmarshal(analysisData, &analysis))
	require.Equal(t, "cat:cs.CL", analysis.Query)
	require.Equal(t, 2, analysis.PapersProcessed)
	require.Equal(t, 2, analysis.CorpusStats.TotalAbstracts)
	require.Equal(t, map[string]int{"cs.CL": 1, "cs.LG": 2}, analysis.CategoryDistribution)
	require.NotEmpty(t, analysis.Top50Words)
	require.Contains(t, analysis.TechnicalTerms.UppercaseTerms, "GPU")
	require.Contains(t, analysis.TechnicalTerms.HyphenatedTerms, "self-supervised")

	logData, err := os.ReadFile(filepath.Join(dir, LogFileName))
	require.NoError(t, err)
	log := string(logData)
	require.Contains(t, log, "Starting arXiv query: cat:cs.CL")
	require.Contains(t, log, "Completed processing: 2 papers")
}

func TestHarvesterRetriesOnRateLimit(t *testing.T) {
	t.Parallel()

	srv, calls := feedServer(t, 2)
	client := NewClient(srv.Client(), srv.URL, noSleep, zap.NewNop())
	h := NewHarvester(client, nil, zap.NewNop())

	dir := t.TempDir()
	require.NoError(t, h.Run(context.Background(), "all:test", 5, dir))
	require.Equal(t, int32(3), atomic.LoadInt32(calls), "two 429s then success")

	logData, err := os.ReadFile(filepath.Join(dir, LogFileName))
	require.NoError(t, err)
	require.Contains(t, string(logData), "HTTP 429 received")
}

func TestHarvesterGivesUpAfterRateLimitAttempts(t *testing.T) {
	t.Parallel()

	srv, calls := feedServer(t, 100)
	client := NewClient(srv.Client(), srv.URL, noSleep, zap.NewNop())
	h := NewHarvester(client, nil, zap.NewNop())

	err := h.Run(context.Background(), "all:test", 5, t.TempDir())
	require.Error(t, err)
	require.Equal(t, int32(3), atomic.LoadInt32(calls))
}

func TestHarvesterRejectsInvalidMaxResults(t *testing.T) {
	t.Parallel()

	h := NewHarvester(NewClient(nil, "", noSleep, nil), nil, zap.NewNop())
	require.Error(t, h.Run(context.Background(), "q", 0, t.TempDir()))
	require.Error(t, h.Run(context.Background(), "q", 101, t.TempDir()))
}

func TestHarvesterEmptyFeed(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<feed xmlns="http://www.w3.org/2005/Atom"></feed>`))
	}))
	t.Cleanup(srv.Close)

	client := NewClient(srv.Client(), srv.URL, noSleep, zap.NewNop())
	h := NewHarvester(client, nil, zap.NewNop())

	dir := t.TempDir()
	require.NoError(t, h.Run(context.Background(), "all:none", 5, dir))

	analysisData, err := os.ReadFile(filepath.Join(dir, AnalysisFileName))
	require.NoError(t, err)
	var analysis CorpusAnalysis
	require.NoError(t, json.Unmarshal(analysisData, &analysis))
	require.Equal(t, 0, analysis.PapersProcessed)
	require.Equal(t, 0.0, analysis.CorpusStats.AvgAbstractLength)
	require.NotNil(t, analysis.Top50Words)
	require.Empty(t, analysis.Top50Words)
}
