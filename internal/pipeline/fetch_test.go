package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/parkerlow/corpusmill/internal/corpus"
	"github.com/parkerlow/corpusmill/internal/retry"
)

// fakeFetcher serves canned responses keyed by URL. A URL with a nil
// response fails with errUnreachable on every attempt.
type fakeFetcher struct {
	responses map[string]*fakeResponse
	calls     map[string]int
}

type fakeResponse struct {
	body   []byte
	status int
}

var errUnreachable = errors.New("connection refused")

func (f *fakeFetcher) Fetch(_ context.Context, url string) ([]byte, int, error) {
	if f.calls == nil {
		f.calls = make(map[string]int)
	}
	f.calls[url]++
	resp, ok := f.responses[url]
	if !ok || resp == nil {
		return nil, 0, errUnreachable
	}
	return resp.body, resp.status, nil
}

func fastPolicy() *retry.Policy {
	return retry.NewPolicy(2, time.Millisecond, 2*time.Millisecond)
}

func readFetchMarker(t *testing.T, ts testStores) corpus.Marker {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(ts.statusDir, corpus.FetchCompleteMarker))
	require.NoError(t, err)
	var marker corpus.Marker
	require.NoError(t, json.Unmarshal(data, &marker))
	return marker
}

func TestFetchStageRun(t *testing.T) {
	t.Parallel()

	ts := newTestStores(t)
	fetcher := &fakeFetcher{responses: map[string]*fakeResponse{
		"http://a.example/": {body: []byte("<p>a</p>"), status: 200},
		"http://b.example/": {body: []byte("<p>b</p>"), status: 200},
	}}

	stage := NewFetchStage(fetcher, ts.raw, ts.markers, fastPolicy(), nil, zap.NewNop(), nil)
	urls := []string{"http://a.example/", "http://b.example/"}
	require.NoError(t, stage.Run(context.Background(), urls))

	marker := readFetchMarker(t, ts)
	require.Len(t, marker.Files, 2)
	for _, url := range urls {
		body, err := ts.raw.Read(DocumentStem(url))
		require.NoError(t, err)
		require.NotEmpty(t, body)
		require.Contains(t, marker.Files, DocumentStem(url)+".html")
	}
}

func TestFetchStageSkipsFailures(t *testing.T) {
	t.Parallel()

	ts := newTestStores(t)
	fetcher := &fakeFetcher{responses: map[string]*fakeResponse{
		"http://ok.example/":      {body: []byte("<p>ok</p>"), status: 200},
		"http://missing.example/": {body: []byte("not found"), status: 404},
		"http://down.example/":    nil,
	}}

	stage := NewFetchStage(fetcher, ts.raw, ts.markers, fastPolicy(), nil, zap.NewNop(), nil)
	err := stage.Run(context.Background(), []string{
		"http://ok.example/",
		"http://missing.example/",
		"http://down.example/",
	})
	require.NoError(t, err, "per-url failures must not abort the pass")

	marker := readFetchMarker(t, ts)
	require.Equal(t, []string{DocumentStem("http://ok.example/") + ".html"}, marker.Files)

	_, err = ts.raw.Read(DocumentStem("http://missing.example/"))
	require.Error(t, err, "non-2xx bodies are not persisted")
}

func TestFetchStageRetriesTransientErrors(t *testing.T) {
	t.Parallel()

	ts := newTestStores(t)
	fetcher := &fakeFetcher{responses: map[string]*fakeResponse{
		"http://down.example/": nil,
	}}

	stage := NewFetchStage(fetcher, ts.raw, ts.markers, fastPolicy(), nil, zap.NewNop(), nil)
	require.NoError(t, stage.Run(context.Background(), []string{"http://down.example/"}))

	require.Equal(t, 3, fetcher.calls["http://down.example/"], "initial attempt plus two retries")
	require.Empty(t, readFetchMarker(t, ts).Files)
}

func TestFetchStageEmptySeedList(t *testing.T) {
	t.Parallel()

	ts := newTestStores(t)
	stage := NewFetchStage(&fakeFetcher{}, ts.raw, ts.markers, fastPolicy(), nil, zap.NewNop(), nil)
	require.NoError(t, stage.Run(context.Background(), nil))

	require.True(t, ts.markers.Exists(corpus.FetchCompleteMarker))
	require.Empty(t, readFetchMarker(t, ts).Files)
}

func TestDocumentStemStable(t *testing.T) {
	t.Parallel()

	a := DocumentStem("http://x.example/page")
	require.Equal(t, a, DocumentStem("http://x.example/page"))
	require.NotEqual(t, a, DocumentStem("http://x.example/other"))
	require.Len(t, a, 16)
}
