package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/parkerlow/corpusmill/internal/corpus"
)

func TestPollWaiterReturnsWhenMarkerExists(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	markers := NewMarkerStore(dir)
	require.NoError(t, markers.Publish(corpus.FetchCompleteMarker, corpus.Marker{Timestamp: time.Now()}))

	w := NewPollWaiter(markers.Path(corpus.FetchCompleteMarker), 10*time.Millisecond, zap.NewNop())
	require.NoError(t, w.Wait(context.Background()))
}

func TestPollWaiterObservesLateMarker(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	markers := NewMarkerStore(dir)
	w := NewPollWaiter(markers.Path(corpus.FetchCompleteMarker), 10*time.Millisecond, zap.NewNop())

	done := make(chan error, 1)
	go func() {
		done <- w.Wait(context.Background())
	}()

	time.Sleep(30 * time.Millisecond)
	require.NoError(t, markers.Publish(corpus.FetchCompleteMarker, corpus.Marker{Timestamp: time.Now()}))

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("poll waiter never observed the marker")
	}
}

func TestPollWaiterHonorsContext(t *testing.T) {
	t.Parallel()

	w := NewPollWaiter(filepath.Join(t.TempDir(), "never.json"), 10*time.Millisecond, zap.NewNop())
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := w.Wait(ctx)
	require.Error(t, err)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestWatchWaiterObservesLateMarker(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	markers := NewMarkerStore(dir)
	w := NewWatchWaiter(markers.Path(corpus.ProcessCompleteMarker), zap.NewNop())

	done := make(chan error, 1)
	go func() {
		done <- w.Wait(context.Background())
	}()

	time.Sleep(50 * time.Millisecond)
	require.NoError(t, markers.Publish(corpus.ProcessCompleteMarker, corpus.Marker{Timestamp: time.Now()}))

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("watch waiter never observed the marker")
	}
}

func TestWatchWaiterSeesPreexistingMarker(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "marker.json")
	require.NoError(t, os.WriteFile(path, []byte("{}"), 0o600))

	w := NewWatchWaiter(path, zap.NewNop())
	require.NoError(t, w.Wait(context.Background()))
}

func TestWatchWaiterHonorsContext(t *testing.T) {
	t.Parallel()

	w := NewWatchWaiter(filepath.Join(t.TempDir(), "never.json"), zap.NewNop())
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := w.Wait(ctx)
	require.Error(t, err)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}
