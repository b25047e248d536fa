package progress

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

type captureSink struct {
	mu     sync.Mutex
	events []Event
	closed bool
}

func (s *captureSink) Consume(_ context.Context, batch []Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, batch...)
	return nil
}

func (s *captureSink) Close(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *captureSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.events)
}

func validEvent(kind Kind) Event {
	return Event{
		RunID: uuid.New(),
		TS:    time.Now().UTC(),
		Kind:  kind,
		Stage: "process",
		Doc:   "doc.html",
	}
}

func TestHubDeliversEvents(t *testing.T) {
	t.Parallel()

	sink := &captureSink{}
	hub := NewHub(Config{MaxBatchWait: 10 * time.Millisecond}, sink)

	for i := 0; i < 5; i++ {
		hub.Emit(validEvent(KindDocDone))
	}

	require.Eventually(t, func() bool {
		return sink.count() == 5
	}, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, hub.Close(context.Background()))
	require.True(t, sink.closed)
}

func TestHubFlushesOnClose(t *testing.T) {
	t.Parallel()

	sink := &captureSink{}
	hub := NewHub(Config{MaxBatchWait: time.Hour}, sink)

	hub.Emit(validEvent(KindRunStart))
	hub.Emit(validEvent(KindRunDone))
	require.NoError(t, hub.Close(context.Background()))

	require.Equal(t, 2, sink.count(), "pending events must flush on close")
}

func TestHubDropsInvalidEvents(t *testing.T) {
	t.Parallel()

	sink := &captureSink{}
	hub := NewHub(Config{MaxBatchWait: 10 * time.Millisecond}, sink)

	hub.Emit(Event{})                      // missing everything
	hub.Emit(Event{RunID: uuid.New()})     // missing timestamp
	hub.Emit(validEvent("BOGUS"))          // unknown kind
	hub.Emit(validEvent(KindDocDone))      // valid
	require.NoError(t, hub.Close(context.Background()))

	require.Equal(t, 1, sink.count())
}

func TestHubEmitAfterCloseIsNoop(t *testing.T) {
	t.Parallel()

	sink := &captureSink{}
	hub := NewHub(Config{}, sink)
	require.NoError(t, hub.Close(context.Background()))

	hub.Emit(validEvent(KindDocDone))
	require.Equal(t, 0, sink.count())
}

func TestEventValidate(t *testing.T) {
	t.Parallel()

	evt := validEvent(KindDocSkipped)
	require.NoError(t, evt.Validate())

	noDoc := evt
	noDoc.Doc = ""
	require.Error(t, noDoc.Validate())

	runLevel := evt
	runLevel.Kind = KindRunDone
	runLevel.Doc = ""
	require.NoError(t, runLevel.Validate())

	negative := evt
	negative.Dur = -time.Second
	require.Error(t, negative.Validate())
}
