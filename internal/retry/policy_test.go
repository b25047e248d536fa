package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestShouldRetry(t *testing.T) {
	t.Parallel()

	p := NewPolicy(3, time.Millisecond, 10*time.Millisecond)

	require.False(t, p.ShouldRetry(nil, 0))
	require.True(t, p.ShouldRetry(errors.New("boom"), 0))
	require.False(t, p.ShouldRetry(errors.New("boom"), 3))
	require.False(t, p.ShouldRetry(context.Canceled, 0))
	require.False(t, p.ShouldRetry(context.DeadlineExceeded, 0))
}

func TestBackoffBounded(t *testing.T) {
	t.Parallel()

	p := NewPolicy(5, 10*time.Millisecond, 80*time.Millisecond)

	for attempt := 0; attempt < 10; attempt++ {
		d := p.Backoff(attempt)
		require.GreaterOrEqual(t, d, time.Duration(0))
		require.LessOrEqual(t, d, 80*time.Millisecond)
	}
}

func TestSleepHonorsContext(t *testing.T) {
	t.Parallel()

	p := NewPolicy(3, time.Minute, time.Minute)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := p.Sleep(ctx, 0)
	require.ErrorIs(t, err, context.Canceled)
}
