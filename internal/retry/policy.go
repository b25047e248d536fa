// Package retry implements a jittered exponential backoff policy for
// outbound HTTP calls.
package retry

import (
	"context"
	"crypto/rand"
	"errors"
	"math"
	"math/big"
	"net"
	"time"
)

// Policy decides whether and how long to wait before retrying.
type Policy struct {
	maxAttempts int
	baseDelay   time.Duration
	maxDelay    time.Duration
}

// NewPolicy builds a policy from explicit limits.
func NewPolicy(maxAttempts int, baseDelay, maxDelay time.Duration) *Policy {
	if maxAttempts < 0 {
		maxAttempts = 0
	}
	return &Policy{
		maxAttempts: maxAttempts,
		baseDelay:   baseDelay,
		maxDelay:    maxDelay,
	}
}

// NewDefaultPolicy builds a policy with sane defaults.
func NewDefaultPolicy() *Policy {
	return NewPolicy(3, 250*time.Millisecond, 5*time.Second)
}

// ShouldRetry decides whether the error is retryable at the given attempt.
func (p *Policy) ShouldRetry(err error, attempt int) bool {
	if err == nil {
		return false
	}
	if attempt >= p.maxAttempts {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return netErr.Timeout()
	}
	return true
}

// Backoff returns the wait duration before the next attempt.
func (p *Policy) Backoff(attempt int) time.Duration {
	delay := float64(p.baseDelay) * math.Pow(2, float64(attempt))
	if delay > float64(p.maxDelay) {
		delay = float64(p.maxDelay)
	}
	jitter := p.randomJitter(time.Duration(delay) / 2)
	return time.Duration(delay/2) + jitter
}

// Sleep blocks for the attempt's backoff or until the context finishes.
func (p *Policy) Sleep(ctx context.Context, attempt int) error {
	timer := time.NewTimer(p.Backoff(attempt))
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *Policy) randomJitter(limit time.Duration) time.Duration {
	if limit <= 0 {
		return 0
	}
	bound := big.NewInt(int64(limit))
	n, err := rand.Int(rand.Reader, bound)
	if err != nil {
		return limit / 2
	}
	return time.Duration(n.Int64())
}
