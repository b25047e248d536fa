package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Waiter blocks until a readiness marker exists. Implementations must
// preserve the happens-after contract: the marker is published only after
// every artifact it references is durably written, so returning from Wait
// means the referenced batch is safe to read.
//
// There is no timeout: a stalled producer stalls the consumer until the
// context is canceled from outside.
type Waiter interface {
	Wait(ctx context.Context) error
}

// PollWaiter checks for the marker at a fixed interval, sleeping between
// checks. This is the reference implementation of the protocol.
type PollWaiter struct {
	path     string
	interval time.Duration
	logger   *zap.Logger
}

// NewPollWaiter builds a PollWaiter for the marker at path.
func NewPollWaiter(path string, interval time.Duration, logger *zap.Logger) *PollWaiter {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PollWaiter{path: path, interval: interval, logger: logger}
}

// Wait blocks until the marker exists or the context finishes.
func (w *PollWaiter) Wait(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		if _, err := os.Stat(w.path); err == nil {
			return nil
		} else if !os.IsNotExist(err) {
			return fmt.Errorf("stat marker %s: %w", w.path, err)
		}
		w.logger.Info("waiting for readiness marker", zap.String("marker", w.path))
		select {
		case <-ctx.Done():
			return fmt.Errorf("marker wait interrupted: %w", ctx.Err())
		case <-ticker.C:
		}
	}
}

// WatchWaiter uses a filesystem watch on the marker's directory instead of
// polling. The marker directory must exist before Wait is called.
type WatchWaiter struct {
	path   string
	logger *zap.Logger
}

// NewWatchWaiter builds a WatchWaiter for the marker at path.
func NewWatchWaiter(path string, logger *zap.Logger) *WatchWaiter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WatchWaiter{path: path, logger: logger}
}

// Wait blocks until the marker exists or the context finishes.
func (w *WatchWaiter) Wait(ctx context.Context) error {
	dir := filepath.Dir(w.path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("create marker dir %s: %w", dir, err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close() //nolint:errcheck // nothing to do about close errors

	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}

	// Check after the watch is registered so a marker that appeared in
	// between is not missed.
	if _, err := os.Stat(w.path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("stat marker %s: %w", w.path, err)
	}
	w.logger.Info("watching for readiness marker", zap.String("marker", w.path))

	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("marker wait interrupted: %w", ctx.Err())
		case event, ok := <-watcher.Events:
			if !ok {
				return fmt.Errorf("watcher closed while waiting for %s", w.path)
			}
			// Markers are published via rename; accept create too for
			// producers that write in place.
			if event.Op&(fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if _, err := os.Stat(w.path); err == nil {
				return nil
			}
		case watchErr, ok := <-watcher.Errors:
			if !ok {
				return fmt.Errorf("watcher closed while waiting for %s", w.path)
			}
			w.logger.Warn("marker watch error", zap.Error(watchErr))
		}
	}
}
