package sinks

import (
	"context"

	"github.com/parkerlow/corpusmill/internal/metrics"
	"github.com/parkerlow/corpusmill/internal/progress"
)

// PrometheusSink folds document events into the Prometheus counters.
type PrometheusSink struct{}

// NewPrometheusSink initializes the metrics collectors and returns the sink.
func NewPrometheusSink() *PrometheusSink {
	metrics.Init()
	return &PrometheusSink{}
}

// Consume updates the per-stage document counters.
func (s *PrometheusSink) Consume(_ context.Context, batch []progress.Event) error {
	for _, evt := range batch {
		switch evt.Kind {
		case progress.KindDocDone:
			metrics.ObserveDocument(evt.Stage, "processed")
		case progress.KindDocSkipped:
			metrics.ObserveDocument(evt.Stage, "skipped")
		case progress.KindRunDone:
			metrics.ObserveStageDuration(evt.Stage, evt.Dur)
		}
	}
	return nil
}

// Close implements the Sink interface; it performs no action.
func (s *PrometheusSink) Close(context.Context) error {
	return nil
}
