// Package progress defines the run events emitted by the pipeline stages and
// the hub that fans them out to sinks.
package progress

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Kind denotes the type of milestone represented by an Event.
type Kind string

// Supported event kinds.
const (
	KindRunStart   Kind = "RUN_START"
	KindRunDone    Kind = "RUN_DONE"
	KindRunError   Kind = "RUN_ERROR"
	KindDocDone    Kind = "DOC_DONE"
	KindDocSkipped Kind = "DOC_SKIPPED"
)

// Event captures a single milestone of a stage run.
type Event struct {
	// RunID identifies one stage invocation.
	RunID uuid.UUID
	// TS is the UTC timestamp recorded by the emitter.
	TS time.Time
	// Kind denotes which milestone occurred.
	Kind Kind
	// Stage names the emitting stage (fetch, process, analyze).
	Stage string
	// Doc optionally names the document the event concerns.
	Doc string
	// Dur captures execution latency for document and run completions.
	Dur time.Duration
	// Note lets emitters attach low-volume context (e.g. skip reason).
	Note string
}

// Validate performs coarse validation on Event payloads.
func (e Event) Validate() error {
	if e.RunID == uuid.Nil {
		return errors.New("run id is required")
	}
	if e.TS.IsZero() {
		return errors.New("timestamp is required")
	}
	if e.Stage == "" {
		return errors.New("stage is required")
	}
	switch e.Kind {
	case KindRunStart, KindRunDone, KindRunError:
	case KindDocDone, KindDocSkipped:
		if e.Doc == "" {
			return fmt.Errorf("%s requires a document", e.Kind)
		}
	default:
		return fmt.Errorf("unknown event kind %q", e.Kind)
	}
	if e.Dur < 0 {
		return errors.New("duration must be >= 0")
	}
	return nil
}
