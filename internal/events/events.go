package events

import (
	"time"

	"github.com/google/uuid"
)

// ProgressEvent describes a point-in-time progress report from a running
// background task. Events carry enough identity (task id and type) for an
// observer to route them to the right UI element without knowledge of the
// pool's internals.
type ProgressEvent struct {
	// TaskID identifies the in-flight task this report belongs to.
	TaskID uuid.UUID `json:"task_id"`

	// TaskType is the task type string the task was submitted under.
	TaskType string `json:"task_type"`

	// Stage is a short human-readable label for the current phase
	// (e.g. "decoding", "writing").
	Stage string `json:"stage"`

	// Fraction is the completed portion of the task in [0, 1].
	Fraction float64 `json:"fraction"`

	// At is the timestamp when the report was produced.
	At time.Time `json:"at"`
}

// Observer receives progress events. Implementations must be safe for
// concurrent use: events are delivered from worker goroutines.
type Observer interface {
	// OnProgress handles a single progress report. Implementations should
	// return quickly; slow observers delay the reporting task.
	OnProgress(event ProgressEvent)
}

// Emitter publishes progress events to registered observers.
type Emitter interface {
	// Emit delivers the event to every registered observer.
	Emit(event ProgressEvent)
}
