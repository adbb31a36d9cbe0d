package taskpool

import "errors"

// Common errors surfaced through futures or returned by pool operations.
var (
	// ErrPoolClosed is the rejection delivered to every future still pending
	// when the pool shuts down, and to any submission made afterwards.
	ErrPoolClosed = errors.New("task pool is shut down")

	// ErrQueueFull rejects a submission when all workers are busy and the
	// wait queue has reached its configured capacity.
	ErrQueueFull = errors.New("task wait queue is full")

	// ErrWorkerCrashed rejects the future of a task whose worker terminated
	// unexpectedly before producing a result.
	ErrWorkerCrashed = errors.New("worker crashed while executing task")

	// ErrUnknownTaskType is the handler error for a task type no handler
	// was registered under.
	ErrUnknownTaskType = errors.New("no handler registered for task type")

	// ErrDuplicateHandler is returned when registering a task type twice.
	ErrDuplicateHandler = errors.New("handler already registered for task type")
)
