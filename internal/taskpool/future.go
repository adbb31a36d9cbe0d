package taskpool

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// Future is the caller's handle on one submitted task. It resolves exactly
// once, with either the handler's output or an error, regardless of how many
// workers, crashes, or shutdowns the task lives through. Waiting on a Future
// is cooperative: it never blocks the pool's ability to process other
// submissions or results.
type Future struct {
	taskID uuid.UUID

	done  chan struct{}
	once  sync.Once
	value any
	err   error
}

func newFuture(taskID uuid.UUID) *Future {
	return &Future{
		taskID: taskID,
		done:   make(chan struct{}),
	}
}

// TaskID returns the identifier assigned to this submission. It is unique
// among tasks currently outstanding.
func (f *Future) TaskID() uuid.UUID {
	return f.taskID
}

// Done returns a channel closed when the future has resolved, for use in
// select statements alongside other channels.
func (f *Future) Done() <-chan struct{} {
	return f.done
}

// Await blocks until the future resolves or the context is cancelled. A
// context cancellation abandons the wait only; the task itself keeps running
// and the future remains valid for a later Await.
func (f *Future) Await(ctx context.Context) (any, error) {
	select {
	case <-f.done:
		return f.value, f.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// resolve completes the future successfully. Later calls to resolve or
// reject are ignored; resolution is exactly-once.
func (f *Future) resolve(value any) {
	f.once.Do(func() {
		f.value = value
		close(f.done)
	})
}

// reject completes the future with an error.
func (f *Future) reject(err error) {
	f.once.Do(func() {
		f.err = err
		close(f.done)
	})
}
