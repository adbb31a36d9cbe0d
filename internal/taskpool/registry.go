package taskpool

import (
	"context"
	"fmt"
	"sync"
)

// ProgressFunc lets a handler report how far along it is. Reports are
// informational: they are forwarded to observers and never affect pool state.
type ProgressFunc func(stage string, fraction float64)

// Handler executes one task type. The payload is the value passed to Submit;
// handlers are expected to type-assert it and return a handler error (not
// panic) when it has the wrong shape. The context is cancelled when the pool
// shuts down.
//
// Handlers run inside an isolated worker and must not share mutable state
// with the caller or with other handlers.
type Handler func(ctx context.Context, payload any, progress ProgressFunc) (any, error)

// Registry maps task type strings to their handlers. All registrations must
// happen before the pool is constructed; the pool hands each worker an
// immutable snapshot at spawn time so every worker (including crash
// replacements) carries an identical handler table.
type Registry struct {
	mu       sync.RWMutex
	handlers map[string]Handler
}

// NewRegistry creates an empty handler registry.
func NewRegistry() *Registry {
	return &Registry{
		handlers: make(map[string]Handler),
	}
}

// Register binds a handler to a task type. Registering the same task type
// twice is a programming error and is rejected.
func (r *Registry) Register(taskType string, handler Handler) error {
	if taskType == "" {
		return fmt.Errorf("task type must not be empty")
	}
	if handler == nil {
		return fmt.Errorf("handler for task type %q must not be nil", taskType)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.handlers[taskType]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateHandler, taskType)
	}
	r.handlers[taskType] = handler
	return nil
}

// MustRegister is Register that panics on error, for static wiring at startup.
func (r *Registry) MustRegister(taskType string, handler Handler) {
	if err := r.Register(taskType, handler); err != nil {
		panic(err)
	}
}

// TaskTypes returns the registered task types in unspecified order.
func (r *Registry) TaskTypes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	types := make([]string, 0, len(r.handlers))
	for taskType := range r.handlers {
		types = append(types, taskType)
	}
	return types
}

// snapshot returns a copy of the handler table for a worker to own.
func (r *Registry) snapshot() map[string]Handler {
	r.mu.RLock()
	defer r.mu.RUnlock()

	handlers := make(map[string]Handler, len(r.handlers))
	for taskType, handler := range r.handlers {
		handlers[taskType] = handler
	}
	return handlers
}
