package events

import (
	"log/slog"
	"sync"
)

// InMemoryEmitter is a simple implementation of the Emitter interface that
// stores registered observers in memory and fans events out to them.
type InMemoryEmitter struct {
	observers []Observer
	mu        sync.RWMutex
	logger    *slog.Logger
}

// NewInMemoryEmitter creates a new instance of InMemoryEmitter.
func NewInMemoryEmitter(logger *slog.Logger) *InMemoryEmitter {
	return &InMemoryEmitter{
		observers: make([]Observer, 0),
		logger:    logger.With("component", "in_memory_emitter"),
	}
}

// RegisterObserver adds a new observer to receive progress events.
func (e *InMemoryEmitter) RegisterObserver(observer Observer) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.observers = append(e.observers, observer)
	e.logger.Debug("registered new progress observer", "observer_count", len(e.observers))
}

// Emit delivers the event to all registered observers. Delivery is
// best-effort: every observer sees the event even if another observer
// misbehaves, and an event emitted with no observers registered is dropped.
func (e *InMemoryEmitter) Emit(event ProgressEvent) {
	e.mu.RLock()
	observers := make([]Observer, len(e.observers))
	copy(observers, e.observers)
	e.mu.RUnlock()

	if len(observers) == 0 {
		return
	}

	for _, observer := range observers {
		observer.OnProgress(event)
	}
}

// ObserverFunc adapts a plain function to the Observer interface.
type ObserverFunc func(event ProgressEvent)

// OnProgress calls the wrapped function.
func (f ObserverFunc) OnProgress(event ProgressEvent) {
	f(event)
}
