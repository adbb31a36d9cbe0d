package events

import (
	"log/slog"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
}

func testEvent() ProgressEvent {
	return ProgressEvent{
		TaskID:   uuid.New(),
		TaskType: "media.waveform",
		Stage:    "extracting peaks",
		Fraction: 0.25,
		At:       time.Now(),
	}
}

func TestInMemoryEmitter_DeliversToAllObservers(t *testing.T) {
	emitter := NewInMemoryEmitter(setupTestLogger())

	var mu sync.Mutex
	counts := make([]int, 3)
	for i := 0; i < 3; i++ {
		i := i
		emitter.RegisterObserver(ObserverFunc(func(event ProgressEvent) {
			mu.Lock()
			defer mu.Unlock()
			counts[i]++
		}))
	}

	emitter.Emit(testEvent())
	emitter.Emit(testEvent())

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []int{2, 2, 2}, counts)
}

func TestInMemoryEmitter_NoObserversDropsEvent(t *testing.T) {
	emitter := NewInMemoryEmitter(setupTestLogger())

	// Must not panic or block.
	emitter.Emit(testEvent())
}

func TestInMemoryEmitter_EventCarriesIdentity(t *testing.T) {
	emitter := NewInMemoryEmitter(setupTestLogger())

	var mu sync.Mutex
	var received []ProgressEvent
	emitter.RegisterObserver(ObserverFunc(func(event ProgressEvent) {
		mu.Lock()
		defer mu.Unlock()
		received = append(received, event)
	}))

	event := testEvent()
	emitter.Emit(event)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, received, 1)
	assert.Equal(t, event.TaskID, received[0].TaskID)
	assert.Equal(t, "media.waveform", received[0].TaskType)
	assert.InDelta(t, 0.25, received[0].Fraction, 1e-9)
}

func TestInMemoryEmitter_ConcurrentEmitAndRegister(t *testing.T) {
	emitter := NewInMemoryEmitter(setupTestLogger())

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			emitter.RegisterObserver(ObserverFunc(func(ProgressEvent) {}))
		}()
		go func() {
			defer wg.Done()
			emitter.Emit(testEvent())
		}()
	}
	wg.Wait()
}
