package taskpool

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/clipforge/clipforge/internal/events"
	"github.com/google/uuid"
)

// taskMessage is the unit of work sent to a worker's inbox. Payloads are
// in-process values, not a serialized wire format: every worker lives inside
// the editor process.
type taskMessage struct {
	taskID   uuid.UUID
	taskType string
	payload  any
}

// resultMessage travels from a worker back to the pool's router. Exactly one
// result is produced per task message unless the worker faults first.
type resultMessage struct {
	taskID uuid.UUID
	worker *worker
	value  any
	err    error
}

// worker is a single isolated execution unit. It owns no cross-task state:
// its handler table and channels are fixed at spawn time, it processes one
// task message at a time, and it shares no mutable memory with the
// coordinator or with other workers. A handler panic is treated as a worker
// fault and terminates this instance; the pool spawns a replacement rather
// than resurrecting it.
type worker struct {
	id       int
	handlers map[string]Handler
	inbox    chan taskMessage

	resultCh chan<- resultMessage
	faultCh  chan<- *worker

	// quit is closed by the pool for an orderly stop (shutdown or
	// replacement); kill is closed to simulate an abnormal death and makes
	// the worker report a fault before exiting.
	quit     chan struct{}
	kill     chan struct{}
	killOnce sync.Once
	quitOnce sync.Once

	ctx      context.Context
	progress func(events.ProgressEvent)
	logger   *slog.Logger
}

type workerConfig struct {
	id       int
	handlers map[string]Handler
	resultCh chan<- resultMessage
	faultCh  chan<- *worker
	ctx      context.Context
	progress func(events.ProgressEvent)
	logger   *slog.Logger
}

// spawnWorker creates a worker and starts its loop. All workers of a pool,
// including crash replacements, are spawned from the same configuration.
func spawnWorker(cfg workerConfig) *worker {
	w := &worker{
		id:       cfg.id,
		handlers: cfg.handlers,
		inbox:    make(chan taskMessage, 1),
		resultCh: cfg.resultCh,
		faultCh:  cfg.faultCh,
		quit:     make(chan struct{}),
		kill:     make(chan struct{}),
		ctx:      cfg.ctx,
		progress: cfg.progress,
		logger:   cfg.logger.With("worker_id", cfg.id),
	}
	go w.loop()
	return w
}

// send hands a task message to the worker. The inbox holds one message and
// the pool only sends to idle workers, so send never blocks.
func (w *worker) send(msg taskMessage) {
	w.inbox <- msg
}

// stop terminates the worker without a fault report. Used at pool shutdown
// and when discarding an already-dead instance.
func (w *worker) stop() {
	w.quitOnce.Do(func() {
		close(w.quit)
	})
}

// Kill forces an abnormal termination, as if the worker died underneath the
// pool. An idle worker dies immediately; a worker in the middle of a handler
// dies once the handler returns. Either way the pool observes a fault.
func (w *worker) Kill() {
	w.killOnce.Do(func() {
		close(w.kill)
	})
}

func (w *worker) loop() {
	w.logger.Debug("starting worker")

	for {
		select {
		case <-w.quit:
			w.logger.Debug("stopping worker")
			return

		case <-w.kill:
			w.logger.Debug("worker killed while idle")
			w.reportFault()
			return

		case msg := <-w.inbox:
			value, panicked, err := w.execute(msg)
			if panicked {
				// The handler tore down this worker's ability to make
				// progress; report the fault and die. The pool rejects the
				// in-flight future and spawns a replacement.
				w.reportFault()
				return
			}

			res := resultMessage{taskID: msg.taskID, worker: w, value: value, err: err}
			select {
			case w.resultCh <- res:
			case <-w.quit:
				return
			}

			// A kill delivered mid-task takes effect after the result is
			// routed, so the completed task is not lost.
			select {
			case <-w.kill:
				w.reportFault()
				return
			default:
			}
		}
	}
}

// execute runs the handler for one task message, converting a panic into a
// fault signal instead of crashing the process.
func (w *worker) execute(msg taskMessage) (value any, panicked bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			w.logger.Error("handler panicked",
				"task_id", msg.taskID,
				"task_type", msg.taskType,
				"panic", r)
			panicked = true
		}
	}()

	handler, ok := w.handlers[msg.taskType]
	if !ok {
		return nil, false, fmt.Errorf("%w: %s", ErrUnknownTaskType, msg.taskType)
	}

	progress := func(stage string, fraction float64) {
		if w.progress == nil {
			return
		}
		w.progress(events.ProgressEvent{
			TaskID:   msg.taskID,
			TaskType: msg.taskType,
			Stage:    stage,
			Fraction: fraction,
			At:       time.Now(),
		})
	}

	value, err = handler(w.ctx, msg.payload, progress)
	return value, false, err
}

// reportFault notifies the pool that this worker died abnormally. The quit
// case prevents a leak when the fault races pool shutdown.
func (w *worker) reportFault() {
	select {
	case w.faultCh <- w:
	case <-w.quit:
	}
}
