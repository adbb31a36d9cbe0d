package taskpool

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/clipforge/clipforge/internal/events"
	"github.com/google/uuid"
)

// Config holds sizing configuration for the pool.
type Config struct {
	// Workers is the number of execution units to spawn. If zero or
	// negative, the pool derives a conservative size from the machine:
	// max(2, min(4, NumCPU)). That is enough to parallelize a handful of
	// simultaneous UI-triggered operations without starving the UI thread
	// on a typical 2-8 core consumer machine.
	Workers int

	// QueueSize bounds the FIFO wait queue used when every worker is busy.
	// A submission that finds both the workers and the queue full is
	// rejected with ErrQueueFull instead of waiting indefinitely.
	// If zero or negative, DefaultQueueSize is used.
	QueueSize int
}

// DefaultQueueSize is the wait-queue bound applied when none is configured.
const DefaultQueueSize = 64

// DefaultConfig returns a Config that derives the worker count from the
// machine and applies the default queue bound.
func DefaultConfig() Config {
	return Config{
		Workers:   0,
		QueueSize: DefaultQueueSize,
	}
}

// Options bundles the collaborators a pool may be constructed with. Metrics
// and Emitter are optional; a nil Metrics records nothing and a nil Emitter
// drops progress reports.
type Options struct {
	Config  Config
	Metrics Metrics
	Emitter events.Emitter
}

// Stats is a point-in-time snapshot of pool activity, served by the
// diagnostics endpoint.
type Stats struct {
	Workers      int   `json:"workers"`
	BusyWorkers  int   `json:"busy_workers"`
	QueueDepth   int   `json:"queue_depth"`
	Submitted    int64 `json:"submitted"`
	Completed    int64 `json:"completed"`
	Failed       int64 `json:"failed"`
	WorkerFaults int64 `json:"worker_faults"`
}

// submission pairs a task message with the future its result resolves.
type submission struct {
	msg    taskMessage
	future *Future
}

// pendingTask is one outstanding exchange with one worker. submittedAt is
// recorded for future per-task deadline support; it does not affect
// correctness today.
type pendingTask struct {
	future      *Future
	worker      *worker
	taskType    string
	submittedAt time.Time
}

// Pool dispatches tasks onto a fixed set of isolated workers. All pool state
// (idle set, pending table, wait queue) is owned by a single coordinator
// goroutine; callers and workers communicate with it only through channels,
// so no locking guards that state.
type Pool struct {
	size      int
	queueSize int
	handlers  map[string]Handler

	logger  *slog.Logger
	metrics Metrics
	emitter events.Emitter

	ctx    context.Context
	cancel context.CancelFunc

	submitCh chan submission
	resultCh chan resultMessage
	faultCh  chan *worker
	killCh   chan struct{}
	stopCh   chan struct{}
	doneCh   chan struct{}

	closed atomic.Bool

	statSubmitted    atomic.Int64
	statCompleted    atomic.Int64
	statFailed       atomic.Int64
	statWorkerFaults atomic.Int64
	statBusy         atomic.Int64
	statQueueDepth   atomic.Int64
}

// New constructs a pool, spawns its workers (all idle), and starts the
// coordinator. The registry's handler table is snapshotted: registrations
// made after New are not visible to the pool.
func New(registry *Registry, opts Options, logger *slog.Logger) *Pool {
	size := opts.Config.Workers
	if size <= 0 {
		size = derivedPoolSize(runtime.NumCPU())
	}

	queueSize := opts.Config.QueueSize
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}

	metrics := opts.Metrics
	if metrics == nil {
		metrics = nopMetrics{}
	}

	ctx, cancel := context.WithCancel(context.Background())

	p := &Pool{
		size:      size,
		queueSize: queueSize,
		handlers:  registry.snapshot(),
		logger:    logger.With("component", "taskpool"),
		metrics:   metrics,
		emitter:   opts.Emitter,
		ctx:       ctx,
		cancel:    cancel,
		submitCh:  make(chan submission),
		resultCh:  make(chan resultMessage),
		faultCh:   make(chan *worker),
		killCh:    make(chan struct{}),
		stopCh:    make(chan struct{}),
		doneCh:    make(chan struct{}),
	}

	go p.run()

	p.logger.Info("task pool started",
		"workers", size,
		"queue_size", queueSize,
		"task_types", len(p.handlers))

	return p
}

// derivedPoolSize clamps the CPU count into [2, 4].
func derivedPoolSize(numCPU int) int {
	size := numCPU
	if size > 4 {
		size = 4
	}
	if size < 2 {
		size = 2
	}
	return size
}

// Size returns the fixed number of workers the pool maintains.
func (p *Pool) Size() int {
	return p.size
}

// Submit hands a task to the pool and returns its future immediately; the
// caller is never blocked waiting for a worker. If every worker is busy the
// submission waits in a FIFO queue and is dispatched the moment a worker
// goes idle. Submissions against a shut-down pool, or past a full wait
// queue, return an already-rejected future.
func (p *Pool) Submit(taskType string, payload any) *Future {
	future := newFuture(uuid.New())

	if p.closed.Load() {
		future.reject(ErrPoolClosed)
		return future
	}

	sub := submission{
		msg: taskMessage{
			taskID:   future.taskID,
			taskType: taskType,
			payload:  payload,
		},
		future: future,
	}

	select {
	case p.submitCh <- sub:
	case <-p.stopCh:
		future.reject(ErrPoolClosed)
	}

	return future
}

// Shutdown stops every worker, rejects every pending and queued future with
// ErrPoolClosed, and leaves the pool terminal. It is idempotent and returns
// once teardown has completed. Must be called once at application exit.
func (p *Pool) Shutdown() {
	if p.closed.Swap(true) {
		<-p.doneCh
		return
	}
	close(p.stopCh)
	<-p.doneCh
}

// Stats returns a snapshot of the pool's counters.
func (p *Pool) Stats() Stats {
	return Stats{
		Workers:      p.size,
		BusyWorkers:  int(p.statBusy.Load()),
		QueueDepth:   int(p.statQueueDepth.Load()),
		Submitted:    p.statSubmitted.Load(),
		Completed:    p.statCompleted.Load(),
		Failed:       p.statFailed.Load(),
		WorkerFaults: p.statWorkerFaults.Load(),
	}
}

// emitProgress forwards a worker progress report to the configured emitter.
// Called from worker goroutines; never touches coordinator state.
func (p *Pool) emitProgress(event events.ProgressEvent) {
	if p.emitter == nil {
		return
	}
	p.emitter.Emit(event)
}

// run is the coordinator: the single goroutine that owns the roster, the
// idle set, the pending table, the worker reverse index, and the wait queue.
func (p *Pool) run() {
	var (
		roster  = make(map[*worker]struct{}, p.size)
		idle    = make([]*worker, 0, p.size)
		pending = make(map[uuid.UUID]*pendingTask)
		bound   = make(map[*worker]uuid.UUID, p.size)
		waitq   []submission
		nextID  int
	)

	spawn := func() *worker {
		w := spawnWorker(workerConfig{
			id:       nextID,
			handlers: p.handlers,
			resultCh: p.resultCh,
			faultCh:  p.faultCh,
			ctx:      p.ctx,
			progress: p.emitProgress,
			logger:   p.logger,
		})
		nextID++
		roster[w] = struct{}{}
		return w
	}

	// All units start idle.
	for i := 0; i < p.size; i++ {
		idle = append(idle, spawn())
	}

	// dispatch binds the oldest idle worker to a submission. Callers ensure
	// at least one worker is idle.
	dispatch := func(sub submission) {
		w := idle[0]
		idle = idle[1:]
		pending[sub.msg.taskID] = &pendingTask{
			future:      sub.future,
			worker:      w,
			taskType:    sub.msg.taskType,
			submittedAt: time.Now(),
		}
		bound[w] = sub.msg.taskID
		w.send(sub.msg)
		p.statBusy.Store(int64(p.size - len(idle)))
		p.metrics.BusyWorkers(p.size - len(idle))
	}

	// drainWaitQueue dispatches queued submissions while workers are idle.
	drainWaitQueue := func() {
		for len(waitq) > 0 && len(idle) > 0 {
			sub := waitq[0]
			waitq = waitq[1:]
			dispatch(sub)
		}
		p.statQueueDepth.Store(int64(len(waitq)))
		p.metrics.QueueDepth(len(waitq))
	}

	for {
		select {
		case sub := <-p.submitCh:
			p.statSubmitted.Add(1)
			p.metrics.TaskSubmitted(sub.msg.taskType)

			switch {
			case len(idle) > 0:
				dispatch(sub)
			case len(waitq) < p.queueSize:
				waitq = append(waitq, sub)
				p.statQueueDepth.Store(int64(len(waitq)))
				p.metrics.QueueDepth(len(waitq))
			default:
				p.statFailed.Add(1)
				p.metrics.TaskFailed(sub.msg.taskType, FailReasonQueueFull)
				sub.future.reject(fmt.Errorf("%w: capacity %d reached", ErrQueueFull, p.queueSize))
			}

		case res := <-p.resultCh:
			entry, ok := pending[res.taskID]
			if !ok {
				// Should not happen while the pending-table invariants hold.
				p.logger.Warn("dropping result for unknown task", "task_id", res.taskID)
				continue
			}

			delete(pending, res.taskID)
			delete(bound, res.worker)
			idle = append(idle, res.worker)
			p.statBusy.Store(int64(p.size - len(idle)))
			p.metrics.BusyWorkers(p.size - len(idle))

			if res.err != nil {
				p.statFailed.Add(1)
				p.metrics.TaskFailed(entry.taskType, FailReasonHandler)
				p.logger.Debug("task failed",
					"task_id", res.taskID,
					"task_type", entry.taskType,
					"error", res.err)
				entry.future.reject(res.err)
			} else {
				p.statCompleted.Add(1)
				p.metrics.TaskCompleted(entry.taskType, time.Since(entry.submittedAt))
				entry.future.resolve(res.value)
			}

			drainWaitQueue()

		case w := <-p.faultCh:
			p.statWorkerFaults.Add(1)
			p.metrics.WorkerFault()
			p.logger.Error("worker fault, spawning replacement", "worker_id", w.id)

			delete(roster, w)
			for i, iw := range idle {
				if iw == w {
					idle = append(idle[:i], idle[i+1:]...)
					break
				}
			}
			w.stop()

			// Reject precisely the task that was in flight on the dead
			// worker so its caller sees an error instead of a hang.
			if taskID, wasBusy := bound[w]; wasBusy {
				delete(bound, w)
				if entry, exists := pending[taskID]; exists {
					delete(pending, taskID)
					p.statFailed.Add(1)
					p.metrics.TaskFailed(entry.taskType, FailReasonCrash)
					entry.future.reject(fmt.Errorf("%w (task %s)", ErrWorkerCrashed, taskID))
				}
			}

			idle = append(idle, spawn())
			p.statBusy.Store(int64(p.size - len(idle)))
			p.metrics.BusyWorkers(p.size - len(idle))
			drainWaitQueue()

		case <-p.killCh:
			// Fault injection: kill one worker, preferring an idle one. The
			// death is observed through the normal fault path.
			if len(idle) > 0 {
				idle[0].Kill()
			} else {
				for w := range roster {
					w.Kill()
					break
				}
			}

		case <-p.stopCh:
			p.cancel()
			for w := range roster {
				w.stop()
			}
			for taskID, entry := range pending {
				p.metrics.TaskFailed(entry.taskType, FailReasonShutdown)
				entry.future.reject(ErrPoolClosed)
				delete(pending, taskID)
			}
			for _, sub := range waitq {
				p.metrics.TaskFailed(sub.msg.taskType, FailReasonShutdown)
				sub.future.reject(ErrPoolClosed)
			}
			waitq = nil
			idle = nil
			for w := range roster {
				delete(roster, w)
			}
			for w := range bound {
				delete(bound, w)
			}
			p.statBusy.Store(0)
			p.statQueueDepth.Store(0)
			p.logger.Info("task pool stopped")
			close(p.doneCh)
			return
		}
	}
}
