package taskpool

import (
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

// Failure reasons reported through Metrics.TaskFailed.
const (
	FailReasonHandler   = "handler"
	FailReasonCrash     = "crash"
	FailReasonQueueFull = "queue_full"
	FailReasonShutdown  = "shutdown"
)

// Metrics receives pool activity callbacks. Implementations must be cheap
// and safe for use from the coordinator goroutine.
type Metrics interface {
	TaskSubmitted(taskType string)
	TaskCompleted(taskType string, duration time.Duration)
	TaskFailed(taskType string, reason string)
	WorkerFault()
	QueueDepth(depth int)
	BusyWorkers(count int)
}

// nopMetrics is the default Metrics when none is configured.
type nopMetrics struct{}

func (nopMetrics) TaskSubmitted(string)                {}
func (nopMetrics) TaskCompleted(string, time.Duration) {}
func (nopMetrics) TaskFailed(string, string)           {}
func (nopMetrics) WorkerFault()                        {}
func (nopMetrics) QueueDepth(int)                      {}
func (nopMetrics) BusyWorkers(int)                     {}

// PrometheusMetrics adapts pool activity to Prometheus collectors.
type PrometheusMetrics struct {
	taskSubmittedTotal  *prom.CounterVec
	taskDurationSeconds *prom.HistogramVec
	taskFailedTotal     *prom.CounterVec
	workerFaultTotal    prom.Counter
	queueDepth          prom.Gauge
	busyWorkers         prom.Gauge
}

var _ Metrics = (*PrometheusMetrics)(nil)

// NewPrometheusMetrics creates and registers the pool's collectors on reg.
// Namespace defaults to "clipforge"; reg defaults to the default registerer.
func NewPrometheusMetrics(namespace string, reg prom.Registerer) (*PrometheusMetrics, error) {
	if namespace == "" {
		namespace = "clipforge"
	}
	if reg == nil {
		reg = prom.DefaultRegisterer
	}

	m := &PrometheusMetrics{
		taskSubmittedTotal: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "task_submitted_total",
			Help:      "Total number of tasks submitted to the pool.",
		}, []string{"task_type"}),
		taskDurationSeconds: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "task_duration_seconds",
			Help:      "Task duration from submission to successful completion in seconds.",
			Buckets:   prom.DefBuckets,
		}, []string{"task_type"}),
		taskFailedTotal: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "task_failed_total",
			Help:      "Total number of tasks that resolved with an error.",
		}, []string{"task_type", "reason"}),
		workerFaultTotal: prom.NewCounter(prom.CounterOpts{
			Namespace: namespace,
			Name:      "worker_fault_total",
			Help:      "Total number of worker crashes observed by the pool.",
		}),
		queueDepth: prom.NewGauge(prom.GaugeOpts{
			Namespace: namespace,
			Name:      "queue_depth",
			Help:      "Current depth of the submission wait queue.",
		}),
		busyWorkers: prom.NewGauge(prom.GaugeOpts{
			Namespace: namespace,
			Name:      "busy_workers",
			Help:      "Number of workers currently executing a task.",
		}),
	}

	collectors := []prom.Collector{
		m.taskSubmittedTotal,
		m.taskDurationSeconds,
		m.taskFailedTotal,
		m.workerFaultTotal,
		m.queueDepth,
		m.busyWorkers,
	}
	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}

	return m, nil
}

// TaskSubmitted increments the submission counter for the task type.
func (m *PrometheusMetrics) TaskSubmitted(taskType string) {
	m.taskSubmittedTotal.WithLabelValues(taskType).Inc()
}

// TaskCompleted observes a successful task's end-to-end duration.
func (m *PrometheusMetrics) TaskCompleted(taskType string, duration time.Duration) {
	m.taskDurationSeconds.WithLabelValues(taskType).Observe(duration.Seconds())
}

// TaskFailed increments the failure counter for the task type and reason.
func (m *PrometheusMetrics) TaskFailed(taskType string, reason string) {
	m.taskFailedTotal.WithLabelValues(taskType, reason).Inc()
}

// WorkerFault increments the worker crash counter.
func (m *PrometheusMetrics) WorkerFault() {
	m.workerFaultTotal.Inc()
}

// QueueDepth sets the wait-queue depth gauge.
func (m *PrometheusMetrics) QueueDepth(depth int) {
	m.queueDepth.Set(float64(depth))
}

// BusyWorkers sets the busy-workers gauge.
func (m *PrometheusMetrics) BusyWorkers(count int) {
	m.busyWorkers.Set(float64(count))
}
