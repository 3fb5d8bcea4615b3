package taskpool

import "github.com/prometheus/client_golang/prometheus"

// Recorder holds a fixed set of pre-built Prometheus metric handles
// and reports a Stats snapshot onto them. It is deliberately decoupled
// from any specific prometheus.Registerer: embedding applications decide
// where (and whether) to register it, the same separation a pack member's
// own metrics wrapper maintains between metric construction and
// registration.
type Recorder struct {
	submitted   prometheus.Counter
	completed   prometheus.Counter
	rejected    prometheus.Counter
	failed      prometheus.Counter
	activeTasks prometheus.Gauge
	queueDepth  prometheus.Gauge
	queueCap    prometheus.Gauge
	numWorkers  prometheus.Gauge
	taskLatency prometheus.Histogram
}

// NewRecorder builds a Recorder whose metrics are namespaced under the
// given name (e.g. "taskpool"). Call Collectors to register the returned
// metrics with a prometheus.Registerer of the caller's choosing.
func NewRecorder(namespace string) *Recorder {
	return &Recorder{
		submitted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "submitted_total",
			Help:      "Total number of tasks accepted by SubmitTask.",
		}),
		completed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "completed_total",
			Help:      "Total number of task invocations that returned.",
		}),
		rejected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rejected_total",
			Help:      "Total number of SubmitTask calls rejected (not running, or queue full).",
		}),
		failed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "failed_total",
			Help:      "Total number of task invocations that panicked and were recovered.",
		}),
		activeTasks: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_tasks",
			Help:      "Number of tasks currently being invoked by a worker.",
		}),
		queueDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "queue_depth",
			Help:      "Current occupancy of the shared MPMC queue.",
		}),
		queueCap: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "queue_capacity",
			Help:      "Fixed capacity of the shared MPMC queue.",
		}),
		numWorkers: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "num_workers",
			Help:      "Fixed number of worker goroutines.",
		}),
		taskLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "task_latency_seconds",
			Help:      "Wall-clock duration of individual task invocations.",
			Buckets:   prometheus.DefBuckets,
		}),
	}
}

// Collectors returns every metric handle the Recorder owns, ready to pass
// to a prometheus.Registerer's MustRegister.
func (r *Recorder) Collectors() []prometheus.Collector {
	return []prometheus.Collector{
		r.submitted, r.completed, r.rejected, r.failed,
		r.activeTasks, r.queueDepth, r.queueCap, r.numWorkers,
		r.taskLatency,
	}
}

// Observe reports a Stats snapshot onto the counters and gauges. Counters
// are monotonic in Stats but Prometheus counters only move forward, so
// Observe adds the delta since the last observed cumulative value.
func (r *Recorder) Observe(prev, cur Stats) {
	r.submitted.Add(float64(cur.Submitted - prev.Submitted))
	r.completed.Add(float64(cur.Completed - prev.Completed))
	r.rejected.Add(float64(cur.Rejected - prev.Rejected))
	r.failed.Add(float64(cur.Failed - prev.Failed))

	r.activeTasks.Set(float64(cur.ActiveTasks))
	r.queueDepth.Set(float64(cur.QueueDepth))
	r.queueCap.Set(float64(cur.QueueCap))
	r.numWorkers.Set(float64(cur.NumWorkers))
}

// ObserveLatency records a single task's wall-clock invocation duration,
// in seconds. Called from a worker's invoke path when a Recorder is
// attached via WithRecorder.
func (r *Recorder) ObserveLatency(seconds float64) {
	r.taskLatency.Observe(seconds)
}
