package taskpool

// Stats is a snapshot of pool-wide counters, taken without locks: values
// may be slightly inconsistent under concurrent submission and
// execution.
type Stats struct {
	// Submitted is the total number of envelopes accepted by SubmitTask
	// since the pool started.
	Submitted uint64

	// Completed is the total number of envelopes whose invocation
	// returned, whether or not it panicked.
	Completed uint64

	// Rejected is the total number of SubmitTask calls that failed
	// with ErrNotRunning or ErrEnqueueFailed.
	Rejected uint64

	// Failed is the total number of envelope invocations that
	// panicked and were recovered.
	Failed uint64

	// ActiveTasks is the number of envelopes currently executing
	// (dequeued and invoked, but not yet returned).
	ActiveTasks int64

	// QueueDepth is a snapshot of the shared queue's current
	// occupancy.
	QueueDepth int

	// QueueCap is the shared queue's fixed capacity.
	QueueCap int

	// NumWorkers is the pool's fixed worker count.
	NumWorkers int
}
