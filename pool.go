// Package taskpool provides an in-process task execution engine: a
// fixed-width pool of worker goroutines drains a bounded, lock-free MPMC
// ring queue (Queue). Producers submit Envelopes and get back a Future
// once they use the ergonomic Submit helper; the pool itself never
// interprets a task's return value.
//
// # Quick Start
//
//	pool, err := taskpool.NewPool[taskpool.NoMeta]()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer pool.Shutdown()
//
//	future, err := taskpool.Submit(pool, taskpool.NoMeta{}, func() (int, error) {
//	    return 42, nil
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	v, err := future.Get(context.Background())
//
// # Configuration
//
//	pool, err := taskpool.NewPool[taskpool.NoMeta](
//	    taskpool.WithNumWorkers(8),
//	    taskpool.WithQueueCapacity(4096),
//	    taskpool.WithWaitStrategy(waitstrategy.NewMutexCond()),
//	)
//
// # Shutdown
//
// Shutdown is idempotent and drains: every envelope enqueued before any
// worker observes the Stopping state is executed before Shutdown
// returns.
package taskpool

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/tahsin716/taskpool/internal/spawngroup"
)

// lifecycleState is the pool's state machine: Initializing -> Running ->
// Stopping -> Stopped.
type lifecycleState uint32

const (
	stateInitializing lifecycleState = iota
	stateRunning
	stateStopping
	stateStopped
)

// Pool is a fixed-width worker pool draining a single shared MPMC Queue.
// The zero value is not usable; construct with NewPool.
type Pool[M any] struct {
	config Config
	queue  *Queue[Envelope[M]]

	state       atomic.Uint32
	activeTasks atomic.Int64

	group *spawngroup.Group

	metrics poolMetrics

	recorderMu   sync.Mutex
	lastRecorded Stats
}

type poolMetrics struct {
	submitted atomic.Uint64
	completed atomic.Uint64
	rejected  atomic.Uint64
	failed    atomic.Uint64
}

// NewPool constructs a Pool, spawns its fixed set of workers, and
// transitions it to Running. If any worker fails to start, already
// started workers are torn down and the failure is returned as a
// *SpawnError.
func NewPool[M any](opts ...Option) (*Pool[M], error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	queue, err := NewQueue[Envelope[M]](cfg.QueueCapacity)
	if err != nil {
		return nil, err
	}

	p := &Pool[M]{
		config: cfg,
		queue:  queue,
		group:  spawngroup.New(nil),
	}
	p.state.Store(uint32(stateInitializing))

	for i := 0; i < cfg.NumWorkers; i++ {
		id := i
		p.group.Spawn(
			p.spawnHook(id),
			func(ctx context.Context) { p.runWorker(id) },
		)
		if err := p.group.Err(); err != nil {
			// A worker failed to start: stop the ones that did and
			// tear down before propagating the failure.
			p.state.Store(uint32(stateStopping))
			p.config.Strategy.NotifyAll()
			p.group.Wait()
			p.state.Store(uint32(stateStopped))
			return nil, &SpawnError{err: err}
		}
	}

	p.state.Store(uint32(stateRunning))
	return p, nil
}

// spawnHook returns the fallible "start" step passed to spawngroup. Go
// goroutines never fail to launch, so by default this always succeeds;
// it exists so tests can simulate an OS refusing to create a thread.
func (p *Pool[M]) spawnHook(id int) func() error {
	if p.config.spawnFault == nil {
		return func() error { return nil }
	}
	return func() error { return p.config.spawnFault(id) }
}

// SubmitTask is the core, ergonomics-free submission primitive: it wraps
// invocable in an Envelope carrying metadata, enqueues it, and wakes one
// idle worker. It returns ErrNotRunning if the pool isn't Running, or
// ErrEnqueueFailed if the shared queue is full.
func (p *Pool[M]) SubmitTask(metadata M, invocable func()) error {
	if invocable == nil {
		return ErrNilTask
	}
	if lifecycleState(p.state.Load()) != stateRunning {
		p.metrics.rejected.Add(1)
		return ErrNotRunning
	}

	env := Envelope[M]{Metadata: metadata, Invocable: invocable}
	if !p.queue.Enqueue(env) {
		p.metrics.rejected.Add(1)
		return ErrEnqueueFailed
	}

	p.metrics.submitted.Add(1)
	p.config.Strategy.NotifyOne()
	return nil
}

// Shutdown is idempotent. On the first call it transitions the pool from
// Running to Stopping, wakes every idle worker, and blocks until every
// worker has drained the queue and exited.
func (p *Pool[M]) Shutdown() {
	if !p.state.CompareAndSwap(uint32(stateRunning), uint32(stateStopping)) {
		return
	}

	p.config.Strategy.NotifyAll()
	p.group.Wait()
	p.state.Store(uint32(stateStopped))
}

// IsRunning reports whether the pool currently accepts submissions.
func (p *Pool[M]) IsRunning() bool {
	return lifecycleState(p.state.Load()) == stateRunning
}

// NumWorkers returns the pool's fixed worker count.
func (p *Pool[M]) NumWorkers() int {
	return p.config.NumWorkers
}

// ActiveTasks returns the number of envelopes currently executing. It is
// incremented just before a worker invokes an envelope and decremented
// just after the invocation returns, so it never counts merely-queued
// work.
func (p *Pool[M]) ActiveTasks() int64 {
	return p.activeTasks.Load()
}

// Stats returns a snapshot of pool-wide counters and queue occupancy.
func (p *Pool[M]) Stats() Stats {
	return Stats{
		Submitted:   p.metrics.submitted.Load(),
		Completed:   p.metrics.completed.Load(),
		Rejected:    p.metrics.rejected.Load(),
		Failed:      p.metrics.failed.Load(),
		ActiveTasks: p.activeTasks.Load(),
		QueueDepth:  p.queue.Len(),
		QueueCap:    p.queue.Cap(),
		NumWorkers:  p.config.NumWorkers,
	}
}

// RecordStats pushes a Stats snapshot into the pool's configured
// Recorder, if any, computing counter deltas against the previous call.
// It is a no-op when no Recorder was attached via WithRecorder. Callers
// that want periodic scraping call this from their own ticker; the pool
// does not run one itself.
func (p *Pool[M]) RecordStats() {
	if p.config.Recorder == nil {
		return
	}
	cur := p.Stats()

	p.recorderMu.Lock()
	prev := p.lastRecorded
	p.lastRecorded = cur
	p.recorderMu.Unlock()

	p.config.Recorder.Observe(prev, cur)
}
