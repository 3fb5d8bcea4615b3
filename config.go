package taskpool

import (
	"runtime"

	"go.uber.org/zap"

	"github.com/tahsin716/taskpool/waitstrategy"
)

// Config holds the fixed configuration a Pool is constructed with. It is
// built from functional Options.
type Config struct {
	// NumWorkers is the fixed number of worker goroutines. Defaults to
	// runtime.NumCPU(); WithNumWorkers ignores non-positive values, and a
	// non-positive value set any other way fails validation.
	NumWorkers int

	// QueueCapacity is the shared queue's capacity. Must be a power of
	// two >= 2. Defaults to 1024.
	QueueCapacity int

	// Strategy governs how idle workers wait and how producers wake
	// them. Defaults to a SpinPause strategy.
	Strategy waitstrategy.Strategy

	// PanicHandler is invoked (in the worker's own goroutine) when a
	// task panics. If nil, the panic is logged via Logger and the
	// worker continues its loop.
	PanicHandler func(recovered any)

	// OnWorkerStart and OnWorkerStop are called when a worker enters
	// and leaves its run loop. Either may be nil.
	OnWorkerStart func(workerID int)
	OnWorkerStop  func(workerID int)

	// Logger receives task panics recovered by a worker when no
	// PanicHandler is set. Defaults to a no-op logger.
	Logger *zap.SugaredLogger

	// Recorder, when non-nil, receives per-task latency observations and
	// the Stats snapshots pushed by Pool.RecordStats. Nil by default: a pool never pays for
	// Prometheus bookkeeping unless a caller opts in.
	Recorder *Recorder

	// spawnFault, when non-nil, is consulted before each worker starts
	// and can force a synthetic spawn failure. It exists only to
	// exercise the SpawnError / partial-teardown path in tests, since
	// goroutines cannot fail to start for real.
	spawnFault func(workerID int) error
}

// Option configures a Pool at construction time.
type Option func(*Config)

func defaultConfig() Config {
	return Config{
		NumWorkers:    runtime.NumCPU(),
		QueueCapacity: 1024,
		Strategy:      waitstrategy.NewSpinPause(64, 256),
		Logger:        zap.NewNop().Sugar(),
	}
}

// WithNumWorkers sets the fixed worker count.
func WithNumWorkers(n int) Option {
	return func(c *Config) {
		if n > 0 {
			c.NumWorkers = n
		}
	}
}

// WithQueueCapacity sets the shared queue's capacity.
func WithQueueCapacity(n int) Option {
	return func(c *Config) {
		if n > 0 {
			c.QueueCapacity = n
		}
	}
}

// WithWaitStrategy overrides the default idle/wake strategy.
func WithWaitStrategy(s waitstrategy.Strategy) Option {
	return func(c *Config) {
		if s != nil {
			c.Strategy = s
		}
	}
}

// WithPanicHandler installs a custom panic handler for task failures.
func WithPanicHandler(h func(recovered any)) Option {
	return func(c *Config) { c.PanicHandler = h }
}

// WithWorkerHooks installs lifecycle hooks called when a worker starts
// and stops.
func WithWorkerHooks(onStart, onStop func(workerID int)) Option {
	return func(c *Config) {
		c.OnWorkerStart = onStart
		c.OnWorkerStop = onStop
	}
}

// WithLogger installs the structured logger used to report recovered task
// panics when no PanicHandler is set.
func WithLogger(l *zap.SugaredLogger) Option {
	return func(c *Config) {
		if l != nil {
			c.Logger = l
		}
	}
}

// WithRecorder attaches a Prometheus Recorder. Register its Collectors
// with a prometheus.Registerer separately; the pool only ever writes to
// the handles, it never registers them.
func WithRecorder(r *Recorder) Option {
	return func(c *Config) { c.Recorder = r }
}

func (c *Config) validate() error {
	if c.NumWorkers <= 0 {
		return errInvalidConfig("NumWorkers must be > 0")
	}
	if c.QueueCapacity < 2 || c.QueueCapacity&(c.QueueCapacity-1) != 0 {
		return errInvalidConfig("QueueCapacity must be a power of two >= 2")
	}
	return nil
}

func errInvalidConfig(msg string) error {
	return &PoolError{msg: "invalid config: " + msg}
}
