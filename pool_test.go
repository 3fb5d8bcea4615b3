package taskpool

import (
	"errors"
	"runtime"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ============================================================================
// Construction
// ============================================================================

func TestNewPool_DefaultConfig(t *testing.T) {
	pool, err := NewPool[NoMeta]()
	require.NoError(t, err)
	defer pool.Shutdown()

	assert.Equal(t, runtime.NumCPU(), pool.NumWorkers())
	assert.True(t, pool.IsRunning())
}

func TestNewPool_WithOptions(t *testing.T) {
	pool, err := NewPool[NoMeta](
		WithNumWorkers(4),
		WithQueueCapacity(64),
	)
	require.NoError(t, err)
	defer pool.Shutdown()

	assert.Equal(t, 4, pool.NumWorkers())
}

func TestNewPool_InvalidConfig(t *testing.T) {
	tests := []struct {
		name string
		opts []Option
	}{
		{"negative workers", []Option{func(c *Config) { c.NumWorkers = -1 }}},
		{"non power of two queue", []Option{func(c *Config) { c.QueueCapacity = 100 }}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewPool[NoMeta](tt.opts...)
			require.Error(t, err)
		})
	}
}

func TestNewPool_SpawnFailureTearsDownStartedWorkers(t *testing.T) {
	var started, stopped atomic.Int64

	pool, err := NewPool[NoMeta](
		WithNumWorkers(4),
		WithWorkerHooks(
			func(int) { started.Add(1) },
			func(int) { stopped.Add(1) },
		),
		func(c *Config) {
			c.spawnFault = func(id int) error {
				if id == 2 {
					return errors.New("synthetic spawn failure")
				}
				return nil
			}
		},
	)

	require.Error(t, err)
	require.Nil(t, pool)
	var spawnErr *SpawnError
	require.ErrorAs(t, err, &spawnErr)

	// Workers 0 and 1 started before the injected failure on worker 2;
	// both must have been torn down again.
	assert.Equal(t, started.Load(), stopped.Load())
}

// ============================================================================
// Submission and execution
// ============================================================================

func TestPool_SubmitTaskExecutes(t *testing.T) {
	pool, err := NewPool[NoMeta](WithNumWorkers(2))
	require.NoError(t, err)
	defer pool.Shutdown()

	var ran atomic.Bool
	done := make(chan struct{})
	err = pool.SubmitTask(NoMeta{}, func() {
		ran.Store(true)
		close(done)
	})
	require.NoError(t, err)

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("submitted task never ran")
	}
	assert.True(t, ran.Load())
}

func TestPool_SubmitNilTaskRejected(t *testing.T) {
	pool, err := NewPool[NoMeta]()
	require.NoError(t, err)
	defer pool.Shutdown()

	err = pool.SubmitTask(NoMeta{}, nil)
	assert.ErrorIs(t, err, ErrNilTask)
}

func TestPool_SubmitAfterShutdownRejected(t *testing.T) {
	pool, err := NewPool[NoMeta]()
	require.NoError(t, err)

	pool.Shutdown()

	err = pool.SubmitTask(NoMeta{}, func() {})
	assert.ErrorIs(t, err, ErrNotRunning)
}

func TestPool_QueueFullRejectsSubmission(t *testing.T) {
	block := make(chan struct{})
	pool, err := NewPool[NoMeta](
		WithNumWorkers(1),
		WithQueueCapacity(2),
	)
	require.NoError(t, err)
	defer func() {
		close(block)
		pool.Shutdown()
	}()

	// Occupy the single worker so the queue can actually fill up.
	require.NoError(t, pool.SubmitTask(NoMeta{}, func() { <-block }))

	var lastErr error
	for i := 0; i < 8; i++ {
		lastErr = pool.SubmitTask(NoMeta{}, func() {})
		if lastErr != nil {
			break
		}
	}
	assert.ErrorIs(t, lastErr, ErrEnqueueFailed)
}

// ============================================================================
// Panic isolation
// ============================================================================

func TestPool_PanicInTaskDoesNotKillWorker(t *testing.T) {
	var handled atomic.Bool
	pool, err := NewPool[NoMeta](
		WithNumWorkers(1),
		WithPanicHandler(func(any) { handled.Store(true) }),
	)
	require.NoError(t, err)
	defer pool.Shutdown()

	require.NoError(t, pool.SubmitTask(NoMeta{}, func() { panic("boom") }))

	done := make(chan struct{})
	require.NoError(t, pool.SubmitTask(NoMeta{}, func() { close(done) }))

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker died after a panicking task")
	}
	assert.True(t, handled.Load())
	assert.EqualValues(t, 1, pool.Stats().Failed)
}

// ============================================================================
// Shutdown drain guarantee
// ============================================================================

func TestPool_ShutdownDrainsQueuedWork(t *testing.T) {
	pool, err := NewPool[NoMeta](WithNumWorkers(2))
	require.NoError(t, err)

	const n = 50
	var completed atomic.Int64
	for i := 0; i < n; i++ {
		require.NoError(t, pool.SubmitTask(NoMeta{}, func() {
			completed.Add(1)
		}))
	}

	pool.Shutdown()

	assert.EqualValues(t, n, completed.Load())
	assert.False(t, pool.IsRunning())
}

func TestPool_ShutdownIsIdempotent(t *testing.T) {
	pool, err := NewPool[NoMeta]()
	require.NoError(t, err)

	pool.Shutdown()
	assert.NotPanics(t, func() { pool.Shutdown() })
}

// ============================================================================
// Concurrent producers
// ============================================================================

func TestPool_ConcurrentProducersAllTasksRun(t *testing.T) {
	pool, err := NewPool[NoMeta](WithNumWorkers(8), WithQueueCapacity(512))
	require.NoError(t, err)

	const producers = 16
	const perProducer = 200
	var completed atomic.Int64

	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				for pool.SubmitTask(NoMeta{}, func() { completed.Add(1) }) != nil {
					runtime.Gosched()
				}
			}
		}()
	}
	wg.Wait()
	pool.Shutdown()

	assert.EqualValues(t, producers*perProducer, completed.Load())
}

// ============================================================================
// Stats and metrics
// ============================================================================

func TestPool_StatsReflectsActivity(t *testing.T) {
	pool, err := NewPool[NoMeta](WithNumWorkers(2))
	require.NoError(t, err)
	defer pool.Shutdown()

	require.NoError(t, pool.SubmitTask(NoMeta{}, func() {}))
	require.Eventually(t, func() bool {
		return pool.Stats().Completed == 1
	}, time.Second, time.Millisecond)

	stats := pool.Stats()
	assert.EqualValues(t, 1, stats.Submitted)
	assert.Equal(t, 2, stats.NumWorkers)
}

func TestPool_RecordStatsWithoutRecorderIsNoop(t *testing.T) {
	pool, err := NewPool[NoMeta]()
	require.NoError(t, err)
	defer pool.Shutdown()

	assert.NotPanics(t, pool.RecordStats)
}

func TestPool_RecordStatsWithRecorder(t *testing.T) {
	rec := NewRecorder("test")
	pool, err := NewPool[NoMeta](WithNumWorkers(1), WithRecorder(rec))
	require.NoError(t, err)
	defer pool.Shutdown()

	require.NoError(t, pool.SubmitTask(NoMeta{}, func() {}))
	require.Eventually(t, func() bool {
		return pool.Stats().Completed == 1
	}, time.Second, time.Millisecond)

	assert.NotPanics(t, pool.RecordStats)
}

// ============================================================================
// In-flight task accounting
// ============================================================================

func TestPool_ActiveTasksReflectsInFlightWork(t *testing.T) {
	pool, err := NewPool[NoMeta](WithNumWorkers(1))
	require.NoError(t, err)
	defer pool.Shutdown()

	release := make(chan struct{})
	entered := make(chan struct{})
	require.NoError(t, pool.SubmitTask(NoMeta{}, func() {
		close(entered)
		<-release
	}))

	<-entered
	assert.EqualValues(t, 1, pool.ActiveTasks())
	close(release)

	require.Eventually(t, func() bool {
		return pool.ActiveTasks() == 0
	}, time.Second, time.Millisecond)
}
