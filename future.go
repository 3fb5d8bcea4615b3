package taskpool

import "context"

// Future is a minimal channel-backed promise: exactly one Result is ever
// written to it, by the worker that ran the task it was created for.
type Future[R any] struct {
	done chan struct{}
	val  R
	err  error
}

func newFuture[R any]() *Future[R] {
	return &Future[R]{done: make(chan struct{})}
}

func (f *Future[R]) resolve(val R, err error) {
	f.val, f.err = val, err
	close(f.done)
}

// Get blocks until the task completes or ctx is done, whichever comes
// first. A cancelled ctx does not cancel the underlying task -- the core
// never interrupts in-flight work -- it only stops the caller from
// waiting on it.
func (f *Future[R]) Get(ctx context.Context) (R, error) {
	select {
	case <-f.done:
		return f.val, f.err
	case <-ctx.Done():
		var zero R
		return zero, ctx.Err()
	}
}

// Done reports the channel closed once the task's result is available.
func (f *Future[R]) Done() <-chan struct{} {
	return f.done
}
