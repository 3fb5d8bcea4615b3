package taskpool

import "context"

// Submit packages fn as a task envelope's invocable and returns a Future
// that resolves with fn's result. This is the submission ergonomics
// layer the core itself deliberately doesn't own -- grounded on the
// teacher pool's own PoolWithFuncGeneric wrapper -- so most callers never
// hand-write a func() that stuffs a result into a captured variable.
func Submit[M any, R any](p *Pool[M], metadata M, fn func() (R, error)) (*Future[R], error) {
	future := newFuture[R]()

	err := p.SubmitTask(metadata, func() {
		val, err := fn()
		future.resolve(val, err)
	})
	if err != nil {
		return nil, err
	}
	return future, nil
}

// SubmitCtx behaves like Submit, but the worker checks ctx before
// invoking fn and skips execution (resolving the Future with ctx.Err())
// if it is already done. It never interrupts fn once started: cancelling
// in-flight work is out of scope for the core.
func SubmitCtx[M any, R any](ctx context.Context, p *Pool[M], metadata M, fn func(context.Context) (R, error)) (*Future[R], error) {
	future := newFuture[R]()

	err := p.SubmitTask(metadata, func() {
		select {
		case <-ctx.Done():
			var zero R
			future.resolve(zero, ctx.Err())
			return
		default:
		}
		val, err := fn(ctx)
		future.resolve(val, err)
	})
	if err != nil {
		return nil, err
	}
	return future, nil
}
