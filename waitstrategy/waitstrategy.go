// Package waitstrategy provides the pluggable policy the worker pool uses
// to decide how an idle worker waits for work and how a producer wakes
// one up. All four variants are safe to share across many goroutines: the
// pool holds exactly one instance and every worker calls into it.
//
// A Strategy must never deadlock a lone waiter on its own -- shutdown is
// signaled out of band through the pool's lifecycle state, not through
// Strategy, so Wait always returns eventually even without a matching
// Notify.
package waitstrategy

import "time"

// maxPark bounds how long the signaling strategies (AtomicFlag,
// MutexCond) park a waiter that receives no notify.
const maxPark = 10 * time.Millisecond

// Strategy decouples how an idle worker blocks from how a producer
// signals arrival of new work.
type Strategy interface {
	// Wait is called by a worker that just observed an empty queue. It
	// may block, spin, or sleep, but must return within a bounded time
	// even if nothing ever calls NotifyOne or NotifyAll.
	Wait()

	// NotifyOne is called by a producer after a successful enqueue. It
	// is best-effort: it may wake more than one waiter, or none, but
	// should try to wake at least one.
	NotifyOne()

	// NotifyAll is called during shutdown and must release every
	// waiter currently blocked in Wait.
	NotifyAll()

	// Reset is called by a worker immediately after a successful
	// dequeue, so escalating strategies (e.g. spin+pause) start their
	// next idle period fresh instead of carrying over backoff state
	// accumulated before the productive turn.
	Reset()
}
