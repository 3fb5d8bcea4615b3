package waitstrategy

import (
	"sync"
	"sync/atomic"
	"time"
)

// AtomicFlag parks a waiter on a boolean flag and wakes it with a channel
// close, the idiomatic Go substitute for a futex-style park/unpark pair:
// the standard library exposes no futex syscall, and closing a channel is
// the ecosystem's cheapest broadcast-to-many primitive. NotifyOne and
// NotifyAll both broadcast -- NotifyOne is documented as best-effort, so
// occasionally waking more than one waiter is within contract. A waiter
// that is not woken returns on its own after maxPark.
type AtomicFlag struct {
	mu   sync.Mutex
	gate chan struct{}
	set  atomic.Bool
}

// NewAtomicFlag returns a ready-to-use AtomicFlag strategy.
func NewAtomicFlag() *AtomicFlag {
	return &AtomicFlag{gate: make(chan struct{})}
}

func (f *AtomicFlag) Wait() {
	if f.set.CompareAndSwap(true, false) {
		return
	}

	f.mu.Lock()
	gate := f.gate
	f.mu.Unlock()

	// Double-check after taking the gate: a notify may have landed
	// between the CAS above and the lock.
	if f.set.CompareAndSwap(true, false) {
		return
	}

	t := time.NewTimer(maxPark)
	defer t.Stop()
	select {
	case <-gate:
	case <-t.C:
	}
}

func (f *AtomicFlag) NotifyOne() {
	f.broadcast()
}

func (f *AtomicFlag) NotifyAll() {
	f.broadcast()
}

func (f *AtomicFlag) broadcast() {
	f.set.Store(true)

	f.mu.Lock()
	old := f.gate
	f.gate = make(chan struct{})
	f.mu.Unlock()

	close(old)
}

func (f *AtomicFlag) Reset() {
	f.set.Store(false)
}
