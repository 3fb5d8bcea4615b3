package waitstrategy

import (
	"sync"
	"time"
)

// MutexCond parks a waiter on a sync.Cond predicated on a boolean flag,
// the classic mutex+condition-variable strategy: NotifyOne and NotifyAll
// take the lock, set the flag, and signal or broadcast. NotifyAll also
// advances a generation counter, which releases every waiter parked
// before it. A waiter that is not woken returns on its own after maxPark.
type MutexCond struct {
	mu      sync.Mutex
	cond    *sync.Cond
	pending bool
	gen     uint64
}

// NewMutexCond returns a ready-to-use MutexCond strategy.
func NewMutexCond() *MutexCond {
	m := &MutexCond{}
	m.cond = sync.NewCond(&m.mu)
	return m
}

func (m *MutexCond) Wait() {
	m.mu.Lock()
	defer m.mu.Unlock()
	gen, timedOut := m.gen, false
	t := time.AfterFunc(maxPark, func() {
		m.mu.Lock()
		timedOut = true
		m.mu.Unlock()
		m.cond.Broadcast()
	})
	defer t.Stop()
	for !m.pending && m.gen == gen && !timedOut {
		m.cond.Wait()
	}
	m.pending = false
}

func (m *MutexCond) NotifyOne() {
	m.mu.Lock()
	m.pending = true
	m.mu.Unlock()
	m.cond.Signal()
}

func (m *MutexCond) NotifyAll() {
	m.mu.Lock()
	m.pending = true
	m.gen++
	m.mu.Unlock()
	m.cond.Broadcast()
}

func (m *MutexCond) Reset() {
	m.mu.Lock()
	m.pending = false
	m.mu.Unlock()
}
