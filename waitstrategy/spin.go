package waitstrategy

import (
	"runtime"
	"sync/atomic"
	"time"
)

// SpinPause escalates through three phases across successive idle Wait
// calls: pure spin-loads, then runtime.Gosched pause hints, then a short
// sleep. It relies on scheduler fairness rather than a wakeup signal, so
// NotifyOne and NotifyAll are no-ops.
type SpinPause struct {
	Spins  int
	Pauses int

	idle atomic.Int64
}

// NewSpinPause returns a strategy that spins for spins iterations, then
// issues pauses Gosched hints, then yields to the OS via a short sleep.
func NewSpinPause(spins, pauses int) *SpinPause {
	if spins < 0 {
		spins = 0
	}
	if pauses < 0 {
		pauses = 0
	}
	return &SpinPause{Spins: spins, Pauses: pauses}
}

func (s *SpinPause) Wait() {
	n := s.idle.Add(1)

	switch {
	case n <= int64(s.Spins):
		// Pure spin: touch nothing but the CPU.
		for i := 0; i < 8; i++ {
		}
	case n <= int64(s.Spins+s.Pauses):
		runtime.Gosched()
	default:
		time.Sleep(time.Microsecond * 200)
	}
}

func (s *SpinPause) NotifyOne() {}

func (s *SpinPause) NotifyAll() {}

func (s *SpinPause) Reset() {
	s.idle.Store(0)
}
