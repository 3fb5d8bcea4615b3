package waitstrategy

import "time"

// Sleep is a timed-poll strategy: Wait sleeps for a fixed interval and
// relies on the worker's next queue check to observe new work. Producers
// pay nothing -- NotifyOne and NotifyAll are no-ops -- at the cost of up
// to one interval of added latency before an idle worker notices work.
type Sleep struct {
	Interval time.Duration
}

// NewSleep returns a Sleep strategy that polls every d. d must be
// positive; a non-positive value falls back to time.Millisecond to avoid
// a busy loop disguised as a sleep strategy.
func NewSleep(d time.Duration) *Sleep {
	if d <= 0 {
		d = time.Millisecond
	}
	return &Sleep{Interval: d}
}

func (s *Sleep) Wait() { time.Sleep(s.Interval) }

func (s *Sleep) NotifyOne() {}

func (s *Sleep) NotifyAll() {}

func (s *Sleep) Reset() {}
