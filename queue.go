package taskpool

import (
	"sync/atomic"
)

// pad is trailing padding to keep hot fields on their own cache line and
// avoid false sharing between producers and consumers.
type pad [64]byte

// ErrInvalidCapacity is returned by NewQueue when capacity is smaller than
// 2 or is not a power of two.
type ErrInvalidCapacity struct {
	Capacity int
}

func (e *ErrInvalidCapacity) Error() string {
	return "taskpool: capacity must be a power of two >= 2"
}

// cell is one ring slot: a sequence counter plus the slot's storage. The
// sequence encodes which logical position the slot is currently ready for
// -- write-ready when it equals the position, read-ready when it equals
// position+1 -- which is what lets producers and consumers claim slots
// with a single CAS on the shared position counter instead of one on the
// cell itself.
type cell[T any] struct {
	seq atomic.Uint64
	val T
	_   pad
}

// Queue is a bounded, lock-free, multi-producer multi-consumer FIFO built
// on Dmitry Vyukov's sequenced-ring design: a fixed array of cells, each
// carrying its own sequence counter, addressed by two monotonic position
// counters modulo the capacity.
//
// Enqueue and Dequeue never block; both report false rather than waiting
// when the queue is full or empty. A Queue must not be copied after first
// use; share it through a pointer.
type Queue[T any] struct {
	_          pad
	enqueuePos atomic.Uint64
	_          pad
	dequeuePos atomic.Uint64
	_          pad

	cells []cell[T]
	mask  uint64
}

// NewQueue constructs a Queue of the given capacity, which must be a
// power of two no smaller than 2.
func NewQueue[T any](capacity int) (*Queue[T], error) {
	if capacity < 2 || capacity&(capacity-1) != 0 {
		return nil, &ErrInvalidCapacity{Capacity: capacity}
	}

	q := &Queue[T]{
		cells: make([]cell[T], capacity),
		mask:  uint64(capacity) - 1,
	}
	for i := range q.cells {
		q.cells[i].seq.Store(uint64(i))
	}
	return q, nil
}

// Enqueue attempts to move value into the queue. It returns false without
// blocking if the queue is currently full.
func (q *Queue[T]) Enqueue(value T) bool {
	pos := q.enqueuePos.Load()
	for {
		c := &q.cells[pos&q.mask]
		seq := c.seq.Load()

		diff := int64(seq) - int64(pos)
		switch {
		case diff == 0:
			if q.enqueuePos.CompareAndSwap(pos, pos+1) {
				c.val = value
				c.seq.Store(pos + 1)
				return true
			}
			// Lost the race for this position; reload and retry.
			pos = q.enqueuePos.Load()
		case diff < 0:
			// The reader hasn't advanced past pos - N yet: full.
			return false
		default:
			pos = q.enqueuePos.Load()
		}
	}
}

// Dequeue attempts to move the oldest element out of the queue and
// returns it. It returns false without blocking if the queue is currently
// empty, in which case out is the zero value of T.
func (q *Queue[T]) Dequeue() (out T, ok bool) {
	pos := q.dequeuePos.Load()
	for {
		c := &q.cells[pos&q.mask]
		seq := c.seq.Load()

		diff := int64(seq) - int64(pos+1)
		switch {
		case diff == 0:
			if q.dequeuePos.CompareAndSwap(pos, pos+1) {
				out = c.val
				var zero T
				c.val = zero
				c.seq.Store(pos + uint64(len(q.cells)))
				return out, true
			}
			pos = q.dequeuePos.Load()
		case diff < 0:
			return out, false
		default:
			pos = q.dequeuePos.Load()
		}
	}
}

// Cap returns the queue's fixed capacity.
func (q *Queue[T]) Cap() int {
	return len(q.cells)
}

// Len returns a snapshot of the number of elements currently queued. It
// is inherently racy under concurrent access and intended for
// diagnostics, not for control flow.
func (q *Queue[T]) Len() int {
	enq := q.enqueuePos.Load()
	deq := q.dequeuePos.Load()
	if enq < deq {
		return 0
	}
	n := int(enq - deq)
	if n > len(q.cells) {
		return len(q.cells)
	}
	return n
}
