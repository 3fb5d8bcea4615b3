package waitstrategy

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAtomicFlag_NotifyOneWakesWaiter(t *testing.T) {
	f := NewAtomicFlag()

	woke := make(chan struct{})
	go func() {
		f.Wait()
		close(woke)
	}()

	time.Sleep(10 * time.Millisecond) // let the waiter park
	f.NotifyOne()

	select {
	case <-woke:
	case <-time.After(time.Second):
		t.Fatal("waiter was not woken by NotifyOne")
	}
}

func TestAtomicFlag_NotifyBeforeWaitIsNotLost(t *testing.T) {
	f := NewAtomicFlag()
	f.NotifyOne()

	done := make(chan struct{})
	go func() {
		f.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("a Notify that landed before Wait was lost")
	}
}

func TestAtomicFlag_NotifyAllWakesEveryWaiter(t *testing.T) {
	const waiters = 16
	f := NewAtomicFlag()

	var wg sync.WaitGroup
	woke := make([]bool, waiters)
	var mu sync.Mutex

	for i := 0; i < waiters; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			f.Wait()
			mu.Lock()
			woke[idx] = true
			mu.Unlock()
		}(i)
	}

	time.Sleep(20 * time.Millisecond)
	f.NotifyAll()

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("NotifyAll did not wake every waiter")
	}

	for _, w := range woke {
		assert.True(t, w)
	}
}

func TestAtomicFlag_ResetClearsPendingSignal(t *testing.T) {
	f := NewAtomicFlag()
	f.NotifyOne()
	f.Reset()
	assert.False(t, f.set.Load())
}
