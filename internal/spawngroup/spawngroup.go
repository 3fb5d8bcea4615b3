// Package spawngroup launches a fixed-size batch of goroutines and reports
// the first startup failure, tearing down whatever already started.
//
// Real OS threads can fail to spawn (resource exhaustion, ulimits); Go
// goroutines effectively never do, so callers that want spawn-failure
// semantics inject a fallible start function. The group treats a
// non-nil error from start as a failure to launch that unit at all: its
// body never runs.
package spawngroup

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"

	"github.com/pkg/errors"
)

// PanicError wraps a value recovered from a panicking body.
type PanicError struct {
	Value any
	Stack string
}

func (p *PanicError) Error() string {
	return fmt.Sprintf("panic: %v\n%s", p.Value, p.Stack)
}

// Group coordinates spawning N units and reports the first failure.
type Group struct {
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu       sync.Mutex
	failOnce sync.Once
	firstErr error
}

// New creates a Group whose bodies are cancelled via ctx (or
// context.Background if nil) once the first spawn failure occurs.
func New(ctx context.Context) *Group {
	if ctx == nil {
		ctx = context.Background()
	}
	groupCtx, cancel := context.WithCancel(ctx)
	return &Group{ctx: groupCtx, cancel: cancel}
}

// Spawn calls start synchronously; on success it launches body in a new
// goroutine with panic recovery, passing the group's context. On failure
// it records the error (first one wins) and cancels the group without
// launching body.
func (g *Group) Spawn(start func() error, body func(ctx context.Context)) {
	if err := start(); err != nil {
		g.fail(errors.Wrap(err, "spawn"))
		return
	}

	g.wg.Add(1)
	go func() {
		defer g.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				g.fail(&PanicError{Value: r, Stack: string(debug.Stack())})
			}
		}()
		body(g.ctx)
	}()
}

// Wait blocks until every launched body has returned and reports the
// first failure recorded by Spawn, if any.
func (g *Group) Wait() error {
	g.wg.Wait()
	return g.Err()
}

// Err reports the first failure recorded by Spawn so far, without
// waiting for launched bodies to finish. Used to detect a spawn failure
// immediately, before the bodies it launched (which may run
// indefinitely) have returned.
func (g *Group) Err() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.firstErr
}

// Cancel cancels the group's context, signaling running bodies to stop.
func (g *Group) Cancel() {
	g.cancel()
}

// Done reports the channel closed when the group's context is cancelled.
func (g *Group) Done() <-chan struct{} {
	return g.ctx.Done()
}

func (g *Group) fail(err error) {
	g.mu.Lock()
	if g.firstErr == nil {
		g.firstErr = err
	}
	g.mu.Unlock()
	g.failOnce.Do(g.cancel)
}
