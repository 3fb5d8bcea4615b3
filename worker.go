package taskpool

import (
	"runtime/debug"
	"time"
)

// runWorker is the body every worker goroutine runs for the pool's
// entire Running -> Stopped lifespan: try a dequeue first, so anything
// enqueued before Stopping was observed still drains; only exit once
// Stopping is observed with an empty queue and no in-flight work.
func (p *Pool[M]) runWorker(id int) {
	if p.config.OnWorkerStart != nil {
		p.config.OnWorkerStart(id)
	}

	for {
		env, ok := p.queue.Dequeue()
		if ok {
			p.config.Strategy.Reset()
			p.activeTasks.Add(1)
			p.invoke(env.Invocable)
			p.activeTasks.Add(-1)
			p.metrics.completed.Add(1)
			continue
		}

		if lifecycleState(p.state.Load()) == stateStopping && p.activeTasks.Load() == 0 {
			break
		}

		p.config.Strategy.Wait()
	}

	if p.config.OnWorkerStop != nil {
		p.config.OnWorkerStop(id)
	}
}

// invoke runs a single envelope's invocable with panic recovery: a
// failing task must never take down its worker or any other in-flight
// task.
func (p *Pool[M]) invoke(fn func()) {
	start := time.Now()
	defer func() {
		if p.config.Recorder != nil {
			p.config.Recorder.ObserveLatency(time.Since(start).Seconds())
		}
		if r := recover(); r != nil {
			p.metrics.failed.Add(1)
			if p.config.PanicHandler != nil {
				p.config.PanicHandler(r)
			} else {
				p.config.Logger.Errorw("task panicked",
					"recovered", r,
					"stack", string(debug.Stack()),
				)
			}
		}
	}()

	fn()
}
