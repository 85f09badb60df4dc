// Package workerpool provides a bounded goroutine pool for the batch
// runner. Evaluation work is CPU-bound, so the pool sizes itself to the
// available cores rather than oversubscribing.
package workerpool

import (
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/controlgate/controlgate/pkg/defaults"
)

// Pool manages a fixed pool of worker goroutines. Workers are started
// lazily on first submission and reused across tasks.
type Pool struct {
	workers int32
	tasks   chan func()
	running int32
	closed  int32
	wg      sync.WaitGroup
}

var (
	defaultPool *Pool
	defaultOnce sync.Once
)

// Default returns the shared worker pool, sized to GOMAXPROCS and
// capped at the configured maximum. Evaluations do no I/O, so extra
// goroutines beyond the core count only add scheduling overhead.
func Default() *Pool {
	defaultOnce.Do(func() {
		workers := runtime.GOMAXPROCS(0)
		if workers > defaults.ConcurrencyMax {
			workers = defaults.ConcurrencyMax
		}
		defaultPool = New(workers)
	})
	return defaultPool
}

// New creates a worker pool with the specified number of workers.
// Non-positive counts fall back to GOMAXPROCS.
func New(workers int) *Pool {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &Pool{
		workers: int32(workers),
		tasks:   make(chan func(), workers*4),
	}
}

// Submit queues a task for execution by an available worker. If every
// worker is busy the task waits in the queue. Returns false if the
// pool is closed.
func (p *Pool) Submit(task func()) bool {
	if atomic.LoadInt32(&p.closed) == 1 {
		return false
	}

	for {
		running := atomic.LoadInt32(&p.running)
		if running >= p.workers {
			break
		}
		if atomic.CompareAndSwapInt32(&p.running, running, running+1) {
			p.wg.Add(1)
			go p.worker()
			break
		}
	}

	p.tasks <- task
	return true
}

// SubmitWait submits a task and blocks until it completes.
func (p *Pool) SubmitWait(task func()) bool {
	done := make(chan struct{})
	ok := p.Submit(func() {
		defer close(done)
		task()
	})
	if ok {
		<-done
	}
	return ok
}

func (p *Pool) worker() {
	defer func() {
		// A panicking task must not shrink the pool.
		if r := recover(); r != nil {
			if atomic.LoadInt32(&p.closed) == 0 {
				go p.worker()
				return
			}
		}
		atomic.AddInt32(&p.running, -1)
		p.wg.Done()
	}()

	for task := range p.tasks {
		if task != nil {
			task()
		}
	}
}

// Running returns the current number of running workers.
func (p *Pool) Running() int {
	return int(atomic.LoadInt32(&p.running))
}

// Cap returns the worker capacity.
func (p *Pool) Cap() int {
	return int(atomic.LoadInt32(&p.workers))
}

// Waiting returns the number of tasks waiting in the queue.
func (p *Pool) Waiting() int {
	return len(p.tasks)
}

// Close shuts down the pool. All queued tasks complete before Close
// returns. Submitting after Close returns false.
func (p *Pool) Close() {
	if !atomic.CompareAndSwapInt32(&p.closed, 0, 1) {
		return
	}
	close(p.tasks)
	p.wg.Wait()
}

// IsClosed returns true if the pool is closed.
func (p *Pool) IsClosed() bool {
	return atomic.LoadInt32(&p.closed) == 1
}

// Map applies fn to each item in parallel and returns results in input
// order. Returns partial results if the pool is closed mid-run.
func Map[T, R any](p *Pool, items []T, fn func(T) R) []R {
	results := make([]R, len(items))
	var wg sync.WaitGroup
	wg.Add(len(items))

	for i, item := range items {
		idx := i
		val := item
		if !p.Submit(func() {
			defer wg.Done()
			results[idx] = fn(val)
		}) {
			wg.Done()
		}
	}

	wg.Wait()
	return results
}
