package engine

import (
	"context"
	"sync"
	"sync/atomic"
)

// workerPool is a fixed-size goroutine pool with a bounded input queue.
// Runs are CPU bound, so the pool size caps concurrent simulations. Jobs
// report their own results.
type workerPool[T any] struct {
	queue    chan T
	process  func(ctx context.Context, t T)
	wg       sync.WaitGroup
	inFlight atomic.Int64
	drain    sync.Once
}

// newWorkerPool creates and starts a pool with n goroutines and queue capacity depth.
func newWorkerPool[T any](ctx context.Context, n, depth int, fn func(context.Context, T)) *workerPool[T] {
	p := &workerPool[T]{
		queue:   make(chan T, depth),
		process: fn,
	}
	for i := 0; i < n; i++ {
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			p.run(ctx)
		}()
	}
	return p
}

func (p *workerPool[T]) run(ctx context.Context) {
	for {
		select {
		case t, ok := <-p.queue:
			if !ok {
				return
			}
			p.do(ctx, t)
		case <-ctx.Done():
			return
		}
	}
}

func (p *workerPool[T]) do(ctx context.Context, t T) {
	p.inFlight.Add(1)
	defer p.inFlight.Add(-1)
	p.process(ctx, t)
}

// Submit enqueues a job without blocking (returns false if full).
func (p *workerPool[T]) Submit(t T) bool {
	select {
	case p.queue <- t:
		return true
	default:
		return false
	}
}

// Drain closes the queue and waits for all workers to finish. It is safe to
// call more than once.
func (p *workerPool[T]) Drain() {
	p.drain.Do(func() { close(p.queue) })
	p.wg.Wait()
}

// QueueLen returns how many jobs are currently queued.
func (p *workerPool[T]) QueueLen() int {
	return len(p.queue)
}

// QueueCap returns the total queue capacity.
func (p *workerPool[T]) QueueCap() int {
	return cap(p.queue)
}

// InFlight returns how many jobs workers are processing.
func (p *workerPool[T]) InFlight() int {
	return int(p.inFlight.Load())
}
