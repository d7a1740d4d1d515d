package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/dunkgray/eqrm/internal/config"
	"github.com/dunkgray/eqrm/internal/metrics"
)

var (
	// ErrQueueFull is returned when the run queue has no free slot.
	ErrQueueFull = errors.New("engine: run queue full")
	// ErrTimeout is returned when a run does not finish within the configured timeout.
	ErrTimeout = errors.New("engine: run timeout")
)

// Request is one run submitted to the engine. A nil Config runs the
// engine's current config.
type Request struct {
	Config  *config.RunConfig
	Options RunOptions
}

// Engine runs simulations on a bounded worker pool.
type Engine struct {
	cfg  atomic.Pointer[config.RunConfig]
	pool *workerPool[*runWork]
	conf config.EngineConf
}

type runWork struct {
	req     Request
	resultC chan *runOutcome
}

type runOutcome struct {
	res *RunResult
	err error
}

// New creates an Engine for cfg and starts its worker pool. Worker count
// and queue depth are fixed for the engine's lifetime.
func New(ctx context.Context, cfg *config.RunConfig) *Engine {
	e := &Engine{conf: cfg.Engine}
	e.cfg.Store(cfg)
	e.pool = newWorkerPool(
		ctx,
		e.conf.Workers,
		e.conf.QueueDepth,
		func(ctx context.Context, w *runWork) {
			out := &runOutcome{}
			// The activity tensor panics on conservation violations.
			defer func() {
				if r := recover(); r != nil {
					slog.Error("run panicked", "panic", r)
					out = &runOutcome{err: fmt.Errorf("engine: run panicked: %v", r)}
				}
				w.resultC <- out
			}()
			cfg := w.req.Config
			if cfg == nil {
				cfg = e.cfg.Load()
			}
			out.res, out.err = Run(ctx, cfg, w.req.Options)
		},
	)
	return e
}

// Config returns the config runs default to.
func (e *Engine) Config() *config.RunConfig { return e.cfg.Load() }

// SwapConfig atomically replaces the default config (used on hot-reload).
func (e *Engine) SwapConfig(cfg *config.RunConfig) {
	e.cfg.Store(cfg)
}

// RunSync queues a run and waits for its result.
func (e *Engine) RunSync(ctx context.Context, req Request) (*RunResult, error) {
	resultC := make(chan *runOutcome, 1)
	w := &runWork{req: req, resultC: resultC}

	timeout := time.Duration(e.conf.RunTimeoutMs) * time.Millisecond
	if !e.pool.Submit(w) {
		metrics.RunsDropped.Inc()
		return nil, fmt.Errorf("%w (capacity %d)", ErrQueueFull, e.conf.QueueDepth)
	}
	metrics.RunsEnqueued.Inc()

	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case out := <-resultC:
		return out.res, out.err
	case <-timer.C:
		return nil, fmt.Errorf("%w after %v", ErrTimeout, timeout)
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// QueueUtilization returns queue used / capacity (0–1).
func (e *Engine) QueueUtilization() float64 {
	if e.pool.QueueCap() == 0 {
		return 0
	}
	return float64(e.pool.QueueLen()) / float64(e.pool.QueueCap())
}

// InFlight returns the number of runs being processed.
func (e *Engine) InFlight() int { return e.pool.InFlight() }

// Shutdown drains the pool gracefully.
func (e *Engine) Shutdown() {
	e.pool.Drain()
}
