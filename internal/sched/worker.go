// internal/sched/worker.go

package sched

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"
	"go.uber.org/atomic"
)

// Worker invokes a Func every interval on a background goroutine.
//
// A Worker goes through any number of cycles; each cycle is one Start followed
// by one Stop. Start and Stop are serialized by a plain mutex and must not be
// called from inside the Func or the completion hook.
type Worker struct {
	mu sync.Mutex // serializes Start and Stop

	cfg workerConfig
	fn  Func
	log logrus.FieldLogger

	// alive between Start and Stop, guarded by mu
	clock  *TickClock
	cancel context.CancelFunc
	stream *stream

	runs     atomic.Uint64
	failures atomic.Uint64
	cycles   atomic.Uint64
	running  atomic.Bool
}

// stream is the handle of one background loop. err is written once, before
// done is closed.
type stream struct {
	done chan struct{}
	err  error
}

// Stats is a snapshot of worker counters across all cycles.
type Stats struct {
	Runs     uint64 // finished invocations of the Func, failed ones included
	Failures uint64 // runs that returned an error or panicked, cancellations excluded
	Cycles   uint64
	Running  bool
}

// NewWorker creates an idle worker. It panics if fn is nil or the interval is
// not positive.
func NewWorker(fn Func, opts ...Option) *Worker {
	if fn == nil {
		panic("sched: worker Func is nil")
	}

	cfg := defaultWorkerConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	if cfg.interval <= 0 {
		panic(fmt.Sprintf("sched: interval=%s is invalid (must be > 0)", cfg.interval))
	}

	return &Worker{
		cfg: cfg,
		fn:  fn,
		log: cfg.logger.WithField("worker", cfg.name),
	}
}

// Start launches the background loop and returns without waiting for any run.
// Calling Start on a running worker is a no-op.
func (w *Worker) Start() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.clock != nil && w.cancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	clock := NewTickClock(w.cfg.clock, w.cfg.interval)
	s := &stream{done: make(chan struct{})}

	w.clock, w.cancel, w.stream = clock, cancel, s
	w.cycles.Inc()
	w.running.Store(true)

	w.log.WithField("interval", w.cfg.interval).Info("worker started")
	w.emit(Event{Kind: EventStart})

	go func() {
		defer close(s.done)
		s.err = w.loop(ctx, clock)
	}()
}

// Stop ends the current cycle and waits for the background loop to exit.
//
// With force=false the in-flight run finishes normally, then the completion
// hook runs. With force=true the run's context is canceled first; if the loop
// exits with a cancellation, Stop returns an error matching context.Canceled
// and the completion hook is skipped.
//
// Stop returns ErrNotStarted when no cycle is active. The mutex is held while
// waiting, so a concurrent Start or Stop blocks until this one returns.
func (w *Worker) Stop(force bool) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.stream == nil {
		return ErrNotStarted
	}
	defer w.reset()

	if force {
		w.cancel()
	}
	w.clock.Stop()
	<-w.stream.done

	if err := w.stream.err; err != nil {
		if force && errors.Is(err, context.Canceled) {
			w.log.Info("worker canceled")
			w.emit(Event{Kind: EventCancel, Err: err})
			return fmt.Errorf("sched: forced stop: %w", err)
		}
		w.log.WithError(err).Error("worker stopped after failure")
		w.emit(Event{Kind: EventStop, Err: err})
		return fmt.Errorf("sched: worker failed: %w", err)
	}

	w.emit(Event{Kind: EventStop})
	if w.cfg.completion != nil {
		if err := w.cfg.completion.invoke(); err != nil {
			w.log.WithError(err).Error("completion failed")
			return fmt.Errorf("sched: completion: %w", err)
		}
		w.emit(Event{Kind: EventComplete})
	}
	w.log.Info("worker stopped")
	return nil
}

// Running reports whether a cycle is active.
func (w *Worker) Running() bool {
	return w.running.Load()
}

// Stats returns a snapshot of the worker counters.
func (w *Worker) Stats() Stats {
	return Stats{
		Runs:     w.runs.Load(),
		Failures: w.failures.Load(),
		Cycles:   w.cycles.Load(),
		Running:  w.running.Load(),
	}
}

// Name returns the configured worker name.
func (w *Worker) Name() string { return w.cfg.name }

// loop waits for ticks and runs the Func until the clock stops or ctx is
// canceled. Runs never overlap.
func (w *Worker) loop(ctx context.Context, clock *TickClock) error {
	for {
		ok, err := clock.Wait(ctx)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}

		tick := clock.Count()
		w.log.WithField("tick", tick).Debug("tick")
		w.emitTick(Event{Kind: EventTick}, tick)

		err = w.fn.invoke(ctx)
		w.runs.Inc()
		if err == nil {
			w.emitTick(Event{Kind: EventRun}, tick)
			continue
		}

		// the run gave up because of a forced stop
		if ctx.Err() != nil && errors.Is(err, ctx.Err()) {
			return err
		}

		w.failures.Inc()
		w.emitTick(Event{Kind: EventFail, Err: err}, tick)
		if w.cfg.policy == StopOnError {
			w.log.WithError(err).WithField("tick", tick).Error("run failed, loop ends")
			return err
		}
		w.log.WithError(err).WithField("tick", tick).Warn("run failed")
	}
}

// reset releases the cycle. The cancel call frees the context even when the
// stop was graceful.
func (w *Worker) reset() {
	w.cancel()
	w.clock, w.cancel, w.stream = nil, nil, nil
	w.running.Store(false)
}

func (w *Worker) emit(ev Event) {
	var tick int64
	if w.clock != nil {
		tick = w.clock.Count()
	}
	w.emitTick(ev, tick)
}

func (w *Worker) emitTick(ev Event, tick int64) {
	if w.cfg.observer == nil {
		return
	}
	ev.Time = w.cfg.clock.Now()
	ev.Worker = w.cfg.name
	ev.Tick = tick
	w.cfg.observer(ev)
}
