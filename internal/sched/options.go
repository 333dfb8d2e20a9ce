package sched

import (
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/sirupsen/logrus"
)

// DefaultInterval is used when WithInterval is not given.
const DefaultInterval = time.Second

type workerConfig struct {
	name       string
	interval   time.Duration
	completion Hook
	policy     ErrorPolicy
	clock      clockwork.Clock
	logger     logrus.FieldLogger
	observer   Observer
}

// Option configures a Worker.
type Option func(*workerConfig)

func defaultWorkerConfig() workerConfig {
	return workerConfig{
		name:     "worker",
		interval: DefaultInterval,
		policy:   ContinueOnError,
		clock:    clockwork.NewRealClock(),
		logger:   logrus.StandardLogger(),
	}
}

// WithName sets the name used in logs and events.
func WithName(name string) Option {
	return func(c *workerConfig) {
		if name != "" {
			c.name = name
		}
	}
}

// WithInterval sets the gap between ticks. It is fixed for the worker's
// lifetime. If d <= 0, NewWorker panics.
func WithInterval(d time.Duration) Option {
	return func(c *workerConfig) { c.interval = d }
}

// WithCompletion sets the hook run after a graceful stop. A panic in the hook
// is recovered and returned from Stop as an error wrapping ErrPanicked.
func WithCompletion(h Hook) Option {
	return func(c *workerConfig) { c.completion = h }
}

// WithErrorPolicy sets how failed runs are handled. Default is ContinueOnError.
func WithErrorPolicy(p ErrorPolicy) Option {
	return func(c *workerConfig) { c.policy = p }
}

// WithClock replaces the real clock, mostly for tests.
func WithClock(clock clockwork.Clock) Option {
	return func(c *workerConfig) {
		if clock != nil {
			c.clock = clock
		}
	}
}

// WithLogger sets the logger. Default is logrus.StandardLogger().
func WithLogger(l logrus.FieldLogger) Option {
	return func(c *workerConfig) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithObserver registers a callback for worker events.
func WithObserver(o Observer) Option {
	return func(c *workerConfig) { c.observer = o }
}
