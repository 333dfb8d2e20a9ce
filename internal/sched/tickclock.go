// internal/sched/tickclock.go

package sched

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/atomic"
)

// TickClock emits ticks at a fixed interval and counts the ticks it hands out.
//
// A tick that fires while nobody is waiting is kept (at most one), so a run
// that overruns the interval is followed by the next run right away.
type TickClock struct {
	ticker clockwork.Ticker
	count  atomic.Int64
	stop   chan struct{}
	once   sync.Once
}

// NewTickClock creates a clock that starts ticking immediately.
func NewTickClock(clock clockwork.Clock, interval time.Duration) *TickClock {
	return &TickClock{
		ticker: clock.NewTicker(interval),
		stop:   make(chan struct{}),
	}
}

// Wait blocks until the next tick and reports true, or reports false once the
// clock is stopped. If ctx is canceled it returns ctx.Err(); cancellation wins
// over a stopped clock.
func (c *TickClock) Wait(ctx context.Context) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if c.stopped() {
		return false, nil
	}

	select {
	case <-ctx.Done():
		return false, ctx.Err()
	case <-c.stop:
		// forced stops cancel before they stop the clock
		if err := ctx.Err(); err != nil {
			return false, err
		}
		return false, nil
	case <-c.ticker.Chan():
		// a tick racing with Stop is dropped
		if c.stopped() {
			if err := ctx.Err(); err != nil {
				return false, err
			}
			return false, nil
		}
		c.count.Inc()
		return true, nil
	}
}

// Stop ends the clock. In-flight and future Wait calls return false.
// Safe to call more than once.
func (c *TickClock) Stop() {
	c.once.Do(func() {
		c.ticker.Stop()
		close(c.stop)
	})
}

// Count returns the number of ticks handed out by Wait.
func (c *TickClock) Count() int64 {
	return c.count.Load()
}

func (c *TickClock) stopped() bool {
	select {
	case <-c.stop:
		return true
	default:
		return false
	}
}
