package job

import (
	"context"

	"go.uber.org/atomic"
)

// Counter is a job that counts its runs.
type Counter struct {
	n      atomic.Int64
	onTick func(n int64)
}

// NewCounter creates a counter. onTick, if not nil, is called with the new
// value after every run.
func NewCounter(onTick func(n int64)) *Counter {
	return &Counter{onTick: onTick}
}

// Work increments the counter. It never fails and ignores ctx.
func (c *Counter) Work(_ context.Context) error {
	n := c.n.Inc()
	if c.onTick != nil {
		c.onTick(n)
	}
	return nil
}

// Value returns the number of runs so far.
func (c *Counter) Value() int64 {
	return c.n.Load()
}
