package job

import (
	"context"
	"time"
)

// SleepWork returns a runnable that sleeps for the given duration, or until
// ctx is canceled, in which case it returns ctx.Err().
func SleepWork(ms int64) func(context.Context) error {
	d := time.Duration(ms) * time.Millisecond
	return func(ctx context.Context) error {
		timer := time.NewTimer(d)
		defer timer.Stop()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
			// If the time is up, we just return nil.
			return nil
		}
	}
}
