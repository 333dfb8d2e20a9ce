package sched

import (
	"context"
	"fmt"
)

// Func is the periodic operation. ctx is canceled by a forced stop; a Func
// that wants to abort early must watch it and return ctx.Err().
type Func func(ctx context.Context) error

// Hook is the completion operation run once after the background loop exits.
// It is not cancelable.
type Hook func() error

// ErrorPolicy decides what happens when a periodic run fails on a normal tick.
type ErrorPolicy int

const (
	// ContinueOnError logs the failure and keeps ticking.
	ContinueOnError ErrorPolicy = iota
	// StopOnError ends the loop; the next Stop returns the failure and skips
	// the completion hook.
	StopOnError
)

func (p ErrorPolicy) String() string {
	switch p {
	case ContinueOnError:
		return "continue"
	case StopOnError:
		return "stop"
	default:
		return fmt.Sprintf("ErrorPolicy(%d)", int(p))
	}
}

// invoke runs fn and turns a panic into an error wrapping ErrPanicked.
func (fn Func) invoke(ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrPanicked, r)
		}
	}()
	return fn(ctx)
}

// invoke runs h and turns a panic into an error wrapping ErrPanicked.
func (h Hook) invoke() (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrPanicked, r)
		}
	}()
	return h()
}
