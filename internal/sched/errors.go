package sched

import "errors"

var (
	// ErrNotStarted is returned by Stop when no cycle is active.
	ErrNotStarted = errors.New("sched: worker not started")
	// ErrPanicked wraps a recovered panic from a periodic run.
	ErrPanicked = errors.New("sched: run panicked")
)
