// internal/sched/workerEvent.go

package sched

import (
	"time"
)

// EventKind represents the type of worker event
type EventKind int

const (
	EventStart EventKind = iota
	EventTick
	EventRun
	EventFail
	EventStop
	EventComplete
	EventCancel
)

// Event is emitted on every tick and on lifecycle transitions
type Event struct {
	Time   time.Time
	Kind   EventKind
	Worker string
	Tick   int64 // ticks handed out in the current cycle
	Err    error // set for EventFail and EventCancel
}

// Observer receives worker events. It is called synchronously, from the
// background goroutine for Tick/Run/Fail and from Start/Stop otherwise.
type Observer func(Event)

func (k EventKind) String() string {
	switch k {
	case EventStart:
		return "Start"
	case EventTick:
		return "Tick"
	case EventRun:
		return "Run"
	case EventFail:
		return "Fail"
	case EventStop:
		return "Stop"
	case EventComplete:
		return "Complete"
	case EventCancel:
		return "Cancel"
	default:
		return "Unknown"
	}
}
