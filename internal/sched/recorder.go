package sched

import (
	"encoding/csv"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/emirpasic/gods/queues/circularbuffer"
)

// DefaultHistorySize is the number of events a Recorder keeps by default.
const DefaultHistorySize = 64

// Recorder keeps the most recent worker events and can mirror them to a CSV file.
// Its Observe method is meant to be passed to WithObserver.
type Recorder struct {
	mu     sync.Mutex
	recent *circularbuffer.Queue

	// logging-related
	csvFile   *os.File
	csvWriter *csv.Writer
	csvErr    error // first write error, reported by Close
}

// NewRecorder creates a recorder holding up to size events.
func NewRecorder(size int) *Recorder {
	if size <= 0 {
		size = DefaultHistorySize
	}
	return &Recorder{recent: circularbuffer.New(size)}
}

// EnableCSV opens path and writes every observed event as a row.
// Must be called before the worker starts. A file opened by an earlier call
// is closed first, and its close error is returned.
func (r *Recorder) EnableCSV(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	w := csv.NewWriter(f)

	// write header
	if err := w.Write([]string{"timestamp", "tick", "event", "worker", "error"}); err != nil {
		_ = f.Close()
		return err
	}
	w.Flush()

	r.mu.Lock()
	defer r.mu.Unlock()

	prev := r.closeCSV()
	r.csvFile, r.csvWriter = f, w
	return prev
}

// Observe records ev. Oldest events are dropped once the buffer is full.
func (r *Recorder) Observe(ev Event) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.recent.Enqueue(ev)

	if r.csvWriter == nil {
		return
	}
	errText := ""
	if ev.Err != nil {
		errText = ev.Err.Error()
	}
	err := r.csvWriter.Write([]string{
		ev.Time.Format(time.RFC3339Nano),
		strconv.FormatInt(ev.Tick, 10),
		ev.Kind.String(),
		ev.Worker,
		errText,
	})
	r.csvWriter.Flush()
	if err == nil {
		err = r.csvWriter.Error()
	}
	if err != nil && r.csvErr == nil {
		r.csvErr = err
	}
}

// Recent returns the buffered events, oldest first.
func (r *Recorder) Recent() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()

	values := r.recent.Values()
	out := make([]Event, 0, len(values))
	for _, v := range values {
		out = append(out, v.(Event))
	}
	return out
}

// Close flushes and closes the CSV file, if any. It reports the first
// failed row write as well.
func (r *Recorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.closeCSV()
}

func (r *Recorder) closeCSV() error {
	if r.csvFile == nil {
		return nil
	}
	r.csvWriter.Flush()
	err := r.csvErr
	if err == nil {
		err = r.csvWriter.Error()
	}
	if cerr := r.csvFile.Close(); err == nil {
		err = cerr
	}
	r.csvFile, r.csvWriter, r.csvErr = nil, nil, nil
	return err
}
