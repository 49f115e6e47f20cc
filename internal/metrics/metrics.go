// Package metrics provides a small, backend-agnostic abstraction for
// recording operational metrics from added-lines and unique-lines runs.
//
// A global, pluggable backend defaults to a no-op implementation, so the
// orchestrator can always call into this package whether or not the host
// configured a real backend. Concrete systems (Prometheus Pushgateway,
// Datadog) live in subpackages so the core never imports them.
package metrics

import (
	"sync"
	"time"
)

// Metric names emitted by the orchestrator.
const (
	StepTotal           = "deduplines_step_total"
	StepDurationSeconds = "deduplines_step_duration_seconds"
	LinesTotal          = "deduplines_lines_total"
)

// Labels are string key/value pairs attached to a metric.
type Labels map[string]string

// Backend is the minimal interface for metrics backends.
type Backend interface {
	// IncCounter increments a counter by delta.
	IncCounter(name string, delta float64, labels Labels)
	// ObserveHistogram records a value in a duration style metric.
	ObserveHistogram(name string, value float64, labels Labels)
	// Flush pushes or flushes metrics, if the backend needs it.
	Flush() error
}

type nopBackend struct{}

func (nopBackend) IncCounter(name string, delta float64, labels Labels)       {}
func (nopBackend) ObserveHistogram(name string, value float64, labels Labels) {}
func (nopBackend) Flush() error                                               { return nil }

var (
	mu      sync.RWMutex
	backend Backend = nopBackend{}
)

// SetBackend installs a concrete backend. Passing nil keeps the existing one.
func SetBackend(b Backend) {
	if b == nil {
		return
	}
	mu.Lock()
	backend = b
	mu.Unlock()
}

func current() Backend {
	mu.RLock()
	defer mu.RUnlock()
	return backend
}

// Flush delegates to the current backend.
func Flush() error {
	return current().Flush()
}

// RecordStep records one phase of an operation: a counter labelled with
// its status and the phase duration.
func RecordStep(op, step string, err error, d time.Duration) {
	status := "success"
	if err != nil {
		status = "failure"
	}
	lbls := Labels{
		"op":     op,
		"step":   step,
		"status": status,
	}
	b := current()
	b.IncCounter(StepTotal, 1, lbls)
	b.ObserveHistogram(StepDurationSeconds, d.Seconds(), lbls)
}

// RecordLines increments the line counter for op. Typical kinds are
// "split" (lines routed to partitions) and "written" (lines in the output).
func RecordLines(op, kind string, delta int64) {
	if delta <= 0 {
		return
	}
	current().IncCounter(LinesTotal, float64(delta), Labels{
		"op":   op,
		"kind": kind,
	})
}
