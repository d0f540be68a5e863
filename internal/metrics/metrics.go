// Package metrics records operational metrics for migration runs behind a
// small pluggable Backend.
//
// The default backend is a no-op, so instrumented code can call RecordStep
// and RecordColumns unconditionally. Concrete systems live in subpackages
// (prompush for a Prometheus Pushgateway, datadog for DogStatsD) and are
// installed once at startup with SetBackend.
package metrics

import (
	"sync"
	"time"
)

// Metric names shared by all backends.
const (
	StepTotal       = "etl_step_total"
	StepDuration    = "etl_step_duration_seconds"
	RecordsTotal    = "etl_records_total"
	defaultJobLabel = "hpmigrate"
)

// Kinds for RecordColumns.
const (
	KindColumnsAdded   = "columns_added"
	KindColumnsPresent = "columns_present"
)

// Labels are string key/value pairs attached to a metric.
type Labels map[string]string

// Backend is the minimal interface for metrics backends.
type Backend interface {
	// IncCounter increments a counter by delta.
	IncCounter(name string, delta float64, labels Labels)
	// ObserveHistogram records a duration-style value.
	ObserveHistogram(name string, value float64, labels Labels)
	// Flush pushes or flushes buffered metrics, if the backend needs it.
	Flush() error
}

type nopBackend struct{}

func (nopBackend) IncCounter(string, float64, Labels)       {}
func (nopBackend) ObserveHistogram(string, float64, Labels) {}
func (nopBackend) Flush() error                             { return nil }

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

// Reset restores the no-op backend.
func Reset() {
	mu.Lock()
	backend = nopBackend{}
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

// RecordStep counts one execution of step and observes its duration, with
// status "success" or "failure" depending on err.
func RecordStep(job, step string, err error, d time.Duration) {
	if job == "" {
		job = defaultJobLabel
	}
	status := "success"
	if err != nil {
		status = "failure"
	}
	lbls := Labels{"job": job, "step": step, "status": status}

	b := current()
	b.IncCounter(StepTotal, 1, lbls)
	b.ObserveHistogram(StepDuration, d.Seconds(), lbls)
}

// RecordColumns adds n to the column counter of the given kind. Zero and
// negative counts are ignored.
func RecordColumns(job, kind string, n int) {
	if n <= 0 {
		return
	}
	if job == "" {
		job = defaultJobLabel
	}
	current().IncCounter(RecordsTotal, float64(n), Labels{"job": job, "kind": kind})
}
