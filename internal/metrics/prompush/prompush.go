// Package prompush implements a Prometheus Pushgateway backend for the
// metrics package. A migration is a short-lived process, so instead of
// exposing a scrape endpoint the collected registry is pushed on Flush.
package prompush

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"

	"hpmigrate/internal/metrics"
)

// Backend is a Prometheus Pushgateway metrics backend.
type Backend struct {
	gatewayURL string // e.g. http://pushgateway:9091
	jobName    string // Pushgateway "job" grouping key
	reg        *prometheus.Registry

	stepCounter   *prometheus.CounterVec   // etl_step_total{step,status}
	stepDuration  *prometheus.HistogramVec // etl_step_duration_seconds{step,status}
	recordCounter *prometheus.CounterVec   // etl_records_total{kind}
}

// NewBackend constructs a Pushgateway backend. jobName becomes the
// Pushgateway grouping key and defaults to "hpmigrate".
func NewBackend(jobName, gatewayURL string) (*Backend, error) {
	if gatewayURL == "" {
		return nil, fmt.Errorf("prompush: gateway URL is required")
	}
	if jobName == "" {
		jobName = "hpmigrate"
	}

	stepCounter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: metrics.StepTotal,
			Help: "Migration step executions by step and status.",
		},
		[]string{"step", "status"},
	)
	// DDL on a large table can hold a lock for a while; buckets reach minutes.
	stepDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    metrics.StepDuration,
			Help:    "Duration of migration steps in seconds.",
			Buckets: prometheus.ExponentialBuckets(0.01, 4, 9),
		},
		[]string{"step", "status"},
	)
	recordCounter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: metrics.RecordsTotal,
			Help: "Column counts per kind (columns_added, columns_present).",
		},
		[]string{"kind"},
	)

	reg := prometheus.NewRegistry()
	for _, c := range []prometheus.Collector{stepCounter, stepDuration, recordCounter} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("prompush: register collector: %w", err)
		}
	}

	return &Backend{
		gatewayURL:    gatewayURL,
		jobName:       jobName,
		reg:           reg,
		stepCounter:   stepCounter,
		stepDuration:  stepDuration,
		recordCounter: recordCounter,
	}, nil
}

// IncCounter implements metrics.Backend. Unknown names are ignored.
func (b *Backend) IncCounter(name string, delta float64, labels metrics.Labels) {
	switch name {
	case metrics.StepTotal:
		if b.stepCounter != nil {
			b.stepCounter.WithLabelValues(labels["step"], labels["status"]).Add(delta)
		}
	case metrics.RecordsTotal:
		if b.recordCounter != nil {
			b.recordCounter.WithLabelValues(labels["kind"]).Add(delta)
		}
	}
}

// ObserveHistogram implements metrics.Backend.
func (b *Backend) ObserveHistogram(name string, value float64, labels metrics.Labels) {
	if name != metrics.StepDuration || b.stepDuration == nil {
		return
	}
	b.stepDuration.WithLabelValues(labels["step"], labels["status"]).Observe(value)
}

// Flush pushes the registry to the Pushgateway, replacing the job's group.
func (b *Backend) Flush() error {
	if err := push.New(b.gatewayURL, b.jobName).Gatherer(b.reg).Push(); err != nil {
		return fmt.Errorf("prompush: push to %s: %w", b.gatewayURL, err)
	}
	return nil
}
