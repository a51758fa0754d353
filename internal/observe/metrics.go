// Package observe provides observability primitives for werbench:
// OpenTelemetry metrics, tracing, and the Prometheus exporter bridge.
//
// Metrics are recorded through the OpenTelemetry Metrics API. A Prometheus
// exporter bridge is available via [InitProvider] so that long-running
// evaluation services can be scraped via the standard /metrics endpoint. A
// package-level default [Metrics] instance ([DefaultMetrics]) is provided
// for convenience; tests should use [NewMetrics] with a custom
// [metric.MeterProvider] to avoid cross-test pollution.
package observe

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// meterName is the instrumentation scope name used for all werbench metrics.
const meterName = "github.com/werbench/werbench"

// Metrics holds all OpenTelemetry metric instruments for the application.
// All fields are safe for concurrent use; the underlying OTel types handle
// their own synchronisation.
type Metrics struct {
	// EvaluationDuration tracks end-to-end dataset evaluation latency.
	// Use with attribute.String("dataset", ...).
	EvaluationDuration metric.Float64Histogram

	// ExamplesEvaluated counts evaluated examples.
	ExamplesEvaluated metric.Int64Counter

	// ComputationErrors counts failed metric computations.
	// Use with attribute.String("metric", ...).
	ComputationErrors metric.Int64Counter

	// RunsPersisted counts evaluation runs written to a store.
	// Use with attribute.String("store", ...).
	RunsPersisted metric.Int64Counter
}

// latencyBuckets defines histogram bucket boundaries (in seconds) sized for
// batch evaluation: sub-second for small datasets up to minutes for long
// transcripts, where the O(ref·hyp) alignment dominates.
var latencyBuckets = []float64{
	0.01, 0.05, 0.1, 0.5, 1, 5, 15, 30, 60, 120, 300,
}

// NewMetrics creates a fully initialised [Metrics] struct using the given
// [metric.MeterProvider]. Returns an error if any instrument creation fails.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	if met.EvaluationDuration, err = m.Float64Histogram("werbench.evaluation.duration",
		metric.WithDescription("End-to-end dataset evaluation latency."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.ExamplesEvaluated, err = m.Int64Counter("werbench.examples.evaluated",
		metric.WithDescription("Total examples evaluated."),
	); err != nil {
		return nil, err
	}
	if met.ComputationErrors, err = m.Int64Counter("werbench.computation.errors",
		metric.WithDescription("Total failed metric computations by metric."),
	); err != nil {
		return nil, err
	}
	if met.RunsPersisted, err = m.Int64Counter("werbench.runs.persisted",
		metric.WithDescription("Total evaluation runs persisted by store backend."),
	); err != nil {
		return nil, err
	}

	return met, nil
}

// defaultMetrics is the lazily-initialised package-level Metrics instance.
var (
	defaultMetrics     *Metrics
	defaultMetricsOnce sync.Once
)

// DefaultMetrics returns the package-level [Metrics] instance, creating it
// on first call using [otel.GetMeterProvider]. Subsequent calls return the
// same pointer. Panics if instrument creation fails (should not happen with
// the global provider).
func DefaultMetrics() *Metrics {
	defaultMetricsOnce.Do(func() {
		var err error
		defaultMetrics, err = NewMetrics(otel.GetMeterProvider())
		if err != nil {
			panic("observe: failed to create default metrics: " + err.Error())
		}
	})
	return defaultMetrics
}

// RecordEvaluation records one completed dataset evaluation.
func (m *Metrics) RecordEvaluation(ctx context.Context, dataset string, seconds float64, examples int) {
	attrs := metric.WithAttributes(attribute.String("dataset", dataset))
	m.EvaluationDuration.Record(ctx, seconds, attrs)
	m.ExamplesEvaluated.Add(ctx, int64(examples), attrs)
}

// RecordComputationError counts one failed metric computation.
func (m *Metrics) RecordComputationError(ctx context.Context, name string) {
	m.ComputationErrors.Add(ctx, 1,
		metric.WithAttributes(attribute.String("metric", name)))
}

// RecordRunPersisted counts one run written to the named store backend.
func (m *Metrics) RecordRunPersisted(ctx context.Context, backend string) {
	m.RunsPersisted.Add(ctx, 1,
		metric.WithAttributes(attribute.String("store", backend)))
}
