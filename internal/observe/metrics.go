// Package observe provides OpenTelemetry metric instruments for the command
// pipeline and a Prometheus bridge for scraping them.
//
// A nil *Metrics is valid and records nothing, so components can be built
// without metrics in tests.
package observe

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// meterName is the instrumentation scope for all lightcmd metrics.
const meterName = "github.com/dokzlo13/lightcmd"

// Metrics holds the metric instruments.
type Metrics struct {
	// Intents counts routed intents by kind and HTTP status.
	Intents metric.Int64Counter

	// LLMAttempts counts extraction attempts by outcome.
	LLMAttempts metric.Int64Counter

	// LLMDuration tracks per-attempt LLM latency.
	LLMDuration metric.Float64Histogram

	// HTTPDuration tracks request handling time by method and path.
	HTTPDuration metric.Float64Histogram
}

var latencyBuckets = []float64{
	0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 15, 30,
}

// NewMetrics creates all instruments on the given provider.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	if met.Intents, err = m.Int64Counter("lightcmd.intents",
		metric.WithDescription("Routed intents by kind and status."),
	); err != nil {
		return nil, err
	}
	if met.LLMAttempts, err = m.Int64Counter("lightcmd.llm.attempts",
		metric.WithDescription("LLM extraction attempts by outcome."),
	); err != nil {
		return nil, err
	}
	if met.LLMDuration, err = m.Float64Histogram("lightcmd.llm.duration",
		metric.WithDescription("Latency of a single LLM extraction attempt."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.HTTPDuration, err = m.Float64Histogram("lightcmd.http.duration",
		metric.WithDescription("HTTP request processing time."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}

	return met, nil
}

// RecordIntent counts one routed intent.
func (m *Metrics) RecordIntent(ctx context.Context, kind string, status int) {
	if m == nil {
		return
	}
	m.Intents.Add(ctx, 1, metric.WithAttributes(
		attribute.String("kind", kind),
		attribute.Int("status", status),
	))
}

// RecordLLMAttempt counts one extraction attempt and its latency.
func (m *Metrics) RecordLLMAttempt(ctx context.Context, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("outcome", outcome))
	m.LLMAttempts.Add(ctx, 1, attrs)
	m.LLMDuration.Record(ctx, d.Seconds(), attrs)
}

// RecordHTTP records one handled request.
func (m *Metrics) RecordHTTP(ctx context.Context, method, path string, d time.Duration) {
	if m == nil {
		return
	}
	m.HTTPDuration.Record(ctx, d.Seconds(), metric.WithAttributes(
		attribute.String("method", method),
		attribute.String("path", path),
	))
}
