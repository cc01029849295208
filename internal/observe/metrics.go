// Package observe provides application-wide observability primitives for
// voxedit: OpenTelemetry metrics, distributed tracing, structured logging,
// and HTTP middleware that ties them together.
//
// Metrics are recorded through the OpenTelemetry Metrics API. A Prometheus
// exporter bridge is installed by [InitProvider] so that metrics can be
// scraped via the standard /metrics endpoint. A package-level default
// [Metrics] instance ([DefaultMetrics]) is provided for convenience; tests
// should use [NewMetrics] with a custom [metric.MeterProvider] to avoid
// cross-test pollution.
package observe

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// meterName is the instrumentation scope name used for all voxedit metrics.
const meterName = "github.com/MrWong99/voxedit"

// Command outcome statuses used with [Metrics.RecordCommand].
const (
	StatusOK        = "ok"
	StatusNotFound  = "not_found"
	StatusUnknown   = "unknown"
	StatusError     = "error"
	StatusNoHistory = "no_history"
)

// Metrics holds all OpenTelemetry metric instruments for the application.
// All fields are safe for concurrent use.
type Metrics struct {
	// --- Analysis latency histograms ---

	// SegmentDuration tracks text segmentation latency.
	SegmentDuration metric.Float64Histogram

	// SpellDuration tracks spell-check latency over a segmented document.
	SpellDuration metric.Float64Histogram

	// GrammarDuration tracks grammar-check latency over a segmented document.
	GrammarDuration metric.Float64Histogram

	// --- Counters ---

	// Commands counts executed voice commands. Use with attributes:
	//   attribute.String("type", ...), attribute.String("status", ...)
	Commands metric.Int64Counter

	// SpellingErrors counts misspellings reported by analyses.
	SpellingErrors metric.Int64Counter

	// GrammarErrors counts grammar findings. Use with attribute:
	//   attribute.String("type", ...)
	GrammarErrors metric.Int64Counter

	// DictationUtterances counts transcript fragments received. Use with
	// attribute attribute.String("kind", "final"|"partial").
	DictationUtterances metric.Int64Counter

	// --- Gauges ---

	// ActiveSessions tracks the number of open editing sessions.
	ActiveSessions metric.Int64UpDownCounter

	// --- HTTP middleware ---

	// HTTPRequestDuration tracks HTTP request processing time. Use with
	// attributes attribute.String("method", ...), attribute.String("route", ...)
	HTTPRequestDuration metric.Float64Histogram
}

// analysisBuckets are histogram boundaries (in seconds) for in-process text
// analysis, which normally completes well under a millisecond.
var analysisBuckets = []float64{
	0.00005, 0.0001, 0.00025, 0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.1,
}

// requestBuckets are histogram boundaries (in seconds) for HTTP requests.
var requestBuckets = []float64{
	0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 5,
}

// NewMetrics creates a fully initialised [Metrics] struct using the given
// [metric.MeterProvider]. Returns an error if any instrument creation fails.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	// Histograms.
	if met.SegmentDuration, err = m.Float64Histogram("voxedit.segment.duration",
		metric.WithDescription("Latency of text segmentation."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(analysisBuckets...),
	); err != nil {
		return nil, err
	}
	if met.SpellDuration, err = m.Float64Histogram("voxedit.spell.duration",
		metric.WithDescription("Latency of spell checking a document."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(analysisBuckets...),
	); err != nil {
		return nil, err
	}
	if met.GrammarDuration, err = m.Float64Histogram("voxedit.grammar.duration",
		metric.WithDescription("Latency of grammar checking a document."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(analysisBuckets...),
	); err != nil {
		return nil, err
	}

	// Counters.
	if met.Commands, err = m.Int64Counter("voxedit.commands",
		metric.WithDescription("Total voice commands by type and status."),
	); err != nil {
		return nil, err
	}
	if met.SpellingErrors, err = m.Int64Counter("voxedit.spelling.errors",
		metric.WithDescription("Total misspelled words reported."),
	); err != nil {
		return nil, err
	}
	if met.GrammarErrors, err = m.Int64Counter("voxedit.grammar.errors",
		metric.WithDescription("Total grammar findings by type."),
	); err != nil {
		return nil, err
	}
	if met.DictationUtterances, err = m.Int64Counter("voxedit.dictation.utterances",
		metric.WithDescription("Total dictated transcript fragments by kind."),
	); err != nil {
		return nil, err
	}

	// Gauges (UpDownCounters).
	if met.ActiveSessions, err = m.Int64UpDownCounter("voxedit.active_sessions",
		metric.WithDescription("Number of open editing sessions."),
	); err != nil {
		return nil, err
	}

	// HTTP middleware histogram.
	if met.HTTPRequestDuration, err = m.Float64Histogram("voxedit.http.request.duration",
		metric.WithDescription("HTTP request latency by method and route."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(requestBuckets...),
	); err != nil {
		return nil, err
	}

	return met, nil
}

var (
	defaultMetrics     *Metrics
	defaultMetricsOnce sync.Once
)

// DefaultMetrics returns the package-level [Metrics] instance, creating it on
// first call using [otel.GetMeterProvider]. Subsequent calls return the same
// pointer. Panics if instrument creation fails.
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

// Attr is a convenience alias for [attribute.String] to reduce verbosity at
// call sites.
func Attr(key, value string) attribute.KeyValue {
	return attribute.String(key, value)
}

// RecordCommand increments the command counter for one executed command.
func (m *Metrics) RecordCommand(ctx context.Context, cmdType, status string) {
	m.Commands.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("type", cmdType),
			attribute.String("status", status),
		),
	)
}

// RecordSpellingErrors adds n to the misspelling counter. n <= 0 is a no-op.
func (m *Metrics) RecordSpellingErrors(ctx context.Context, n int) {
	if n <= 0 {
		return
	}
	m.SpellingErrors.Add(ctx, int64(n))
}

// RecordGrammarError increments the grammar counter for one finding.
func (m *Metrics) RecordGrammarError(ctx context.Context, errType string) {
	m.GrammarErrors.Add(ctx, 1,
		metric.WithAttributes(attribute.String("type", errType)),
	)
}

// RecordUtterance counts one dictated fragment.
func (m *Metrics) RecordUtterance(ctx context.Context, final bool) {
	kind := "partial"
	if final {
		kind = "final"
	}
	m.DictationUtterances.Add(ctx, 1,
		metric.WithAttributes(attribute.String("kind", kind)),
	)
}

// ObserveSince records the seconds elapsed since start on h.
func ObserveSince(ctx context.Context, h metric.Float64Histogram, start time.Time) {
	h.Record(ctx, time.Since(start).Seconds())
}
