// Package metrics exports Prometheus metrics for one variant: HTTP traffic,
// error outcomes, and the last observed State Document and failure flag.
//
// Each Metrics owns its registry so two variants, or parallel tests, never
// collide on registration.
// Implements: docs/ARCHITECTURE § Observability.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mesh-intelligence/bluegreen/pkg/types"
)

const namespace = "bluegreen"

// Error type labels for ErrorsTotal.
const (
	ErrorForcedFailure     = "forced_failure"
	ErrorSchemaIncompat    = "schema_incompatible"
	ErrorUnsupportedSchema = "unsupported_schema"
	ErrorInvalidRequest    = "invalid_request"
	ErrorStorage           = "storage"
	ErrorInternal          = "internal"
	ErrorPanic             = "unhandled_panic"
)

// Metrics holds the collectors for one variant.
type Metrics struct {
	registry *prometheus.Registry

	// RequestsTotal counts HTTP requests. Labels: method, route, status.
	RequestsTotal *prometheus.CounterVec

	// RequestDuration observes HTTP latency. Labels: method, route, status.
	RequestDuration *prometheus.HistogramVec

	// InflightRequests tracks requests being served.
	InflightRequests prometheus.Gauge

	// ErrorsTotal counts failure outcomes. Labels: type.
	ErrorsTotal *prometheus.CounterVec

	// StateRequestCount is the last observed request_count.
	StateRequestCount prometheus.Gauge

	// StateSchemaVersion is the last observed schema_version.
	StateSchemaVersion prometheus.Gauge

	// ForcedBad is 1 while the forced-failure flag is on.
	ForcedBad prometheus.Gauge
}

// New creates and registers the collectors, labelled with the variant id.
func New(v types.Variant) *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	constLabels := prometheus.Labels{"variant": v.ID}
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   namespace,
				Subsystem:   "http",
				Name:        "requests_total",
				Help:        "Total HTTP requests handled by the variant",
				ConstLabels: constLabels,
			},
			[]string{"method", "route", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace:   namespace,
				Subsystem:   "http",
				Name:        "request_duration_seconds",
				Help:        "HTTP request duration in seconds",
				Buckets:     []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
				ConstLabels: constLabels,
			},
			[]string{"method", "route", "status"},
		),
		InflightRequests: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   namespace,
			Subsystem:   "http",
			Name:        "inflight_requests",
			Help:        "In-flight HTTP requests",
			ConstLabels: constLabels,
		}),
		ErrorsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   namespace,
				Name:        "errors_total",
				Help:        "Failure outcomes by type",
				ConstLabels: constLabels,
			},
			[]string{"type"},
		),
		StateRequestCount: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   namespace,
			Subsystem:   "state",
			Name:        "request_count",
			Help:        "Last observed request_count of the shared document",
			ConstLabels: constLabels,
		}),
		StateSchemaVersion: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   namespace,
			Subsystem:   "state",
			Name:        "schema_version",
			Help:        "Last observed schema_version of the shared document",
			ConstLabels: constLabels,
		}),
		ForcedBad: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   namespace,
			Name:        "forced_bad",
			Help:        "Whether the forced-failure flag is on",
			ConstLabels: constLabels,
		}),
	}
}

// Registry returns the registry holding every collector.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveState records the document values.
func (m *Metrics) ObserveState(st types.State) {
	m.StateRequestCount.Set(float64(st.RequestCount))
	m.StateSchemaVersion.Set(float64(st.SchemaVersion))
}

// ObserveForced records the flag.
func (m *Metrics) ObserveForced(on bool) {
	if on {
		m.ForcedBad.Set(1)
		return
	}
	m.ForcedBad.Set(0)
}
