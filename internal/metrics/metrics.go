// Package metrics provides Prometheus metrics for the FaultGate service.
package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "faultgate"

// Registry holds the service metrics on its own Prometheus registry so
// tests can create isolated instances.
type Registry struct {
	registry *prometheus.Registry

	requestsTotal  *prometheus.CounterVec
	requestSeconds *prometheus.HistogramVec
	errorsTotal    *prometheus.CounterVec
	panicsTotal    prometheus.Counter
	feedClients    prometheus.Gauge
}

// New creates a registry with all service metrics registered.
func New() *Registry {
	registry := prometheus.NewRegistry()
	auto := promauto.With(registry)

	return &Registry{
		registry: registry,

		requestsTotal: auto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "requests_total",
				Help:      "Total number of HTTP requests by method and status",
			},
			[]string{"method", "status"},
		),

		requestSeconds: auto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "status"},
		),

		errorsTotal: auto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "errors_total",
				Help:      "Total number of mapped request errors by fault kind and status",
			},
			[]string{"kind", "status"},
		),

		panicsTotal: auto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "panics_recovered_total",
			Help:      "Total number of panics recovered during request handling",
		}),

		feedClients: auto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "feed_clients",
			Help:      "Current number of connected error feed clients",
		}),
	}
}

// RecordRequest counts one completed HTTP request.
func (m *Registry) RecordRequest(method string, status int, seconds float64) {
	code := strconv.Itoa(status)
	m.requestsTotal.WithLabelValues(method, code).Inc()
	m.requestSeconds.WithLabelValues(method, code).Observe(seconds)
}

// RecordError counts one mapped request error.
func (m *Registry) RecordError(kind string, status int) {
	m.errorsTotal.WithLabelValues(kind, strconv.Itoa(status)).Inc()
}

// RecordPanic counts one recovered panic.
func (m *Registry) RecordPanic() {
	m.panicsTotal.Inc()
}

// SetFeedClients sets the connected feed client gauge.
func (m *Registry) SetFeedClients(n int) {
	m.feedClients.Set(float64(n))
}

// Handler serves the registry in Prometheus exposition format.
func (m *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Gatherer exposes the underlying registry for tests.
func (m *Registry) Gatherer() prometheus.Gatherer {
	return m.registry
}
