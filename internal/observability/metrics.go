package observability

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the prometheus collectors exported at /metrics.
type Metrics struct {
	registry *prometheus.Registry

	requests          *prometheus.CounterVec
	requestDuration   *prometheus.HistogramVec
	errorCount        *prometheus.CounterVec
	operations        *prometheus.CounterVec
	operationDuration *prometheus.HistogramVec
	deliveries        *prometheus.CounterVec
}

// NewMetrics builds the collectors on a private registry.
func NewMetrics() (*Metrics, error) {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP requests by route, method and status.",
		}, []string{"path", "method", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"path", "method"}),
		errorCount: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_errors_total",
			Help: "HTTP error responses by error code.",
		}, []string{"path", "method", "code"}),
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "workflow_operations_total",
			Help: "Workflow operations by outcome.",
		}, []string{"operation", "outcome"}),
		operationDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "workflow_operation_duration_seconds",
			Help:    "Workflow operation latency including the unit of work.",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 14),
		}, []string{"operation"}),
		deliveries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "events_delivered_total",
			Help: "After-commit event deliveries by consumer and outcome.",
		}, []string{"consumer", "outcome"}),
	}

	all := []prometheus.Collector{
		collectors.NewGoCollector(),
		m.requests,
		m.requestDuration,
		m.errorCount,
		m.operations,
		m.operationDuration,
		m.deliveries,
	}
	for _, c := range all {
		if err := m.registry.Register(c); err != nil {
			var already prometheus.AlreadyRegisteredError
			if !errors.As(err, &already) {
				return nil, err
			}
		}
	}
	return m, nil
}

// Handler serves the registry in the prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Gatherer exposes the registry, mostly for tests.
func (m *Metrics) Gatherer() prometheus.Gatherer {
	return m.registry
}

// RecordRequest increments counters for requests.
func (m *Metrics) RecordRequest(path, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(path, method, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(path, method).Observe(duration.Seconds())
}

// RecordError increments error counters.
func (m *Metrics) RecordError(path, method, code string) {
	if m == nil {
		return
	}
	m.errorCount.WithLabelValues(path, method, code).Inc()
}

// RecordOperation counts one workflow operation and observes its latency.
func (m *Metrics) RecordOperation(operation, outcome string, duration time.Duration) {
	if m == nil {
		return
	}
	m.operations.WithLabelValues(operation, outcome).Inc()
	m.operationDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// RecordDelivery counts one event delivery attempt outcome.
func (m *Metrics) RecordDelivery(consumer, outcome string) {
	if m == nil {
		return
	}
	m.deliveries.WithLabelValues(consumer, outcome).Inc()
}
