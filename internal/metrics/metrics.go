// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "thrive"

// Collector owns a private registry so tests can create as many collectors
// as they like without duplicate-registration panics.
type Collector struct {
	registry *prometheus.Registry

	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	CompletionRequests *prometheus.CounterVec
	CompletionDuration *prometheus.HistogramVec

	Ingestions *prometheus.CounterVec
	AuthEvents *prometheus.CounterVec
}

// NewCollector creates and registers all application metrics.
func NewCollector() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		}, []string{"method", "route", "status"}),
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		CompletionRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "completion_requests_total",
			Help:      "Completion API calls by backend, operation and outcome",
		}, []string{"backend", "operation", "outcome"}),
		CompletionDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "completion_duration_seconds",
			Help:      "Completion API call latency in seconds",
			Buckets:   []float64{0.25, 0.5, 1, 2, 5, 10, 20, 40, 60},
		}, []string{"backend", "operation"}),
		Ingestions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "document_ingestions_total",
			Help:      "PDF ingestions by outcome (raw, summarized, failed)",
		}, []string{"outcome"}),
		AuthEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "auth_events_total",
			Help:      "Identity operations by action and outcome",
		}, []string{"action", "outcome"}),
	}

	c.registry.MustRegister(
		c.HTTPRequests,
		c.HTTPDuration,
		c.CompletionRequests,
		c.CompletionDuration,
		c.Ingestions,
		c.AuthEvents,
	)
	return c
}

// Handler exposes the collector's registry in the Prometheus text format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// ObserveCompletion records one completion call.
func (c *Collector) ObserveCompletion(backend, operation string, started time.Time, err error) {
	if c == nil {
		return
	}
	c.CompletionRequests.WithLabelValues(backend, operation, outcome(err)).Inc()
	c.CompletionDuration.WithLabelValues(backend, operation).Observe(time.Since(started).Seconds())
}

// ObserveIngestion records an ingestion outcome.
func (c *Collector) ObserveIngestion(result string) {
	if c == nil {
		return
	}
	c.Ingestions.WithLabelValues(result).Inc()
}

// ObserveAuth records an identity operation.
func (c *Collector) ObserveAuth(action string, err error) {
	if c == nil {
		return
	}
	c.AuthEvents.WithLabelValues(action, outcome(err)).Inc()
}

// ObserveHTTP records one served request.
func (c *Collector) ObserveHTTP(method, route, status string, started time.Time) {
	if c == nil {
		return
	}
	c.HTTPRequests.WithLabelValues(method, route, status).Inc()
	c.HTTPDuration.WithLabelValues(method, route).Observe(time.Since(started).Seconds())
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
