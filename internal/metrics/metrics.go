// Package metrics owns the Prometheus collectors of the service. A Metrics
// value is built once at startup and handed to the components that report
// into it; nothing here touches the global default registry.
package metrics

import (
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Path is where the exposition endpoint is mounted.
const Path = "/metrics"

// Metrics groups the collectors and the registry they are registered with.
type Metrics struct {
	registry *prometheus.Registry

	requests      *prometheus.CounterVec
	latency       *prometheus.HistogramVec
	inProgress    *prometheus.GaugeVec
	externalCalls *prometheus.CounterVec
	cacheLookups  *prometheus.CounterVec
}

// New builds a Metrics with its own registry, including Go runtime and
// process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total HTTP Requests Count",
		}, []string{"method", "endpoint", "status_code"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP Request Latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "endpoint"}),
		inProgress: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "http_requests_in_progress",
			Help: "Number of HTTP requests in progress",
		}, []string{"method", "endpoint"}),
		externalCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "api_external_calls_total",
			Help: "Total External API Calls",
		}, []string{"api_name", "status"}),
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "weather_cache_lookups_total",
			Help: "Current-weather cache lookups by result",
		}, []string{"result"}),
	}

	m.registry.MustRegister(
		m.requests,
		m.latency,
		m.inProgress,
		m.externalCalls,
		m.cacheLookups,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry exposes the underlying registry, e.g. for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveProviderCall records the outcome of one upstream provider call.
func (m *Metrics) ObserveProviderCall(provider string, success bool) {
	status := "success"
	if !success {
		status = "failure"
	}
	m.externalCalls.WithLabelValues(provider, status).Inc()
}

// CacheLookup records a current-weather cache hit or miss.
func (m *Metrics) CacheLookup(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheLookups.WithLabelValues(result).Inc()
}

// Handler serves the text exposition format.
func (m *Metrics) Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
}

// Instrument is a route-level handler recording count, latency and in-flight
// requests. It must be registered on the route itself (not via app.Use) so
// that the endpoint label is the route template rather than the raw path.
func (m *Metrics) Instrument(c *fiber.Ctx) error {
	method := c.Method()
	endpoint := c.Route().Path

	gauge := m.inProgress.WithLabelValues(method, endpoint)
	gauge.Inc()
	defer gauge.Dec()

	start := time.Now()
	// Stays 500 when the handler panics; the panic propagates to recover.
	status := fiber.StatusInternalServerError
	defer func() {
		m.requests.WithLabelValues(method, endpoint, strconv.Itoa(status)).Inc()
		m.latency.WithLabelValues(method, endpoint).Observe(time.Since(start).Seconds())
	}()

	err := c.Next()

	status = c.Response().StatusCode()
	if err != nil {
		status = fiber.StatusInternalServerError
		var fe *fiber.Error
		if errors.As(err, &fe) {
			status = fe.Code
		}
	}
	return err
}
