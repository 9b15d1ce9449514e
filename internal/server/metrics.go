package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Callback results recorded by the callbacks counter.
const (
	resultOK      = "ok"
	resultInvalid = "invalid"
	resultUnknown = "unknown"
	resultEmpty   = "empty"
	resultError   = "error"
)

// Metrics holds the server's Prometheus collectors on a private registry
type Metrics struct {
	registry  *prometheus.Registry
	requests  *prometheus.CounterVec
	latency   *prometheus.HistogramVec
	callbacks *prometheus.CounterVec
	records   prometheus.Gauge
}

// NewMetrics registers the dashboard collectors on a fresh registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "launch_dash",
			Name:      "http_requests_total",
			Help:      "HTTP requests by route, method and status code.",
		}, []string{"route", "method", "code"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "launch_dash",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
		callbacks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "launch_dash",
			Name:      "callbacks_total",
			Help:      "Callback invocations by output and result.",
		}, []string{"output", "result"}),
		records: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "launch_dash",
			Name:      "dataset_records",
			Help:      "Launch records loaded at startup.",
		}),
	}
	m.registry.MustRegister(
		m.requests,
		m.latency,
		m.callbacks,
		m.records,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) observeRequest(route, method string, code int, elapsed time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	m.requests.WithLabelValues(route, method, strconv.Itoa(code)).Inc()
	m.latency.WithLabelValues(route).Observe(elapsed.Seconds())
}

func (m *Metrics) observeCallback(output, result string) {
	m.callbacks.WithLabelValues(output, result).Inc()
}
