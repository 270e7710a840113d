package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PrometheusRecorder exports metrics through a dedicated Prometheus registry.
type PrometheusRecorder struct {
	handler         http.Handler
	userOps         *prometheus.CounterVec
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

// NewPrometheus creates a PrometheusRecorder with its own registry.
func NewPrometheus() *PrometheusRecorder {
	registry := prometheus.NewRegistry()

	userOps := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "userapi_user_operations_total",
		Help: "Number of successful user mutations by operation.",
	}, []string{"op"})
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "userapi_http_requests_total",
		Help: "Number of HTTP requests by method, route and status code.",
	}, []string{"method", "route", "code"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "userapi_http_request_duration_seconds",
		Help:    "HTTP request latency by route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	registry.MustRegister(
		userOps, requests, duration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return &PrometheusRecorder{
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		userOps:         userOps,
		requestsTotal:   requests,
		requestDuration: duration,
	}
}

// Handler returns the /metrics exposition handler.
func (p *PrometheusRecorder) Handler() http.Handler {
	return p.handler
}

// IncUserCreated increments the create counter.
func (p *PrometheusRecorder) IncUserCreated() {
	p.userOps.WithLabelValues("create").Inc()
}

// IncUserUpdated increments the update counter.
func (p *PrometheusRecorder) IncUserUpdated() {
	p.userOps.WithLabelValues("update").Inc()
}

// IncUserDeleted increments the delete counter.
func (p *PrometheusRecorder) IncUserDeleted() {
	p.userOps.WithLabelValues("delete").Inc()
}

// ObserveHTTPRequest records one served request.
func (p *PrometheusRecorder) ObserveHTTPRequest(method, route string, status int, duration time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	p.requestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	p.requestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}
