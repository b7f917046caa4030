package service

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService encapsulates Prometheus instrumentation for the API.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	createdRequests *prometheus.CounterVec
	emailFailures   prometheus.Counter
}

// NewMetricsService registers the core collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	createdRequests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "service_requests_created_total",
		Help: "Service requests registered, by payment type",
	}, []string{"tipo_pago"})

	emailFailures := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "notification_email_failures_total",
		Help: "Notification emails that exhausted their retries",
	})

	registry.MustRegister(requestDuration, requestTotal, createdRequests, emailFailures)

	return &MetricsService{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		createdRequests: createdRequests,
		emailFailures:   emailFailures,
	}
}

// Handler exposes the scrape endpoint.
func (m *MetricsService) Handler() http.Handler {
	return m.handler
}

// ObserveRequest records one HTTP request.
func (m *MetricsService) ObserveRequest(method, path, status string, duration time.Duration) {
	m.requestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, status).Inc()
}

// CountCreatedRequest records one registered service request.
func (m *MetricsService) CountCreatedRequest(tipoPago string) {
	m.createdRequests.WithLabelValues(tipoPago).Inc()
}

// CountEmailFailure records one permanently failed notification.
func (m *MetricsService) CountEmailFailure() {
	m.emailFailures.Inc()
}
