package service

import (
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/noah-isme/tuition-web/internal/models"
)

// MetricsService encapsulates Prometheus instrumentation. All methods are safe on a nil receiver.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	backendDuration *prometheus.HistogramVec
	notifications   *prometheus.CounterVec
	exports         *prometheus.CounterVec
	activeSessions  prometheus.Gauge
}

// NewMetricsService registers the dashboard collectors on a private registry.
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

	backendDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "backend_call_duration_seconds",
		Help:    "Duration of calls to the tuition backend",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "outcome"})

	notifications := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "dashboard_notifications_total",
		Help: "User-visible notifications raised, by level",
	}, []string{"level"})

	exports := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "dashboard_exports_total",
		Help: "Exports of the tuition list, by format",
	}, []string{"format"})

	activeSessions := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "dashboard_sessions_active",
		Help: "Dashboard sessions currently held in memory",
	})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, backendDuration, notifications, exports, activeSessions, goroutines)

	return &MetricsService{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		backendDuration: backendDuration,
		notifications:   notifications,
		exports:         exports,
		activeSessions:  activeSessions,
	}
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// Registry exposes the underlying registry, mostly for tests.
func (m *MetricsService) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// ObserveHTTPRequest records request metrics.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
}

// ObserveBackendCall records one call to the tuition backend.
func (m *MetricsService) ObserveBackendCall(operation string, success bool, duration time.Duration) {
	if m == nil {
		return
	}
	outcome := "success"
	if !success {
		outcome = "failure"
	}
	m.backendDuration.WithLabelValues(operation, outcome).Observe(duration.Seconds())
}

// ObserveNotification counts a raised toast.
func (m *MetricsService) ObserveNotification(level models.NotificationLevel) {
	if m == nil {
		return
	}
	m.notifications.WithLabelValues(string(level)).Inc()
}

// ObserveExport counts a generated export.
func (m *MetricsService) ObserveExport(format string) {
	if m == nil {
		return
	}
	m.exports.WithLabelValues(format).Inc()
}

// SetActiveSessions publishes the registry size.
func (m *MetricsService) SetActiveSessions(n int) {
	if m == nil {
		return
	}
	m.activeSessions.Set(float64(n))
}
