package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics wraps the Prometheus collectors exported on /metrics.
type Metrics struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	errorTotal      *prometheus.CounterVec
	slaOutcomes     *prometheus.CounterVec
	historyEntries  *prometheus.CounterVec
	notifications   *prometheus.CounterVec
	sweepDuration   prometheus.Histogram
}

// NewMetrics registers the service collectors on a private registry.
func NewMetrics() *Metrics {
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

	errorTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_errors_total",
		Help: "HTTP errors grouped by domain error code",
	}, []string{"method", "path", "code"})

	slaOutcomes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "helpdesk_sla_evaluations_total",
		Help: "SLA evaluations grouped by resulting state",
	}, []string{"state"})

	historyEntries := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "helpdesk_history_entries_total",
		Help: "Ticket history entries written grouped by action",
	}, []string{"action"})

	notifications := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "helpdesk_notifications_total",
		Help: "Notifications created grouped by type and result",
	}, []string{"type", "result"})

	sweepDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "helpdesk_sla_sweep_duration_seconds",
		Help:    "Duration of SLA sweep runs",
		Buckets: prometheus.DefBuckets,
	})

	registry.MustRegister(
		requestDuration,
		requestTotal,
		errorTotal,
		slaOutcomes,
		historyEntries,
		notifications,
		sweepDuration,
		collectors.NewGoCollector(),
	)

	return &Metrics{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		errorTotal:      errorTotal,
		slaOutcomes:     slaOutcomes,
		historyEntries:  historyEntries,
		notifications:   notifications,
		sweepDuration:   sweepDuration,
	}
}

// Handler exposes the Prometheus HTTP handler.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// ObserveHTTPRequest records request counters and latency.
func (m *Metrics) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := strconv.Itoa(status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
}

// RecordError increments error counters.
func (m *Metrics) RecordError(path, method, code string) {
	if m == nil {
		return
	}
	m.errorTotal.WithLabelValues(method, path, code).Inc()
}

// RecordSLA counts one SLA evaluation.
func (m *Metrics) RecordSLA(state string) {
	if m == nil {
		return
	}
	m.slaOutcomes.WithLabelValues(state).Inc()
}

// RecordHistory counts one written history entry.
func (m *Metrics) RecordHistory(action string) {
	if m == nil {
		return
	}
	m.historyEntries.WithLabelValues(action).Inc()
}

// RecordNotifications counts created (or failed) notification rows.
func (m *Metrics) RecordNotifications(notificationType string, count int, err error) {
	if m == nil || count == 0 {
		return
	}
	result := "created"
	if err != nil {
		result = "failed"
	}
	m.notifications.WithLabelValues(notificationType, result).Add(float64(count))
}

// ObserveSweep records one SLA sweep run.
func (m *Metrics) ObserveSweep(duration time.Duration) {
	if m == nil {
		return
	}
	m.sweepDuration.Observe(duration.Seconds())
}
