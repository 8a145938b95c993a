package api

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors of the HTTP surface. A nil
// *Metrics is valid and records nothing.
type Metrics struct {
	RequestsTotal       *prometheus.CounterVec   // filecatalog_requests_total{method,status}
	RequestDuration     *prometheus.HistogramVec // filecatalog_request_duration_seconds{method}
	AdmissionRejections prometheus.Counter       // filecatalog_admission_rejections_total
	InflightRequests    prometheus.Gauge         // filecatalog_inflight_requests
	ConflictsTotal      *prometheus.CounterVec   // filecatalog_conflicts_total{kind}
	RegistrationsTotal  *prometheus.CounterVec   // filecatalog_records_registered_total{result}
}

// NewMetrics registers the collectors with registry.
func NewMetrics(registry prometheus.Registerer) *Metrics {
	if registry == nil {
		registry = prometheus.DefaultRegisterer
	}

	return &Metrics{
		RequestsTotal: promauto.With(registry).NewCounterVec(prometheus.CounterOpts{
			Name: "filecatalog_requests_total",
			Help: "Total API requests by method and status code",
		}, []string{"method", "status"}),

		RequestDuration: promauto.With(registry).NewHistogramVec(prometheus.HistogramOpts{
			Name:    "filecatalog_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"method"}),

		AdmissionRejections: promauto.With(registry).NewCounter(prometheus.CounterOpts{
			Name: "filecatalog_admission_rejections_total",
			Help: "Requests rejected by the per-address admission limit",
		}),

		InflightRequests: promauto.With(registry).NewGauge(prometheus.GaugeOpts{
			Name: "filecatalog_inflight_requests",
			Help: "Admitted API requests currently in flight",
		}),

		ConflictsTotal: promauto.With(registry).NewCounterVec(prometheus.CounterOpts{
			Name: "filecatalog_conflicts_total",
			Help: "Conflicts returned to clients by kind",
		}, []string{"kind"}),

		RegistrationsTotal: promauto.With(registry).NewCounterVec(prometheus.CounterOpts{
			Name: "filecatalog_records_registered_total",
			Help: "Successful registrations by result (created, merged)",
		}, []string{"result"}),
	}
}

func (m *Metrics) RecordRequest(method string, status int, durationSeconds float64) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(method, strconv.Itoa(status)).Inc()
	m.RequestDuration.WithLabelValues(method).Observe(durationSeconds)
}

func (m *Metrics) RecordRejection() {
	if m == nil {
		return
	}
	m.AdmissionRejections.Inc()
}

func (m *Metrics) RequestStarted() {
	if m == nil {
		return
	}
	m.InflightRequests.Inc()
}

func (m *Metrics) RequestFinished() {
	if m == nil {
		return
	}
	m.InflightRequests.Dec()
}

func (m *Metrics) RecordConflict(kind string) {
	if m == nil {
		return
	}
	m.ConflictsTotal.WithLabelValues(kind).Inc()
}

func (m *Metrics) RecordRegistration(result string) {
	if m == nil {
		return
	}
	m.RegistrationsTotal.WithLabelValues(result).Inc()
}
