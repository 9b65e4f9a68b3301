// Package metrics provides Prometheus metrics for the issuance pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics contains all issuance pipeline metrics.
type Metrics struct {
	// Outcome counters
	IssuedTotal       prometheus.Counter     // Credentials fully issued (both artifacts durable)
	FailedTotal       *prometheus.CounterVec // Failed issuances by error code
	DegradedTotal     *prometheus.CounterVec // Successful issuances with a degraded side effect (index, grants)
	PartialWriteTotal *prometheus.CounterVec // Partial writes by missing format

	// Latency
	IssueDurationSeconds    prometheus.Histogram     // End-to-end issuance latency
	PodWriteDurationSeconds *prometheus.HistogramVec // Per-format pod write latency
}

// New creates a new Metrics instance with all metrics registered on the
// default registry.
func New() *Metrics {
	return &Metrics{
		IssuedTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "pipvc_issuance_issued_total",
			Help: "Total number of credentials fully issued",
		}),

		FailedTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "pipvc_issuance_failed_total",
			Help: "Total number of failed issuances by error code",
		}, []string{"code"}),

		DegradedTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "pipvc_issuance_degraded_total",
			Help: "Total number of successful issuances with a degraded side effect",
		}, []string{"effect"}),

		PartialWriteTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "pipvc_issuance_partial_write_total",
			Help: "Total number of partial writes by missing artifact format",
		}, []string{"missing"}),

		IssueDurationSeconds: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "pipvc_issuance_issue_duration_seconds",
			Help:    "End-to-end duration of issuance requests",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),

		PodWriteDurationSeconds: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "pipvc_issuance_pod_write_duration_seconds",
			Help:    "Duration of individual pod artifact writes by format",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"format"}),
	}
}

// RecordIssued records a fully successful issuance.
func (m *Metrics) RecordIssued() {
	if m == nil {
		return
	}
	m.IssuedTotal.Inc()
}

// RecordFailed records a failed issuance with its domain error code.
func (m *Metrics) RecordFailed(code string) {
	if m == nil {
		return
	}
	m.FailedTotal.WithLabelValues(code).Inc()
}

// RecordDegraded records a successful issuance whose named side effect
// (index, grants) did not complete.
func (m *Metrics) RecordDegraded(effect string) {
	if m == nil {
		return
	}
	m.DegradedTotal.WithLabelValues(effect).Inc()
}

// RecordPartialWrite records a partial write, labelled with the format
// that is missing from the pod.
func (m *Metrics) RecordPartialWrite(missing string) {
	if m == nil {
		return
	}
	m.PartialWriteTotal.WithLabelValues(missing).Inc()
}

// ObserveIssueDuration records the end-to-end duration of an issuance.
func (m *Metrics) ObserveIssueDuration(seconds float64) {
	if m == nil {
		return
	}
	m.IssueDurationSeconds.Observe(seconds)
}

// ObservePodWrite records the duration of a single artifact write.
func (m *Metrics) ObservePodWrite(format string, seconds float64) {
	if m == nil {
		return
	}
	m.PodWriteDurationSeconds.WithLabelValues(format).Observe(seconds)
}
