package metrics

import (
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// StoreMetrics records outcomes of flat-file collection operations.
type StoreMetrics struct {
	duration *prometheus.HistogramVec
	success  *prometheus.CounterVec
	failure  *prometheus.CounterVec
}

// NewStoreMetrics registers the collection store metrics on the provided registerer.
func NewStoreMetrics(reg prometheus.Registerer) *StoreMetrics {
	if reg == nil {
		return &StoreMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "collection_update_duration_seconds",
		Help:    "Duration of collection read-modify-write cycles in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"collection"})
	success := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "collection_update_success",
		Help: "Successful collection updates.",
	}, []string{"collection"})
	failure := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "collection_update_failure",
		Help: "Failed collection updates.",
	}, []string{"collection", "reason"})
	reg.MustRegister(duration, success, failure)
	return &StoreMetrics{
		duration: duration,
		success:  success,
		failure:  failure,
	}
}

// ObserveDuration records the duration of an update against the named collection.
func (s *StoreMetrics) ObserveDuration(collection string, duration time.Duration) {
	if s == nil || s.duration == nil {
		return
	}
	s.duration.WithLabelValues(normalizeLabel(collection)).Observe(duration.Seconds())
}

// IncSuccess increments the success counter for the named collection.
func (s *StoreMetrics) IncSuccess(collection string) {
	if s == nil || s.success == nil {
		return
	}
	s.success.WithLabelValues(normalizeLabel(collection)).Inc()
}

// IncFailure increments the failure counter for the named collection.
func (s *StoreMetrics) IncFailure(collection, reason string) {
	if s == nil || s.failure == nil {
		return
	}
	s.failure.WithLabelValues(normalizeLabel(collection), normalizeLabel(reason)).Inc()
}

func normalizeLabel(value string) string {
	trimmed := strings.TrimSpace(strings.ToLower(value))
	if trimmed == "" {
		return "unknown"
	}
	return strings.ReplaceAll(trimmed, " ", "_")
}
