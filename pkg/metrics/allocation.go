package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// AllocationMetrics tracks allocation saga outcomes.
type AllocationMetrics struct {
	duration *prometheus.HistogramVec
	outcomes *prometheus.CounterVec
}

// NewAllocationMetrics registers the allocation metrics on the provided registerer.
func NewAllocationMetrics(reg prometheus.Registerer) *AllocationMetrics {
	if reg == nil {
		return &AllocationMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "allocation_saga_duration_seconds",
		Help:    "Duration of allocation attempts in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"outcome"})
	outcomes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "allocation_saga_outcomes_total",
		Help: "Allocation attempts by terminal outcome.",
	}, []string{"outcome"})
	reg.MustRegister(duration, outcomes)
	return &AllocationMetrics{duration: duration, outcomes: outcomes}
}

// Outcome labels reported by the allocation service and reconciler.
const (
	OutcomeCommitted           = "committed"
	OutcomeAborted             = "aborted"
	OutcomeCompensated         = "compensated"
	OutcomeCompensationPending = "compensation_pending"
)

// Observe records a finished allocation attempt.
func (a *AllocationMetrics) Observe(outcome string, duration time.Duration) {
	if a == nil || a.outcomes == nil {
		return
	}
	a.outcomes.WithLabelValues(normalizeLabel(outcome)).Inc()
	a.duration.WithLabelValues(normalizeLabel(outcome)).Observe(duration.Seconds())
}
