package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics tracks visibility filtering and registration activity.
type Metrics struct {
	VisibilityChecks *prometheus.CounterVec
	Registrations    *prometheus.CounterVec
	FilterDuration   prometheus.Histogram
}

func New() *Metrics {
	return &Metrics{
		VisibilityChecks: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "campusgate_event_visibility_checks_total",
			Help: "Event visibility decisions by outcome",
		}, []string{"outcome"}),
		Registrations: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "campusgate_event_registrations_total",
			Help: "Registration attempts by outcome",
		}, []string{"outcome"}),
		FilterDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "campusgate_event_filter_duration_seconds",
			Help:    "Time spent filtering accessible events",
			Buckets: prometheus.DefBuckets,
		}),
	}
}

func (m *Metrics) ObserveVisibility(outcome string) {
	if m == nil {
		return
	}
	m.VisibilityChecks.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ObserveRegistration(outcome string) {
	if m == nil {
		return
	}
	m.Registrations.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ObserveFilterDuration(seconds float64) {
	if m == nil {
		return
	}
	m.FilterDuration.Observe(seconds)
}
