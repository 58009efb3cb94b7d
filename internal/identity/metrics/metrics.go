package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the identity module: role resolution
// outcomes and whitelist management activity.
type Metrics struct {
	RoleResolutions   *prometheus.CounterVec
	WhitelistAdds     prometheus.Counter
	WhitelistRemovals prometheus.Counter
	ResolveDuration   prometheus.Histogram
}

// New creates a Metrics instance with all identity module metrics registered.
func New() *Metrics {
	return &Metrics{
		RoleResolutions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "campusgate_role_resolutions_total",
			Help: "Role resolutions by outcome (admin, student, attendee, public, denied)",
		}, []string{"outcome"}),
		WhitelistAdds: promauto.NewCounter(prometheus.CounterOpts{
			Name: "campusgate_whitelist_adds_total",
			Help: "Total whitelist entries added",
		}),
		WhitelistRemovals: promauto.NewCounter(prometheus.CounterOpts{
			Name: "campusgate_whitelist_removals_total",
			Help: "Total whitelist entries deactivated",
		}),
		ResolveDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "campusgate_role_resolve_duration_seconds",
			Help:    "Duration of role resolutions (login critical path)",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
	}
}

// ObserveResolution records one resolution outcome and its duration.
// Call with time.Now() captured at the start of the operation.
func (m *Metrics) ObserveResolution(outcome string, start time.Time) {
	if m == nil {
		return
	}
	m.RoleResolutions.WithLabelValues(outcome).Inc()
	m.ResolveDuration.Observe(time.Since(start).Seconds())
}

// IncrementWhitelistAdd records a successful whitelist addition.
func (m *Metrics) IncrementWhitelistAdd() {
	if m == nil {
		return
	}
	m.WhitelistAdds.Inc()
}

// IncrementWhitelistRemoval records a successful whitelist deactivation.
func (m *Metrics) IncrementWhitelistRemoval() {
	if m == nil {
		return
	}
	m.WhitelistRemovals.Inc()
}
