package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics tracks authentication flow progress.
type Metrics struct {
	FlowsStarted   *prometheus.CounterVec
	FlowsCompleted *prometheus.CounterVec
	FlowsRejected  *prometheus.CounterVec
	CodeResends    prometheus.Counter
}

func New() *Metrics {
	return &Metrics{
		FlowsStarted: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "campusgate_authflow_started_total",
			Help: "Authentication flows started by mode",
		}, []string{"mode"}),
		FlowsCompleted: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "campusgate_authflow_completed_total",
			Help: "Authentication flows completed by role",
		}, []string{"role"}),
		FlowsRejected: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "campusgate_authflow_rejected_total",
			Help: "Authentication flows rejected by reason",
		}, []string{"reason"}),
		CodeResends: promauto.NewCounter(prometheus.CounterOpts{
			Name: "campusgate_authflow_code_resends_total",
			Help: "Verification code resend requests",
		}),
	}
}

func (m *Metrics) IncrementStarted(mode string) {
	if m == nil {
		return
	}
	m.FlowsStarted.WithLabelValues(mode).Inc()
}

func (m *Metrics) IncrementCompleted(role string) {
	if m == nil {
		return
	}
	m.FlowsCompleted.WithLabelValues(role).Inc()
}

func (m *Metrics) IncrementRejected(reason string) {
	if m == nil {
		return
	}
	m.FlowsRejected.WithLabelValues(reason).Inc()
}

func (m *Metrics) IncrementResend() {
	if m == nil {
		return
	}
	m.CodeResends.Inc()
}
