package client

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics exposes fetch and verification outcomes. A nil *Metrics is valid
// and records nothing.
type Metrics struct {
	relayAttempts *prometheus.CounterVec
	verifications *prometheus.CounterVec
}

// NewMetrics builds the metric set and registers it on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		relayAttempts: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "drandlite",
			Subsystem: "relay",
			Name:      "attempts_total",
			Help:      "Relay fetch attempts by relay and outcome.",
		}, []string{"relay", "outcome"}),
		verifications: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "drandlite",
			Subsystem: "beacon",
			Name:      "verifications_total",
			Help:      "Beacon verification outcomes.",
		}, []string{"outcome"}),
	}
}

func outcome(ok bool) string {
	if ok {
		return "success"
	}
	return "failure"
}

func (m *Metrics) observeAttempt(relay string, ok bool) {
	if m == nil {
		return
	}
	m.relayAttempts.WithLabelValues(relay, outcome(ok)).Inc()
}

func (m *Metrics) observeVerification(ok bool) {
	if m == nil {
		return
	}
	m.verifications.WithLabelValues(outcome(ok)).Inc()
}
