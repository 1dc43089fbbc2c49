package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Verification outcomes.
const (
	OutcomeGranted     = "granted"
	OutcomeDenied      = "denied"
	OutcomeUnknownUser = "unknown_user"
)

// Metrics holds Prometheus collectors for anchor checks.
type Metrics struct {
	Verifications *prometheus.CounterVec
	Registrations prometheus.Counter
}

func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Verifications: f.NewCounterVec(prometheus.CounterOpts{
			Name: "spectra_anchor_verifications_total",
			Help: "Anchor credential checks by outcome",
		}, []string{"outcome"}),
		Registrations: f.NewCounter(prometheus.CounterOpts{
			Name: "spectra_anchor_registrations_total",
			Help: "Anchors registered through the directory",
		}),
	}
}

func (m *Metrics) IncrementVerification(outcome string) {
	if m == nil {
		return
	}
	m.Verifications.WithLabelValues(outcome).Inc()
}

func (m *Metrics) IncrementRegistrations() {
	if m == nil {
		return
	}
	m.Registrations.Inc()
}
