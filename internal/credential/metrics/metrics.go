package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus collectors for credential issuance.
type Metrics struct {
	CredentialsIssued  *prometheus.CounterVec
	CredentialsRevoked prometheus.Counter
	ProofFallbacks     *prometheus.CounterVec
	IssueLatency       prometheus.Histogram
}

func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		CredentialsIssued: f.NewCounterVec(prometheus.CounterOpts{
			Name: "spectra_credentials_issued_total",
			Help: "Credentials issued, labeled by type and proof type",
		}, []string{"type", "proof_type"}),
		CredentialsRevoked: f.NewCounter(prometheus.CounterOpts{
			Name: "spectra_credentials_revoked_total",
			Help: "Credentials revoked individually or by submission rejection",
		}),
		ProofFallbacks: f.NewCounterVec(prometheus.CounterOpts{
			Name: "spectra_credential_proof_fallbacks_total",
			Help: "Mock-ZK proof generation failures that fell back to a hash proof",
		}, []string{"type"}),
		IssueLatency: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "spectra_credential_issue_all_duration_seconds",
			Help:    "Duration of a full credential refresh for one user",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		}),
	}
}

func (m *Metrics) IncrementIssued(credType, proofType string) {
	if m == nil {
		return
	}
	m.CredentialsIssued.WithLabelValues(credType, proofType).Inc()
}

func (m *Metrics) AddRevoked(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.CredentialsRevoked.Add(float64(n))
}

func (m *Metrics) IncrementProofFallback(credType string) {
	if m == nil {
		return
	}
	m.ProofFallbacks.WithLabelValues(credType).Inc()
}

func (m *Metrics) ObserveIssueAll(durationSeconds float64) {
	if m == nil {
		return
	}
	m.IssueLatency.Observe(durationSeconds)
}
