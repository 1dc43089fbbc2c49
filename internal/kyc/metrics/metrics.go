package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Verification outcomes.
const (
	OutcomeApproved   = "approved"
	OutcomeNeedsInfo  = "needs_info"
	OutcomeSuperseded = "superseded"
	OutcomeSwept      = "swept"
)

// Metrics holds Prometheus collectors for the submission lifecycle.
type Metrics struct {
	Submissions          *prometheus.CounterVec
	Verifications        *prometheus.CounterVec
	Rejections           prometheus.Counter
	VerificationDuration prometheus.Histogram
	QueueDepth           prometheus.Gauge
	TaskFailures         *prometheus.CounterVec
}

func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Submissions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "spectra_kyc_submissions_total",
			Help: "Accepted KYC submissions, labeled by first submission or resubmission",
		}, []string{"kind"}),
		Verifications: f.NewCounterVec(prometheus.CounterOpts{
			Name: "spectra_kyc_verifications_total",
			Help: "Verification steps by outcome",
		}, []string{"outcome"}),
		Rejections: f.NewCounter(prometheus.CounterOpts{
			Name: "spectra_kyc_rejections_total",
			Help: "Submissions rejected by an operator",
		}),
		VerificationDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "spectra_kyc_verification_duration_seconds",
			Help:    "Time from submission to a verification decision",
			Buckets: []float64{1, 2, 5, 10, 30, 60, 120, 300},
		}),
		QueueDepth: f.NewGauge(prometheus.GaugeOpts{
			Name: "spectra_kyc_verification_queue_depth",
			Help: "Pending verification tasks",
		}),
		TaskFailures: f.NewCounterVec(prometheus.CounterOpts{
			Name: "spectra_kyc_task_failures_total",
			Help: "Verification tasks that failed to enqueue or run",
		}, []string{"stage"}),
	}
}

func (m *Metrics) IncrementSubmissions(resubmission bool) {
	if m == nil {
		return
	}
	kind := "initial"
	if resubmission {
		kind = "resubmission"
	}
	m.Submissions.WithLabelValues(kind).Inc()
}

func (m *Metrics) IncrementVerification(outcome string) {
	if m == nil {
		return
	}
	m.Verifications.WithLabelValues(outcome).Inc()
}

func (m *Metrics) IncrementRejections() {
	if m == nil {
		return
	}
	m.Rejections.Inc()
}

func (m *Metrics) ObserveVerificationDuration(seconds float64) {
	if m == nil || seconds < 0 {
		return
	}
	m.VerificationDuration.Observe(seconds)
}

func (m *Metrics) SetQueueDepth(n int) {
	if m == nil {
		return
	}
	m.QueueDepth.Set(float64(n))
}

func (m *Metrics) IncrementTaskFailure(stage string) {
	if m == nil {
		return
	}
	m.TaskFailures.WithLabelValues(stage).Inc()
}
