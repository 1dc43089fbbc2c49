package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestNilMetricsAreSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.IncrementVerification(OutcomeGranted)
		m.IncrementRegistrations()
	})
}

func TestCounters(t *testing.T) {
	m := New(prometheus.NewRegistry())
	m.IncrementVerification(OutcomeGranted)
	m.IncrementVerification(OutcomeDenied)
	m.IncrementVerification(OutcomeDenied)
	m.IncrementRegistrations()

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Verifications.WithLabelValues(OutcomeGranted)))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.Verifications.WithLabelValues(OutcomeDenied)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Registrations))
}
