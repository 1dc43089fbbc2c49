package verification

//go:generate mockgen -source=verification.go -destination=mocks/mocks.go -package=mocks

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"spectra/internal/kyc/metrics"
	"spectra/internal/kyc/queue"
	"spectra/internal/kyc/workers/verification/mocks"
	id "spectra/pkg/domain"
	"spectra/pkg/requestcontext"
)

func TestNewRequiresDependencies(t *testing.T) {
	_, err := New(nil, nil)
	require.Error(t, err)
}

func TestRunOnceWalksBothStages(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC)
	clock := now
	q := queue.NewInMemory()

	ctrl := gomock.NewController(t)
	processor := mocks.NewMockProcessor(ctrl)

	subID := id.NewSubmissionID()
	require.NoError(t, q.Enqueue(ctx, queue.Task{SubmissionID: subID, Version: 2, Stage: queue.StageStart, DueAt: now}))

	m := metrics.New(prometheus.NewRegistry())
	w, err := New(q, processor,
		WithProcessDelay(3*time.Second),
		WithClock(func() time.Time { return clock }),
		WithMetrics(m),
	)
	require.NoError(t, err)

	res, err := w.RunOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, Result{Started: 1}, res)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.QueueDepth))

	clock = now.Add(2 * time.Second)
	res, err = w.RunOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, Result{}, res, "completion is not due yet")

	clock = now.Add(3 * time.Second)
	processor.EXPECT().
		ProcessVerification(gomock.Any(), subID, int64(2)).
		DoAndReturn(func(ctx context.Context, _ id.SubmissionID, _ int64) error {
			assert.Equal(t, clock, requestcontext.Now(ctx))
			return nil
		})
	res, err = w.RunOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, Result{Completed: 1}, res)
	assert.Equal(t, 0.0, testutil.ToFloat64(m.QueueDepth))
}

func TestRunOnceContinuesPastFailures(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC)
	ctrl := gomock.NewController(t)
	q := mocks.NewMockQueue(ctrl)
	processor := mocks.NewMockProcessor(ctrl)

	failing := queue.Task{SubmissionID: id.NewSubmissionID(), Version: 1, Stage: queue.StageComplete, DueAt: now}
	passing := queue.Task{SubmissionID: id.NewSubmissionID(), Version: 1, Stage: queue.StageComplete, DueAt: now}
	bogus := queue.Task{SubmissionID: id.NewSubmissionID(), Version: 1, Stage: "bogus", DueAt: now}

	q.EXPECT().Due(gomock.Any(), now, 50).Return([]queue.Task{failing, passing, bogus}, nil)
	q.EXPECT().Len(gomock.Any()).Return(0, nil)
	processor.EXPECT().ProcessVerification(gomock.Any(), failing.SubmissionID, int64(1)).Return(errors.New("boom"))
	processor.EXPECT().ProcessVerification(gomock.Any(), passing.SubmissionID, int64(1)).Return(nil)

	m := metrics.New(prometheus.NewRegistry())
	w, err := New(q, processor, WithClock(func() time.Time { return now }), WithMetrics(m))
	require.NoError(t, err)

	res, err := w.RunOnce(ctx)
	require.Error(t, err)
	assert.ErrorContains(t, err, "boom")
	assert.ErrorContains(t, err, "unknown verification stage")
	assert.Equal(t, Result{Completed: 1, Failed: 2}, res)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.TaskFailures.WithLabelValues("complete")))
}

func TestRunOnceReportsPollFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	q := mocks.NewMockQueue(ctrl)
	q.EXPECT().Due(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, errors.New("redis down"))

	w, err := New(q, mocks.NewMockProcessor(ctrl))
	require.NoError(t, err)

	_, err = w.RunOnce(context.Background())
	assert.ErrorContains(t, err, "redis down")
}

func TestStartStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	w, err := New(queue.NewInMemory(), mocks.NewMockProcessor(gomock.NewController(t)), WithPollInterval(time.Millisecond))
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- w.Start(ctx) }()
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("worker did not stop")
	}
}
