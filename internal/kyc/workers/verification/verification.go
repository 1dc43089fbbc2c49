// Package verification drains the verification queue. A start task is
// re-enqueued as a complete task after the processing delay; a complete
// task asks the lifecycle service for a decision.
package verification

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"spectra/internal/kyc/metrics"
	"spectra/internal/kyc/queue"
	id "spectra/pkg/domain"
	"spectra/pkg/requestcontext"
)

type Queue interface {
	Enqueue(ctx context.Context, task queue.Task) error
	Due(ctx context.Context, now time.Time, limit int) ([]queue.Task, error)
	Len(ctx context.Context) (int, error)
}

type Processor interface {
	ProcessVerification(ctx context.Context, subID id.SubmissionID, version int64) error
}

// Result summarizes one polling pass.
type Result struct {
	Started   int
	Completed int
	Failed    int
}

type Worker struct {
	queue        Queue
	processor    Processor
	interval     time.Duration
	processDelay time.Duration
	batchSize    int
	clock        func() time.Time
	logger       *slog.Logger
	metrics      *metrics.Metrics
}

type Option func(*Worker)

func WithPollInterval(interval time.Duration) Option {
	return func(w *Worker) {
		if interval > 0 {
			w.interval = interval
		}
	}
}

func WithProcessDelay(delay time.Duration) Option {
	return func(w *Worker) {
		if delay > 0 {
			w.processDelay = delay
		}
	}
}

func WithBatchSize(n int) Option {
	return func(w *Worker) {
		if n > 0 {
			w.batchSize = n
		}
	}
}

// WithClock replaces the wall clock used to pick due tasks.
func WithClock(clock func() time.Time) Option {
	return func(w *Worker) {
		if clock != nil {
			w.clock = clock
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(w *Worker) {
		if logger != nil {
			w.logger = logger
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(w *Worker) { w.metrics = m }
}

func New(q Queue, processor Processor, opts ...Option) (*Worker, error) {
	if q == nil || processor == nil {
		return nil, fmt.Errorf("queue and processor are required")
	}
	w := &Worker{
		queue:        q,
		processor:    processor,
		interval:     250 * time.Millisecond,
		processDelay: 3 * time.Second,
		batchSize:    50,
		clock:        time.Now,
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(w)
		}
	}
	return w, nil
}

// Start polls the queue until ctx is cancelled.
func (w *Worker) Start(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if _, err := w.RunOnce(ctx); err != nil {
				w.logger.ErrorContext(ctx, "verification worker pass failed", "error", err)
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// RunOnce handles every task due now, up to the batch size. Task failures
// are counted and joined into the returned error; the remaining tasks
// still run.
func (w *Worker) RunOnce(ctx context.Context) (Result, error) {
	now := w.clock()
	var res Result

	tasks, err := w.queue.Due(ctx, now, w.batchSize)
	if err != nil {
		return res, fmt.Errorf("poll verification queue: %w", err)
	}

	var errs []error
	for _, task := range tasks {
		taskCtx := requestcontext.WithTime(ctx, now)
		if err := w.handle(taskCtx, task, now); err != nil {
			res.Failed++
			w.metrics.IncrementTaskFailure(string(task.Stage))
			w.logger.ErrorContext(ctx, "verification task failed",
				"error", err,
				"submission_id", task.SubmissionID.String(),
				"version", task.Version,
				"stage", string(task.Stage),
			)
			errs = append(errs, err)
			continue
		}
		switch task.Stage {
		case queue.StageStart:
			res.Started++
		case queue.StageComplete:
			res.Completed++
		}
	}

	if depth, err := w.queue.Len(ctx); err == nil {
		w.metrics.SetQueueDepth(depth)
	}
	return res, errors.Join(errs...)
}

func (w *Worker) handle(ctx context.Context, task queue.Task, now time.Time) error {
	switch task.Stage {
	case queue.StageStart:
		next := task
		next.Stage = queue.StageComplete
		next.DueAt = now.Add(w.processDelay)
		if err := w.queue.Enqueue(ctx, next); err != nil {
			return fmt.Errorf("schedule completion: %w", err)
		}
		return nil
	case queue.StageComplete:
		return w.processor.ProcessVerification(ctx, task.SubmissionID, task.Version)
	default:
		return fmt.Errorf("unknown verification stage %q", task.Stage)
	}
}
