// Package sweeper fails submissions whose verification never finished,
// for example because the process restarted with tasks still queued in
// memory.
package sweeper

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"spectra/pkg/requestcontext"
)

type Sweeper interface {
	SweepStuck(ctx context.Context, cutoff time.Time) (int, error)
}

type Worker struct {
	sweeper    Sweeper
	interval   time.Duration
	stuckAfter time.Duration
	clock      func() time.Time
	logger     *slog.Logger
}

type Option func(*Worker)

func WithInterval(interval time.Duration) Option {
	return func(w *Worker) {
		if interval > 0 {
			w.interval = interval
		}
	}
}

// WithStuckAfter sets how long a submission may stay PROCESSING.
func WithStuckAfter(d time.Duration) Option {
	return func(w *Worker) {
		if d > 0 {
			w.stuckAfter = d
		}
	}
}

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

func New(sweeper Sweeper, opts ...Option) (*Worker, error) {
	if sweeper == nil {
		return nil, fmt.Errorf("sweeper is required")
	}
	w := &Worker{
		sweeper:    sweeper,
		interval:   30 * time.Second,
		stuckAfter: 2 * time.Minute,
		clock:      time.Now,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(w)
		}
	}
	return w, nil
}

// Start sweeps periodically until ctx is cancelled.
func (w *Worker) Start(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if _, err := w.RunOnce(ctx); err != nil {
				w.logger.ErrorContext(ctx, "stuck submission sweep failed", "error", err)
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// RunOnce fails every submission PROCESSING for longer than stuckAfter.
func (w *Worker) RunOnce(ctx context.Context) (int, error) {
	now := w.clock()
	moved, err := w.sweeper.SweepStuck(requestcontext.WithTime(ctx, now), now.Add(-w.stuckAfter))
	if moved > 0 {
		w.logger.InfoContext(ctx, "stuck submissions swept", "count", moved)
	}
	return moved, err
}
