// Package publisher fans audit events out to the store and any sinks.
package publisher

import (
	"context"
	"log/slog"
	"sync"
	"time"

	id "spectra/pkg/domain"
	dErrors "spectra/pkg/domain-errors"
	audit "spectra/pkg/platform/audit"
)

// Publisher is append-only. The store is written first; sink failures are
// logged and do not fail Emit.
type Publisher struct {
	store  audit.Store
	sinks  []audit.Emitter
	events chan queued
	wg     sync.WaitGroup
	logger *slog.Logger
	async  bool
}

type queued struct {
	ctx   context.Context
	event audit.Event
}

type Option func(*Publisher)

// WithAsyncBuffer persists events from a background goroutine fed by a
// buffer of the given size. A full buffer drops the event.
func WithAsyncBuffer(size int) Option {
	return func(p *Publisher) {
		if size > 0 {
			p.events = make(chan queued, size)
			p.async = true
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) {
		p.logger = logger
	}
}

// WithSink adds a secondary destination, e.g. Kafka.
func WithSink(sink audit.Emitter) Option {
	return func(p *Publisher) {
		if sink != nil {
			p.sinks = append(p.sinks, sink)
		}
	}
}

func New(store audit.Store, opts ...Option) *Publisher {
	p := &Publisher{store: store}
	for _, opt := range opts {
		opt(p)
	}
	if p.async {
		p.wg.Add(1)
		go p.run()
	}
	return p
}

func (p *Publisher) run() {
	defer p.wg.Done()
	for q := range p.events {
		if err := p.deliver(q.ctx, q.event); err != nil && p.logger != nil {
			p.logger.Error("failed to persist audit event",
				"error", err,
				"action", string(q.event.Action),
			)
		}
	}
}

// Close drains the async buffer.
func (p *Publisher) Close() {
	if p.async && p.events != nil {
		close(p.events)
		p.wg.Wait()
	}
}

func (p *Publisher) Emit(ctx context.Context, event audit.Event) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	if !p.async {
		return p.deliver(ctx, event)
	}
	// The request context may be cancelled before the event is drained.
	select {
	case p.events <- queued{ctx: context.WithoutCancel(ctx), event: event}:
		return nil
	default:
		if p.logger != nil {
			p.logger.Warn("audit buffer full, event dropped", "action", string(event.Action))
		}
		return dErrors.New(dErrors.CodeInternal, "audit buffer full")
	}
}

func (p *Publisher) deliver(ctx context.Context, event audit.Event) error {
	if err := p.store.Append(ctx, event); err != nil {
		return err
	}
	for _, sink := range p.sinks {
		if err := sink.Emit(ctx, event); err != nil && p.logger != nil {
			p.logger.Warn("audit sink failed",
				"error", err,
				"action", string(event.Action),
			)
		}
	}
	return nil
}

func (p *Publisher) List(ctx context.Context, userID id.UserID) ([]audit.Event, error) {
	return p.store.ListByUser(ctx, userID)
}
