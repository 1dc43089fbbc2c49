package sink

import (
	"context"
	"log/slog"
	"sync/atomic"

	audit "spectra/pkg/platform/audit"
	"spectra/pkg/platform/circuit"
)

// GuardedSink skips the wrapped sink while its breaker is open. Skipped
// events are counted, not reported as errors; the audit store still has them.
type GuardedSink struct {
	next    audit.Emitter
	breaker *circuit.Breaker
	logger  *slog.Logger
	skipped atomic.Int64
}

func NewGuarded(next audit.Emitter, breaker *circuit.Breaker, logger *slog.Logger) *GuardedSink {
	return &GuardedSink{next: next, breaker: breaker, logger: logger}
}

func (g *GuardedSink) Emit(ctx context.Context, event audit.Event) error {
	if !g.breaker.Allow() {
		g.skipped.Add(1)
		return nil
	}
	if err := g.next.Emit(ctx, event); err != nil {
		if g.breaker.RecordFailure() && g.logger != nil {
			g.logger.WarnContext(ctx, "audit sink circuit opened", "sink", g.breaker.Name(), "error", err)
		}
		return err
	}
	if g.breaker.RecordSuccess() && g.logger != nil {
		g.logger.InfoContext(ctx, "audit sink circuit closed",
			"sink", g.breaker.Name(),
			"skipped", g.skipped.Load(),
		)
	}
	return nil
}

// Skipped is the number of events not forwarded while the circuit was open.
func (g *GuardedSink) Skipped() int64 {
	return g.skipped.Load()
}
