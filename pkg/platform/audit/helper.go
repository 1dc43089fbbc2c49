package audit

import (
	"context"
	"log/slog"

	"spectra/pkg/requestcontext"
)

// Logger writes an audit line to the structured log and forwards the event
// to an Emitter. Either side may be nil.
type Logger struct {
	textLogger *slog.Logger
	emitter    Emitter
}

func NewLogger(textLogger *slog.Logger, emitter Emitter) *Logger {
	return &Logger{textLogger: textLogger, emitter: emitter}
}

// Log fills in timestamp, request id and admin actor from ctx, then logs
// and emits. Emission failures are logged, never returned: audit must not
// fail the business operation.
func (l *Logger) Log(ctx context.Context, event Event) {
	if l == nil {
		return
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = requestcontext.Now(ctx)
	}
	if event.RequestID == "" {
		event.RequestID = requestcontext.RequestID(ctx)
	}
	if event.ActorID == "" {
		event.ActorID = requestcontext.AdminActor(ctx)
	}

	if l.textLogger != nil {
		attrs := []any{"log_type", "audit", "action", string(event.Action)}
		if !event.UserID.IsNil() {
			attrs = append(attrs, "user_id", event.UserID.String())
		}
		if event.Resource != "" {
			attrs = append(attrs, "resource", event.Resource)
		}
		if event.Decision != "" {
			attrs = append(attrs, "decision", event.Decision)
		}
		if event.RequestID != "" {
			attrs = append(attrs, "request_id", event.RequestID)
		}
		l.textLogger.InfoContext(ctx, string(event.Action), attrs...)
	}

	if l.emitter == nil {
		return
	}
	if err := l.emitter.Emit(ctx, event); err != nil && l.textLogger != nil {
		l.textLogger.ErrorContext(ctx, "failed to emit audit event",
			"error", err,
			"action", string(event.Action),
		)
	}
}
