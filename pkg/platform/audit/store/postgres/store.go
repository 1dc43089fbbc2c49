package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	id "spectra/pkg/domain"
	audit "spectra/pkg/platform/audit"
)

// Store implements audit.Store on the audit_events table.
type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Append(ctx context.Context, event audit.Event) error {
	var userID *uuid.UUID
	if !event.UserID.IsNil() {
		uid := uuid.UUID(event.UserID)
		userID = &uid
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO audit_events (
			id, timestamp, action, user_id, subject, resource,
			decision, reason, actor_id, request_id
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`,
		uuid.New(),
		event.Timestamp,
		string(event.Action),
		userID,
		event.Subject,
		event.Resource,
		event.Decision,
		event.Reason,
		event.ActorID,
		event.RequestID,
	)
	if err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}
	return nil
}

// ListByUser returns userID's events, newest first.
func (s *Store) ListByUser(ctx context.Context, userID id.UserID) ([]audit.Event, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT timestamp, action, user_id, subject, resource,
			   decision, reason, actor_id, request_id
		FROM audit_events
		WHERE user_id = $1
		ORDER BY timestamp DESC
	`, uuid.UUID(userID))
	if err != nil {
		return nil, fmt.Errorf("query audit events: %w", err)
	}
	defer rows.Close()

	var events []audit.Event
	for rows.Next() {
		var (
			event  audit.Event
			action string
			uid    *uuid.UUID
		)
		if err := rows.Scan(
			&event.Timestamp, &action, &uid, &event.Subject, &event.Resource,
			&event.Decision, &event.Reason, &event.ActorID, &event.RequestID,
		); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		event.Action = audit.Action(action)
		if uid != nil {
			event.UserID = id.UserID(*uid)
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit events: %w", err)
	}
	return events, nil
}
