package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"spectra/internal/anchor/models"
	id "spectra/pkg/domain"
)

// PostgresStore persists anchors in the anchors and anchor_access tables.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const anchorColumns = `id, name, domain, public_key, required_claims, is_active, created_at, updated_at`

func (s *PostgresStore) Create(ctx context.Context, anchor *models.Anchor) error {
	claims := anchor.RequiredClaims
	if claims == nil {
		claims = []string{}
	}
	raw, err := json.Marshal(claims)
	if err != nil {
		return fmt.Errorf("marshal required claims: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO anchors (id, name, domain, public_key, required_claims, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		uuid.UUID(anchor.ID), anchor.Name, anchor.Domain, anchor.PublicKey, raw,
		anchor.IsActive, anchor.CreatedAt, anchor.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrConflict
		}
		return fmt.Errorf("create anchor: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, anchorID id.AnchorID) (*models.Anchor, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+anchorColumns+` FROM anchors WHERE id = $1`, uuid.UUID(anchorID))
	a, err := scanAnchor(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find anchor: %w", err)
	}
	return a, nil
}

func (s *PostgresStore) FindByDomain(ctx context.Context, domain string) (*models.Anchor, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+anchorColumns+` FROM anchors WHERE domain = $1`, domain)
	a, err := scanAnchor(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find anchor by domain: %w", err)
	}
	return a, nil
}

func (s *PostgresStore) ListActive(ctx context.Context) ([]*models.Anchor, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+anchorColumns+` FROM anchors WHERE is_active ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("list anchors: %w", err)
	}
	defer rows.Close()

	out := []*models.Anchor{}
	for rows.Next() {
		a, err := scanAnchor(rows)
		if err != nil {
			return nil, fmt.Errorf("scan anchor: %w", err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate anchors: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) UpsertAccess(ctx context.Context, userID id.UserID, anchorID id.AnchorID, at time.Time) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO anchor_access (user_id, anchor_id, last_accessed_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, anchor_id) DO UPDATE SET last_accessed_at = EXCLUDED.last_accessed_at`,
		uuid.UUID(userID), uuid.UUID(anchorID), at,
	)
	if err != nil {
		return fmt.Errorf("upsert anchor access: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindAccess(ctx context.Context, userID id.UserID, anchorID id.AnchorID) (*models.Access, error) {
	access := &models.Access{UserID: userID, AnchorID: anchorID}
	err := s.db.QueryRowContext(ctx, `
		SELECT last_accessed_at FROM anchor_access WHERE user_id = $1 AND anchor_id = $2`,
		uuid.UUID(userID), uuid.UUID(anchorID),
	).Scan(&access.LastAccessedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find anchor access: %w", err)
	}
	return access, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAnchor(row rowScanner) (*models.Anchor, error) {
	var (
		a        models.Anchor
		anchorID uuid.UUID
		claims   []byte
	)
	if err := row.Scan(&anchorID, &a.Name, &a.Domain, &a.PublicKey, &claims, &a.IsActive, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(claims, &a.RequiredClaims); err != nil {
		return nil, fmt.Errorf("unmarshal required claims: %w", err)
	}
	a.ID = id.AnchorID(anchorID)
	return &a, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}
