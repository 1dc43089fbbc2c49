package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"spectra/internal/credential/models"
	"spectra/internal/platform/database"
	id "spectra/pkg/domain"
)

// PostgresStore persists credentials in the credentials table.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type rowScanner interface {
	Scan(dest ...any) error
}

const credentialColumns = `id, user_id, type, claims, proof, issued_at, expires_at, revoked`

func (s *PostgresStore) ReplaceForUser(ctx context.Context, userID id.UserID, creds []*models.Credential) error {
	return database.RunInTx(ctx, s.db, func(tx *sql.Tx) error {
		// Serialises concurrent replaces for the same user.
		if _, err := tx.ExecContext(ctx, `SELECT 1 FROM users WHERE id = $1 FOR UPDATE`, uuid.UUID(userID)); err != nil {
			return fmt.Errorf("lock user: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM credentials WHERE user_id = $1`, uuid.UUID(userID)); err != nil {
			return fmt.Errorf("delete credentials: %w", err)
		}
		for _, c := range creds {
			if err := insertCredential(ctx, tx, c); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *PostgresStore) Save(ctx context.Context, cred *models.Credential) error {
	return insertCredential(ctx, s.db, cred)
}

func (s *PostgresStore) FindByID(ctx context.Context, credID id.CredentialID) (*models.Credential, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+credentialColumns+` FROM credentials WHERE id = $1`, string(credID))
	c, err := scanCredential(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find credential: %w", err)
	}
	return c, nil
}

func (s *PostgresStore) ListLiveByUser(ctx context.Context, userID id.UserID, now time.Time) ([]*models.Credential, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+credentialColumns+`
		FROM credentials
		WHERE user_id = $1 AND NOT revoked AND expires_at > $2
		ORDER BY issued_at, id
	`, uuid.UUID(userID), now)
	if err != nil {
		return nil, fmt.Errorf("list credentials: %w", err)
	}
	defer rows.Close()

	out := []*models.Credential{}
	for rows.Next() {
		c, err := scanCredential(rows)
		if err != nil {
			return nil, fmt.Errorf("scan credential: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate credentials: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) Revoke(ctx context.Context, credID id.CredentialID) error {
	res, err := s.db.ExecContext(ctx, `UPDATE credentials SET revoked = TRUE WHERE id = $1`, string(credID))
	if err != nil {
		return fmt.Errorf("revoke credential: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("revoke credential rows: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) RevokeAllByUser(ctx context.Context, userID id.UserID) (int, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE credentials SET revoked = TRUE WHERE user_id = $1 AND NOT revoked`, uuid.UUID(userID))
	if err != nil {
		return 0, fmt.Errorf("revoke user credentials: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("revoke user credentials rows: %w", err)
	}
	return int(n), nil
}

func insertCredential(ctx context.Context, exec dbExecutor, c *models.Credential) error {
	claims, err := json.Marshal(c.Claims)
	if err != nil {
		return fmt.Errorf("encode claims: %w", err)
	}
	proof, err := json.Marshal(c.Proof)
	if err != nil {
		return fmt.Errorf("encode proof: %w", err)
	}
	_, err = exec.ExecContext(ctx, `
		INSERT INTO credentials (`+credentialColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`,
		string(c.ID),
		uuid.UUID(c.UserID),
		string(c.Type),
		claims,
		proof,
		c.IssuedAt,
		c.ExpiresAt,
		c.Revoked,
	)
	if err != nil {
		return fmt.Errorf("insert credential: %w", err)
	}
	return nil
}

func scanCredential(row rowScanner) (*models.Credential, error) {
	var (
		c              models.Credential
		credID, typ    string
		userID         uuid.UUID
		claims, proofB []byte
	)
	if err := row.Scan(&credID, &userID, &typ, &claims, &proofB, &c.IssuedAt, &c.ExpiresAt, &c.Revoked); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(claims, &c.Claims); err != nil {
		return nil, fmt.Errorf("decode claims: %w", err)
	}
	if err := json.Unmarshal(proofB, &c.Proof); err != nil {
		return nil, fmt.Errorf("decode proof: %w", err)
	}
	c.ID = id.CredentialID(credID)
	c.UserID = id.UserID(userID)
	c.Type = models.Type(typ)
	return &c, nil
}
