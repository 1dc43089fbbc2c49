package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"spectra/internal/kyc/models"
	id "spectra/pkg/domain"
)

type rowScanner interface {
	Scan(dest ...any) error
}

// PostgresUserStore persists users in the users table.
type PostgresUserStore struct {
	db *sql.DB
}

func NewPostgresUsers(db *sql.DB) *PostgresUserStore {
	return &PostgresUserStore{db: db}
}

const userColumns = `id, stellar_account, COALESCE(email, ''), created_at, updated_at`

func (s *PostgresUserStore) FindOrCreate(ctx context.Context, account, email string, now time.Time) (*models.User, error) {
	// The no-op update makes RETURNING yield the existing row on conflict.
	row := s.db.QueryRowContext(ctx, `
		INSERT INTO users (id, stellar_account, email, created_at, updated_at)
		VALUES ($1, $2, NULLIF($3, ''), $4, $4)
		ON CONFLICT (stellar_account) DO UPDATE SET stellar_account = EXCLUDED.stellar_account
		RETURNING `+userColumns,
		uuid.New(), account, email, now,
	)
	u, err := scanUser(row)
	if err != nil {
		return nil, fmt.Errorf("find or create user: %w", err)
	}
	return u, nil
}

func (s *PostgresUserStore) FindByAccount(ctx context.Context, account string) (*models.User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE stellar_account = $1`, account)
	u, err := scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find user by account: %w", err)
	}
	return u, nil
}

func (s *PostgresUserStore) FindByID(ctx context.Context, userID id.UserID) (*models.User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, uuid.UUID(userID))
	u, err := scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return u, nil
}

func scanUser(row rowScanner) (*models.User, error) {
	var (
		u      models.User
		userID uuid.UUID
	)
	if err := row.Scan(&userID, &u.Account, &u.Email, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	u.ID = id.UserID(userID)
	return &u, nil
}

// PostgresSubmissionStore persists submissions in kyc_submissions. The
// user_id unique constraint enforces one submission per user.
type PostgresSubmissionStore struct {
	db *sql.DB
}

func NewPostgresSubmissions(db *sql.DB) *PostgresSubmissionStore {
	return &PostgresSubmissionStore{db: db}
}

const submissionColumns = `id, user_id, encrypted_data, iv, auth_tag, data_hash, document_type,
	document_hash, selfie_hash, status, COALESCE(rejection_reason, ''), verified_at, version,
	created_at, updated_at`

func (s *PostgresSubmissionStore) Upsert(ctx context.Context, sub *models.Submission) (*models.Submission, error) {
	row := s.db.QueryRowContext(ctx, `
		INSERT INTO kyc_submissions (
			id, user_id, encrypted_data, iv, auth_tag, data_hash, document_type,
			document_hash, selfie_hash, status, rejection_reason, verified_at, version,
			created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NULLIF($11, ''), $12, 1, $13, $14)
		ON CONFLICT (user_id) DO UPDATE SET
			encrypted_data   = EXCLUDED.encrypted_data,
			iv               = EXCLUDED.iv,
			auth_tag         = EXCLUDED.auth_tag,
			data_hash        = EXCLUDED.data_hash,
			document_type    = EXCLUDED.document_type,
			document_hash    = EXCLUDED.document_hash,
			selfie_hash      = EXCLUDED.selfie_hash,
			status           = EXCLUDED.status,
			rejection_reason = EXCLUDED.rejection_reason,
			verified_at      = EXCLUDED.verified_at,
			version          = kyc_submissions.version + 1,
			updated_at       = EXCLUDED.updated_at
		RETURNING `+submissionColumns,
		uuid.UUID(sub.ID),
		uuid.UUID(sub.UserID),
		sub.Encrypted.Data,
		sub.Encrypted.IV,
		sub.Encrypted.AuthTag,
		sub.DataHash,
		string(sub.DocumentType),
		sub.DocumentHash,
		sub.SelfieHash,
		string(sub.Status),
		sub.RejectionReason,
		sub.VerifiedAt,
		sub.CreatedAt,
		sub.UpdatedAt,
	)
	stored, err := scanSubmission(row)
	if err != nil {
		return nil, fmt.Errorf("upsert submission: %w", err)
	}
	return stored, nil
}

func (s *PostgresSubmissionStore) FindByID(ctx context.Context, subID id.SubmissionID) (*models.Submission, error) {
	return s.findOne(ctx, `SELECT `+submissionColumns+` FROM kyc_submissions WHERE id = $1`, uuid.UUID(subID))
}

func (s *PostgresSubmissionStore) FindByUserID(ctx context.Context, userID id.UserID) (*models.Submission, error) {
	return s.findOne(ctx, `SELECT `+submissionColumns+` FROM kyc_submissions WHERE user_id = $1`, uuid.UUID(userID))
}

func (s *PostgresSubmissionStore) findOne(ctx context.Context, query string, arg any) (*models.Submission, error) {
	sub, err := scanSubmission(s.db.QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find submission: %w", err)
	}
	return sub, nil
}

func (s *PostgresSubmissionStore) Transition(ctx context.Context, subID id.SubmissionID, t models.Transition) (*models.Submission, error) {
	row := s.db.QueryRowContext(ctx, `
		UPDATE kyc_submissions
		SET status = $4, rejection_reason = NULLIF($5, ''), verified_at = $6, updated_at = $7
		WHERE id = $1 AND version = $2 AND status = $3
		RETURNING `+submissionColumns,
		uuid.UUID(subID),
		t.FromVersion,
		string(t.FromStatus),
		string(t.To),
		t.Reason,
		t.VerifiedAt,
		t.At,
	)
	sub, err := scanSubmission(row)
	if err == nil {
		return sub, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("transition submission: %w", err)
	}

	var exists bool
	if err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM kyc_submissions WHERE id = $1)`, uuid.UUID(subID),
	).Scan(&exists); err != nil {
		return nil, fmt.Errorf("check submission: %w", err)
	}
	if !exists {
		return nil, ErrNotFound
	}
	return nil, ErrStaleVersion
}

func (s *PostgresSubmissionStore) ListStale(ctx context.Context, status models.Status, cutoff time.Time, limit int) ([]*models.Submission, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+submissionColumns+`
		FROM kyc_submissions
		WHERE status = $1 AND updated_at < $2
		ORDER BY updated_at
		LIMIT $3
	`, string(status), cutoff, limit)
	if err != nil {
		return nil, fmt.Errorf("list stale submissions: %w", err)
	}
	defer rows.Close()

	var out []*models.Submission
	for rows.Next() {
		sub, err := scanSubmission(rows)
		if err != nil {
			return nil, fmt.Errorf("scan submission: %w", err)
		}
		out = append(out, sub)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate submissions: %w", err)
	}
	return out, nil
}

func scanSubmission(row rowScanner) (*models.Submission, error) {
	var (
		sub            models.Submission
		subID, userID  uuid.UUID
		docType, state string
		verifiedAt     sql.NullTime
	)
	if err := row.Scan(
		&subID, &userID,
		&sub.Encrypted.Data, &sub.Encrypted.IV, &sub.Encrypted.AuthTag,
		&sub.DataHash, &docType, &sub.DocumentHash, &sub.SelfieHash,
		&state, &sub.RejectionReason, &verifiedAt, &sub.Version,
		&sub.CreatedAt, &sub.UpdatedAt,
	); err != nil {
		return nil, err
	}
	sub.ID = id.SubmissionID(subID)
	sub.UserID = id.UserID(userID)
	sub.DocumentType = models.DocumentType(docType)
	sub.Status = models.Status(state)
	if verifiedAt.Valid {
		t := verifiedAt.Time
		sub.VerifiedAt = &t
	}
	return &sub, nil
}
