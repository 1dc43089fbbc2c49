// Package issuer mints the credential set for an approved user.
package issuer

import (
	"context"
	"log/slog"
	"time"

	"spectra/internal/credential/metrics"
	"spectra/internal/credential/models"
	"spectra/internal/zkproof/mockzk"
	id "spectra/pkg/domain"
	dErrors "spectra/pkg/domain-errors"
	"spectra/pkg/requestcontext"
	"spectra/pkg/secrets"
)

// Store is the persistence port the issuer writes through.
type Store interface {
	ReplaceForUser(ctx context.Context, userID id.UserID, creds []*models.Credential) error
	Save(ctx context.Context, cred *models.Credential) error
}

// ProofEngine produces age proofs. The only implementation is mockzk.
type ProofEngine interface {
	GenerateAgeProof(birthYear, currentYear, threshold int) (mockzk.Result, error)
}

const (
	// placeholderAge stands in for the applicant's age: personal data is
	// never decrypted for issuance.
	placeholderAge = 25
	ageThreshold   = mockzk.DefaultAgeThreshold
)

type Issuer struct {
	store   Store
	zk      ProofEngine
	logger  *slog.Logger
	metrics *metrics.Metrics
}

type Option func(*Issuer)

func WithLogger(logger *slog.Logger) Option {
	return func(i *Issuer) { i.logger = logger }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(i *Issuer) { i.metrics = m }
}

func New(store Store, zk ProofEngine, opts ...Option) *Issuer {
	i := &Issuer{store: store, zk: zk, logger: slog.Default()}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// IssueAll replaces every credential of userID with a fresh identity, age
// and AML credential.
func (i *Issuer) IssueAll(ctx context.Context, userID id.UserID) ([]*models.Credential, error) {
	start := time.Now()
	now := requestcontext.Now(ctx)

	creds := make([]*models.Credential, 0, len(models.IssuedTypes))
	for _, t := range models.IssuedTypes {
		c, err := i.build(ctx, userID, t, defaultClaims(t, now), now)
		if err != nil {
			return nil, err
		}
		creds = append(creds, c)
	}

	if err := i.store.ReplaceForUser(ctx, userID, creds); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to store credentials")
	}
	for _, c := range creds {
		i.metrics.IncrementIssued(string(c.Type), c.Proof.Type)
	}
	i.metrics.ObserveIssueAll(time.Since(start).Seconds())
	i.logger.InfoContext(ctx, "credentials issued",
		"user_id", userID.String(),
		"count", len(creds),
	)
	return creds, nil
}

// IssueOne builds and stores a single credential with the given claims.
func (i *Issuer) IssueOne(ctx context.Context, userID id.UserID, credType models.Type, claims models.Claims) (*models.Credential, error) {
	now := requestcontext.Now(ctx)
	c, err := i.build(ctx, userID, credType, claims, now)
	if err != nil {
		return nil, err
	}
	if err := i.store.Save(ctx, c); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to store credential")
	}
	i.metrics.IncrementIssued(string(c.Type), c.Proof.Type)
	return c, nil
}

func (i *Issuer) build(ctx context.Context, userID id.UserID, credType models.Type, claims models.Claims, now time.Time) (*models.Credential, error) {
	var (
		proof models.Proof
		err   error
	)
	if credType == models.TypeAgeVerification {
		proof, err = i.ageProof(now)
		if err != nil {
			i.logger.WarnContext(ctx, "age proof generation failed, falling back to hash proof",
				"user_id", userID.String(),
				"error", err,
			)
			i.metrics.IncrementProofFallback(string(credType))
			proof, err = hashProof(credType, claims, now)
		}
	} else {
		proof, err = hashProof(credType, claims, now)
	}
	if err != nil {
		return nil, err
	}

	return &models.Credential{
		ID:        id.NewCredentialID(),
		UserID:    userID,
		Type:      credType,
		Claims:    claims,
		Proof:     proof,
		IssuedAt:  now,
		ExpiresAt: now.Add(models.Validity),
	}, nil
}

func (i *Issuer) ageProof(now time.Time) (models.Proof, error) {
	currentYear := now.Year()
	res, err := i.zk.GenerateAgeProof(currentYear-placeholderAge, currentYear, ageThreshold)
	if err != nil {
		return models.Proof{}, err
	}
	zkProof := res.Proof
	return models.Proof{
		Type:               models.ProofTypeZK,
		Created:            now,
		ProofPurpose:       models.ProofPurpose,
		VerificationMethod: models.VerificationMethod,
		ZKProof:            &zkProof,
		PublicSignals:      res.PublicSignals,
	}, nil
}

// hashPayload is what the JWS digest covers.
type hashPayload struct {
	CredentialType     models.Type   `json:"type"`
	Claims             models.Claims `json:"claims"`
	ProofType          string        `json:"proofType"`
	Created            time.Time     `json:"created"`
	ProofPurpose       string        `json:"proofPurpose"`
	VerificationMethod string        `json:"verificationMethod"`
}

func hashProof(credType models.Type, claims models.Claims, now time.Time) (models.Proof, error) {
	p := models.Proof{
		Type:               models.ProofTypeHash,
		Created:            now,
		ProofPurpose:       models.ProofPurpose,
		VerificationMethod: models.VerificationMethod,
	}
	digest, err := secrets.HashPayload(hashPayload{
		CredentialType:     credType,
		Claims:             claims,
		ProofType:          p.Type,
		Created:            p.Created,
		ProofPurpose:       p.ProofPurpose,
		VerificationMethod: p.VerificationMethod,
	})
	if err != nil {
		return models.Proof{}, err
	}
	p.JWS = digest
	return p, nil
}

func defaultClaims(t models.Type, now time.Time) models.Claims {
	stamp := now.UTC().Format(time.RFC3339)
	switch t {
	case models.TypeIdentityVerification:
		return models.Claims{
			"verified":   true,
			"level":      "standard",
			"method":     "document_selfie",
			"verifiedAt": stamp,
		}
	case models.TypeAgeVerification:
		birthDate := now.AddDate(-placeholderAge, 0, 0)
		return models.Claims{
			"over18":     id.IsAtLeast(birthDate, now, 18),
			"over21":     id.IsAtLeast(birthDate, now, 21),
			"verifiedAt": stamp,
		}
	case models.TypeAMLCheck:
		return models.Claims{
			"passed":    true,
			"checkedAt": stamp,
			"riskLevel": "low",
		}
	default:
		return models.Claims{}
	}
}
