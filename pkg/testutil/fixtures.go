package testutil

import (
	"time"

	"github.com/google/uuid"

	anchormodels "spectra/internal/anchor/models"
	credmodels "spectra/internal/credential/models"
	kycmodels "spectra/internal/kyc/models"
	id "spectra/pkg/domain"
	"spectra/pkg/secrets"
)

// TestIDs provides convenient pre-generated IDs for tests.
// Use these for deterministic test data.
var TestIDs = struct {
	UserID1       id.UserID
	UserID2       id.UserID
	AnchorID1     id.AnchorID
	AnchorID2     id.AnchorID
	SubmissionID1 id.SubmissionID
}{
	UserID1:       id.UserID(uuid.MustParse("11111111-1111-1111-1111-111111111111")),
	UserID2:       id.UserID(uuid.MustParse("22222222-2222-2222-2222-222222222222")),
	AnchorID1:     id.AnchorID(uuid.MustParse("aaaa0000-0000-0000-0000-000000000001")),
	AnchorID2:     id.AnchorID(uuid.MustParse("aaaa0000-0000-0000-0000-000000000002")),
	SubmissionID1: id.SubmissionID(uuid.MustParse("5ab00000-0000-0000-0000-000000000001")),
}

// FixedNow is the reference instant builders stamp records with.
var FixedNow = time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC)

// AnchorBuilder provides a fluent interface for building test anchors.
type AnchorBuilder struct {
	anchor *anchormodels.Anchor
}

// NewAnchorBuilder creates an active anchor requiring identity verification.
func NewAnchorBuilder() *AnchorBuilder {
	return &AnchorBuilder{
		anchor: &anchormodels.Anchor{
			ID:             id.NewAnchorID(),
			Name:           "Test Anchor",
			Domain:         "anchor-" + uuid.NewString()[:8] + ".test",
			PublicKey:      "GTESTANCHORKEY",
			RequiredClaims: []string{string(credmodels.TypeIdentityVerification)},
			IsActive:       true,
			CreatedAt:      FixedNow,
			UpdatedAt:      FixedNow,
		},
	}
}

func (b *AnchorBuilder) WithID(anchorID id.AnchorID) *AnchorBuilder {
	b.anchor.ID = anchorID
	return b
}

func (b *AnchorBuilder) WithDomain(domain string) *AnchorBuilder {
	b.anchor.Domain = domain
	return b
}

// Requiring replaces the required claims. No arguments means none.
func (b *AnchorBuilder) Requiring(claims ...credmodels.Type) *AnchorBuilder {
	b.anchor.RequiredClaims = make([]string, 0, len(claims))
	for _, c := range claims {
		b.anchor.RequiredClaims = append(b.anchor.RequiredClaims, string(c))
	}
	return b
}

func (b *AnchorBuilder) CreatedAt(t time.Time) *AnchorBuilder {
	b.anchor.CreatedAt = t
	b.anchor.UpdatedAt = t
	return b
}

func (b *AnchorBuilder) Inactive() *AnchorBuilder {
	b.anchor.IsActive = false
	return b
}

func (b *AnchorBuilder) Build() *anchormodels.Anchor {
	return b.anchor
}

// CredentialBuilder provides a fluent interface for building test credentials.
type CredentialBuilder struct {
	cred *credmodels.Credential
}

// NewCredentialBuilder creates a live identity credential issued at FixedNow.
func NewCredentialBuilder(userID id.UserID) *CredentialBuilder {
	return &CredentialBuilder{
		cred: &credmodels.Credential{
			ID:        id.NewCredentialID(),
			UserID:    userID,
			Type:      credmodels.TypeIdentityVerification,
			Claims:    credmodels.Claims{"verified": true},
			IssuedAt:  FixedNow,
			ExpiresAt: FixedNow.Add(credmodels.Validity),
			Proof: credmodels.Proof{
				Type:               credmodels.ProofTypeHash,
				Created:            FixedNow,
				ProofPurpose:       credmodels.ProofPurpose,
				VerificationMethod: credmodels.VerificationMethod,
				JWS:                "deadbeef",
			},
		},
	}
}

func (b *CredentialBuilder) OfType(t credmodels.Type) *CredentialBuilder {
	b.cred.Type = t
	return b
}

func (b *CredentialBuilder) ExpiresAt(t time.Time) *CredentialBuilder {
	b.cred.ExpiresAt = t
	return b
}

func (b *CredentialBuilder) Revoked() *CredentialBuilder {
	b.cred.Revoked = true
	return b
}

func (b *CredentialBuilder) Build() *credmodels.Credential {
	return b.cred
}

// Credentials builds one live credential per type for userID.
func Credentials(userID id.UserID, types ...credmodels.Type) []*credmodels.Credential {
	out := make([]*credmodels.Credential, 0, len(types))
	for _, t := range types {
		out = append(out, NewCredentialBuilder(userID).OfType(t).Build())
	}
	return out
}

// SubmissionBuilder provides a fluent interface for building test submissions.
type SubmissionBuilder struct {
	sub *kycmodels.Submission
}

// NewSubmissionBuilder creates a first-version PROCESSING submission.
func NewSubmissionBuilder(userID id.UserID) *SubmissionBuilder {
	return &SubmissionBuilder{
		sub: &kycmodels.Submission{
			ID:           id.NewSubmissionID(),
			UserID:       userID,
			Encrypted:    secrets.Sealed{Data: "aa", IV: "bb", AuthTag: "cc"},
			DataHash:     "datahash",
			DocumentType: kycmodels.DocumentPassport,
			DocumentHash: "dochash",
			SelfieHash:   "selfiehash",
			Status:       kycmodels.StatusProcessing,
			Version:      1,
			CreatedAt:    FixedNow,
			UpdatedAt:    FixedNow,
		},
	}
}

func (b *SubmissionBuilder) WithID(subID id.SubmissionID) *SubmissionBuilder {
	b.sub.ID = subID
	return b
}

func (b *SubmissionBuilder) WithStatus(status kycmodels.Status) *SubmissionBuilder {
	b.sub.Status = status
	return b
}

func (b *SubmissionBuilder) WithVersion(version int64) *SubmissionBuilder {
	b.sub.Version = version
	return b
}

// At stamps both creation and last update.
func (b *SubmissionBuilder) At(t time.Time) *SubmissionBuilder {
	b.sub.CreatedAt = t
	b.sub.UpdatedAt = t
	return b
}

func (b *SubmissionBuilder) Build() *kycmodels.Submission {
	return b.sub
}
