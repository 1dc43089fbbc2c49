// Package models defines issued credentials and their proof envelopes.
package models

import (
	"time"

	"spectra/internal/zkproof/mockzk"
	id "spectra/pkg/domain"
)

// Type tags what a credential attests. Anchors match required claims
// against it by string equality.
type Type string

const (
	TypeIdentityVerification Type = "identity_verification"
	TypeAgeVerification      Type = "age_verification"
	TypeAMLCheck             Type = "aml_check"
)

// IssuedTypes is the fixed set minted on every approval, in issue order.
var IssuedTypes = []Type{TypeIdentityVerification, TypeAgeVerification, TypeAMLCheck}

const (
	ProofTypeZK   = "ZkProof2023"
	ProofTypeHash = "Sha256HashProof2023"

	ProofPurpose       = "assertionMethod"
	VerificationMethod = "did:spectra:kyc-global"

	// Validity is fixed for every credential.
	Validity = 365 * 24 * time.Hour
)

// Claims is the type-specific attestation payload.
type Claims map[string]any

// Proof is either a mock-ZK envelope (ZKProof and PublicSignals set) or a
// hash envelope (JWS set). JWS is a SHA-256 digest, not a signature.
type Proof struct {
	Type               string        `json:"type"`
	Created            time.Time     `json:"created"`
	ProofPurpose       string        `json:"proofPurpose"`
	VerificationMethod string        `json:"verificationMethod"`
	JWS                string        `json:"jws,omitempty"`
	ZKProof            *mockzk.Proof `json:"zkProof,omitempty"`
	PublicSignals      []string      `json:"publicSignals,omitempty"`
}

// IsZK reports whether the envelope carries a mock-ZK proof.
func (p Proof) IsZK() bool {
	return p.Type == ProofTypeZK && p.ZKProof != nil
}

type Credential struct {
	ID        id.CredentialID `json:"id"`
	UserID    id.UserID       `json:"userId"`
	Type      Type            `json:"type"`
	Claims    Claims          `json:"claims"`
	Proof     Proof           `json:"proof"`
	IssuedAt  time.Time       `json:"issuedAt"`
	ExpiresAt time.Time       `json:"expiresAt"`
	Revoked   bool            `json:"revoked"`
}

// IsLive reports whether the credential is neither revoked nor expired at now.
func (c *Credential) IsLive(now time.Time) bool {
	return !c.Revoked && c.ExpiresAt.After(now)
}

// HasType reports whether any credential in creds has type t.
func HasType(creds []*Credential, t Type) bool {
	for _, c := range creds {
		if c.Type == t {
			return true
		}
	}
	return false
}
