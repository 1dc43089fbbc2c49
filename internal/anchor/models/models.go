// Package models defines anchors, the third parties that gate access on a
// user's credentials, and the access trail written on success.
package models

import (
	"slices"
	"time"

	credmodels "spectra/internal/credential/models"
	id "spectra/pkg/domain"
)

// DefaultRequiredClaims applies when a registration names no claims.
var DefaultRequiredClaims = []string{string(credmodels.TypeIdentityVerification)}

type Anchor struct {
	ID             id.AnchorID `json:"id"`
	Name           string      `json:"name"`
	Domain         string      `json:"domain"`
	PublicKey      string      `json:"publicKey"`
	RequiredClaims []string    `json:"requiredClaims"`
	IsActive       bool        `json:"isActive"`
	CreatedAt      time.Time   `json:"createdAt"`
	UpdatedAt      time.Time   `json:"updatedAt"`
}

// Satisfied reports whether every required claim has at least one
// credential of that type in creds. An empty requirement list is always
// satisfied.
func (a *Anchor) Satisfied(creds []*credmodels.Credential) bool {
	for _, required := range a.RequiredClaims {
		if !credmodels.HasType(creds, credmodels.Type(required)) {
			return false
		}
	}
	return true
}

// Clone returns a deep copy.
func (a *Anchor) Clone() *Anchor {
	cp := *a
	cp.RequiredClaims = slices.Clone(a.RequiredClaims)
	return &cp
}

// Access records the last successful verification of a user at an anchor.
type Access struct {
	UserID         id.UserID   `json:"userId"`
	AnchorID       id.AnchorID `json:"anchorId"`
	LastAccessedAt time.Time   `json:"lastAccessedAt"`
}

// Summary is the listing projection.
type Summary struct {
	ID             id.AnchorID `json:"id"`
	Name           string      `json:"name"`
	Domain         string      `json:"domain"`
	RequiredClaims []string    `json:"requiredClaims"`
}

// Detail is the single-anchor projection.
type Detail struct {
	Summary
	IsActive bool `json:"isActive"`
}

func SummaryOf(a *Anchor) Summary {
	claims := a.RequiredClaims
	if claims == nil {
		claims = []string{}
	}
	return Summary{ID: a.ID, Name: a.Name, Domain: a.Domain, RequiredClaims: claims}
}

func DetailOf(a *Anchor) Detail {
	return Detail{Summary: SummaryOf(a), IsActive: a.IsActive}
}
