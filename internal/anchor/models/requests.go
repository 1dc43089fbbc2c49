package models

import (
	"strings"

	dErrors "spectra/pkg/domain-errors"
	pstrings "spectra/pkg/platform/strings"
	"spectra/pkg/validation"
)

type RegisterRequest struct {
	Name           string   `json:"name" validate:"notblank"`
	Domain         string   `json:"domain" validate:"notblank"`
	PublicKey      string   `json:"publicKey" validate:"notblank"`
	RequiredClaims []string `json:"requiredClaims"`
}

func (r *RegisterRequest) Sanitize() {
	pstrings.TrimStrings(&r.Name, &r.Domain, &r.PublicKey)
	r.Domain = strings.ToLower(r.Domain)
	if r.RequiredClaims != nil {
		r.RequiredClaims = pstrings.DedupeAndTrim(r.RequiredClaims)
	}
}

// Normalize applies the default requirement when none was given. An
// explicit empty list is kept.
func (r *RegisterRequest) Normalize() {
	if r.RequiredClaims == nil {
		r.RequiredClaims = append([]string(nil), DefaultRequiredClaims...)
	}
}

func (r *RegisterRequest) Validate() error {
	if err := validation.Validate(r); err != nil {
		return err
	}
	if err := validation.CheckSliceCount("requiredClaims", len(r.RequiredClaims), validation.MaxRequiredClaims); err != nil {
		return err
	}
	return validation.CheckEachStringLength("requiredClaims", r.RequiredClaims, validation.MaxClaimTypeLength)
}

type VerifyRequest struct {
	StellarAccount string `json:"stellarAccount"`
	AnchorID       string `json:"anchorId"`
}

func (r *VerifyRequest) Sanitize() {
	pstrings.TrimStrings(&r.StellarAccount, &r.AnchorID)
}

func (r *VerifyRequest) Validate() error {
	if r.StellarAccount == "" || r.AnchorID == "" {
		return dErrors.New(dErrors.CodeBadRequest, "Stellar account and anchor ID are required")
	}
	return nil
}
