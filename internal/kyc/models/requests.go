package models

import (
	"strings"

	dErrors "spectra/pkg/domain-errors"
	pstrings "spectra/pkg/platform/strings"
	"spectra/pkg/validation"
)

type Address struct {
	Street     string `json:"street" validate:"notblank"`
	City       string `json:"city" validate:"notblank"`
	State      string `json:"state,omitempty"`
	Country    string `json:"country" validate:"min=2"`
	PostalCode string `json:"postalCode" validate:"notblank"`
}

// PersonalInfo is the plaintext KYC payload. It exists only in memory
// between decoding and encryption.
type PersonalInfo struct {
	FirstName      string       `json:"firstName" validate:"notblank"`
	LastName       string       `json:"lastName" validate:"notblank"`
	DateOfBirth    string       `json:"dateOfBirth" validate:"notblank"`
	Nationality    string       `json:"nationality" validate:"min=2"`
	Address        Address      `json:"address"`
	DocumentType   DocumentType `json:"documentType" validate:"oneof=passport driver_license national_id"`
	DocumentNumber string       `json:"documentNumber" validate:"notblank"`
}

func (p *PersonalInfo) Sanitize() {
	pstrings.TrimStrings(
		&p.FirstName, &p.LastName, &p.DateOfBirth, &p.Nationality, &p.DocumentNumber,
		&p.Address.Street, &p.Address.City, &p.Address.State, &p.Address.Country, &p.Address.PostalCode,
	)
	p.DocumentType = DocumentType(strings.TrimSpace(string(p.DocumentType)))
}

func (p *PersonalInfo) Validate() error {
	return validation.Validate(p)
}

// Files carries base64 images, optionally as data URLs.
type Files struct {
	Document string `json:"document"`
	Selfie   string `json:"selfie"`
}

type SubmitRequest struct {
	Account      string
	Email        string
	PersonalInfo PersonalInfo
	Files        Files
}

// Validate checks the request shape then the personal info schema.
func (r *SubmitRequest) Validate() error {
	if r.Files.Document == "" || r.Files.Selfie == "" {
		return dErrors.New(dErrors.CodeBadRequest, "files.document and files.selfie are required")
	}
	r.PersonalInfo.Sanitize()
	return r.PersonalInfo.Validate()
}
