package handler

import (
	"strings"

	"spectra/internal/kyc/models"
	"spectra/internal/zkproof/mockzk"
	dErrors "spectra/pkg/domain-errors"
)

type submitRequest struct {
	StellarAccount string               `json:"stellarAccount"`
	Email          string               `json:"email,omitempty"`
	KYCData        *models.PersonalInfo `json:"kycData"`
	Files          *models.Files        `json:"files"`
}

// Validate checks presence only; the personal data schema is enforced by
// the service.
func (r *submitRequest) Validate() error {
	if strings.TrimSpace(r.StellarAccount) == "" {
		return dErrors.New(dErrors.CodeBadRequest, "Stellar account is required")
	}
	if r.KYCData == nil || r.Files == nil {
		return dErrors.New(dErrors.CodeBadRequest, "KYC data and files are required")
	}
	return nil
}

func (r *submitRequest) toModel() *models.SubmitRequest {
	return &models.SubmitRequest{
		Account:      r.StellarAccount,
		Email:        r.Email,
		PersonalInfo: *r.KYCData,
		Files:        *r.Files,
	}
}

type rejectRequest struct {
	Reason string `json:"reason"`
}

func (r *rejectRequest) Sanitize() {
	r.Reason = strings.TrimSpace(r.Reason)
}

type ageProofRequest struct {
	Proof         *mockzk.Proof `json:"proof"`
	PublicSignals []string      `json:"publicSignals"`
}
