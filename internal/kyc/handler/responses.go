package handler

import credmodels "spectra/internal/credential/models"

type credentialsResponse struct {
	Credentials []*credmodels.Credential `json:"credentials"`
}

type ageProofResponse struct {
	Valid bool `json:"valid"`
}
