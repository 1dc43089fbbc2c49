package handler

import "spectra/internal/anchor/models"

type listResponse struct {
	Anchors []models.Summary `json:"anchors"`
}

type anchorResponse struct {
	Anchor *models.Detail `json:"anchor"`
}
