package seeder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"spectra/internal/anchor/models"
	id "spectra/pkg/domain"
	"spectra/pkg/platform/sentinel"
)

// AnchorStore defines methods for seeding anchors
type AnchorStore interface {
	Create(ctx context.Context, anchor *models.Anchor) error
	FindByDomain(ctx context.Context, domain string) (*models.Anchor, error)
}

// DemoAnchor describes one directory entry created at startup.
type DemoAnchor struct {
	Name           string
	Domain         string
	PublicKey      string
	RequiredClaims []string
}

// DemoAnchors are the two services the demo pages point at.
var DemoAnchors = []DemoAnchor{
	{
		Name:           "Anchor A - USD Services",
		Domain:         "anchor-a.stellar.demo",
		PublicKey:      "GANCHORADEMOUSDSERVICESAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA",
		RequiredClaims: []string{"identity_verification", "aml_check"},
	},
	{
		Name:           "Anchor B - EUR Services",
		Domain:         "anchor-b.stellar.demo",
		PublicKey:      "GANCHORBDEMOEURSERVICESBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBB",
		RequiredClaims: []string{"identity_verification", "age_verification"},
	},
}

// Seeder populates the anchor directory with demo data
type Seeder struct {
	anchors AnchorStore
	logger  *slog.Logger
	now     func() time.Time
}

// New creates a new seeder
func New(anchors AnchorStore, logger *slog.Logger) *Seeder {
	return &Seeder{
		anchors: anchors,
		logger:  logger,
		now:     time.Now,
	}
}

// SeedAll creates every demo anchor whose domain is not yet registered.
// Running it again is a no-op.
func (s *Seeder) SeedAll(ctx context.Context) error {
	s.logger.Info("seeding demo anchors...")

	created := 0
	for _, demo := range DemoAnchors {
		ok, err := s.seedAnchor(ctx, demo)
		if err != nil {
			return fmt.Errorf("failed to seed anchor %s: %w", demo.Domain, err)
		}
		if ok {
			created++
		}
	}

	s.logger.Info("demo anchors seeded",
		"created", created,
		"existing", len(DemoAnchors)-created,
	)
	return nil
}

func (s *Seeder) seedAnchor(ctx context.Context, demo DemoAnchor) (bool, error) {
	_, err := s.anchors.FindByDomain(ctx, demo.Domain)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, sentinel.ErrNotFound) {
		return false, err
	}

	now := s.now().UTC()
	anchor := &models.Anchor{
		ID:             id.NewAnchorID(),
		Name:           demo.Name,
		Domain:         demo.Domain,
		PublicKey:      demo.PublicKey,
		RequiredClaims: append([]string(nil), demo.RequiredClaims...),
		IsActive:       true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.anchors.Create(ctx, anchor); err != nil {
		// Another instance seeded it first.
		if errors.Is(err, sentinel.ErrConflict) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
