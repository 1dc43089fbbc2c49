// Package sentinel holds the errors stores return. NotFound and Conflict are
// domain errors so they reach HTTP with the right status untranslated.
package sentinel

import (
	"errors"

	dErrors "spectra/pkg/domain-errors"
)

var (
	ErrNotFound = dErrors.New(dErrors.CodeNotFound, "record not found")
	ErrConflict = dErrors.New(dErrors.CodeConflict, "record already exists")

	// ErrStaleVersion means a version-checked write lost to a newer one.
	// Callers decide whether that is an error or a no-op.
	ErrStaleVersion = errors.New("stale version")
)
