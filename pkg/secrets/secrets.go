// Package secrets holds the symmetric encryption and hashing primitives used
// to keep personal data at rest.
package secrets

import (
	"crypto/rand"
	"encoding/base64"

	dErrors "spectra/pkg/domain-errors"
)

// Generate creates a random URL-safe secret, suitable for admin tokens and
// encryption keys.
func Generate() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "could not generate secret")
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
