package secrets

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"strings"

	dErrors "spectra/pkg/domain-errors"
)

// HashBytes returns the hex SHA-256 of raw bytes.
func HashBytes(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

// HashDocument fingerprints an uploaded image. Input is base64, optionally
// wrapped as a data URL ("data:image/jpeg;base64,...") the way browser
// canvases emit it. The digest covers the decoded bytes.
func HashDocument(encoded string) (string, error) {
	raw, err := DecodeDocument(encoded)
	if err != nil {
		return "", err
	}
	return HashBytes(raw), nil
}

// DecodeDocument strips a data URL header and decodes standard or URL-safe
// base64, padded or not.
func DecodeDocument(encoded string) ([]byte, error) {
	s := strings.TrimSpace(encoded)
	if strings.HasPrefix(s, "data:") {
		_, payload, ok := strings.Cut(s, ",")
		if !ok {
			return nil, dErrors.New(dErrors.CodeValidation, "malformed data URL")
		}
		s = payload
	}
	if s == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "document is empty")
	}
	for _, enc := range []*base64.Encoding{base64.StdEncoding, base64.RawStdEncoding, base64.URLEncoding, base64.RawURLEncoding} {
		if raw, err := enc.DecodeString(s); err == nil {
			return raw, nil
		}
	}
	return nil, dErrors.New(dErrors.CodeValidation, "document is not valid base64")
}

// HashPayload hashes the JSON encoding of v. encoding/json emits struct
// fields in declaration order and map keys sorted, so equal values always
// hash equal.
func HashPayload(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "could not encode payload")
	}
	return HashBytes(b), nil
}
