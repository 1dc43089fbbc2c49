package validation

import (
	"fmt"

	dErrors "spectra/pkg/domain-errors"
)

const (
	// MaxBodySize is the request body cap. Submissions carry two base64
	// images, so it is far larger than a plain JSON API would need.
	MaxBodySize = 10 << 20

	// MaxRequiredClaims bounds an anchor's required claim list.
	MaxRequiredClaims = 20

	// MaxClaimTypeLength bounds a single claim type tag.
	MaxClaimTypeLength = 64

	// MaxReasonLength bounds an admin rejection reason.
	MaxReasonLength = 500
)

// CheckSliceCount rejects slices longer than max.
func CheckSliceCount(fieldName string, count, max int) error {
	if count > max {
		return dErrors.New(dErrors.CodeValidation, fmt.Sprintf("too many %s: max %d allowed", fieldName, max))
	}
	return nil
}

// CheckStringLength rejects strings longer than max bytes.
func CheckStringLength(fieldName, value string, max int) error {
	if len(value) > max {
		return dErrors.New(dErrors.CodeValidation, fmt.Sprintf("%s exceeds max length of %d", fieldName, max))
	}
	return nil
}

// CheckEachStringLength applies CheckStringLength to every element.
func CheckEachStringLength(fieldName string, values []string, max int) error {
	for _, v := range values {
		if err := CheckStringLength(fieldName, v, max); err != nil {
			return err
		}
	}
	return nil
}
