// Package strings provides string clean-up helpers for request sanitizing.
package strings

import (
	"strings"
)

// TrimStrings trims each pointed-to string in place.
func TrimStrings(ss ...*string) {
	for _, s := range ss {
		if s != nil {
			*s = strings.TrimSpace(*s)
		}
	}
}

// DedupeAndTrim trims each element and drops empties and repeats, keeping
// first-seen order.
//
//	DedupeAndTrim([]string{" aml_check ", "identity_verification", "aml_check", ""})
//	// []string{"aml_check", "identity_verification"}
func DedupeAndTrim(values []string) []string {
	if len(values) == 0 {
		return values
	}

	seen := make(map[string]struct{}, len(values))
	result := make([]string, 0, len(values))
	for _, v := range values {
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			continue
		}
		if _, ok := seen[trimmed]; !ok {
			seen[trimmed] = struct{}{}
			result = append(result, trimmed)
		}
	}
	return result
}
