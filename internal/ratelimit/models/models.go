// Package models defines per-client request limits.
package models

import "time"

// EndpointClass groups routes that share a limit.
type EndpointClass string

const (
	// ClassSubmit covers KYC submissions, which carry image payloads.
	ClassSubmit EndpointClass = "submit"
	// ClassVerify covers anchor checks and proof verification.
	ClassVerify EndpointClass = "verify"
	ClassRead   EndpointClass = "read"
)

// Policy allows Limit requests per sliding Window.
type Policy struct {
	Limit  int
	Window time.Duration
}

// Result is the outcome of one limit check.
type Result struct {
	Allowed    bool
	Limit      int
	Remaining  int
	ResetAt    time.Time
	RetryAfter int
}

// RetryAfterSeconds rounds up the wait until resetAt, never below one
// second for a denied request.
func RetryAfterSeconds(allowed bool, now, resetAt time.Time) int {
	if allowed {
		return 0
	}
	d := resetAt.Sub(now)
	seconds := int((d + time.Second - 1) / time.Second)
	if seconds < 1 {
		return 1
	}
	return seconds
}
