package domainerrors

import "errors"

// Code is a domain failure category. Transport layers map it to their own
// status vocabulary.
type Code string

const (
	CodeNotFound     Code = "not_found"
	CodeBadRequest   Code = "bad_request"
	CodeValidation   Code = "validation_failed"
	CodeConflict     Code = "conflict"
	CodeUnauthorized Code = "unauthorized"
	CodeInternal     Code = "internal_error"

	// CodeCrypto covers encryption/decryption and proof material failures.
	// Callers never see the underlying cause.
	CodeCrypto Code = "crypto_error"

	// CodeUnavailable marks a transient downstream failure. Verification
	// records it as NEEDS_INFO instead of retrying.
	CodeUnavailable Code = "service_unavailable"
)

// Error wraps domain or infrastructure failures with a stable code.
// Details carries per-field messages for validation failures.
type Error struct {
	Code    Code
	Message string
	Details []string
	Err     error
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return string(e.Code)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches by code so sentinels like store.ErrNotFound work with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// New creates a domain error with the given code and message.
func New(code Code, msg string) error {
	return &Error{Code: code, Message: msg}
}

// NewValidation creates a validation error listing every failed field.
func NewValidation(msg string, details []string) error {
	return &Error{Code: CodeValidation, Message: msg, Details: details}
}

// Wrap creates a domain error around err. An existing domain code in the
// chain wins over code.
func Wrap(err error, code Code, msg string) error {
	var existing *Error
	if errors.As(err, &existing) {
		return &Error{Code: existing.Code, Message: msg, Details: existing.Details, Err: err}
	}
	return &Error{Code: code, Message: msg, Err: err}
}

// HasCode reports whether err is a domain error carrying code.
func HasCode(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// CodeOf returns the code of the outermost domain error, or CodeInternal.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeInternal
}
