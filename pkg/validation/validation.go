package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"

	dErrors "spectra/pkg/domain-errors"
)

var defaultValidator = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	return v
}

// Validate checks req against its validate tags. Every failing field is
// reported: Details lists one message per field and Message joins them.
func Validate(req any) error {
	err := defaultValidator.Struct(req)
	if err == nil {
		return nil
	}
	details := Messages(err)
	return dErrors.NewValidation("Validation error: "+strings.Join(details, ", "), details)
}

// Messages converts validator errors into human-readable messages.
func Messages(err error) []string {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) || len(validationErrs) == 0 {
		return []string{"invalid request body"}
	}
	out := make([]string, 0, len(validationErrs))
	for _, fe := range validationErrs {
		out = append(out, message(fe))
	}
	return out
}

func message(fe validator.FieldError) string {
	field := Label(fieldPath(fe))
	switch fe.ActualTag() {
	case "required", "notblank":
		return field + " is required"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", field, strings.Join(strings.Fields(fe.Param()), ", "))
	case "email":
		return field + " must be a valid email"
	case "datetime":
		return fmt.Sprintf("%s must be a date in %s format", field, fe.Param())
	case "dive":
		return field + " contains an invalid entry"
	default:
		return field + " is invalid"
	}
}

// fieldPath drops the top-level struct name from the namespace, e.g.
// "PersonalInfo.address.city" becomes "address.city".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return fe.Field()
}

// Label turns a JSON field path into a sentence-case label:
// "dateOfBirth" -> "Date of birth", "address.postalCode" -> "Address postal code".
func Label(path string) string {
	var b strings.Builder
	for i, part := range strings.Split(path, ".") {
		if i > 0 {
			b.WriteByte(' ')
		}
		for _, r := range part {
			if unicode.IsUpper(r) {
				b.WriteByte(' ')
				r = unicode.ToLower(r)
			}
			b.WriteRune(r)
		}
	}
	s := strings.ToLower(b.String())
	if s == "" {
		return s
	}
	runes := []rune(s)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
