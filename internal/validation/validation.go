// Package validation holds the field-level error shapes shared by the
// domain packages and the HTTP envelope.
package validation

import (
	"strings"

	"github.com/go-playground/validator/v10"
)

type FieldError struct {
	Field   string
	Message string
}

func (e FieldError) Error() string {
	return e.Field + ": " + e.Message
}

// Error aggregates per-field failures for a 400 response.
type Error struct {
	Fields []FieldError
}

func (e Error) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Error())
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// MessageForTag renders a human-readable message for the validator tags this
// API uses.
func MessageForTag(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "max":
		return "must be at most " + fe.Param() + " characters"
	case "email":
		return "must be a valid email address"
	}
	return "is invalid"
}
