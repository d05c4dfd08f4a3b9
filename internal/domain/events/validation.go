package events

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/eventregistry/server/internal/validation"
)

// EventInput is the creation request body. Title and location are bounded
// strings; DateTime must be an ISO-8601 date or timestamp.
type EventInput struct {
	Title    string `json:"title" validate:"required,max=100"`
	Location string `json:"location" validate:"required,max=100"`
	DateTime string `json:"dateTime" validate:"required"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// dateTimeLayouts are the accepted ISO-8601 shapes, most specific first.
var dateTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// ValidateInput checks the creation input and parses its date-time. It
// returns a validation.Error describing every failing field.
func ValidateInput(input EventInput) (time.Time, error) {
	var fields []validation.FieldError
	if err := validate.Struct(input); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return time.Time{}, err
		}
		for _, fe := range verrs {
			fields = append(fields, validation.FieldError{
				Field:   jsonField(fe.Field()),
				Message: validation.MessageForTag(fe),
			})
		}
	}

	var parsed time.Time
	if input.DateTime != "" {
		var err error
		parsed, err = ParseDateTime(input.DateTime)
		if err != nil {
			fields = append(fields, validation.FieldError{Field: "dateTime", Message: "must be a valid ISO-8601 date"})
		}
	}

	if len(fields) > 0 {
		return time.Time{}, validation.Error{Fields: fields}
	}
	return parsed, nil
}

func ParseDateTime(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	for _, layout := range dateTimeLayouts {
		if parsed, err := time.Parse(layout, value); err == nil {
			return parsed, nil
		}
	}
	return time.Time{}, fmt.Errorf("parse date-time %q", value)
}

func jsonField(structField string) string {
	switch structField {
	case "Title":
		return "title"
	case "Location":
		return "location"
	case "DateTime":
		return "dateTime"
	}
	return strings.ToLower(structField)
}
