// Package envelope renders the uniform success/failure response body used by
// every endpoint: {message, data?} on success, {message, errors?, error?} on
// failure.
package envelope

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/eventregistry/server/internal/validation"
)

const contentType = "application/json"

type Body struct {
	Message string       `json:"message"`
	Data    any          `json:"data,omitempty"`
	Errors  []FieldError `json:"errors,omitempty"`
	Error   string       `json:"error,omitempty"`
}

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type Option func(*Body)

// WithFieldErrors attaches structured per-field validation details.
func WithFieldErrors(fields []validation.FieldError) Option {
	return func(b *Body) {
		for _, f := range fields {
			b.Errors = append(b.Errors, FieldError{Field: f.Field, Message: f.Message})
		}
	}
}

// OK writes a success envelope. Data may be nil for confirmation-only
// responses.
func OK(w http.ResponseWriter, status int, message string, data any) {
	write(w, status, Body{Message: message, Data: data})
}

// Fail writes a failure envelope and logs it from the request-scoped logger:
// client errors at warn, server errors at error. Outside development the
// underlying error string is only surfaced for 5xx responses.
func Fail(w http.ResponseWriter, r *http.Request, status int, message string, err error, env string, opts ...Option) {
	body := Body{Message: message}
	for _, opt := range opts {
		opt(&body)
	}

	if err != nil && status >= http.StatusInternalServerError {
		if env == "development" || env == "test" {
			body.Error = err.Error()
		} else {
			body.Error = http.StatusText(status)
		}
	}

	if err != nil && r != nil {
		logger := zerolog.Ctx(r.Context())
		event := logger.Warn()
		if status >= http.StatusInternalServerError {
			event = logger.Error()
		}
		event.
			Err(err).
			Int("status", status).
			Str("path", r.URL.Path).
			Str("method", r.Method).
			Msg(message)
	}

	write(w, status, body)
}

func write(w http.ResponseWriter, status int, body Body) {
	payload, err := json.Marshal(body)
	if err != nil {
		w.Header().Set("Content-Type", contentType)
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"message":"Internal Server Error"}`))
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(status)
	_, _ = w.Write(payload)
}
