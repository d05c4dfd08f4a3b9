package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/eventregistry/server/internal/api/envelope"
	"github.com/eventregistry/server/internal/domain/registrations"
	"github.com/eventregistry/server/internal/metrics"
	"github.com/eventregistry/server/internal/validation"
)

type RegistrationsHandler struct {
	Service *registrations.Service
	Env     string
}

func NewRegistrationsHandler(service *registrations.Service, env string) *RegistrationsHandler {
	return &RegistrationsHandler{Service: service, Env: env}
}

func (h *RegistrationsHandler) Register(w http.ResponseWriter, r *http.Request) {
	var input registrations.RegisterInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		envelope.Fail(w, r, http.StatusBadRequest, "Invalid request body", err, h.Env)
		return
	}

	if err := h.Service.Register(r.Context(), input); err != nil {
		h.writeRegisterError(w, r, err)
		return
	}

	metrics.RegistrationsTotal.WithLabelValues("success").Inc()
	envelope.OK(w, http.StatusCreated, "Registration successful", nil)
}

func (h *RegistrationsHandler) writeRegisterError(w http.ResponseWriter, r *http.Request, err error) {
	var verr validation.Error
	switch {
	case errors.As(err, &verr):
		metrics.RegistrationsTotal.WithLabelValues("invalid").Inc()
		envelope.Fail(w, r, http.StatusBadRequest, "Validation failed", err, h.Env,
			envelope.WithFieldErrors(verr.Fields))
	case errors.Is(err, registrations.ErrEventNotFound):
		metrics.RegistrationsTotal.WithLabelValues("not_found").Inc()
		envelope.Fail(w, r, http.StatusNotFound, "Event not found", err, h.Env)
	case errors.Is(err, registrations.ErrEventEnded):
		metrics.RegistrationsTotal.WithLabelValues("event_past").Inc()
		envelope.Fail(w, r, http.StatusBadRequest, "Event has already occurred", err, h.Env)
	case errors.Is(err, registrations.ErrEventFull):
		metrics.RegistrationsTotal.WithLabelValues("at_capacity").Inc()
		envelope.Fail(w, r, http.StatusBadRequest, "Event is at full capacity", err, h.Env)
	case errors.Is(err, registrations.ErrAlreadyRegistered):
		metrics.RegistrationsTotal.WithLabelValues("duplicate").Inc()
		envelope.Fail(w, r, http.StatusConflict, "User already registered for this event", err, h.Env)
	default:
		metrics.RegistrationsTotal.WithLabelValues("error").Inc()
		envelope.Fail(w, r, http.StatusInternalServerError, "Registration failed", err, h.Env)
	}
}

func (h *RegistrationsHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	userID, ok := intParam(w, r, "id", h.Env)
	if !ok {
		return
	}
	eventID, ok := intParam(w, r, "eventId", h.Env)
	if !ok {
		return
	}

	if err := h.Service.Cancel(r.Context(), userID, eventID); err != nil {
		switch {
		case errors.Is(err, registrations.ErrUserNotFound):
			envelope.Fail(w, r, http.StatusNotFound, "User not found", err, h.Env)
		case errors.Is(err, registrations.ErrEventNotFound):
			envelope.Fail(w, r, http.StatusNotFound, "Event not found", err, h.Env)
		case errors.Is(err, registrations.ErrRegistrationNotFound):
			envelope.Fail(w, r, http.StatusNotFound, "Registration not found", err, h.Env)
		default:
			envelope.Fail(w, r, http.StatusInternalServerError, "Failed to cancel registration", err, h.Env)
		}
		return
	}

	metrics.CancellationsTotal.Inc()
	envelope.OK(w, http.StatusOK, "Registration cancelled successfully", nil)
}
