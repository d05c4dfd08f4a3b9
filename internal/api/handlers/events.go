package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/eventregistry/server/internal/api/envelope"
	"github.com/eventregistry/server/internal/domain/events"
	"github.com/eventregistry/server/internal/metrics"
	"github.com/eventregistry/server/internal/validation"
)

type EventsHandler struct {
	Service *events.Service
	Env     string
}

func NewEventsHandler(service *events.Service, env string) *EventsHandler {
	return &EventsHandler{Service: service, Env: env}
}

func (h *EventsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input events.EventInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		envelope.Fail(w, r, http.StatusBadRequest, "Invalid request body", err, h.Env)
		return
	}

	created, err := h.Service.Create(r.Context(), input)
	if err != nil {
		h.writeCreateError(w, r, err)
		return
	}

	metrics.EventsCreated.Inc()
	envelope.OK(w, http.StatusCreated, "Event created successfully", eventPayload(*created))
}

func (h *EventsHandler) writeCreateError(w http.ResponseWriter, r *http.Request, err error) {
	var verr validation.Error
	var capErr events.CapacityError
	switch {
	case errors.As(err, &verr):
		envelope.Fail(w, r, http.StatusBadRequest, "Validation failed", err, h.Env,
			envelope.WithFieldErrors(verr.Fields))
	case errors.Is(err, events.ErrDateInPast):
		envelope.Fail(w, r, http.StatusBadRequest, "Event date cannot be in the past", err, h.Env)
	case errors.As(err, &capErr):
		envelope.Fail(w, r, http.StatusBadRequest,
			fmt.Sprintf("Maximum event limit (%d) reached", capErr.Limit), err, h.Env)
	default:
		envelope.Fail(w, r, http.StatusInternalServerError, "Failed to create event", err, h.Env)
	}
}

func (h *EventsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := intParam(w, r, "id", h.Env)
	if !ok {
		return
	}

	event, registrants, err := h.Service.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, events.ErrNotFound) {
			envelope.Fail(w, r, http.StatusNotFound, "Event not found", err, h.Env)
			return
		}
		envelope.Fail(w, r, http.StatusInternalServerError, "Failed to retrieve event details", err, h.Env)
		return
	}

	users := make([]map[string]any, 0, len(registrants))
	for _, reg := range registrants {
		users = append(users, map[string]any{
			"id":    reg.ID,
			"name":  reg.Name,
			"email": reg.Email,
		})
	}

	payload := eventPayload(*event)
	payload["registeredUsers"] = users
	envelope.OK(w, http.StatusOK, "Event details retrieved successfully", payload)
}

func (h *EventsHandler) Upcoming(w http.ResponseWriter, r *http.Request) {
	items, err := h.Service.Upcoming(r.Context())
	if err != nil {
		envelope.Fail(w, r, http.StatusInternalServerError, "Failed to retrieve events", err, h.Env)
		return
	}

	payload := make([]map[string]any, 0, len(items))
	for _, event := range items {
		payload = append(payload, eventPayload(event))
	}
	envelope.OK(w, http.StatusOK, "Upcoming events retrieved", payload)
}

func (h *EventsHandler) Stats(w http.ResponseWriter, r *http.Request) {
	id, ok := intParam(w, r, "eventId", h.Env)
	if !ok {
		return
	}

	stats, err := h.Service.Stats(r.Context(), id)
	if err != nil {
		if errors.Is(err, events.ErrNotFound) {
			envelope.Fail(w, r, http.StatusNotFound, "Event not found", err, h.Env)
			return
		}
		envelope.Fail(w, r, http.StatusInternalServerError, "Failed to retrieve event statistics", err, h.Env)
		return
	}

	envelope.OK(w, http.StatusOK, "Event statistics retrieved", map[string]any{
		"eventId":            stats.EventID,
		"title":              stats.Title,
		"totalRegistrations": stats.TotalRegistrations,
		"maxCapacity":        stats.MaxCapacity,
		"remainingCapacity":  stats.RemainingCapacity,
		"percentageUsed":     stats.PercentageUsed,
	})
}

func eventPayload(event events.Event) map[string]any {
	return map[string]any{
		"id":       event.ID,
		"title":    event.Title,
		"location": event.Location,
		"dateTime": event.DateTime.Format(time.RFC3339),
	}
}
