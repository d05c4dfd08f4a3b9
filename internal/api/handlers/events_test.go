package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/eventregistry/server/internal/domain/events"
)

type stubEventsRepo struct {
	createFn      func(params events.EventCreateParams) (*events.Event, error)
	getFn         func(id int64) (*events.Event, error)
	countFn       func() (int64, error)
	upcomingFn    func(from time.Time) ([]events.Event, error)
	registrantsFn func(eventID int64) ([]events.Registrant, error)
	countRegsFn   func(eventID int64) (int64, error)
}

func (s stubEventsRepo) Create(_ context.Context, params events.EventCreateParams) (*events.Event, error) {
	return s.createFn(params)
}

func (s stubEventsRepo) GetByID(_ context.Context, id int64) (*events.Event, error) {
	return s.getFn(id)
}

func (s stubEventsRepo) CountAll(_ context.Context) (int64, error) {
	return s.countFn()
}

func (s stubEventsRepo) ListUpcoming(_ context.Context, from time.Time) ([]events.Event, error) {
	return s.upcomingFn(from)
}

func (s stubEventsRepo) ListRegistrants(_ context.Context, eventID int64) ([]events.Registrant, error) {
	return s.registrantsFn(eventID)
}

func (s stubEventsRepo) CountRegistrations(_ context.Context, eventID int64) (int64, error) {
	return s.countRegsFn(eventID)
}

func (s stubEventsRepo) InTx(ctx context.Context, fn func(context.Context, events.Repository) error) error {
	return fn(ctx, s)
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func newEventsHandler(repo events.Repository, limits events.Limits) *EventsHandler {
	return NewEventsHandler(events.NewService(repo, limits), "test")
}

func TestCreateEventReturns201(t *testing.T) {
	repo := stubEventsRepo{
		countFn: func() (int64, error) { return 0, nil },
		createFn: func(params events.EventCreateParams) (*events.Event, error) {
			return &events.Event{ID: 42, Title: params.Title, Location: params.Location, DateTime: params.DateTime}, nil
		},
	}
	handler := newEventsHandler(repo, events.Limits{MaxEvents: 1000, MaxRegistrations: 100})

	req := httptest.NewRequest(http.MethodPost, "/api/events",
		strings.NewReader(`{"title":"Launch","location":"HQ","dateTime":"2030-06-02T18:00:00Z"}`))
	rec := httptest.NewRecorder()
	handler.Create(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	body := decodeBody(t, rec)
	require.Equal(t, "Event created successfully", body["message"])

	data := body["data"].(map[string]any)
	require.Equal(t, float64(42), data["id"])
	require.Equal(t, "Launch", data["title"])
	require.Equal(t, "HQ", data["location"])
	require.Equal(t, "2030-06-02T18:00:00Z", data["dateTime"])
}

func TestCreateEventValidationFailure(t *testing.T) {
	handler := newEventsHandler(stubEventsRepo{}, events.Limits{MaxEvents: 1000})

	req := httptest.NewRequest(http.MethodPost, "/api/events",
		strings.NewReader(`{"title":"","location":"","dateTime":""}`))
	rec := httptest.NewRecorder()
	handler.Create(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeBody(t, rec)
	require.Equal(t, "Validation failed", body["message"])
	require.Len(t, body["errors"], 3)
}

func TestCreateEventMalformedBody(t *testing.T) {
	handler := newEventsHandler(stubEventsRepo{}, events.Limits{MaxEvents: 1000})

	req := httptest.NewRequest(http.MethodPost, "/api/events", strings.NewReader(`{not json`))
	rec := httptest.NewRecorder()
	handler.Create(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateEventPastDate(t *testing.T) {
	handler := newEventsHandler(stubEventsRepo{}, events.Limits{MaxEvents: 1000})

	req := httptest.NewRequest(http.MethodPost, "/api/events",
		strings.NewReader(`{"title":"Retro","location":"HQ","dateTime":"2000-01-01T10:00:00Z"}`))
	rec := httptest.NewRecorder()
	handler.Create(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeBody(t, rec)
	require.Equal(t, "Event date cannot be in the past", body["message"])
}

func TestCreateEventAtCapacity(t *testing.T) {
	repo := stubEventsRepo{
		countFn: func() (int64, error) { return 5, nil },
	}
	handler := newEventsHandler(repo, events.Limits{MaxEvents: 5})

	req := httptest.NewRequest(http.MethodPost, "/api/events",
		strings.NewReader(`{"title":"Launch","location":"HQ","dateTime":"2030-06-02T18:00:00Z"}`))
	rec := httptest.NewRecorder()
	handler.Create(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeBody(t, rec)
	require.Equal(t, "Maximum event limit (5) reached", body["message"])
}

func TestGetEventWithRegistrants(t *testing.T) {
	repo := stubEventsRepo{
		getFn: func(id int64) (*events.Event, error) {
			return &events.Event{ID: id, Title: "Launch", Location: "HQ",
				DateTime: time.Date(2030, time.June, 2, 18, 0, 0, 0, time.UTC)}, nil
		},
		registrantsFn: func(int64) ([]events.Registrant, error) {
			return []events.Registrant{{ID: 5, Name: "Ana", Email: "a@x.com"}}, nil
		},
	}
	handler := newEventsHandler(repo, events.Limits{MaxRegistrations: 100})

	req := httptest.NewRequest(http.MethodGet, "/api/events/7", nil)
	req.SetPathValue("id", "7")
	rec := httptest.NewRecorder()
	handler.Get(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	data := body["data"].(map[string]any)
	require.Equal(t, float64(7), data["id"])

	users := data["registeredUsers"].([]any)
	require.Len(t, users, 1)
	ana := users[0].(map[string]any)
	require.Equal(t, "Ana", ana["name"])
	require.Equal(t, "a@x.com", ana["email"])
}

func TestGetEventNotFound(t *testing.T) {
	repo := stubEventsRepo{
		getFn: func(int64) (*events.Event, error) { return nil, events.ErrNotFound },
	}
	handler := newEventsHandler(repo, events.Limits{})

	req := httptest.NewRequest(http.MethodGet, "/api/events/99", nil)
	req.SetPathValue("id", "99")
	rec := httptest.NewRecorder()
	handler.Get(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
	body := decodeBody(t, rec)
	require.Equal(t, "Event not found", body["message"])
}

func TestGetEventZeroIDReturns404(t *testing.T) {
	repo := stubEventsRepo{
		getFn: func(int64) (*events.Event, error) { return nil, events.ErrNotFound },
	}
	handler := newEventsHandler(repo, events.Limits{})

	req := httptest.NewRequest(http.MethodGet, "/api/events/0", nil)
	req.SetPathValue("id", "0")
	rec := httptest.NewRecorder()
	handler.Get(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Equal(t, "Event not found", decodeBody(t, rec)["message"])
}

func TestGetEventRejectsNonNumericID(t *testing.T) {
	handler := newEventsHandler(stubEventsRepo{}, events.Limits{})

	req := httptest.NewRequest(http.MethodGet, "/api/events/abc", nil)
	req.SetPathValue("id", "abc")
	rec := httptest.NewRecorder()
	handler.Get(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpcomingEvents(t *testing.T) {
	repo := stubEventsRepo{
		upcomingFn: func(time.Time) ([]events.Event, error) {
			return []events.Event{
				{ID: 1, Title: "A", Location: "Hall 1", DateTime: time.Date(2030, 1, 1, 10, 0, 0, 0, time.UTC)},
				{ID: 2, Title: "B", Location: "Hall 2", DateTime: time.Date(2030, 1, 1, 10, 0, 0, 0, time.UTC)},
			}, nil
		},
	}
	handler := newEventsHandler(repo, events.Limits{})

	req := httptest.NewRequest(http.MethodGet, "/api/events/upcoming/events", nil)
	rec := httptest.NewRecorder()
	handler.Upcoming(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	require.Equal(t, "Upcoming events retrieved", body["message"])
	require.Len(t, body["data"], 2)
}

func TestEventStats(t *testing.T) {
	repo := stubEventsRepo{
		getFn:       func(id int64) (*events.Event, error) { return &events.Event{ID: id, Title: "Launch"}, nil },
		countRegsFn: func(int64) (int64, error) { return 25, nil },
	}
	handler := newEventsHandler(repo, events.Limits{MaxRegistrations: 100})

	req := httptest.NewRequest(http.MethodGet, "/api/events/stats/7", nil)
	req.SetPathValue("eventId", "7")
	rec := httptest.NewRecorder()
	handler.Stats(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	data := decodeBody(t, rec)["data"].(map[string]any)
	require.Equal(t, float64(7), data["eventId"])
	require.Equal(t, "Launch", data["title"])
	require.Equal(t, float64(25), data["totalRegistrations"])
	require.Equal(t, float64(100), data["maxCapacity"])
	require.Equal(t, float64(75), data["remainingCapacity"])
	require.Equal(t, float64(25), data["percentageUsed"])
}
