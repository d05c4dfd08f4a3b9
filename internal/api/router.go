package api

import (
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/eventregistry/server/internal/api/handlers"
	"github.com/eventregistry/server/internal/api/middleware"
	"github.com/eventregistry/server/internal/config"
	"github.com/eventregistry/server/internal/domain/events"
	"github.com/eventregistry/server/internal/domain/registrations"
	"github.com/eventregistry/server/internal/metrics"
	"github.com/eventregistry/server/internal/storage/postgres"
)

// NewRouter wires repositories, services, and handlers onto a ServeMux and
// wraps it with the shared middleware chain.
func NewRouter(cfg config.Config, logger zerolog.Logger, pool *pgxpool.Pool) http.Handler {
	eventsService := events.NewService(postgres.NewEventRepository(pool), events.Limits{
		MaxEvents:        cfg.Capacity.MaxEvents,
		MaxRegistrations: cfg.Capacity.MaxRegistrations,
	})
	registrationsService := registrations.NewService(
		postgres.NewRegistrationRepository(pool),
		cfg.Capacity.MaxRegistrations,
	)

	return newHandler(cfg, logger, eventsService, registrationsService, pool)
}

// newHandler assembles the route table. pool is only used by the health
// probe; tests pass nil along with services over fake repositories.
func newHandler(cfg config.Config, logger zerolog.Logger, eventsService *events.Service, registrationsService *registrations.Service, pool *pgxpool.Pool) http.Handler {
	eventsHandler := handlers.NewEventsHandler(eventsService, cfg.Environment)
	registrationsHandler := handlers.NewRegistrationsHandler(registrationsService, cfg.Environment)

	mux := http.NewServeMux()
	handle := func(pattern string, h http.Handler) {
		mux.Handle(pattern, middleware.Metrics(pattern, h))
	}

	handle("POST /api/events", http.HandlerFunc(eventsHandler.Create))
	handle("POST /api/events/{$}", http.HandlerFunc(eventsHandler.Create))
	handle("GET /api/events/verify", handlers.Verify())
	handle("GET /api/events/upcoming/events", http.HandlerFunc(eventsHandler.Upcoming))
	handle("GET /api/events/stats/{eventId}", http.HandlerFunc(eventsHandler.Stats))
	handle("POST /api/events/register", http.HandlerFunc(registrationsHandler.Register))
	handle("DELETE /api/events/cancel/{id}/{eventId}", http.HandlerFunc(registrationsHandler.Cancel))
	handle("GET /api/events/{id}", http.HandlerFunc(eventsHandler.Get))

	if pool != nil {
		mux.Handle("GET /healthz", handlers.Healthz(pool, cfg.Environment))
	}
	mux.Handle("GET /metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	var handler http.Handler = mux
	handler = middleware.Recover(cfg.Environment)(handler)
	handler = middleware.CORS(handler)
	handler = middleware.RequestLogging(handler)
	handler = middleware.CorrelationID(logger)(handler)
	return handler
}
