// Package internal holds the event registration server internals.
//
// The internal tree is organized by responsibility:
// - api: HTTP handlers, middleware, response envelope, and routing
// - domain: business logic for events and registrations
// - storage: pgx repositories and schema bootstrap
// - config, metrics, validation: shared infrastructure
//
// Code in internal/ is not meant for external import.
package internal
