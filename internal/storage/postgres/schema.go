package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Schema bootstrap runs once at startup, before the listener accepts
// traffic. Every statement is idempotent; there is no migration versioning.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS events (
		id SERIAL PRIMARY KEY,
		title VARCHAR(100) NOT NULL,
		location VARCHAR(100) NOT NULL,
		date_time TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS users (
		id SERIAL PRIMARY KEY,
		name VARCHAR(100) NOT NULL,
		email VARCHAR(150) UNIQUE
	)`,
	`CREATE TABLE IF NOT EXISTS registrations (
		id SERIAL PRIMARY KEY,
		user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		event_id INTEGER NOT NULL REFERENCES events(id) ON DELETE CASCADE
	)`,
	// Backs the one-registration-per-(user, event) invariant so concurrent
	// inserts cannot both succeed.
	`CREATE UNIQUE INDEX IF NOT EXISTS registrations_user_event_idx
		ON registrations (user_id, event_id)`,
}

func Bootstrap(ctx context.Context, pool *pgxpool.Pool) error {
	for _, stmt := range schemaStatements {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("bootstrap schema: %w", err)
		}
	}
	return nil
}
