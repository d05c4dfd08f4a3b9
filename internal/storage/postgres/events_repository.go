package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/eventregistry/server/internal/domain/events"
)

var _ events.Repository = (*EventRepository)(nil)

// eventsCountLockID is the advisory lock key serializing the global
// count-then-insert sequence in event creation.
const eventsCountLockID = 824001

type EventRepository struct {
	pool *pgxpool.Pool
	tx   pgx.Tx
}

func NewEventRepository(pool *pgxpool.Pool) *EventRepository {
	return &EventRepository{pool: pool}
}

func (r *EventRepository) queryer() queryer {
	if r.tx != nil {
		return r.tx
	}
	return r.pool
}

func (r *EventRepository) Create(ctx context.Context, params events.EventCreateParams) (*events.Event, error) {
	row := r.queryer().QueryRow(ctx, `
INSERT INTO events (title, location, date_time)
VALUES ($1, $2, $3)
RETURNING id, title, location, date_time
`, params.Title, params.Location, params.DateTime)

	var event events.Event
	if err := row.Scan(&event.ID, &event.Title, &event.Location, &event.DateTime); err != nil {
		return nil, fmt.Errorf("insert event: %w", err)
	}
	return &event, nil
}

func (r *EventRepository) GetByID(ctx context.Context, id int64) (*events.Event, error) {
	row := r.queryer().QueryRow(ctx, `
SELECT id, title, location, date_time FROM events WHERE id = $1
`, id)

	var event events.Event
	if err := row.Scan(&event.ID, &event.Title, &event.Location, &event.DateTime); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, events.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	return &event, nil
}

// CountAll counts events. Inside a transaction it first takes an advisory
// xact lock so concurrent creations cannot both pass the capacity check.
func (r *EventRepository) CountAll(ctx context.Context) (int64, error) {
	if r.tx != nil {
		if _, err := r.tx.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, eventsCountLockID); err != nil {
			return 0, fmt.Errorf("lock events count: %w", err)
		}
	}

	var count int64
	if err := r.queryer().QueryRow(ctx, `SELECT COUNT(*) FROM events`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count events: %w", err)
	}
	return count, nil
}

func (r *EventRepository) ListUpcoming(ctx context.Context, from time.Time) ([]events.Event, error) {
	rows, err := r.queryer().Query(ctx, `
SELECT id, title, location, date_time
  FROM events
 WHERE date_time >= $1
 ORDER BY date_time ASC, location ASC
`, from)
	if err != nil {
		return nil, fmt.Errorf("list upcoming events: %w", err)
	}
	defer rows.Close()

	var items []events.Event
	for rows.Next() {
		var event events.Event
		if err := rows.Scan(&event.ID, &event.Title, &event.Location, &event.DateTime); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		items = append(items, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list upcoming events: %w", err)
	}
	return items, nil
}

func (r *EventRepository) ListRegistrants(ctx context.Context, eventID int64) ([]events.Registrant, error) {
	rows, err := r.queryer().Query(ctx, `
SELECT u.id, u.name, u.email
  FROM users u
  JOIN registrations r ON u.id = r.user_id
 WHERE r.event_id = $1
 ORDER BY r.id
`, eventID)
	if err != nil {
		return nil, fmt.Errorf("list registrants: %w", err)
	}
	defer rows.Close()

	var items []events.Registrant
	for rows.Next() {
		var reg events.Registrant
		var email pgtype.Text
		if err := rows.Scan(&reg.ID, &reg.Name, &email); err != nil {
			return nil, fmt.Errorf("scan registrant: %w", err)
		}
		reg.Email = email.String
		items = append(items, reg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list registrants: %w", err)
	}
	return items, nil
}

func (r *EventRepository) CountRegistrations(ctx context.Context, eventID int64) (int64, error) {
	var count int64
	err := r.queryer().QueryRow(ctx, `
SELECT COUNT(*) FROM registrations WHERE event_id = $1
`, eventID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count registrations: %w", err)
	}
	return count, nil
}

func (r *EventRepository) InTx(ctx context.Context, fn func(context.Context, events.Repository) error) error {
	if r.tx != nil {
		return fn(ctx, r)
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	wrapped := &EventRepository{pool: r.pool, tx: tx}
	if err := fn(ctx, wrapped); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}
