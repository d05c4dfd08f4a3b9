package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/eventregistry/server/internal/domain/registrations"
)

var _ registrations.Repository = (*RegistrationRepository)(nil)

type RegistrationRepository struct {
	pool *pgxpool.Pool
	tx   pgx.Tx
}

func NewRegistrationRepository(pool *pgxpool.Pool) *RegistrationRepository {
	return &RegistrationRepository{pool: pool}
}

func (r *RegistrationRepository) queryer() queryer {
	if r.tx != nil {
		return r.tx
	}
	return r.pool
}

// GetEventForUpdate fetches the event row, locking it when inside a
// transaction so concurrent registrations for the same event serialize
// around the capacity count.
func (r *RegistrationRepository) GetEventForUpdate(ctx context.Context, eventID int64) (*registrations.EventRecord, error) {
	query := `SELECT id, date_time FROM events WHERE id = $1`
	if r.tx != nil {
		query += ` FOR UPDATE`
	}

	var record registrations.EventRecord
	if err := r.queryer().QueryRow(ctx, query, eventID).Scan(&record.ID, &record.DateTime); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, registrations.ErrEventNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	return &record, nil
}

func (r *RegistrationRepository) CountForEvent(ctx context.Context, eventID int64) (int64, error) {
	var count int64
	err := r.queryer().QueryRow(ctx, `
SELECT COUNT(*) FROM registrations WHERE event_id = $1
`, eventID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count registrations: %w", err)
	}
	return count, nil
}

func (r *RegistrationRepository) FindUserByEmail(ctx context.Context, email string) (*registrations.User, error) {
	row := r.queryer().QueryRow(ctx, `
SELECT id, name, email FROM users WHERE email = $1
`, email)

	var user registrations.User
	var storedEmail pgtype.Text
	if err := row.Scan(&user.ID, &user.Name, &storedEmail); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, registrations.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user by email: %w", err)
	}
	user.Email = storedEmail.String
	return &user, nil
}

// CreateUser inserts the user row. A concurrent registration may have
// inserted the same email between the caller's lookup and this insert;
// ON CONFLICT DO NOTHING keeps the transaction alive in that case and the
// existing row is fetched instead.
func (r *RegistrationRepository) CreateUser(ctx context.Context, params registrations.UserCreateParams) (*registrations.User, error) {
	row := r.queryer().QueryRow(ctx, `
INSERT INTO users (name, email) VALUES ($1, $2)
ON CONFLICT (email) DO NOTHING
RETURNING id
`, params.Name, params.Email)

	user := registrations.User{Name: params.Name, Email: params.Email}
	if err := row.Scan(&user.ID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return r.FindUserByEmail(ctx, params.Email)
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return &user, nil
}

func (r *RegistrationRepository) UserExists(ctx context.Context, userID int64) (bool, error) {
	var exists bool
	err := r.queryer().QueryRow(ctx, `
SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)
`, userID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check user: %w", err)
	}
	return exists, nil
}

func (r *RegistrationRepository) EventExists(ctx context.Context, eventID int64) (bool, error) {
	var exists bool
	err := r.queryer().QueryRow(ctx, `
SELECT EXISTS (SELECT 1 FROM events WHERE id = $1)
`, eventID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check event: %w", err)
	}
	return exists, nil
}

func (r *RegistrationRepository) Exists(ctx context.Context, userID, eventID int64) (bool, error) {
	var exists bool
	err := r.queryer().QueryRow(ctx, `
SELECT EXISTS (SELECT 1 FROM registrations WHERE user_id = $1 AND event_id = $2)
`, userID, eventID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check registration: %w", err)
	}
	return exists, nil
}

func (r *RegistrationRepository) Create(ctx context.Context, userID, eventID int64) (*registrations.Registration, error) {
	row := r.queryer().QueryRow(ctx, `
INSERT INTO registrations (user_id, event_id) VALUES ($1, $2) RETURNING id
`, userID, eventID)

	reg := registrations.Registration{UserID: userID, EventID: eventID}
	if err := row.Scan(&reg.ID); err != nil {
		if uniqueViolation(err) {
			return nil, registrations.ErrAlreadyRegistered
		}
		return nil, fmt.Errorf("insert registration: %w", err)
	}
	return &reg, nil
}

func (r *RegistrationRepository) Delete(ctx context.Context, userID, eventID int64) error {
	_, err := r.queryer().Exec(ctx, `
DELETE FROM registrations WHERE user_id = $1 AND event_id = $2
`, userID, eventID)
	if err != nil {
		return fmt.Errorf("delete registration: %w", err)
	}
	return nil
}

func (r *RegistrationRepository) InTx(ctx context.Context, fn func(context.Context, registrations.Repository) error) error {
	if r.tx != nil {
		return fn(ctx, r)
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	wrapped := &RegistrationRepository{pool: r.pool, tx: tx}
	if err := fn(ctx, wrapped); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}
