package registrations

import (
	"context"
	"errors"
	"time"
)

var (
	ErrEventNotFound        = errors.New("event not found")
	ErrUserNotFound         = errors.New("user not found")
	ErrRegistrationNotFound = errors.New("registration not found")

	// ErrEventEnded is returned when the target event's date-time has passed.
	ErrEventEnded = errors.New("event has already occurred")

	// ErrEventFull is returned when the event is at the shared per-event
	// registration ceiling.
	ErrEventFull = errors.New("event is at full capacity")

	// ErrAlreadyRegistered is returned for a duplicate (user, event) pair,
	// whether caught by the advisory lookup or by the unique constraint.
	ErrAlreadyRegistered = errors.New("user already registered for this event")
)

type User struct {
	ID    int64
	Name  string
	Email string
}

type Registration struct {
	ID      int64
	UserID  int64
	EventID int64
}

// EventRecord is the slice of the event row the workflow needs: identity for
// error attribution and date-time for the temporal check.
type EventRecord struct {
	ID       int64
	DateTime time.Time
}

type UserCreateParams struct {
	Name  string
	Email string
}

// Repository covers every row the registration workflow touches. GetEventForUpdate
// must lock the event row when called inside a transaction so concurrent
// registrations for the same event serialize around the capacity count.
type Repository interface {
	GetEventForUpdate(ctx context.Context, eventID int64) (*EventRecord, error)
	CountForEvent(ctx context.Context, eventID int64) (int64, error)

	FindUserByEmail(ctx context.Context, email string) (*User, error)
	CreateUser(ctx context.Context, params UserCreateParams) (*User, error)
	UserExists(ctx context.Context, userID int64) (bool, error)
	EventExists(ctx context.Context, eventID int64) (bool, error)

	Exists(ctx context.Context, userID, eventID int64) (bool, error)
	Create(ctx context.Context, userID, eventID int64) (*Registration, error)
	Delete(ctx context.Context, userID, eventID int64) error

	InTx(ctx context.Context, fn func(context.Context, Repository) error) error
}
