package events

import (
	"context"
	"errors"
	"time"
)

var ErrNotFound = errors.New("event not found")

var ErrDateInPast = errors.New("event date is in the past")

type Event struct {
	ID       int64
	Title    string
	Location string
	DateTime time.Time
}

type Registrant struct {
	ID    int64
	Name  string
	Email string
}

type EventCreateParams struct {
	Title    string
	Location string
	DateTime time.Time
}

// Stats summarizes registration load for one event against the shared
// per-event capacity ceiling.
type Stats struct {
	EventID            int64
	Title              string
	TotalRegistrations int
	MaxCapacity        int
	RemainingCapacity  int
	PercentageUsed     int
}

type Repository interface {
	Create(ctx context.Context, params EventCreateParams) (*Event, error)
	GetByID(ctx context.Context, id int64) (*Event, error)
	// CountAll reports the total number of events. Inside a transaction the
	// implementation serializes concurrent counters so a count-then-insert
	// sequence stays accurate.
	CountAll(ctx context.Context) (int64, error)
	ListUpcoming(ctx context.Context, from time.Time) ([]Event, error)
	ListRegistrants(ctx context.Context, eventID int64) ([]Registrant, error)
	CountRegistrations(ctx context.Context, eventID int64) (int64, error)

	InTx(ctx context.Context, fn func(context.Context, Repository) error) error
}
