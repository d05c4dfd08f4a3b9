package events

import (
	"context"
	"fmt"
	"time"
)

// CapacityError reports that the global event ceiling has been reached.
type CapacityError struct {
	Limit int
}

func (e CapacityError) Error() string {
	return fmt.Sprintf("maximum event limit (%d) reached", e.Limit)
}

// Limits is the process-wide capacity configuration, injected at startup so
// tests can vary it.
type Limits struct {
	MaxEvents        int
	MaxRegistrations int
}

type Service struct {
	repo   Repository
	limits Limits
	now    func() time.Time
}

func NewService(repo Repository, limits Limits) *Service {
	return &Service{repo: repo, limits: limits, now: time.Now}
}

// Create validates the input, rejects past-dated events, and inserts the
// event once the global count has been checked inside a transaction.
func (s *Service) Create(ctx context.Context, input EventInput) (*Event, error) {
	dateTime, err := ValidateInput(input)
	if err != nil {
		return nil, err
	}

	if !dateTime.After(s.now()) {
		return nil, ErrDateInPast
	}

	var created *Event
	err = s.repo.InTx(ctx, func(ctx context.Context, repo Repository) error {
		count, err := repo.CountAll(ctx)
		if err != nil {
			return err
		}
		if count >= int64(s.limits.MaxEvents) {
			return CapacityError{Limit: s.limits.MaxEvents}
		}

		created, err = repo.Create(ctx, EventCreateParams{
			Title:    input.Title,
			Location: input.Location,
			DateTime: dateTime,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// Get returns the event and everyone registered for it, in query order.
func (s *Service) Get(ctx context.Context, id int64) (*Event, []Registrant, error) {
	event, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	registrants, err := s.repo.ListRegistrants(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	return event, registrants, nil
}

// Upcoming lists events whose date-time is now or later, ordered by
// date-time then location.
func (s *Service) Upcoming(ctx context.Context) ([]Event, error) {
	return s.repo.ListUpcoming(ctx, s.now())
}

func (s *Service) Stats(ctx context.Context, id int64) (*Stats, error) {
	event, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	total, err := s.repo.CountRegistrations(ctx, id)
	if err != nil {
		return nil, err
	}

	max := s.limits.MaxRegistrations
	stats := &Stats{
		EventID:            event.ID,
		Title:              event.Title,
		TotalRegistrations: int(total),
		MaxCapacity:        max,
	}
	if remaining := max - stats.TotalRegistrations; remaining > 0 {
		stats.RemainingCapacity = remaining
	}
	if max > 0 {
		stats.PercentageUsed = int(float64(stats.TotalRegistrations)/float64(max)*100 + 0.5)
	}
	return stats, nil
}
