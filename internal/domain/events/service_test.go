package events

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type stubRepo struct {
	createFn      func(params EventCreateParams) (*Event, error)
	getFn         func(id int64) (*Event, error)
	countFn       func() (int64, error)
	upcomingFn    func(from time.Time) ([]Event, error)
	registrantsFn func(eventID int64) ([]Registrant, error)
	countRegsFn   func(eventID int64) (int64, error)
}

func (s stubRepo) Create(_ context.Context, params EventCreateParams) (*Event, error) {
	return s.createFn(params)
}

func (s stubRepo) GetByID(_ context.Context, id int64) (*Event, error) {
	return s.getFn(id)
}

func (s stubRepo) CountAll(_ context.Context) (int64, error) {
	return s.countFn()
}

func (s stubRepo) ListUpcoming(_ context.Context, from time.Time) ([]Event, error) {
	return s.upcomingFn(from)
}

func (s stubRepo) ListRegistrants(_ context.Context, eventID int64) ([]Registrant, error) {
	return s.registrantsFn(eventID)
}

func (s stubRepo) CountRegistrations(_ context.Context, eventID int64) (int64, error) {
	return s.countRegsFn(eventID)
}

func (s stubRepo) InTx(ctx context.Context, fn func(context.Context, Repository) error) error {
	return fn(ctx, s)
}

func fixedNow() time.Time {
	return time.Date(2025, time.June, 1, 12, 0, 0, 0, time.UTC)
}

func newTestService(repo Repository, limits Limits) *Service {
	svc := NewService(repo, limits)
	svc.now = fixedNow
	return svc
}

func TestCreateSucceeds(t *testing.T) {
	var inserted EventCreateParams
	repo := stubRepo{
		countFn: func() (int64, error) { return 3, nil },
		createFn: func(params EventCreateParams) (*Event, error) {
			inserted = params
			return &Event{ID: 42, Title: params.Title, Location: params.Location, DateTime: params.DateTime}, nil
		},
	}
	svc := newTestService(repo, Limits{MaxEvents: 1000, MaxRegistrations: 100})

	created, err := svc.Create(context.Background(), EventInput{
		Title:    "Launch",
		Location: "HQ",
		DateTime: "2025-06-02T18:00:00Z",
	})
	require.NoError(t, err)
	require.Equal(t, int64(42), created.ID)
	require.Equal(t, "Launch", created.Title)
	require.Equal(t, "HQ", created.Location)
	require.Equal(t, time.Date(2025, time.June, 2, 18, 0, 0, 0, time.UTC), inserted.DateTime)
}

func TestCreateRejectsPastDate(t *testing.T) {
	repo := stubRepo{
		countFn: func() (int64, error) {
			t.Fatal("storage must not be reached for a past date")
			return 0, nil
		},
	}
	svc := newTestService(repo, Limits{MaxEvents: 1000})

	_, err := svc.Create(context.Background(), EventInput{
		Title:    "Retro",
		Location: "Anywhere",
		DateTime: "2020-01-01T10:00:00Z",
	})
	require.ErrorIs(t, err, ErrDateInPast)
}

func TestCreateRejectsDateEqualToNow(t *testing.T) {
	repo := stubRepo{}
	svc := newTestService(repo, Limits{MaxEvents: 1000})

	_, err := svc.Create(context.Background(), EventInput{
		Title:    "Now",
		Location: "Here",
		DateTime: fixedNow().Format(time.RFC3339),
	})
	require.ErrorIs(t, err, ErrDateInPast)
}

func TestCreateRejectsAtCapacity(t *testing.T) {
	repo := stubRepo{
		countFn: func() (int64, error) { return 5, nil },
		createFn: func(EventCreateParams) (*Event, error) {
			t.Fatal("insert must not happen at capacity")
			return nil, nil
		},
	}
	svc := newTestService(repo, Limits{MaxEvents: 5})

	_, err := svc.Create(context.Background(), EventInput{
		Title:    "One Too Many",
		Location: "HQ",
		DateTime: "2025-06-02T18:00:00Z",
	})

	var capErr CapacityError
	require.ErrorAs(t, err, &capErr)
	require.Equal(t, 5, capErr.Limit)
}

func TestCreatePropagatesStorageError(t *testing.T) {
	boom := errors.New("connection reset")
	repo := stubRepo{
		countFn: func() (int64, error) { return 0, boom },
	}
	svc := newTestService(repo, Limits{MaxEvents: 1000})

	_, err := svc.Create(context.Background(), EventInput{
		Title:    "Launch",
		Location: "HQ",
		DateTime: "2025-06-02T18:00:00Z",
	})
	require.ErrorIs(t, err, boom)
}

func TestGetReturnsRegistrantsInOrder(t *testing.T) {
	repo := stubRepo{
		getFn: func(id int64) (*Event, error) {
			return &Event{ID: id, Title: "Launch", Location: "HQ", DateTime: fixedNow().Add(24 * time.Hour)}, nil
		},
		registrantsFn: func(int64) ([]Registrant, error) {
			return []Registrant{
				{ID: 1, Name: "Ana", Email: "a@x.com"},
				{ID: 2, Name: "Ben", Email: "b@x.com"},
			}, nil
		},
	}
	svc := newTestService(repo, Limits{MaxRegistrations: 100})

	event, registrants, err := svc.Get(context.Background(), 7)
	require.NoError(t, err)
	require.Equal(t, int64(7), event.ID)
	require.Len(t, registrants, 2)
	require.Equal(t, "Ana", registrants[0].Name)
	require.Equal(t, "Ben", registrants[1].Name)
}

func TestGetNotFound(t *testing.T) {
	repo := stubRepo{
		getFn: func(int64) (*Event, error) { return nil, ErrNotFound },
	}
	svc := newTestService(repo, Limits{})

	_, _, err := svc.Get(context.Background(), 99)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestStatsZeroRegistrations(t *testing.T) {
	repo := stubRepo{
		getFn: func(id int64) (*Event, error) {
			return &Event{ID: id, Title: "Launch"}, nil
		},
		countRegsFn: func(int64) (int64, error) { return 0, nil },
	}
	svc := newTestService(repo, Limits{MaxRegistrations: 100})

	stats, err := svc.Stats(context.Background(), 7)
	require.NoError(t, err)
	require.Equal(t, 0, stats.TotalRegistrations)
	require.Equal(t, 100, stats.MaxCapacity)
	require.Equal(t, 100, stats.RemainingCapacity)
	require.Equal(t, 0, stats.PercentageUsed)
}

func TestStatsRoundsPercentage(t *testing.T) {
	cases := []struct {
		name      string
		total     int64
		max       int
		remaining int
		pct       int
	}{
		{"one third", 1, 3, 2, 33},
		{"two thirds", 2, 3, 1, 67},
		{"full", 100, 100, 0, 100},
		{"over full", 120, 100, 0, 120},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			repo := stubRepo{
				getFn:       func(id int64) (*Event, error) { return &Event{ID: id, Title: "Launch"}, nil },
				countRegsFn: func(int64) (int64, error) { return tc.total, nil },
			}
			svc := newTestService(repo, Limits{MaxRegistrations: tc.max})

			stats, err := svc.Stats(context.Background(), 1)
			require.NoError(t, err)
			require.Equal(t, tc.remaining, stats.RemainingCapacity)
			require.Equal(t, tc.pct, stats.PercentageUsed)
		})
	}
}

func TestUpcomingUsesCurrentTime(t *testing.T) {
	var got time.Time
	repo := stubRepo{
		upcomingFn: func(from time.Time) ([]Event, error) {
			got = from
			return nil, nil
		},
	}
	svc := newTestService(repo, Limits{})

	_, err := svc.Upcoming(context.Background())
	require.NoError(t, err)
	require.Equal(t, fixedNow(), got)
}
