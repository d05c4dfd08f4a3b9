package registrations

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/eventregistry/server/internal/validation"
)

// RegisterInput identifies the registrant by email; the user row is created
// lazily the first time an email is seen.
type RegisterInput struct {
	Name    string `json:"name" validate:"required,max=100"`
	Email   string `json:"email" validate:"required,email,max=150"`
	EventID int64  `json:"eventId" validate:"required"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

type Service struct {
	repo        Repository
	maxPerEvent int
	now         func() time.Time
}

func NewService(repo Repository, maxPerEvent int) *Service {
	return &Service{repo: repo, maxPerEvent: maxPerEvent, now: time.Now}
}

// Register runs the registration workflow in one transaction: event fetched
// under a row lock, temporal and capacity checks, idempotent user resolution
// (name mismatches on an existing email are ignored), duplicate guard, then
// the insert. The unique constraint on (user_id, event_id) backs the
// duplicate guard under concurrency.
func (s *Service) Register(ctx context.Context, input RegisterInput) error {
	if err := validateRegisterInput(input); err != nil {
		return err
	}

	return s.repo.InTx(ctx, func(ctx context.Context, repo Repository) error {
		event, err := repo.GetEventForUpdate(ctx, input.EventID)
		if err != nil {
			return err
		}

		if event.DateTime.Before(s.now()) {
			return ErrEventEnded
		}

		count, err := repo.CountForEvent(ctx, input.EventID)
		if err != nil {
			return err
		}
		if count >= int64(s.maxPerEvent) {
			return ErrEventFull
		}

		user, err := repo.FindUserByEmail(ctx, input.Email)
		if errors.Is(err, ErrUserNotFound) {
			user, err = repo.CreateUser(ctx, UserCreateParams{Name: input.Name, Email: input.Email})
		}
		if err != nil {
			return err
		}

		exists, err := repo.Exists(ctx, user.ID, input.EventID)
		if err != nil {
			return err
		}
		if exists {
			return ErrAlreadyRegistered
		}

		_, err = repo.Create(ctx, user.ID, input.EventID)
		return err
	})
}

// Cancel verifies user, event, and registration in that order so the caller
// learns exactly which one is missing, then deletes the registration.
func (s *Service) Cancel(ctx context.Context, userID, eventID int64) error {
	userOK, err := s.repo.UserExists(ctx, userID)
	if err != nil {
		return err
	}
	if !userOK {
		return ErrUserNotFound
	}

	eventOK, err := s.repo.EventExists(ctx, eventID)
	if err != nil {
		return err
	}
	if !eventOK {
		return ErrEventNotFound
	}

	exists, err := s.repo.Exists(ctx, userID, eventID)
	if err != nil {
		return err
	}
	if !exists {
		return ErrRegistrationNotFound
	}

	return s.repo.Delete(ctx, userID, eventID)
}

func validateRegisterInput(input RegisterInput) error {
	err := validate.Struct(input)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	fields := make([]validation.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, validation.FieldError{
			Field:   jsonField(fe.Field()),
			Message: validation.MessageForTag(fe),
		})
	}
	return validation.Error{Fields: fields}
}

func jsonField(structField string) string {
	switch structField {
	case "Name":
		return "name"
	case "Email":
		return "email"
	case "EventID":
		return "eventId"
	}
	return strings.ToLower(structField)
}
