// Package interviews implements interview proposal, confirmation, lifecycle and queries.
// Every mutation is validated here and then handed to the store as one conditional
// write; the service never decides a transition from a value it read earlier.
package interviews

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"interviews/backend/internal/auth"
	"interviews/backend/internal/domain"
	"interviews/backend/internal/notify"
	"interviews/backend/internal/store"
)

type ValidationError struct {
	msg string
}

func (e *ValidationError) Error() string {
	return e.msg
}

func validationError(msg string) error {
	return &ValidationError{msg: msg}
}

// ErrForbidden means the actor is not a party allowed to perform the operation.
var ErrForbidden = errors.New("forbidden")

type Service struct {
	repo     store.InterviewRepository
	apps     store.ApplicationLookup
	notifier notify.Notifier
	logger   *slog.Logger
	validate *validator.Validate
	now      func() time.Time
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

func NewService(repo store.InterviewRepository, apps store.ApplicationLookup, notifier notify.Notifier, opts ...Option) *Service {
	if notifier == nil {
		notifier = notify.Nop{}
	}
	s := &Service{
		repo:     repo,
		apps:     apps,
		notifier: notifier,
		logger:   slog.Default(),
		validate: validator.New(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("component", "service.interviews")
	return s
}

func (s *Service) emit(ctx context.Context, typ notify.EventType, iv domain.Interview, recipients ...string) {
	for _, r := range recipients {
		if r == "" {
			continue
		}
		s.notifier.Notify(ctx, notify.Event{
			Type:          typ,
			InterviewID:   iv.ID,
			Recipient:     r,
			ApplicationID: iv.ApplicationID,
			OccurredAt:    s.now().UTC(),
		})
	}
}

// load fetches the record for authorization and input checks only. Parties and
// proposed times never change after creation, so they are safe to check from a read.
func (s *Service) load(ctx context.Context, id uuid.UUID) (domain.Interview, error) {
	if id == uuid.Nil {
		return domain.Interview{}, validationError("interview_id is required")
	}
	return s.repo.Get(ctx, id)
}

func requireActor(actor auth.Actor) error {
	if actor.ID == "" {
		return ErrForbidden
	}
	return nil
}

func canManage(actor auth.Actor, iv domain.Interview) bool {
	return actor.IsAdmin() || (actor.ID != "" && actor.ID == iv.EmployerID)
}

func canView(actor auth.Actor, iv domain.Interview) bool {
	return actor.IsAdmin() || iv.IsParty(actor.ID)
}

// normalizeTime keeps times comparable with what the database returns.
func normalizeTime(t time.Time) time.Time {
	return t.UTC().Truncate(time.Microsecond)
}
