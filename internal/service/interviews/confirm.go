package interviews

import (
	"context"
	"time"

	"github.com/google/uuid"

	"interviews/backend/internal/auth"
	"interviews/backend/internal/domain"
	"interviews/backend/internal/notify"
)

// Confirm resolves a proposed interview to one of its offered times. Only the
// applicant may confirm. The store applies the change only while the record is
// still proposed, so of several concurrent confirmations exactly one succeeds and
// the others get store.ErrConflict.
func (s *Service) Confirm(ctx context.Context, actor auth.Actor, id uuid.UUID, chosen time.Time) (domain.Interview, error) {
	if err := requireActor(actor); err != nil {
		return domain.Interview{}, err
	}
	if chosen.IsZero() {
		return domain.Interview{}, validationError("confirmed_time is required")
	}
	chosen = normalizeTime(chosen)

	iv, err := s.load(ctx, id)
	if err != nil {
		return domain.Interview{}, err
	}
	if actor.ID != iv.ApplicantID {
		return domain.Interview{}, ErrForbidden
	}
	if !iv.Offers(chosen) {
		return domain.Interview{}, validationError("confirmed_time is not one of the proposed times")
	}

	out, err := s.repo.Confirm(ctx, id, chosen)
	if err != nil {
		return domain.Interview{}, err
	}

	s.logger.InfoContext(ctx, "interview confirmed",
		"interview_id", out.ID.String(),
		"confirmed_time", chosen.Format(time.RFC3339),
	)
	s.emit(ctx, notify.EventConfirmed, out, out.EmployerID)
	return out, nil
}
