package interviews

import (
	"context"

	"github.com/google/uuid"

	"interviews/backend/internal/auth"
	"interviews/backend/internal/domain"
	"interviews/backend/internal/notify"
	"interviews/backend/internal/store"
)

// Cancel moves a proposed or confirmed interview to cancelled. Either party or an
// admin may cancel; a second cancel fails with store.ErrConflict.
func (s *Service) Cancel(ctx context.Context, actor auth.Actor, id uuid.UUID, reason string) (domain.Interview, error) {
	if err := requireActor(actor); err != nil {
		return domain.Interview{}, err
	}
	reason, err := cleanField("reason", reason, maxReasonLen)
	if err != nil {
		return domain.Interview{}, err
	}

	iv, err := s.load(ctx, id)
	if err != nil {
		return domain.Interview{}, err
	}
	if !canView(actor, iv) {
		return domain.Interview{}, ErrForbidden
	}

	out, err := s.repo.Cancel(ctx, id, actor.ID, reason)
	if err != nil {
		return domain.Interview{}, err
	}

	s.logger.InfoContext(ctx, "interview cancelled",
		"interview_id", out.ID.String(),
		"cancelled_by", actor.ID,
	)
	if iv.IsParty(actor.ID) {
		s.emit(ctx, notify.EventCancelled, out, out.Counterpart(actor.ID))
	} else {
		s.emit(ctx, notify.EventCancelled, out, out.EmployerID, out.ApplicantID)
	}
	return out, nil
}

type CompleteInput struct {
	Feedback       string
	FeedbackRating *int
}

func (s *Service) MarkCompleted(ctx context.Context, actor auth.Actor, id uuid.UUID, in CompleteInput) (domain.Interview, error) {
	feedback, err := cleanField("feedback", in.Feedback, maxFeedbackLen)
	if err != nil {
		return domain.Interview{}, err
	}
	if in.FeedbackRating != nil && (*in.FeedbackRating < 1 || *in.FeedbackRating > 5) {
		return domain.Interview{}, validationError("feedback_rating must be between 1 and 5")
	}
	return s.markOutcome(ctx, actor, id, store.Outcome{
		Status:         domain.StatusCompleted,
		Feedback:       feedback,
		FeedbackRating: in.FeedbackRating,
	})
}

func (s *Service) MarkNoShow(ctx context.Context, actor auth.Actor, id uuid.UUID) (domain.Interview, error) {
	return s.markOutcome(ctx, actor, id, store.Outcome{Status: domain.StatusNoShow})
}

func (s *Service) markOutcome(ctx context.Context, actor auth.Actor, id uuid.UUID, outcome store.Outcome) (domain.Interview, error) {
	if err := requireActor(actor); err != nil {
		return domain.Interview{}, err
	}

	iv, err := s.load(ctx, id)
	if err != nil {
		return domain.Interview{}, err
	}
	if !canManage(actor, iv) {
		return domain.Interview{}, ErrForbidden
	}

	out, err := s.repo.MarkOutcome(ctx, id, outcome)
	if err != nil {
		return domain.Interview{}, err
	}

	s.logger.InfoContext(ctx, "interview outcome recorded",
		"interview_id", out.ID.String(),
		"status", string(out.Status),
		"marked_by", actor.ID,
	)
	typ := notify.EventCompleted
	if outcome.Status == domain.StatusNoShow {
		typ = notify.EventNoShow
	}
	s.emit(ctx, typ, out, out.ApplicantID)
	return out, nil
}

// DetailsInput edits interview logistics. Nil fields are left unchanged; an empty
// string clears the field.
type DetailsInput struct {
	Location         *string
	VideoLink        *string
	Notes            *string
	InterviewerName  *string
	InterviewerEmail *string
}

func (s *Service) UpdateDetails(ctx context.Context, actor auth.Actor, id uuid.UUID, in DetailsInput) (domain.Interview, error) {
	if err := requireActor(actor); err != nil {
		return domain.Interview{}, err
	}

	details, err := s.cleanDetails(in)
	if err != nil {
		return domain.Interview{}, err
	}
	if details.IsEmpty() {
		return domain.Interview{}, validationError("no fields to update")
	}

	iv, err := s.load(ctx, id)
	if err != nil {
		return domain.Interview{}, err
	}
	if !canManage(actor, iv) {
		return domain.Interview{}, ErrForbidden
	}

	out, err := s.repo.UpdateDetails(ctx, id, details)
	if err != nil {
		return domain.Interview{}, err
	}

	s.logger.InfoContext(ctx, "interview details updated", "interview_id", out.ID.String())
	s.emit(ctx, notify.EventUpdated, out, out.ApplicantID)
	return out, nil
}

func (s *Service) cleanDetails(in DetailsInput) (store.Details, error) {
	var d store.Details
	if in.Location != nil {
		v, err := cleanField("location", *in.Location, maxLocationLen)
		if err != nil {
			return store.Details{}, err
		}
		d.Location = &v
	}
	if in.VideoLink != nil {
		v, err := cleanLink(*in.VideoLink)
		if err != nil {
			return store.Details{}, err
		}
		d.VideoLink = &v
	}
	if in.Notes != nil {
		v, err := cleanField("notes", *in.Notes, maxNotesLen)
		if err != nil {
			return store.Details{}, err
		}
		d.Notes = &v
	}
	if in.InterviewerName != nil {
		v, err := cleanField("interviewer_name", *in.InterviewerName, maxNameLen)
		if err != nil {
			return store.Details{}, err
		}
		d.InterviewerName = &v
	}
	if in.InterviewerEmail != nil {
		v, err := s.cleanEmail(*in.InterviewerEmail)
		if err != nil {
			return store.Details{}, err
		}
		d.InterviewerEmail = &v
	}
	return d, nil
}
