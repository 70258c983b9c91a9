package interviews

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"interviews/backend/internal/auth"
	"interviews/backend/internal/domain"
	"interviews/backend/internal/notify"
)

const maxDurationMinutes = 24 * 60

type ProposeInput struct {
	ApplicationID    string
	ProposedTimes    []time.Time
	Type             domain.InterviewType
	Location         string
	VideoLink        string
	Notes            string
	DurationMinutes  int
	InterviewerName  string
	InterviewerEmail string
	IdempotencyKey   string
}

// Propose creates a proposed interview for an application owned by the actor.
func (s *Service) Propose(ctx context.Context, actor auth.Actor, in ProposeInput) (domain.Interview, error) {
	if err := requireActor(actor); err != nil {
		return domain.Interview{}, err
	}
	if actor.Role != auth.RoleEmployer && !actor.IsAdmin() {
		return domain.Interview{}, ErrForbidden
	}

	iv, err := s.buildProposal(in)
	if err != nil {
		return domain.Interview{}, err
	}

	key := strings.TrimSpace(in.IdempotencyKey)
	if key != "" {
		if len(key) > maxIdemKeyLen {
			return domain.Interview{}, validationError("idempotency_key too long")
		}
		iv.ID = uuid.NewSHA1(uuid.NameSpaceOID, []byte("interviews:propose:"+actor.ID+":"+key))
	}

	app, err := s.apps.GetApplication(ctx, iv.ApplicationID)
	if err != nil {
		return domain.Interview{}, err
	}
	if !actor.IsAdmin() && app.EmployerID != actor.ID {
		return domain.Interview{}, ErrForbidden
	}

	iv.JobID = app.JobID
	iv.EmployerID = app.EmployerID
	iv.ApplicantID = app.ApplicantID
	iv.CreatedBy = actor.ID

	if iv.Type == domain.InterviewTypeVideo && iv.VideoLink == "" {
		s.logger.WarnContext(ctx, "video interview proposed without a link", "application_id", iv.ApplicationID)
	}
	if iv.Type == domain.InterviewTypeInPerson && iv.Location == "" {
		s.logger.WarnContext(ctx, "in-person interview proposed without a location", "application_id", iv.ApplicationID)
	}

	out, created, err := s.repo.Create(ctx, iv)
	if err != nil {
		return domain.Interview{}, err
	}
	if !created {
		s.logger.InfoContext(ctx, "interview proposal replayed", "interview_id", out.ID.String())
		return out, nil
	}

	s.logger.InfoContext(ctx, "interview proposed",
		"interview_id", out.ID.String(),
		"application_id", out.ApplicationID,
		"slots", len(out.ProposedTimes),
	)
	s.emit(ctx, notify.EventProposed, out, out.ApplicantID)
	return out, nil
}

func (s *Service) buildProposal(in ProposeInput) (domain.Interview, error) {
	applicationID := strings.TrimSpace(in.ApplicationID)
	if applicationID == "" {
		return domain.Interview{}, validationError("application_id is required")
	}

	times, err := s.checkProposedTimes(in.ProposedTimes)
	if err != nil {
		return domain.Interview{}, err
	}

	if !in.Type.IsValid() {
		return domain.Interview{}, validationError("type must be one of in-person, video, phone")
	}
	if in.DurationMinutes <= 0 {
		return domain.Interview{}, validationError("duration_minutes must be positive")
	}
	if in.DurationMinutes > maxDurationMinutes {
		return domain.Interview{}, validationError("duration too long")
	}

	location, err := cleanField("location", in.Location, maxLocationLen)
	if err != nil {
		return domain.Interview{}, err
	}
	notes, err := cleanField("notes", in.Notes, maxNotesLen)
	if err != nil {
		return domain.Interview{}, err
	}
	name, err := cleanField("interviewer_name", in.InterviewerName, maxNameLen)
	if err != nil {
		return domain.Interview{}, err
	}
	link, err := cleanLink(in.VideoLink)
	if err != nil {
		return domain.Interview{}, err
	}
	email, err := s.cleanEmail(in.InterviewerEmail)
	if err != nil {
		return domain.Interview{}, err
	}

	return domain.Interview{
		ApplicationID:    applicationID,
		Status:           domain.StatusProposed,
		ProposedTimes:    times,
		Type:             in.Type,
		Location:         location,
		VideoLink:        link,
		Notes:            notes,
		InterviewerName:  name,
		InterviewerEmail: email,
		DurationMinutes:  in.DurationMinutes,
	}, nil
}

func (s *Service) checkProposedTimes(in []time.Time) ([]time.Time, error) {
	if len(in) < domain.MinProposedTimes {
		return nil, validationError("at least one proposed time is required")
	}
	if len(in) > domain.MaxProposedTimes {
		return nil, validationError("at most 3 proposed times are allowed")
	}

	now := s.now()
	out := make([]time.Time, 0, len(in))
	for _, t := range in {
		if t.IsZero() {
			return nil, validationError("proposed times must be valid date-times")
		}
		t = normalizeTime(t)
		if !t.After(now) {
			return nil, validationError("proposed times must be in the future")
		}
		for _, seen := range out {
			if seen.Equal(t) {
				return nil, validationError("proposed times must be distinct")
			}
		}
		out = append(out, t)
	}
	return out, nil
}
