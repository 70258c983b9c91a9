package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"interviews/backend/internal/domain"
)

// InterviewRepository is the single source of truth for interviews. Every mutating method is one
// conditional write guarded on the record's current status: it either applies atomically or
// reports ErrConflict without touching the record.
type InterviewRepository interface {
	// Create inserts a proposed interview and reports whether a new row was written. A retried
	// proposal under the same id returns the stored record with created false. It fails with
	// ErrConflict when the application already has an active interview, and with
	// ErrIdempotencyConflict when the id is reused for a different proposal.
	Create(ctx context.Context, iv domain.Interview) (out domain.Interview, created bool, err error)
	Get(ctx context.Context, id uuid.UUID) (domain.Interview, error)
	List(ctx context.Context, filter ListFilter) ([]domain.Interview, error)

	Confirm(ctx context.Context, id uuid.UUID, at time.Time) (domain.Interview, error)
	Cancel(ctx context.Context, id uuid.UUID, cancelledBy, reason string) (domain.Interview, error)
	MarkOutcome(ctx context.Context, id uuid.UUID, outcome Outcome) (domain.Interview, error)
	UpdateDetails(ctx context.Context, id uuid.UUID, details Details) (domain.Interview, error)
}

// ListFilter selects interviews by party. Exactly one of EmployerID and ApplicantID is set,
// unless All is true (admin listing).
type ListFilter struct {
	EmployerID  string
	ApplicantID string
	All         bool
	Status      domain.Status
	JobID       string
}

type Outcome struct {
	Status         domain.Status
	Feedback       string
	FeedbackRating *int
}

// Details carries logistics edits. Nil fields are left unchanged.
type Details struct {
	Location         *string
	VideoLink        *string
	Notes            *string
	InterviewerName  *string
	InterviewerEmail *string
}

func (d Details) IsEmpty() bool {
	return d.Location == nil && d.VideoLink == nil && d.Notes == nil && d.InterviewerName == nil && d.InterviewerEmail == nil
}

// SameProposal reports whether two interviews describe the same proposal. It backs idempotent
// retries of Create.
func SameProposal(a, b domain.Interview) bool {
	if a.ApplicationID != b.ApplicationID ||
		a.EmployerID != b.EmployerID ||
		a.ApplicantID != b.ApplicantID ||
		a.Type != b.Type ||
		a.Location != b.Location ||
		a.VideoLink != b.VideoLink ||
		a.Notes != b.Notes ||
		a.InterviewerName != b.InterviewerName ||
		a.InterviewerEmail != b.InterviewerEmail ||
		a.DurationMinutes != b.DurationMinutes ||
		a.CreatedBy != b.CreatedBy ||
		len(a.ProposedTimes) != len(b.ProposedTimes) {
		return false
	}
	for i := range a.ProposedTimes {
		if !a.ProposedTimes[i].Equal(b.ProposedTimes[i]) {
			return false
		}
	}
	return true
}
