// Package memory is an in-process InterviewRepository for local development and tests. A single
// mutex serializes writes, so every transition is a compare-and-swap on the stored status, the same
// contract the postgres store gives through conditional UPDATEs.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"interviews/backend/internal/domain"
	"interviews/backend/internal/store"
)

type InterviewRepo struct {
	mu   sync.RWMutex
	byID map[uuid.UUID]domain.Interview
	now  func() time.Time
}

func NewInterviewRepo() *InterviewRepo {
	return &InterviewRepo{
		byID: make(map[uuid.UUID]domain.Interview),
		now:  func() time.Time { return time.Now().UTC() },
	}
}

func (r *InterviewRepo) Create(ctx context.Context, iv domain.Interview) (domain.Interview, bool, error) {
	if err := ctx.Err(); err != nil {
		return domain.Interview{}, false, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if iv.ID != uuid.Nil {
		if existing, ok := r.byID[iv.ID]; ok {
			if !store.SameProposal(existing, iv) {
				return domain.Interview{}, false, store.ErrIdempotencyConflict
			}
			return clone(existing), false, nil
		}
	}

	for _, other := range r.byID {
		if other.ApplicationID == iv.ApplicationID && other.Status.IsActive() {
			return domain.Interview{}, false, store.ErrConflict
		}
	}

	if iv.ID == uuid.Nil {
		id, err := uuid.NewV7()
		if err != nil {
			return domain.Interview{}, false, err
		}
		iv.ID = id
	}
	now := r.now()
	iv.Status = domain.StatusProposed
	iv.ConfirmedTime = nil
	iv.CreatedAt = now
	iv.UpdatedAt = now

	r.byID[iv.ID] = clone(iv)
	return clone(iv), true, nil
}

func (r *InterviewRepo) Get(ctx context.Context, id uuid.UUID) (domain.Interview, error) {
	if err := ctx.Err(); err != nil {
		return domain.Interview{}, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	iv, ok := r.byID[id]
	if !ok {
		return domain.Interview{}, store.ErrNotFound
	}
	return clone(iv), nil
}

func (r *InterviewRepo) List(ctx context.Context, filter store.ListFilter) ([]domain.Interview, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.Interview, 0)
	for _, iv := range r.byID {
		if filter.EmployerID != "" && iv.EmployerID != filter.EmployerID {
			continue
		}
		if filter.ApplicantID != "" && iv.ApplicantID != filter.ApplicantID {
			continue
		}
		if filter.Status != "" && iv.Status != filter.Status {
			continue
		}
		if filter.JobID != "" && iv.JobID != filter.JobID {
			continue
		}
		out = append(out, clone(iv))
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r *InterviewRepo) Confirm(ctx context.Context, id uuid.UUID, at time.Time) (domain.Interview, error) {
	return r.transition(ctx, id, domain.StatusConfirmed, func(iv *domain.Interview) {
		t := at.UTC()
		iv.ConfirmedTime = &t
	})
}

func (r *InterviewRepo) Cancel(ctx context.Context, id uuid.UUID, cancelledBy, reason string) (domain.Interview, error) {
	return r.transition(ctx, id, domain.StatusCancelled, func(iv *domain.Interview) {
		iv.CancelledBy = cancelledBy
		iv.CancelReason = reason
	})
}

func (r *InterviewRepo) MarkOutcome(ctx context.Context, id uuid.UUID, outcome store.Outcome) (domain.Interview, error) {
	if outcome.Status != domain.StatusCompleted && outcome.Status != domain.StatusNoShow {
		return domain.Interview{}, store.ErrConflict
	}
	return r.transition(ctx, id, outcome.Status, func(iv *domain.Interview) {
		iv.Feedback = outcome.Feedback
		iv.FeedbackRating = outcome.FeedbackRating
	})
}

func (r *InterviewRepo) UpdateDetails(ctx context.Context, id uuid.UUID, details store.Details) (domain.Interview, error) {
	if err := ctx.Err(); err != nil {
		return domain.Interview{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	iv, ok := r.byID[id]
	if !ok {
		return domain.Interview{}, store.ErrNotFound
	}
	if !iv.Status.IsActive() {
		return domain.Interview{}, store.ErrConflict
	}
	applyDetails(&iv, details)
	iv.UpdatedAt = r.now()
	r.byID[id] = iv
	return clone(iv), nil
}

// transition applies mutate only when the stored status is a legal source for `to`.
func (r *InterviewRepo) transition(ctx context.Context, id uuid.UUID, to domain.Status, mutate func(iv *domain.Interview)) (domain.Interview, error) {
	if err := ctx.Err(); err != nil {
		return domain.Interview{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	iv, ok := r.byID[id]
	if !ok {
		return domain.Interview{}, store.ErrNotFound
	}
	if !domain.IsTransitionAllowed(iv.Status, to) {
		return domain.Interview{}, store.ErrConflict
	}

	mutate(&iv)
	iv.Status = to
	iv.UpdatedAt = r.now()
	r.byID[id] = iv
	return clone(iv), nil
}

func applyDetails(iv *domain.Interview, d store.Details) {
	if d.Location != nil {
		iv.Location = *d.Location
	}
	if d.VideoLink != nil {
		iv.VideoLink = *d.VideoLink
	}
	if d.Notes != nil {
		iv.Notes = *d.Notes
	}
	if d.InterviewerName != nil {
		iv.InterviewerName = *d.InterviewerName
	}
	if d.InterviewerEmail != nil {
		iv.InterviewerEmail = *d.InterviewerEmail
	}
}

func clone(iv domain.Interview) domain.Interview {
	out := iv
	out.ProposedTimes = append([]time.Time(nil), iv.ProposedTimes...)
	if iv.ConfirmedTime != nil {
		t := *iv.ConfirmedTime
		out.ConfirmedTime = &t
	}
	if iv.FeedbackRating != nil {
		r := *iv.FeedbackRating
		out.FeedbackRating = &r
	}
	return out
}
