package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"interviews/backend/internal/domain"
	"interviews/backend/internal/store"
)

type InterviewRepo struct {
	db *bun.DB
}

func NewInterviewRepo(db *bun.DB) *InterviewRepo {
	return &InterviewRepo{db: db}
}

func (r *InterviewRepo) Create(ctx context.Context, iv domain.Interview) (domain.Interview, bool, error) {
	m := iv
	m.Status = domain.StatusProposed
	m.ConfirmedTime = nil
	m.ProposedTimes = utcTimes(iv.ProposedTimes)

	// A repeated id means a retried proposal; the active-slot index still raises 23505.
	res, err := r.db.NewInsert().
		Model(&m).
		On("CONFLICT (id) DO NOTHING").
		Exec(ctx)
	if err != nil {
		return domain.Interview{}, false, classify(err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return domain.Interview{}, false, classify(err)
	}
	if affected == 1 {
		return m, true, nil
	}

	existing, err := r.Get(ctx, m.ID)
	if err != nil {
		return domain.Interview{}, false, err
	}
	if !store.SameProposal(existing, m) {
		return domain.Interview{}, false, store.ErrIdempotencyConflict
	}
	return existing, false, nil
}

func (r *InterviewRepo) Get(ctx context.Context, id uuid.UUID) (domain.Interview, error) {
	var out domain.Interview
	err := r.db.NewSelect().
		Model(&out).
		Where("id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return domain.Interview{}, classify(err)
	}
	return out, nil
}

func (r *InterviewRepo) List(ctx context.Context, filter store.ListFilter) ([]domain.Interview, error) {
	rows := make([]domain.Interview, 0)
	q := r.db.NewSelect().Model(&rows)
	if filter.EmployerID != "" {
		q = q.Where("employer_id = ?", filter.EmployerID)
	}
	if filter.ApplicantID != "" {
		q = q.Where("applicant_id = ?", filter.ApplicantID)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.JobID != "" {
		q = q.Where("job_id = ?", filter.JobID)
	}
	if err := q.OrderExpr("created_at DESC").Scan(ctx); err != nil {
		return nil, classify(err)
	}
	return rows, nil
}

func (r *InterviewRepo) Confirm(ctx context.Context, id uuid.UUID, at time.Time) (domain.Interview, error) {
	return r.transition(ctx, id, domain.StatusConfirmed, func(q *bun.UpdateQuery) *bun.UpdateQuery {
		return q.Set("confirmed_time = ?", at.UTC())
	})
}

func (r *InterviewRepo) Cancel(ctx context.Context, id uuid.UUID, cancelledBy, reason string) (domain.Interview, error) {
	return r.transition(ctx, id, domain.StatusCancelled, func(q *bun.UpdateQuery) *bun.UpdateQuery {
		return q.
			Set("cancelled_by = ?", cancelledBy).
			Set("cancel_reason = NULLIF(?, '')", reason)
	})
}

func (r *InterviewRepo) MarkOutcome(ctx context.Context, id uuid.UUID, outcome store.Outcome) (domain.Interview, error) {
	if outcome.Status != domain.StatusCompleted && outcome.Status != domain.StatusNoShow {
		return domain.Interview{}, store.ErrConflict
	}
	return r.transition(ctx, id, outcome.Status, func(q *bun.UpdateQuery) *bun.UpdateQuery {
		return q.
			Set("feedback = NULLIF(?, '')", outcome.Feedback).
			Set("feedback_rating = ?", outcome.FeedbackRating)
	})
}

func (r *InterviewRepo) UpdateDetails(ctx context.Context, id uuid.UUID, details store.Details) (domain.Interview, error) {
	q := r.db.NewUpdate().Model((*domain.Interview)(nil))
	q = setOptional(q, "location", details.Location)
	q = setOptional(q, "video_link", details.VideoLink)
	q = setOptional(q, "notes", details.Notes)
	q = setOptional(q, "interviewer_name", details.InterviewerName)
	q = setOptional(q, "interviewer_email", details.InterviewerEmail)

	var out domain.Interview
	err := q.
		Set("updated_at = ?", time.Now().UTC()).
		Where("id = ?", id).
		Where("status IN (?)", bun.In([]domain.Status{domain.StatusProposed, domain.StatusConfirmed})).
		Returning("*").
		Scan(ctx, &out)
	if err != nil {
		return domain.Interview{}, r.missedWrite(ctx, id, err)
	}
	return out, nil
}

// transition is the only write path for status changes: one UPDATE guarded on the
// statuses that may legally move to `to`. Zero rows means the guard failed.
func (r *InterviewRepo) transition(ctx context.Context, id uuid.UUID, to domain.Status, set func(q *bun.UpdateQuery) *bun.UpdateQuery) (domain.Interview, error) {
	sources := domain.SourcesOf(to)
	if len(sources) == 0 {
		return domain.Interview{}, store.ErrConflict
	}

	q := r.db.NewUpdate().
		Model((*domain.Interview)(nil)).
		Set("status = ?", to).
		Set("updated_at = ?", time.Now().UTC())
	q = set(q)

	var out domain.Interview
	err := q.
		Where("id = ?", id).
		Where("status IN (?)", bun.In(sources)).
		Returning("*").
		Scan(ctx, &out)
	if err != nil {
		return domain.Interview{}, r.missedWrite(ctx, id, err)
	}
	return out, nil
}

// missedWrite tells a failed guard (ErrConflict) from a missing row (ErrNotFound).
// Interviews are never deleted, so existence after the fact is conclusive.
func (r *InterviewRepo) missedWrite(ctx context.Context, id uuid.UUID, err error) error {
	if !errors.Is(err, sql.ErrNoRows) {
		return classify(err)
	}
	exists, existsErr := r.db.NewSelect().
		Model((*domain.Interview)(nil)).
		Where("id = ?", id).
		Exists(ctx)
	if existsErr != nil {
		return classify(existsErr)
	}
	if !exists {
		return store.ErrNotFound
	}
	return store.ErrConflict
}

func setOptional(q *bun.UpdateQuery, column string, v *string) *bun.UpdateQuery {
	if v == nil {
		return q
	}
	return q.Set("? = NULLIF(?, '')", bun.Ident(column), *v)
}

func utcTimes(in []time.Time) []time.Time {
	out := make([]time.Time, len(in))
	for i, t := range in {
		out[i] = t.UTC()
	}
	return out
}
