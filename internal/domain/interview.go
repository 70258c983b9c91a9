package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

const (
	MinProposedTimes = 1
	MaxProposedTimes = 3
)

type InterviewType string

const (
	InterviewTypeInPerson InterviewType = "in-person"
	InterviewTypeVideo    InterviewType = "video"
	InterviewTypePhone    InterviewType = "phone"
)

func (t InterviewType) IsValid() bool {
	switch t {
	case InterviewTypeInPerson, InterviewTypeVideo, InterviewTypePhone:
		return true
	default:
		return false
	}
}

type Interview struct {
	bun.BaseModel `bun:"table:interviews,alias:i"`

	ID               uuid.UUID     `bun:"id,pk,type:uuid"`
	ApplicationID    string        `bun:"application_id,notnull"`
	JobID            string        `bun:"job_id,nullzero"`
	EmployerID       string        `bun:"employer_id,notnull"`
	ApplicantID      string        `bun:"applicant_id,notnull"`
	Status           Status        `bun:"status,notnull"`
	ProposedTimes    []time.Time   `bun:"proposed_times,array,notnull"`
	ConfirmedTime    *time.Time    `bun:"confirmed_time"`
	Type             InterviewType `bun:"type,notnull"`
	Location         string        `bun:"location,nullzero"`
	VideoLink        string        `bun:"video_link,nullzero"`
	Notes            string        `bun:"notes,nullzero"`
	InterviewerName  string        `bun:"interviewer_name,nullzero"`
	InterviewerEmail string        `bun:"interviewer_email,nullzero"`
	DurationMinutes  int           `bun:"duration_minutes,notnull"`
	Feedback         string        `bun:"feedback,nullzero"`
	FeedbackRating   *int          `bun:"feedback_rating"`
	CreatedBy        string        `bun:"created_by,notnull"`
	CancelledBy      string        `bun:"cancelled_by,nullzero"`
	CancelReason     string        `bun:"cancel_reason,nullzero"`
	CreatedAt        time.Time     `bun:"created_at,notnull"`
	UpdatedAt        time.Time     `bun:"updated_at,notnull"`
}

func (iv *Interview) BeforeAppendModel(ctx context.Context, query bun.Query) error {
	now := time.Now().UTC()
	switch query.(type) {
	case *bun.InsertQuery:
		if iv.ID == uuid.Nil {
			id, err := uuid.NewV7()
			if err != nil {
				return err
			}
			iv.ID = id
		}
		if iv.CreatedAt.IsZero() {
			iv.CreatedAt = now
		}
		if iv.UpdatedAt.IsZero() {
			iv.UpdatedAt = now
		}
	case *bun.UpdateQuery:
		iv.UpdatedAt = now
	}
	return nil
}

// EffectiveTime is the confirmed time when present, otherwise the earliest proposed time.
func (iv Interview) EffectiveTime() time.Time {
	if iv.ConfirmedTime != nil {
		return iv.ConfirmedTime.UTC()
	}
	var earliest time.Time
	for i, t := range iv.ProposedTimes {
		if i == 0 || t.Before(earliest) {
			earliest = t
		}
	}
	return earliest.UTC()
}

func (iv Interview) Offers(t time.Time) bool {
	for _, p := range iv.ProposedTimes {
		if p.Equal(t) {
			return true
		}
	}
	return false
}

// IsParty reports whether userID is the employer or the applicant of the interview.
func (iv Interview) IsParty(userID string) bool {
	return userID != "" && (userID == iv.EmployerID || userID == iv.ApplicantID)
}

// Counterpart returns the party that did not act, used to address notifications.
func (iv Interview) Counterpart(userID string) string {
	if userID == iv.ApplicantID {
		return iv.EmployerID
	}
	return iv.ApplicantID
}
