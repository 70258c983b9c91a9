package interviews

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"interviews/backend/internal/auth"
	"interviews/backend/internal/domain"
	"interviews/backend/internal/store"
)

type Period string

const (
	PeriodUpcoming Period = "upcoming"
	PeriodPast     Period = "past"
	PeriodAll      Period = "all"
)

func ParsePeriod(s string) (Period, error) {
	switch p := Period(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return PeriodAll, nil
	case PeriodUpcoming, PeriodPast, PeriodAll:
		return p, nil
	default:
		return "", validationError("period must be one of upcoming, past, all")
	}
}

// InPeriod classifies an interview relative to now. A pending proposal is always
// upcoming; upcoming and past partition every record.
func InPeriod(iv domain.Interview, p Period, now time.Time) bool {
	switch p {
	case PeriodUpcoming:
		return isUpcoming(iv, now)
	case PeriodPast:
		return !isUpcoming(iv, now)
	default:
		return true
	}
}

func isUpcoming(iv domain.Interview, now time.Time) bool {
	switch iv.Status {
	case domain.StatusProposed:
		return true
	case domain.StatusConfirmed:
		return !iv.EffectiveTime().Before(now)
	default:
		return false
	}
}

type ListQuery struct {
	Period Period
	Status domain.Status
	JobID  string
}

func (s *Service) ListForEmployer(ctx context.Context, employerID string, q ListQuery) ([]domain.Interview, error) {
	if employerID == "" {
		return nil, validationError("employer_id is required")
	}
	return s.list(ctx, store.ListFilter{EmployerID: employerID}, q)
}

func (s *Service) ListForApplicant(ctx context.Context, applicantID string, q ListQuery) ([]domain.Interview, error) {
	if applicantID == "" {
		return nil, validationError("applicant_id is required")
	}
	return s.list(ctx, store.ListFilter{ApplicantID: applicantID}, q)
}

// ListFor lists the interviews visible to the actor: their own side of each
// interview, or everything for an admin.
func (s *Service) ListFor(ctx context.Context, actor auth.Actor, q ListQuery) ([]domain.Interview, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	switch actor.Role {
	case auth.RoleAdmin:
		return s.list(ctx, store.ListFilter{All: true}, q)
	case auth.RoleApplicant:
		return s.ListForApplicant(ctx, actor.ID, q)
	default:
		return s.ListForEmployer(ctx, actor.ID, q)
	}
}

func (s *Service) list(ctx context.Context, filter store.ListFilter, q ListQuery) ([]domain.Interview, error) {
	if q.Period == "" {
		q.Period = PeriodAll
	}
	if q.Status != "" {
		if _, err := domain.ParseStatus(string(q.Status)); err != nil {
			return nil, validationError("unknown status filter")
		}
	}
	filter.Status = q.Status
	filter.JobID = strings.TrimSpace(q.JobID)

	rows, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	now := s.now()
	out := make([]domain.Interview, 0, len(rows))
	for _, iv := range rows {
		if InPeriod(iv, q.Period, now) {
			out = append(out, iv)
		}
	}
	SortInterviews(out)
	return out, nil
}

// SortInterviews orders proposed before confirmed before terminal records, then by
// effective time ascending.
func SortInterviews(rows []domain.Interview) {
	sort.SliceStable(rows, func(i, j int) bool {
		ri, rj := statusRank(rows[i].Status), statusRank(rows[j].Status)
		if ri != rj {
			return ri < rj
		}
		ti, tj := rows[i].EffectiveTime(), rows[j].EffectiveTime()
		if !ti.Equal(tj) {
			return ti.Before(tj)
		}
		return rows[i].ID.String() < rows[j].ID.String()
	})
}

func statusRank(s domain.Status) int {
	switch s {
	case domain.StatusProposed:
		return 0
	case domain.StatusConfirmed:
		return 1
	default:
		return 2
	}
}

func (s *Service) Get(ctx context.Context, actor auth.Actor, id uuid.UUID) (domain.Interview, error) {
	if err := requireActor(actor); err != nil {
		return domain.Interview{}, err
	}
	iv, err := s.load(ctx, id)
	if err != nil {
		return domain.Interview{}, err
	}
	if !canView(actor, iv) {
		return domain.Interview{}, ErrForbidden
	}
	return iv, nil
}

type CalendarDay struct {
	Date       string
	Interviews []domain.Interview
}

// Calendar buckets the actor's non-cancelled interviews by the local date of their
// effective time in timeZone (UTC when empty). Days are ascending.
func (s *Service) Calendar(ctx context.Context, actor auth.Actor, period Period, timeZone string) ([]CalendarDay, error) {
	loc := time.UTC
	if tz := strings.TrimSpace(timeZone); tz != "" {
		l, err := time.LoadLocation(tz)
		if err != nil {
			return nil, validationError("invalid time_zone")
		}
		loc = l
	}

	rows, err := s.ListFor(ctx, actor, ListQuery{Period: period})
	if err != nil {
		return nil, err
	}
	return GroupByDay(rows, loc), nil
}

func GroupByDay(rows []domain.Interview, loc *time.Location) []CalendarDay {
	byDay := make(map[string][]domain.Interview)
	for _, iv := range rows {
		if iv.Status == domain.StatusCancelled {
			continue
		}
		day := iv.EffectiveTime().In(loc).Format(time.DateOnly)
		byDay[day] = append(byDay[day], iv)
	}

	days := make([]CalendarDay, 0, len(byDay))
	for day, ivs := range byDay {
		sort.SliceStable(ivs, func(i, j int) bool {
			return ivs[i].EffectiveTime().Before(ivs[j].EffectiveTime())
		})
		days = append(days, CalendarDay{Date: day, Interviews: ivs})
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Date < days[j].Date })
	return days
}
