package interviews

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"interviews/backend/internal/auth"
	"interviews/backend/internal/domain"
	"interviews/backend/internal/store"
)

func at(h int) time.Time {
	return testNow.Add(time.Duration(h) * time.Hour)
}

func withStatus(id string, status domain.Status, times ...time.Time) domain.Interview {
	iv := domain.Interview{
		ID:            uuid.MustParse("00000000-0000-0000-0000-0000000000" + id),
		EmployerID:    employer.ID,
		ApplicantID:   applicant.ID,
		Status:        status,
		ProposedTimes: times,
	}
	if status.HasConfirmedTime() {
		t := times[0]
		iv.ConfirmedTime = &t
	}
	return iv
}

func TestInPeriodPartitionsRecords(t *testing.T) {
	rows := []domain.Interview{
		withStatus("01", domain.StatusProposed, at(24)),
		withStatus("02", domain.StatusProposed, at(-24)),
		withStatus("03", domain.StatusConfirmed, at(2)),
		withStatus("04", domain.StatusConfirmed, at(-2)),
		withStatus("05", domain.StatusCancelled, at(48)),
		withStatus("06", domain.StatusCompleted, at(-48)),
		withStatus("07", domain.StatusNoShow, at(-1)),
	}
	wantUpcoming := map[string]bool{"01": true, "02": true, "03": true}

	for _, iv := range rows {
		key := iv.ID.String()[34:]
		up := InPeriod(iv, PeriodUpcoming, testNow)
		past := InPeriod(iv, PeriodPast, testNow)
		if up == past {
			t.Fatalf("%s: upcoming=%v past=%v, want exactly one", key, up, past)
		}
		if up != wantUpcoming[key] {
			t.Fatalf("%s: upcoming=%v, want %v", key, up, wantUpcoming[key])
		}
		if !InPeriod(iv, PeriodAll, testNow) {
			t.Fatalf("%s: not in all", key)
		}
	}
}

func TestSortInterviews(t *testing.T) {
	rows := []domain.Interview{
		withStatus("01", domain.StatusCompleted, at(-10)),
		withStatus("02", domain.StatusConfirmed, at(30)),
		withStatus("03", domain.StatusProposed, at(50), at(20)),
		withStatus("04", domain.StatusConfirmed, at(10)),
		withStatus("05", domain.StatusProposed, at(40)),
		withStatus("06", domain.StatusCancelled, at(-20)),
	}
	SortInterviews(rows)

	want := []string{"03", "05", "04", "02", "06", "01"}
	for i, iv := range rows {
		if got := iv.ID.String()[34:]; got != want[i] {
			t.Fatalf("position %d = %s, want %s (order %v)", i, got, want[i], want)
		}
	}
}

func TestServiceListFor_RoleScopesFilter(t *testing.T) {
	var got []store.ListFilter
	repo := &fakeRepo{listFn: func(ctx context.Context, filter store.ListFilter) ([]domain.Interview, error) {
		got = append(got, filter)
		return []domain.Interview{
			withStatus("01", domain.StatusCancelled, at(5)),
			withStatus("02", domain.StatusProposed, at(5)),
			withStatus("03", domain.StatusCompleted, at(-5)),
		}, nil
	}}
	svc := newTestService(repo, &fakeApps{}, nil)

	rows, err := svc.ListFor(context.Background(), applicant, ListQuery{Period: PeriodUpcoming, JobID: " job-1 "})
	if err != nil {
		t.Fatalf("ListFor error: %v", err)
	}
	if len(rows) != 1 || rows[0].Status != domain.StatusProposed {
		t.Fatalf("upcoming rows = %+v, want only the proposed one", rows)
	}
	if _, err := svc.ListFor(context.Background(), employer, ListQuery{}); err != nil {
		t.Fatalf("ListFor error: %v", err)
	}
	if _, err := svc.ListFor(context.Background(), admin, ListQuery{Status: domain.StatusCompleted}); err != nil {
		t.Fatalf("ListFor error: %v", err)
	}

	if got[0].ApplicantID != applicant.ID || got[0].EmployerID != "" || got[0].JobID != "job-1" {
		t.Fatalf("applicant filter = %+v", got[0])
	}
	if got[1].EmployerID != employer.ID || got[1].ApplicantID != "" {
		t.Fatalf("employer filter = %+v", got[1])
	}
	if !got[2].All || got[2].Status != domain.StatusCompleted {
		t.Fatalf("admin filter = %+v", got[2])
	}

	var vErr *ValidationError
	if _, err := svc.ListFor(context.Background(), employer, ListQuery{Status: "scheduled"}); !errors.As(err, &vErr) {
		t.Fatalf("bad status err = %v, want *ValidationError", err)
	}
}

func TestParsePeriod(t *testing.T) {
	for in, want := range map[string]Period{"": PeriodAll, "Upcoming": PeriodUpcoming, "past": PeriodPast, "all": PeriodAll} {
		got, err := ParsePeriod(in)
		if err != nil || got != want {
			t.Fatalf("ParsePeriod(%q) = %q, %v; want %q", in, got, err, want)
		}
	}
	if _, err := ParsePeriod("soon"); err == nil {
		t.Fatalf("expected error for unknown period")
	}
}

func TestServiceGet_PartyOrAdmin(t *testing.T) {
	iv := storedInterview()
	repo := &fakeRepo{getFn: func(ctx context.Context, id uuid.UUID) (domain.Interview, error) {
		return iv, nil
	}}
	svc := newTestService(repo, &fakeApps{}, nil)

	tests := []struct {
		name  string
		actor auth.Actor
		ok    bool
	}{
		{"employer", employer, true},
		{"applicant", applicant, true},
		{"admin", admin, true},
		{"stranger", stranger, false},
	}
	for _, tc := range tests {
		_, err := svc.Get(context.Background(), tc.actor, iv.ID)
		if tc.ok && err != nil {
			t.Fatalf("%s: Get error: %v", tc.name, err)
		}
		if !tc.ok && !errors.Is(err, ErrForbidden) {
			t.Fatalf("%s: err = %v, want %v", tc.name, err, ErrForbidden)
		}
	}
}

func TestGroupByDay(t *testing.T) {
	tokyo, err := time.LoadLocation("Asia/Tokyo")
	if err != nil {
		t.Fatalf("LoadLocation error: %v", err)
	}

	d1 := time.Date(2026, 6, 2, 16, 0, 0, 0, time.UTC) // 2026-06-03 01:00 in Tokyo
	d2 := time.Date(2026, 6, 2, 9, 0, 0, 0, time.UTC)
	d3 := time.Date(2026, 6, 3, 1, 0, 0, 0, time.UTC)

	rows := []domain.Interview{
		withStatus("01", domain.StatusConfirmed, d1),
		withStatus("02", domain.StatusProposed, d2),
		withStatus("03", domain.StatusCancelled, d2),
		withStatus("04", domain.StatusCompleted, d3),
	}

	utcDays := GroupByDay(rows, time.UTC)
	if len(utcDays) != 2 || utcDays[0].Date != "2026-06-02" || utcDays[1].Date != "2026-06-03" {
		t.Fatalf("utc days = %+v", utcDays)
	}
	if len(utcDays[0].Interviews) != 2 || !utcDays[0].Interviews[0].EffectiveTime().Equal(d2) {
		t.Fatalf("2026-06-02 bucket = %+v, want proposed then confirmed", utcDays[0].Interviews)
	}

	tokyoDays := GroupByDay(rows, tokyo)
	if len(tokyoDays) != 2 || tokyoDays[0].Date != "2026-06-02" || tokyoDays[1].Date != "2026-06-03" {
		t.Fatalf("tokyo days = %+v", tokyoDays)
	}
	if len(tokyoDays[1].Interviews) != 2 {
		t.Fatalf("tokyo 2026-06-03 bucket = %d interviews, want 2", len(tokyoDays[1].Interviews))
	}
}

func TestServiceCalendar_InvalidTimeZone(t *testing.T) {
	svc := newTestService(&fakeRepo{}, &fakeApps{}, nil)

	var vErr *ValidationError
	if _, err := svc.Calendar(context.Background(), employer, PeriodAll, "Mars/Olympus"); !errors.As(err, &vErr) {
		t.Fatalf("err = %v, want *ValidationError", err)
	}
}
