package interviews

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"interviews/backend/internal/auth"
	"interviews/backend/internal/domain"
	"interviews/backend/internal/notify"
	"interviews/backend/internal/store"
)

func TestServiceConfirm_OnlyApplicantMayConfirm(t *testing.T) {
	iv := storedInterview()
	repo := &fakeRepo{getFn: func(ctx context.Context, id uuid.UUID) (domain.Interview, error) {
		return iv, nil
	}}
	svc := newTestService(repo, &fakeApps{}, nil)

	tests := []struct {
		name  string
		actor auth.Actor
	}{
		{"employer", employer},
		{"admin", admin},
		{"stranger", stranger},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.Confirm(context.Background(), tc.actor, iv.ID, iv.ProposedTimes[0]); !errors.Is(err, ErrForbidden) {
				t.Fatalf("err = %v, want %v", err, ErrForbidden)
			}
		})
	}
}

func TestServiceConfirm_TimeNotOfferedNeverReachesStore(t *testing.T) {
	iv := storedInterview()
	repo := &fakeRepo{getFn: func(ctx context.Context, id uuid.UUID) (domain.Interview, error) {
		return iv, nil
	}}
	svc := newTestService(repo, &fakeApps{}, nil)

	_, err := svc.Confirm(context.Background(), applicant, iv.ID, iv.ProposedTimes[0].Add(time.Hour))
	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("err = %v, want *ValidationError", err)
	}

	if _, err := svc.Confirm(context.Background(), applicant, iv.ID, time.Time{}); !errors.As(err, &vErr) {
		t.Fatalf("zero time err = %v, want *ValidationError", err)
	}
}

func TestServiceConfirm_PassesChosenTimeAndNotifiesEmployer(t *testing.T) {
	iv := storedInterview()
	chosen := iv.ProposedTimes[1]

	var gotAt time.Time
	repo := &fakeRepo{
		getFn: func(ctx context.Context, id uuid.UUID) (domain.Interview, error) {
			return iv, nil
		},
		confirmFn: func(ctx context.Context, id uuid.UUID, at time.Time) (domain.Interview, error) {
			gotAt = at
			out := iv
			out.Status = domain.StatusConfirmed
			out.ConfirmedTime = &at
			return out, nil
		},
	}
	n := &recordingNotifier{}
	svc := newTestService(repo, &fakeApps{}, n)

	loc := time.FixedZone("UTC-5", -5*60*60)
	out, err := svc.Confirm(context.Background(), applicant, iv.ID, chosen.In(loc))
	if err != nil {
		t.Fatalf("Confirm error: %v", err)
	}
	if !gotAt.Equal(chosen) || gotAt.Location() != time.UTC {
		t.Fatalf("store received %v, want %v in UTC", gotAt, chosen)
	}
	if out.Status != domain.StatusConfirmed {
		t.Fatalf("status = %q, want confirmed", out.Status)
	}

	events := n.all()
	if len(events) != 1 || events[0].Type != notify.EventConfirmed || events[0].Recipient != employer.ID {
		t.Fatalf("events = %+v, want one confirmed event to the employer", events)
	}
}

func TestServiceConfirm_ConflictPassesThroughWithoutNotification(t *testing.T) {
	iv := storedInterview()
	repo := &fakeRepo{
		getFn: func(ctx context.Context, id uuid.UUID) (domain.Interview, error) {
			return iv, nil
		},
		confirmFn: func(ctx context.Context, id uuid.UUID, at time.Time) (domain.Interview, error) {
			return domain.Interview{}, store.ErrConflict
		},
	}
	n := &recordingNotifier{}
	svc := newTestService(repo, &fakeApps{}, n)

	if _, err := svc.Confirm(context.Background(), applicant, iv.ID, iv.ProposedTimes[0]); !errors.Is(err, store.ErrConflict) {
		t.Fatalf("err = %v, want %v", err, store.ErrConflict)
	}
	if len(n.all()) != 0 {
		t.Fatalf("no event expected after a lost race")
	}
}

func TestServiceConfirm_NotFound(t *testing.T) {
	repo := &fakeRepo{getFn: func(ctx context.Context, id uuid.UUID) (domain.Interview, error) {
		return domain.Interview{}, store.ErrNotFound
	}}
	svc := newTestService(repo, &fakeApps{}, nil)

	if _, err := svc.Confirm(context.Background(), applicant, uuid.New(), testNow.Add(time.Hour)); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("err = %v, want %v", err, store.ErrNotFound)
	}
	var vErr *ValidationError
	if _, err := svc.Confirm(context.Background(), applicant, uuid.Nil, testNow.Add(time.Hour)); !errors.As(err, &vErr) {
		t.Fatalf("nil id err = %v, want *ValidationError", err)
	}
}
