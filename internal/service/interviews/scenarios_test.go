package interviews

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"golang.org/x/sync/errgroup"

	"interviews/backend/internal/domain"
	"interviews/backend/internal/notify"
	"interviews/backend/internal/store"
	"interviews/backend/internal/store/memory"
)

func newMemoryService(t *testing.T) (*Service, *recordingNotifier) {
	t.Helper()
	apps := memory.NewApplications(testApplication())
	n := &recordingNotifier{}
	return newTestService(memory.NewInterviewRepo(), apps, n), n
}

func TestScenario_ProposeThenConfirmSecondSlot(t *testing.T) {
	ctx := context.Background()
	svc, n := newMemoryService(t)

	t1, t2 := at(24), at(48)
	iv, err := svc.Propose(ctx, employer, ProposeInput{
		ApplicationID:   "a1",
		ProposedTimes:   []time.Time{t1, t2},
		Type:            domain.InterviewTypeVideo,
		VideoLink:       "https://meet.example/abc",
		DurationMinutes: 60,
	})
	if err != nil {
		t.Fatalf("Propose error: %v", err)
	}
	if iv.Status != domain.StatusProposed || iv.ConfirmedTime != nil {
		t.Fatalf("after propose: status=%q confirmed=%v", iv.Status, iv.ConfirmedTime)
	}

	confirmed, err := svc.Confirm(ctx, applicant, iv.ID, t2)
	if err != nil {
		t.Fatalf("Confirm error: %v", err)
	}
	if confirmed.Status != domain.StatusConfirmed || !confirmed.ConfirmedTime.Equal(t2) {
		t.Fatalf("after confirm: status=%q confirmed=%v", confirmed.Status, confirmed.ConfirmedTime)
	}
	if len(confirmed.ProposedTimes) != 2 || !confirmed.ProposedTimes[0].Equal(t1) || !confirmed.ProposedTimes[1].Equal(t2) {
		t.Fatalf("proposed_times = %v, want [%v %v]", confirmed.ProposedTimes, t1, t2)
	}

	events := n.all()
	if len(events) != 2 || events[0].Type != notify.EventProposed || events[1].Type != notify.EventConfirmed {
		t.Fatalf("events = %+v", events)
	}
}

func TestScenario_ConfirmUnofferedTimeLeavesRecordProposed(t *testing.T) {
	ctx := context.Background()
	svc, _ := newMemoryService(t)

	iv, err := svc.Propose(ctx, employer, ProposeInput{
		ApplicationID:   "a1",
		ProposedTimes:   []time.Time{at(24)},
		Type:            domain.InterviewTypePhone,
		DurationMinutes: 30,
	})
	if err != nil {
		t.Fatalf("Propose error: %v", err)
	}

	_, err = svc.Confirm(ctx, applicant, iv.ID, at(72))
	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("err = %v, want *ValidationError", err)
	}

	got, err := svc.Get(ctx, applicant, iv.ID)
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if got.Status != domain.StatusProposed || got.ConfirmedTime != nil {
		t.Fatalf("record changed: status=%q confirmed=%v", got.Status, got.ConfirmedTime)
	}
}

func TestScenario_EmployerCancelsBeforeConfirmation(t *testing.T) {
	ctx := context.Background()
	svc, _ := newMemoryService(t)

	iv, err := svc.Propose(ctx, employer, validProposal())
	if err != nil {
		t.Fatalf("Propose error: %v", err)
	}
	cancelled, err := svc.Cancel(ctx, employer, iv.ID, "")
	if err != nil {
		t.Fatalf("Cancel error: %v", err)
	}
	if cancelled.Status != domain.StatusCancelled || cancelled.CancelledBy != employer.ID {
		t.Fatalf("after cancel: %+v", cancelled)
	}

	if _, err := svc.Confirm(ctx, applicant, iv.ID, iv.ProposedTimes[0]); !errors.Is(err, store.ErrConflict) {
		t.Fatalf("confirm after cancel err = %v, want %v", err, store.ErrConflict)
	}

	before, err := svc.Get(ctx, employer, iv.ID)
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if _, err := svc.Cancel(ctx, applicant, iv.ID, "again"); !errors.Is(err, store.ErrConflict) {
		t.Fatalf("second cancel err = %v, want %v", err, store.ErrConflict)
	}
	after, err := svc.Get(ctx, employer, iv.ID)
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if after.CancelledBy != before.CancelledBy || after.CancelReason != before.CancelReason || !after.UpdatedAt.Equal(before.UpdatedAt) {
		t.Fatalf("second cancel changed the record: before=%+v after=%+v", before, after)
	}

	upcoming, err := svc.ListForApplicant(ctx, applicant.ID, ListQuery{Period: PeriodUpcoming})
	if err != nil {
		t.Fatalf("ListForApplicant error: %v", err)
	}
	if len(upcoming) != 0 {
		t.Fatalf("upcoming = %+v, want no cancelled records", upcoming)
	}
}

func TestScenario_ConcurrentConfirmFirstWriterWins(t *testing.T) {
	ctx := context.Background()
	svc, n := newMemoryService(t)

	t1, t2 := at(24), at(48)
	iv, err := svc.Propose(ctx, employer, ProposeInput{
		ApplicationID:   "a1",
		ProposedTimes:   []time.Time{t1, t2},
		Type:            domain.InterviewTypeVideo,
		DurationMinutes: 45,
	})
	if err != nil {
		t.Fatalf("Propose error: %v", err)
	}

	const rounds = 16
	var (
		mu        sync.Mutex
		winners   []time.Time
		conflicts int
	)
	start := make(chan struct{})
	var g errgroup.Group
	for i := 0; i < rounds; i++ {
		chosen := t1
		if i%2 == 1 {
			chosen = t2
		}
		g.Go(func() error {
			<-start
			_, err := svc.Confirm(ctx, applicant, iv.ID, chosen)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				winners = append(winners, chosen)
			case errors.Is(err, store.ErrConflict):
				conflicts++
			default:
				return err
			}
			return nil
		})
	}
	close(start)
	if err := g.Wait(); err != nil {
		t.Fatalf("Confirm error: %v", err)
	}

	if len(winners) != 1 || conflicts != rounds-1 {
		t.Fatalf("winners=%d conflicts=%d, want 1 and %d", len(winners), conflicts, rounds-1)
	}
	got, err := svc.Get(ctx, applicant, iv.ID)
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if !got.ConfirmedTime.Equal(winners[0]) {
		t.Fatalf("confirmed_time = %v, want winner %v", got.ConfirmedTime, winners[0])
	}

	confirmedEvents := 0
	for _, ev := range n.all() {
		if ev.Type == notify.EventConfirmed {
			confirmedEvents++
		}
	}
	if confirmedEvents != 1 {
		t.Fatalf("confirmed events = %d, want 1", confirmedEvents)
	}
}

func TestScenario_ConfirmRacesCancel(t *testing.T) {
	ctx := context.Background()

	for i := 0; i < 20; i++ {
		svc, _ := newMemoryService(t)
		iv, err := svc.Propose(ctx, employer, validProposal())
		if err != nil {
			t.Fatalf("Propose error: %v", err)
		}

		var confirmErr, cancelErr error
		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, confirmErr = svc.Confirm(ctx, applicant, iv.ID, iv.ProposedTimes[0])
		}()
		go func() {
			defer wg.Done()
			_, cancelErr = svc.Cancel(ctx, employer, iv.ID, "")
		}()
		wg.Wait()

		if cancelErr != nil {
			t.Fatalf("cancel is legal from both proposed and confirmed, got %v", cancelErr)
		}
		got, err := svc.Get(ctx, employer, iv.ID)
		if err != nil {
			t.Fatalf("Get error: %v", err)
		}
		if got.Status != domain.StatusCancelled {
			t.Fatalf("final status = %q, want cancelled", got.Status)
		}
		if confirmErr != nil && !errors.Is(confirmErr, store.ErrConflict) {
			t.Fatalf("confirm err = %v, want nil or %v", confirmErr, store.ErrConflict)
		}
		if confirmErr == nil && got.ConfirmedTime == nil {
			t.Fatalf("confirm won but confirmed_time is missing")
		}
		if confirmErr != nil && got.ConfirmedTime != nil {
			t.Fatalf("confirm lost but confirmed_time = %v", got.ConfirmedTime)
		}
	}
}

func TestScenario_OneActiveInterviewPerApplication(t *testing.T) {
	ctx := context.Background()
	svc, _ := newMemoryService(t)

	first, err := svc.Propose(ctx, employer, validProposal())
	if err != nil {
		t.Fatalf("Propose error: %v", err)
	}
	if _, err := svc.Confirm(ctx, applicant, first.ID, first.ProposedTimes[0]); err != nil {
		t.Fatalf("Confirm error: %v", err)
	}
	if _, err := svc.Propose(ctx, employer, validProposal()); !errors.Is(err, store.ErrConflict) {
		t.Fatalf("second propose err = %v, want %v", err, store.ErrConflict)
	}

	if _, err := svc.MarkCompleted(ctx, employer, first.ID, CompleteInput{}); err != nil {
		t.Fatalf("MarkCompleted error: %v", err)
	}
	if _, err := svc.Propose(ctx, employer, validProposal()); err != nil {
		t.Fatalf("propose after completion error: %v", err)
	}
}
