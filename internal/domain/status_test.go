package domain

import (
	"reflect"
	"testing"
)

func TestIsTransitionAllowed(t *testing.T) {
	tests := []struct {
		from, to Status
		want     bool
	}{
		{StatusProposed, StatusConfirmed, true},
		{StatusProposed, StatusCancelled, true},
		{StatusProposed, StatusCompleted, false},
		{StatusProposed, StatusNoShow, false},
		{StatusConfirmed, StatusCancelled, true},
		{StatusConfirmed, StatusCompleted, true},
		{StatusConfirmed, StatusNoShow, true},
		{StatusConfirmed, StatusConfirmed, false},
		{StatusConfirmed, StatusProposed, false},
		{StatusCancelled, StatusConfirmed, false},
		{StatusCancelled, StatusCancelled, false},
		{StatusCompleted, StatusCancelled, false},
		{StatusNoShow, StatusCompleted, false},
	}

	for _, tc := range tests {
		if got := IsTransitionAllowed(tc.from, tc.to); got != tc.want {
			t.Errorf("IsTransitionAllowed(%s, %s) = %v, want %v", tc.from, tc.to, got, tc.want)
		}
	}
}

func TestSourcesOf(t *testing.T) {
	tests := []struct {
		to   Status
		want []Status
	}{
		{StatusConfirmed, []Status{StatusProposed}},
		{StatusCancelled, []Status{StatusProposed, StatusConfirmed}},
		{StatusCompleted, []Status{StatusConfirmed}},
		{StatusNoShow, []Status{StatusConfirmed}},
		{StatusProposed, nil},
	}

	for _, tc := range tests {
		if got := SourcesOf(tc.to); !reflect.DeepEqual(got, tc.want) {
			t.Errorf("SourcesOf(%s) = %v, want %v", tc.to, got, tc.want)
		}
	}
}

func TestStatusPredicates(t *testing.T) {
	for _, s := range []Status{StatusCancelled, StatusCompleted, StatusNoShow} {
		if !s.IsTerminal() || s.IsActive() {
			t.Errorf("%s: IsTerminal=%v IsActive=%v, want terminal and inactive", s, s.IsTerminal(), s.IsActive())
		}
	}
	for _, s := range []Status{StatusProposed, StatusConfirmed} {
		if s.IsTerminal() || !s.IsActive() {
			t.Errorf("%s: IsTerminal=%v IsActive=%v, want active", s, s.IsTerminal(), s.IsActive())
		}
	}
	if StatusProposed.HasConfirmedTime() || !StatusNoShow.HasConfirmedTime() {
		t.Errorf("HasConfirmedTime mismatch")
	}
}

func TestParseStatus(t *testing.T) {
	if s, err := ParseStatus("no-show"); err != nil || s != StatusNoShow {
		t.Fatalf("ParseStatus(no-show) = %q, %v", s, err)
	}
	if _, err := ParseStatus("scheduled"); err == nil {
		t.Fatalf("expected error for unknown status")
	}
}
