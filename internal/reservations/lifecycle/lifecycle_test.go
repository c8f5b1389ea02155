package lifecycle

import (
	"errors"
	"testing"
	"time"

	reservationserrors "rentabook/internal/reservations/errors"
	"rentabook/pkg/model"
)

var allStates = []model.ReservationState{
	model.StatePending,
	model.StateConfirmed,
	model.StateCancelled,
	model.StateCompleted,
}

func TestCanTransition(t *testing.T) {
	allowed := map[[2]model.ReservationState]bool{
		{model.StatePending, model.StateConfirmed}:   true,
		{model.StatePending, model.StateCancelled}:   true,
		{model.StateConfirmed, model.StateCancelled}: true,
		{model.StateConfirmed, model.StateCompleted}: true,
	}

	for _, from := range allStates {
		for _, to := range allStates {
			want := allowed[[2]model.ReservationState{from, to}]
			if got := CanTransition(from, to); got != want {
				t.Errorf("CanTransition(%s, %s) = %v, want %v", from, to, got, want)
			}
		}
	}
}

func TestIsTerminal(t *testing.T) {
	tests := []struct {
		state model.ReservationState
		want  bool
	}{
		{model.StatePending, false},
		{model.StateConfirmed, false},
		{model.StateCancelled, true},
		{model.StateCompleted, true},
	}

	for _, tt := range tests {
		if got := IsTerminal(tt.state); got != tt.want {
			t.Errorf("IsTerminal(%s) = %v, want %v", tt.state, got, tt.want)
		}
	}
}

func TestConfirm_SetsTimestamp(t *testing.T) {
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	r := &model.Reservation{State: model.StatePending}

	if err := Confirm(r, now); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.State != model.StateConfirmed {
		t.Errorf("expected confirmed, got %s", r.State)
	}
	if r.ConfirmedAt == nil || !r.ConfirmedAt.Equal(now) {
		t.Errorf("expected ConfirmedAt %v, got %v", now, r.ConfirmedAt)
	}
}

func TestCancel_AppendsReason(t *testing.T) {
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		notes     string
		reason    string
		wantNotes string
	}{
		{"no reason keeps notes", "late arrival", "", "late arrival"},
		{"reason on empty notes", "", "client request", "Cancellation reason: client request"},
		{"reason appended on new line", "late arrival", "storm", "late arrival\nCancellation reason: storm"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &model.Reservation{State: model.StateConfirmed, Notes: tt.notes}
			if err := Cancel(r, tt.reason, now); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if r.Notes != tt.wantNotes {
				t.Errorf("notes = %q, want %q", r.Notes, tt.wantNotes)
			}
			if r.CancelledAt == nil {
				t.Error("expected CancelledAt to be set")
			}
		})
	}
}

func TestComplete_FromPendingIsRejected(t *testing.T) {
	r := &model.Reservation{State: model.StatePending, Notes: "n"}
	before := *r

	err := Complete(r, time.Now())
	if !errors.Is(err, reservationserrors.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
	if r.State != before.State || r.CheckedOutAt != nil || r.Notes != before.Notes {
		t.Errorf("rejected transition must not modify the reservation: %+v", r)
	}
}

func TestTerminalStatesAreClosed(t *testing.T) {
	ops := map[string]func(r *model.Reservation) error{
		"confirm":  func(r *model.Reservation) error { return Confirm(r, time.Now()) },
		"cancel":   func(r *model.Reservation) error { return Cancel(r, "x", time.Now()) },
		"complete": func(r *model.Reservation) error { return Complete(r, time.Now()) },
	}

	for _, state := range []model.ReservationState{model.StateCancelled, model.StateCompleted} {
		for name, op := range ops {
			r := &model.Reservation{State: state}
			if err := op(r); !errors.Is(err, reservationserrors.ErrInvalidTransition) {
				t.Errorf("%s from %s: expected ErrInvalidTransition, got %v", name, state, err)
			}
			if r.State != state {
				t.Errorf("%s from %s changed state to %s", name, state, r.State)
			}
		}
	}
}
