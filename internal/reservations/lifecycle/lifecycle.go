package lifecycle

import (
	"fmt"
	"strings"
	"time"

	reservationserrors "rentabook/internal/reservations/errors"
	"rentabook/pkg/model"
)

var transitions = map[model.ReservationState][]model.ReservationState{
	model.StatePending:   {model.StateConfirmed, model.StateCancelled},
	model.StateConfirmed: {model.StateCancelled, model.StateCompleted},
	model.StateCancelled: {},
	model.StateCompleted: {},
}

// CanTransition reports whether the lifecycle allows moving from one state to another.
func CanTransition(from, to model.ReservationState) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transitions are possible.
func IsTerminal(s model.ReservationState) bool {
	next, ok := transitions[s]
	return ok && len(next) == 0
}

// IsEditable reports whether stay dates and guest count may still change.
func IsEditable(s model.ReservationState) bool {
	return s == model.StatePending || s == model.StateConfirmed
}

func Confirm(r *model.Reservation, now time.Time) error {
	if err := check(r, model.StateConfirmed); err != nil {
		return err
	}
	r.State = model.StateConfirmed
	r.ConfirmedAt = &now
	r.UpdatedAt = now
	return nil
}

// Cancel releases the reservation's nights. A non-empty reason is appended to the notes.
func Cancel(r *model.Reservation, reason string, now time.Time) error {
	if err := check(r, model.StateCancelled); err != nil {
		return err
	}
	r.State = model.StateCancelled
	r.CancelledAt = &now
	r.UpdatedAt = now
	if reason = strings.TrimSpace(reason); reason != "" {
		r.Notes = appendNote(r.Notes, "Cancellation reason: "+reason)
	}
	return nil
}

// Complete records the check-out.
func Complete(r *model.Reservation, now time.Time) error {
	if err := check(r, model.StateCompleted); err != nil {
		return err
	}
	r.State = model.StateCompleted
	r.CheckedOutAt = &now
	r.UpdatedAt = now
	return nil
}

func check(r *model.Reservation, to model.ReservationState) error {
	if !CanTransition(r.State, to) {
		return fmt.Errorf("%w: cannot move reservation from %s to %s", reservationserrors.ErrInvalidTransition, r.State, to)
	}
	return nil
}

func appendNote(notes, line string) string {
	if notes == "" {
		return line
	}
	return notes + "\n" + line
}
