package availability

import (
	"context"
	"fmt"
	"time"

	"rentabook/pkg/model"
)

// ReservationLister is the read side of the reservation store used for admission and calendars.
type ReservationLister interface {
	ListNonCancelledByProperty(ctx context.Context, propertyID string) ([]*model.Reservation, error)
}

// Overlaps reports whether two half-open stays share at least one night.
// A check-out on the same day as another check-in is not an overlap.
func Overlaps(a, b model.DateRange) bool {
	return a.Start.Before(b.End) && b.Start.Before(a.End)
}

// FindConflict returns the first non-cancelled reservation whose stay overlaps candidate,
// skipping excludeID. It returns nil when the candidate is clear.
func FindConflict(existing []*model.Reservation, candidate model.DateRange, excludeID string) *model.Reservation {
	for _, r := range existing {
		if r == nil || r.State == model.StateCancelled {
			continue
		}
		if excludeID != "" && r.ID == excludeID {
			continue
		}
		if Overlaps(candidate, r.Stay()) {
			return r
		}
	}
	return nil
}

// FreeDays lists every day in [from, to] not covered by a non-cancelled reservation.
func FreeDays(existing []*model.Reservation, from, to time.Time) []time.Time {
	from, to = model.Day(from), model.Day(to)
	days := []time.Time{}

	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		if !booked(existing, d) {
			days = append(days, d)
		}
	}
	return days
}

func booked(existing []*model.Reservation, d time.Time) bool {
	for _, r := range existing {
		if r == nil || r.State == model.StateCancelled {
			continue
		}
		if r.Stay().Contains(d) {
			return true
		}
	}
	return false
}

// Checker answers overlap and calendar questions for one property
// from the same reservation set, so both views always agree.
type Checker struct {
	lister ReservationLister
}

func NewChecker(lister ReservationLister) *Checker {
	return &Checker{lister: lister}
}

// Conflict fetches the property's live reservations and returns the one blocking candidate, if any.
func (c *Checker) Conflict(ctx context.Context, propertyID string, candidate model.DateRange, excludeID string) (*model.Reservation, error) {
	existing, err := c.lister.ListNonCancelledByProperty(ctx, propertyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list reservations for property %s: %w", propertyID, err)
	}
	return FindConflict(existing, candidate, excludeID), nil
}

func (c *Checker) ConflictsWithAny(ctx context.Context, propertyID string, candidate model.DateRange, excludeID string) (bool, error) {
	conflict, err := c.Conflict(ctx, propertyID, candidate, excludeID)
	if err != nil {
		return false, err
	}
	return conflict != nil, nil
}

func (c *Checker) AvailableDays(ctx context.Context, propertyID string, from, to time.Time) ([]time.Time, error) {
	existing, err := c.lister.ListNonCancelledByProperty(ctx, propertyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list reservations for property %s: %w", propertyID, err)
	}
	return FreeDays(existing, from, to), nil
}
