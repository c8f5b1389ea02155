package model

import (
	"fmt"
	"time"
)

// DateLayout is the wire format for calendar days.
const DateLayout = "2006-01-02"

// DateRange is a half-open stay interval [Start, End) measured in calendar days.
type DateRange struct {
	Start time.Time `json:"start_date"`
	End   time.Time `json:"end_date"`
}

// Day drops the time-of-day component, keeping the calendar date as seen in t's location.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func ParseDay(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD: %w", s, err)
	}
	return Day(t), nil
}

func FormatDay(t time.Time) string {
	return Day(t).Format(DateLayout)
}

func NewDateRange(start, end time.Time) DateRange {
	return DateRange{Start: Day(start), End: Day(end)}
}

// Valid reports whether the range covers at least one night.
func (r DateRange) Valid() bool {
	return r.End.After(r.Start)
}

// Contains reports whether day falls inside [Start, End).
func (r DateRange) Contains(day time.Time) bool {
	d := Day(day)
	return !d.Before(r.Start) && d.Before(r.End)
}

func (r DateRange) Nights() int {
	if !r.Valid() {
		return 0
	}
	return int(r.End.Sub(r.Start) / (24 * time.Hour))
}

func (r DateRange) String() string {
	return fmt.Sprintf("%s -> %s", FormatDay(r.Start), FormatDay(r.End))
}
