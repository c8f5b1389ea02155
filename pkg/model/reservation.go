package model

import (
	"math"
	"time"
)

type ReservationState string

const (
	StatePending   ReservationState = "pending"
	StateConfirmed ReservationState = "confirmed"
	StateCancelled ReservationState = "cancelled"
	StateCompleted ReservationState = "completed"
)

func (s ReservationState) IsValid() bool {
	switch s {
	case StatePending, StateConfirmed, StateCancelled, StateCompleted:
		return true
	}
	return false
}

type Reservation struct {
	ID           string           `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	PropertyID   string           `json:"property_id" bson:"property_id" validate:"required,max=64"`
	ClientID     string           `json:"client_id" bson:"client_id" validate:"required,max=64"`
	CreatedBy    string           `json:"created_by" bson:"created_by" validate:"required,max=64"`
	StartDate    time.Time        `json:"start_date" bson:"start_date" validate:"required"`
	EndDate      time.Time        `json:"end_date" bson:"end_date" validate:"required,gtfield=StartDate"`
	State        ReservationState `json:"state" bson:"state" validate:"required,oneof=pending confirmed cancelled completed"`
	TotalAmount  float64          `json:"total_amount" bson:"total_amount" validate:"gte=0"`
	DepositPaid  float64          `json:"deposit_paid" bson:"deposit_paid" validate:"gte=0"`
	GuestCount   int              `json:"guest_count" bson:"guest_count" validate:"required,min=1,max=500"`
	Payments     []Payment        `json:"payments" bson:"payments" validate:"dive"`
	Notes        string           `json:"notes,omitempty" bson:"notes,omitempty" validate:"max=4000"`
	ConfirmedAt  *time.Time       `json:"confirmed_at,omitempty" bson:"confirmed_at,omitempty"`
	CancelledAt  *time.Time       `json:"cancelled_at,omitempty" bson:"cancelled_at,omitempty"`
	CheckedOutAt *time.Time       `json:"checked_out_at,omitempty" bson:"checked_out_at,omitempty"`
	Version      int64            `json:"version" bson:"version"`
	CreatedAt    time.Time        `json:"created_at" bson:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at" bson:"updated_at"`
}

func (r *Reservation) Stay() DateRange {
	return NewDateRange(r.StartDate, r.EndDate)
}

// StayNights is the number of nights between check-in and check-out.
func (r *Reservation) StayNights() int {
	return r.Stay().Nights()
}

// OutstandingAmount is what remains to be paid, never negative.
func (r *Reservation) OutstandingAmount() float64 {
	return math.Max(roundCents(r.TotalAmount-r.DepositPaid), 0)
}

// IsActive reports whether the reservation still holds the property as of today.
func (r *Reservation) IsActive(today time.Time) bool {
	if r.State != StatePending && r.State != StateConfirmed {
		return false
	}
	return Day(r.EndDate).After(Day(today))
}

// Clone returns a copy that shares nothing mutable with r.
func (r *Reservation) Clone() *Reservation {
	c := *r
	if r.Payments != nil {
		c.Payments = make([]Payment, len(r.Payments))
		copy(c.Payments, r.Payments)
	}
	return &c
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}

type CreateReservationRequest struct {
	PropertyID  string          `json:"property_id" validate:"required,max=64"`
	ClientID    string          `json:"client_id" validate:"required,max=64"`
	CreatedBy   string          `json:"-" validate:"required,max=64"`
	StartDate   string          `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate     string          `json:"end_date" validate:"required,datetime=2006-01-02"`
	GuestCount  int             `json:"guest_count" validate:"required,min=1,max=500"`
	TotalAmount float64         `json:"total_amount" validate:"gte=0"`
	Notes       string          `json:"notes,omitempty" validate:"max=2000"`
	Deposit     *PaymentRequest `json:"deposit,omitempty" validate:"omitempty"`
}

type StayUpdate struct {
	StartDate  *string `json:"start_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	EndDate    *string `json:"end_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	GuestCount *int    `json:"guest_count,omitempty" validate:"omitempty,min=1,max=500"`
}

func (u *StayUpdate) IsEmpty() bool {
	return u.StartDate == nil && u.EndDate == nil && u.GuestCount == nil
}

type CancelRequest struct {
	Reason string `json:"reason,omitempty" validate:"max=1000"`
}
