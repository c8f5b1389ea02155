package testutil

import (
	"time"

	"rentabook/pkg/model"
)

// ReservationBuilder builds create-reservation request bodies.
type ReservationBuilder struct {
	body map[string]any
}

func NewReservationBuilder(propertyID, clientID string) *ReservationBuilder {
	start := model.Day(time.Now().UTC()).AddDate(0, 0, 30)
	return &ReservationBuilder{
		body: map[string]any{
			"property_id":  propertyID,
			"client_id":    clientID,
			"start_date":   model.FormatDay(start),
			"end_date":     model.FormatDay(start.AddDate(0, 0, 3)),
			"guest_count":  2,
			"total_amount": 900.0,
		},
	}
}

// WithStay sets the stay as offsets in days from today.
func (b *ReservationBuilder) WithStay(startOffset, nights int) *ReservationBuilder {
	start := model.Day(time.Now().UTC()).AddDate(0, 0, startOffset)
	b.body["start_date"] = model.FormatDay(start)
	b.body["end_date"] = model.FormatDay(start.AddDate(0, 0, nights))
	return b
}

func (b *ReservationBuilder) WithGuests(n int) *ReservationBuilder {
	b.body["guest_count"] = n
	return b
}

func (b *ReservationBuilder) WithDeposit(amount float64, method string) *ReservationBuilder {
	b.body["deposit"] = map[string]any{"amount": amount, "method": method}
	return b
}

func (b *ReservationBuilder) Build() map[string]any {
	out := make(map[string]any, len(b.body))
	for k, v := range b.body {
		out[k] = v
	}
	return out
}
