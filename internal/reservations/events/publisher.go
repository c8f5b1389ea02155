package events

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"rentabook/pkg/kafka"
	"rentabook/pkg/middleware"
	"rentabook/pkg/model"
)

type EventType string

const (
	ReservationCreated   EventType = "reservation.created"
	ReservationUpdated   EventType = "reservation.updated"
	ReservationConfirmed EventType = "reservation.confirmed"
	ReservationCancelled EventType = "reservation.cancelled"
	ReservationCompleted EventType = "reservation.completed"
	PaymentAdded         EventType = "reservation.payment_added"
)

const (
	SchemaVersion = "1"
	Source        = "reservations"
)

// ReservationEvent is a committed change to one reservation, keyed by property
// so consumers see a property's changes in order.
type ReservationEvent struct {
	ID          string             `json:"id"`
	Type        EventType          `json:"type"`
	OccurredAt  time.Time          `json:"occurred_at"`
	Reservation *model.Reservation `json:"reservation"`
	Payment     *model.Payment     `json:"payment,omitempty"`
}

func NewReservationEvent(eventType EventType, r *model.Reservation, now time.Time) ReservationEvent {
	return ReservationEvent{
		ID:          uuid.NewString(),
		Type:        eventType,
		OccurredAt:  now.UTC(),
		Reservation: r.Clone(),
	}
}

type Publisher interface {
	Publish(ctx context.Context, event ReservationEvent) error
}

// MessageProducer is the subset of *kafka.Producer the publisher needs.
type MessageProducer interface {
	Publish(ctx context.Context, msg kafka.Message) error
}

type KafkaPublisher struct {
	producer MessageProducer
}

func NewKafkaPublisher(producer MessageProducer) *KafkaPublisher {
	return &KafkaPublisher{producer: producer}
}

func (p *KafkaPublisher) Publish(ctx context.Context, event ReservationEvent) error {
	if event.Reservation == nil {
		return fmt.Errorf("%w: event %s has no reservation", kafka.ErrInvalidMessage, event.ID)
	}

	msg := kafka.NewMessage().
		WithKey(event.Reservation.PropertyID).
		WithValue(event).
		WithEventID(event.ID).
		WithEventType(string(event.Type)).
		WithCorrelationID(middleware.RequestIDFromContext(ctx)).
		WithSchemaVersion(SchemaVersion).
		WithSource(Source).
		Build()

	if err := p.producer.Publish(ctx, msg); err != nil {
		return fmt.Errorf("failed to publish %s for reservation %s: %w", event.Type, event.Reservation.ID, err)
	}
	return nil
}

// NoopPublisher drops events. Used when the change feed is disabled.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, ReservationEvent) error { return nil }
