// Package payments records payment results published by an external payment
// processor as ledger entries on the matching reservation.
package payments

import (
	"context"
	"errors"
	"fmt"

	apperrors "rentabook/pkg/errors"
	"rentabook/pkg/kafka"
	"rentabook/pkg/logger"
	"rentabook/pkg/model"
)

// PaymentResult is the message body on the payment results topic.
type PaymentResult struct {
	ReservationID string  `json:"reservation_id"`
	Amount        float64 `json:"amount"`
	Method        string  `json:"method"`
	Status        string  `json:"status,omitempty"`
	Reference     string  `json:"reference,omitempty"`
	Notes         string  `json:"notes,omitempty"`
}

// Recorder is the part of the reservation service the handler drives.
type Recorder interface {
	AddPayment(ctx context.Context, id string, req *model.PaymentRequest) (*model.Reservation, error)
}

type Handler struct {
	recorder Recorder
	log      *logger.Logger
}

func NewHandler(recorder Recorder, log *logger.Logger) *Handler {
	return &Handler{recorder: recorder, log: log}
}

// Handle is a kafka.MessageHandler. Messages without a reference use their
// event id, so a redelivered message is recorded once.
func (h *Handler) Handle(ctx context.Context, msg kafka.Message) error {
	var result PaymentResult
	if err := msg.DecodeValue(&result); err != nil {
		return kafka.NewPermanentError("deserialization failed", err)
	}
	if result.ReservationID == "" {
		return kafka.NewPermanentError("invalid message: reservation_id is required", nil)
	}

	req := &model.PaymentRequest{
		Amount:    result.Amount,
		Method:    result.Method,
		Status:    result.Status,
		Reference: result.Reference,
		Notes:     result.Notes,
	}
	if req.Reference == "" {
		req.Reference = msg.GetEventID()
	}

	reservation, err := h.recorder.AddPayment(ctx, result.ReservationID, req)
	if err != nil {
		return classify(result.ReservationID, err)
	}

	h.log.Info("Payment result recorded",
		"reservation_id", reservation.ID,
		"reference", req.Reference,
		"deposit_paid", reservation.DepositPaid,
	)
	return nil
}

// classify decides whether a failed payment result is worth retrying. Anything
// the caller would have to change before resubmitting goes to the dead letter topic.
func classify(reservationID string, err error) error {
	msg := fmt.Sprintf("failed to record payment for reservation %s", reservationID)

	if apperrors.IsRetryable(err) || apperrors.HasCode(err, apperrors.CodeInternal) ||
		errors.Is(err, context.DeadlineExceeded) {
		return kafka.NewTransientError(msg, err)
	}
	return kafka.NewPermanentError(msg, err)
}
