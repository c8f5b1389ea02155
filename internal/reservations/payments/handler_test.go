package payments

import (
	"context"
	"errors"
	"io"
	"testing"

	reservationserrors "rentabook/internal/reservations/errors"
	apperrors "rentabook/pkg/errors"
	"rentabook/pkg/kafka"
	"rentabook/pkg/logger"
	"rentabook/pkg/model"
)

type mockRecorder struct {
	addPaymentFunc func(ctx context.Context, id string, req *model.PaymentRequest) (*model.Reservation, error)
}

func (m *mockRecorder) AddPayment(ctx context.Context, id string, req *model.PaymentRequest) (*model.Reservation, error) {
	return m.addPaymentFunc(ctx, id, req)
}

func testLogger() *logger.Logger {
	return logger.New(logger.Config{Level: logger.ERROR, Output: io.Discard})
}

func message(value any) kafka.Message {
	return kafka.NewMessage().WithKey("r-1").WithValue(value).WithEventID("evt-1").Build()
}

func TestHandle_RecordsPayment(t *testing.T) {
	var gotID string
	var gotReq *model.PaymentRequest
	h := NewHandler(&mockRecorder{
		addPaymentFunc: func(ctx context.Context, id string, req *model.PaymentRequest) (*model.Reservation, error) {
			gotID, gotReq = id, req
			return &model.Reservation{ID: id, DepositPaid: req.Amount}, nil
		},
	}, testLogger())

	err := h.Handle(context.Background(), message(PaymentResult{ReservationID: "r-1", Amount: 500, Method: "card"}))
	if err != nil {
		t.Fatalf("Handle() error = %v", err)
	}
	if gotID != "r-1" || gotReq.Amount != 500 || gotReq.Method != "card" {
		t.Errorf("AddPayment(%q, %+v)", gotID, gotReq)
	}
	if gotReq.Reference != "evt-1" {
		t.Errorf("Reference = %q, want the event id", gotReq.Reference)
	}
}

func TestHandle_KeepsExplicitReference(t *testing.T) {
	var ref string
	h := NewHandler(&mockRecorder{
		addPaymentFunc: func(ctx context.Context, id string, req *model.PaymentRequest) (*model.Reservation, error) {
			ref = req.Reference
			return &model.Reservation{ID: id}, nil
		},
	}, testLogger())

	if err := h.Handle(context.Background(), message(PaymentResult{ReservationID: "r-1", Amount: 1, Method: "cash", Reference: "psp-9"})); err != nil {
		t.Fatalf("Handle() error = %v", err)
	}
	if ref != "psp-9" {
		t.Errorf("Reference = %q, want psp-9", ref)
	}
}

func TestHandle_ErrorClassification(t *testing.T) {
	tests := []struct {
		name string
		msg  kafka.Message
		err  error
		want kafka.ErrorType
	}{
		{"bad json", kafka.NewMessage().WithKey("k").WithRawValue([]byte("{")).Build(), nil, kafka.ErrorTypePermanent},
		{"missing reservation", message(PaymentResult{Amount: 1, Method: "cash"}), nil, kafka.ErrorTypePermanent},
		{"busy", message(PaymentResult{ReservationID: "r-1", Amount: 1, Method: "cash"}), apperrors.Busy("busy", nil), kafka.ErrorTypeTransient},
		{"internal", message(PaymentResult{ReservationID: "r-1", Amount: 1, Method: "cash"}), apperrors.Internal("db down", errors.New("x")), kafka.ErrorTypeTransient},
		{"not found", message(PaymentResult{ReservationID: "r-1", Amount: 1, Method: "cash"}), apperrors.NotFoundWithID("Reservation", "r-1"), kafka.ErrorTypePermanent},
		{"invalid payment", message(PaymentResult{ReservationID: "r-1", Amount: 1, Method: "cash"}),
			apperrors.Wrap(reservationserrors.ErrInvalidPayment, apperrors.CodeValidation, "bad", 422), kafka.ErrorTypePermanent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHandler(&mockRecorder{
				addPaymentFunc: func(ctx context.Context, id string, req *model.PaymentRequest) (*model.Reservation, error) {
					return nil, tt.err
				},
			}, testLogger())

			err := h.Handle(context.Background(), tt.msg)
			if err == nil {
				t.Fatal("expected an error")
			}
			if got := kafka.ClassifyError(err); got != tt.want {
				t.Errorf("ClassifyError() = %v, want %v (%v)", got, tt.want, err)
			}
		})
	}
}
