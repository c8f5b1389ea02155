package ledger

import (
	"errors"
	"testing"
	"time"

	reservationserrors "rentabook/internal/reservations/errors"
	"rentabook/pkg/model"
)

var now = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func paid(amount float64) model.Payment {
	return model.Payment{Amount: amount, Method: model.PaymentCash, Status: model.PaymentPaid}
}

func TestAddPayment_AccumulatesDeposit(t *testing.T) {
	r := &model.Reservation{State: model.StateConfirmed, TotalAmount: 1000}

	if _, err := AddPayment(r, paid(500), now); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := AddPayment(r, paid(200), now); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if r.DepositPaid != 700 {
		t.Errorf("expected deposit 700, got %v", r.DepositPaid)
	}
	if got := r.OutstandingAmount(); got != 300 {
		t.Errorf("expected outstanding 300, got %v", got)
	}
	if len(r.Payments) != 2 {
		t.Fatalf("expected 2 ledger entries, got %d", len(r.Payments))
	}
	for _, p := range r.Payments {
		if p.ID == "" {
			t.Error("expected payment ID to be assigned")
		}
		if !p.PaidAt.Equal(now) {
			t.Errorf("expected PaidAt %v, got %v", now, p.PaidAt)
		}
	}
}

func TestAddPayment_DepositMatchesLedgerSum(t *testing.T) {
	r := &model.Reservation{}
	entries := []model.Payment{
		paid(0.1),
		paid(0.2),
		{Amount: 50, Method: model.PaymentCard, Status: model.PaymentPending},
		{Amount: 40, Method: model.PaymentCard, Status: model.PaymentFailed},
		paid(99.7),
		{Amount: 30, Method: model.PaymentTransfer, Status: model.PaymentRefunded},
	}

	for i, e := range entries {
		if _, err := AddPayment(r, e, now); err != nil {
			t.Fatalf("entry %d: unexpected error: %v", i, err)
		}
		if r.DepositPaid != Balance(r.Payments) {
			t.Fatalf("entry %d: deposit %v does not match ledger %v", i, r.DepositPaid, Balance(r.Payments))
		}
	}
	if r.DepositPaid != 70 {
		t.Errorf("expected deposit 70, got %v", r.DepositPaid)
	}
}

func TestAddPayment_Rejects(t *testing.T) {
	tests := []struct {
		name  string
		entry model.Payment
	}{
		{"zero amount", model.Payment{Amount: 0, Method: model.PaymentCash, Status: model.PaymentPaid}},
		{"rounds to zero", model.Payment{Amount: 0.004, Method: model.PaymentCash, Status: model.PaymentPaid}},
		{"negative amount", model.Payment{Amount: -10, Method: model.PaymentCash, Status: model.PaymentPaid}},
		{"unknown method", model.Payment{Amount: 10, Method: "barter", Status: model.PaymentPaid}},
		{"unknown status", model.Payment{Amount: 10, Method: model.PaymentCash, Status: "maybe"}},
		{"refund beyond deposit", model.Payment{Amount: 500, Method: model.PaymentCash, Status: model.PaymentRefunded}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &model.Reservation{}
			if _, err := AddPayment(r, paid(100), now); err != nil {
				t.Fatalf("setup: %v", err)
			}

			_, err := AddPayment(r, tt.entry, now)
			if !errors.Is(err, reservationserrors.ErrInvalidPayment) {
				t.Fatalf("expected ErrInvalidPayment, got %v", err)
			}
			if len(r.Payments) != 1 || r.DepositPaid != 100 {
				t.Errorf("rejected entry must not change the ledger: %d entries, deposit %v", len(r.Payments), r.DepositPaid)
			}
		})
	}
}

func TestAddPayment_DuplicateReferenceIsIgnored(t *testing.T) {
	r := &model.Reservation{}
	entry := paid(150)
	entry.Reference = "txn-42"

	added, err := AddPayment(r, entry, now)
	if err != nil || !added {
		t.Fatalf("first add: added=%v err=%v", added, err)
	}
	added, err = AddPayment(r, entry, now)
	if err != nil {
		t.Fatalf("second add: unexpected error: %v", err)
	}
	if added {
		t.Error("expected duplicate reference to be ignored")
	}
	if len(r.Payments) != 1 || r.DepositPaid != 150 {
		t.Errorf("expected a single entry of 150, got %d entries, deposit %v", len(r.Payments), r.DepositPaid)
	}
}

func TestAddPayment_AnyState(t *testing.T) {
	for _, state := range []model.ReservationState{model.StatePending, model.StateCancelled, model.StateCompleted} {
		r := &model.Reservation{State: state}
		if _, err := AddPayment(r, paid(10), now); err != nil {
			t.Errorf("state %s: unexpected error: %v", state, err)
		}
	}
}
