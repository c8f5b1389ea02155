package ledger

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	reservationserrors "rentabook/internal/reservations/errors"
	"rentabook/pkg/model"
)

// Balance sums settled entries: paid adds, refunded subtracts, pending and failed are ignored.
func Balance(payments []model.Payment) float64 {
	var total float64
	for _, p := range payments {
		switch p.Status {
		case model.PaymentPaid:
			total += p.Amount
		case model.PaymentRefunded:
			total -= p.Amount
		}
	}
	return roundCents(total)
}

// AddPayment appends entry to the reservation's ledger and recomputes DepositPaid.
// An entry whose non-empty reference is already recorded is ignored and reported as not added.
// On error the reservation is left untouched.
func AddPayment(r *model.Reservation, entry model.Payment, now time.Time) (bool, error) {
	entry.Amount = roundCents(entry.Amount)
	if err := validate(entry); err != nil {
		return false, err
	}
	if entry.Reference != "" && hasReference(r.Payments, entry.Reference) {
		return false, nil
	}

	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.PaidAt.IsZero() {
		entry.PaidAt = now
	}

	payments := append(append([]model.Payment(nil), r.Payments...), entry)
	balance := Balance(payments)
	if balance < 0 {
		return false, fmt.Errorf("%w: refund of %.2f exceeds deposited %.2f", reservationserrors.ErrInvalidPayment, entry.Amount, r.DepositPaid)
	}

	r.Payments = payments
	r.DepositPaid = balance
	r.UpdatedAt = now
	return true, nil
}

func validate(p model.Payment) error {
	if !(p.Amount > 0) || math.IsInf(p.Amount, 0) {
		return fmt.Errorf("%w: amount must be positive", reservationserrors.ErrInvalidPayment)
	}
	if !p.Method.IsValid() {
		return fmt.Errorf("%w: unknown method %q", reservationserrors.ErrInvalidPayment, p.Method)
	}
	if !p.Status.IsValid() {
		return fmt.Errorf("%w: unknown status %q", reservationserrors.ErrInvalidPayment, p.Status)
	}
	return nil
}

func hasReference(payments []model.Payment, ref string) bool {
	for _, p := range payments {
		if p.Reference == ref {
			return true
		}
	}
	return false
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
