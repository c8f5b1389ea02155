package model

import "time"

type PaymentMethod string

const (
	PaymentCash     PaymentMethod = "cash"
	PaymentTransfer PaymentMethod = "transfer"
	PaymentCard     PaymentMethod = "card"
	PaymentCheck    PaymentMethod = "check"
	PaymentOther    PaymentMethod = "other"
)

func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentCash, PaymentTransfer, PaymentCard, PaymentCheck, PaymentOther:
		return true
	}
	return false
}

type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentPaid     PaymentStatus = "paid"
	PaymentFailed   PaymentStatus = "failed"
	PaymentRefunded PaymentStatus = "refunded"
)

func (s PaymentStatus) IsValid() bool {
	switch s {
	case PaymentPending, PaymentPaid, PaymentFailed, PaymentRefunded:
		return true
	}
	return false
}

// Payment is an immutable ledger entry embedded in its reservation.
type Payment struct {
	ID        string        `json:"id" bson:"id"`
	Amount    float64       `json:"amount" bson:"amount" validate:"gt=0"`
	Method    PaymentMethod `json:"method" bson:"method" validate:"required,payment_method"`
	Status    PaymentStatus `json:"status" bson:"status" validate:"required,payment_status"`
	PaidAt    time.Time     `json:"paid_at" bson:"paid_at"`
	Reference string        `json:"reference,omitempty" bson:"reference,omitempty" validate:"max=200"`
	Notes     string        `json:"notes,omitempty" bson:"notes,omitempty" validate:"max=1000"`
}

type PaymentRequest struct {
	Amount    float64 `json:"amount" validate:"gt=0"`
	Method    string  `json:"method" validate:"required,payment_method"`
	Status    string  `json:"status,omitempty" validate:"omitempty,payment_status"`
	Reference string  `json:"reference,omitempty" validate:"max=200"`
	Notes     string  `json:"notes,omitempty" validate:"max=1000"`
}

// ToPayment converts the request into a ledger entry. Status defaults to paid.
func (r *PaymentRequest) ToPayment() Payment {
	status := PaymentStatus(r.Status)
	if status == "" {
		status = PaymentPaid
	}
	return Payment{
		Amount:    r.Amount,
		Method:    PaymentMethod(r.Method),
		Status:    status,
		Reference: r.Reference,
		Notes:     r.Notes,
	}
}
