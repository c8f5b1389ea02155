package errors

import "errors"

var (
	ErrNotFound = errors.New("reservation not found")

	ErrInvalidID = errors.New("invalid reservation ID format")

	ErrPropertyNotFound = errors.New("property not found")

	ErrPropertyNotRentable = errors.New("property is not available for temporary rental")

	ErrClientNotFound = errors.New("client not found")

	ErrInvalidDateRange = errors.New("end date must be after start date and start date cannot be in the past")

	ErrDateConflict = errors.New("stay overlaps an existing reservation")

	ErrCapacityExceeded = errors.New("guest count exceeds property capacity")

	ErrInvalidTransition = errors.New("invalid reservation state transition")

	ErrInvalidPayment = errors.New("invalid payment")

	ErrVersionConflict = errors.New("reservation was modified concurrently")
)
