package service

import (
	"context"
	"errors"
	"net/http"

	reservationserrors "rentabook/internal/reservations/errors"
	"rentabook/internal/reservations/validator"
	apperrors "rentabook/pkg/errors"
	"rentabook/pkg/model"
)

var (
	errInvalidDateRange    = reservationserrors.ErrInvalidDateRange
	errPropertyNotRentable = reservationserrors.ErrPropertyNotRentable
	errCapacityExceeded    = reservationserrors.ErrCapacityExceeded
	errClientNotFound      = reservationserrors.ErrClientNotFound
	errInvalidTransition   = reservationserrors.ErrInvalidTransition
	errVersionConflict     = reservationserrors.ErrVersionConflict
)

type domainError struct {
	target  error
	code    string
	status  int
	message string
}

// domainErrors maps sentinel errors to what the caller sees. The sentinel stays
// wrapped so errors.Is keeps working on the returned AppError.
var domainErrors = []domainError{
	{reservationserrors.ErrNotFound, apperrors.CodeNotFound, http.StatusNotFound, "Reservation not found"},
	{reservationserrors.ErrInvalidID, apperrors.CodeInvalidInput, http.StatusBadRequest, "Invalid ID format"},
	{reservationserrors.ErrPropertyNotFound, apperrors.CodeNotFound, http.StatusNotFound, "Property not found"},
	{reservationserrors.ErrClientNotFound, apperrors.CodeNotFound, http.StatusNotFound, "Client not found"},
	{reservationserrors.ErrPropertyNotRentable, apperrors.CodePropertyNotRentable, http.StatusUnprocessableEntity, "Property is not available for temporary rental"},
	{reservationserrors.ErrInvalidDateRange, apperrors.CodeInvalidDateRange, http.StatusUnprocessableEntity, "End date must be after start date and start date cannot be in the past"},
	{reservationserrors.ErrDateConflict, apperrors.CodeDateConflict, http.StatusConflict, "Stay overlaps an existing reservation"},
	{reservationserrors.ErrCapacityExceeded, apperrors.CodeCapacityExceeded, http.StatusUnprocessableEntity, "Guest count exceeds property capacity"},
	{reservationserrors.ErrInvalidTransition, apperrors.CodeInvalidTransition, http.StatusConflict, "Reservation cannot move to the requested state"},
	{reservationserrors.ErrInvalidPayment, apperrors.CodeValidation, http.StatusUnprocessableEntity, "Invalid payment"},
	{reservationserrors.ErrVersionConflict, apperrors.CodeBusy, http.StatusServiceUnavailable, "Reservation is being modified, please retry"},
}

// translate turns any error from the layers below into an AppError.
func translate(err error) *apperrors.AppError {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	for _, d := range domainErrors {
		if errors.Is(err, d.target) {
			return apperrors.Wrap(err, d.code, d.message, d.status).
				WithDetails(map[string]any{"reason": err.Error()})
		}
	}

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return apperrors.Timeout("Request timed out")
	case errors.Is(err, context.Canceled):
		return apperrors.Timeout("Request was cancelled")
	}

	return apperrors.Internal("An unexpected error occurred", err)
}

// translateWithID is translate for lookups, naming the missing resource in the details.
func translateWithID(err error, id string) *apperrors.AppError {
	appErr := translate(err)
	if appErr.Code == apperrors.CodeNotFound || appErr.Code == apperrors.CodeInvalidInput {
		appErr.Details = map[string]any{"id": id}
	}
	return appErr
}

// isKnown reports whether err is an expected domain outcome rather than a failure worth logging.
func isKnown(err error) bool {
	if apperrors.IsAppError(err) {
		return true
	}
	for _, d := range domainErrors {
		if errors.Is(err, d.target) {
			return true
		}
	}
	return false
}

func validationError(message string, err error) *apperrors.AppError {
	var details map[string]any
	var errs validator.ValidationErrors
	if errors.As(err, &errs) {
		details = errs.Details()
	} else {
		details = map[string]any{"error": err.Error()}
	}

	if errors.Is(err, reservationserrors.ErrInvalidDateRange) {
		return apperrors.Wrap(err, apperrors.CodeInvalidDateRange, "End date must be after start date", http.StatusUnprocessableEntity).
			WithDetails(details)
	}
	return apperrors.Wrap(err, apperrors.CodeValidation, message, http.StatusUnprocessableEntity).
		WithDetails(details)
}

func dateConflict(conflict *model.Reservation) *apperrors.AppError {
	return apperrors.Wrap(reservationserrors.ErrDateConflict, apperrors.CodeDateConflict,
		"Stay overlaps an existing reservation", http.StatusConflict).
		WithDetails(map[string]any{
			"conflicting_reservation_id": conflict.ID,
			"conflicting_start_date":     model.FormatDay(conflict.StartDate),
			"conflicting_end_date":       model.FormatDay(conflict.EndDate),
		})
}
