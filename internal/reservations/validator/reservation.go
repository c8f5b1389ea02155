package validator

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	reservationserrors "rentabook/internal/reservations/errors"
	"rentabook/pkg/logger"
	"rentabook/pkg/model"
)

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (v ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return ""
	}
	var messages []string
	for _, err := range v {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed: %d error(s): [%s]", len(v), strings.Join(messages, "; "))
}

// Details renders the errors as a field -> message map for API responses.
func (v ValidationErrors) Details() map[string]any {
	details := make(map[string]any, len(v))
	for _, err := range v {
		details[err.Field] = err.Message
	}
	return details
}

type ReservationValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewReservationValidator(log *logger.Logger) *ReservationValidator {
	v := validator.New()

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	if err := v.RegisterValidation("payment_method", validatePaymentMethod); err != nil {
		log.Fatal("Failed to register 'payment_method' validator", "error", err)
	}
	if err := v.RegisterValidation("payment_status", validatePaymentStatus); err != nil {
		log.Fatal("Failed to register 'payment_status' validator", "error", err)
	}

	log.Info("Reservation validator initialized successfully")

	return &ReservationValidator{
		validate: v,
		logger:   log,
	}
}

func validatePaymentMethod(fl validator.FieldLevel) bool {
	return model.PaymentMethod(fl.Field().String()).IsValid()
}

func validatePaymentStatus(fl validator.FieldLevel) bool {
	return model.PaymentStatus(fl.Field().String()).IsValid()
}

func (v *ReservationValidator) ValidateCreate(req *model.CreateReservationRequest) error {
	if err := v.structErrors(req); err != nil {
		return err
	}

	start, _ := model.ParseDay(req.StartDate)
	end, _ := model.ParseDay(req.EndDate)
	if !end.After(start) {
		return dateRangeError()
	}

	return nil
}

func (v *ReservationValidator) ValidateStayUpdate(update *model.StayUpdate) error {
	if update.IsEmpty() {
		return ValidationErrors{
			ValidationError{
				Field:   "body",
				Message: "at least one of start_date, end_date or guest_count is required",
			},
		}
	}

	if err := v.structErrors(update); err != nil {
		return err
	}

	if update.StartDate != nil && update.EndDate != nil {
		start, _ := model.ParseDay(*update.StartDate)
		end, _ := model.ParseDay(*update.EndDate)
		if !end.After(start) {
			return dateRangeError()
		}
	}

	return nil
}

// dateRangeError matches both ValidationErrors and ErrInvalidDateRange.
func dateRangeError() error {
	return fmt.Errorf("%w: %w", reservationserrors.ErrInvalidDateRange, ValidationErrors{
		ValidationError{
			Field:   "end_date",
			Message: "end_date must be after start_date",
		},
	})
}

func (v *ReservationValidator) ValidatePayment(req *model.PaymentRequest) error {
	return v.structErrors(req)
}

func (v *ReservationValidator) ValidateCancel(req *model.CancelRequest) error {
	return v.structErrors(req)
}

// Validate checks a full reservation before it is persisted.
func (v *ReservationValidator) Validate(reservation *model.Reservation) error {
	return v.structErrors(reservation)
}

func (v *ReservationValidator) structErrors(s any) error {
	if err := v.validate.Struct(s); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}
	return nil
}

func (v *ReservationValidator) translateValidationErrors(errs validator.ValidationErrors) ValidationErrors {
	var validationErrors ValidationErrors

	for _, err := range errs {
		message := err.Error()

		switch err.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", err.Field())
		case "min":
			message = fmt.Sprintf("%s must be at least %s", err.Field(), err.Param())
		case "max":
			message = fmt.Sprintf("%s must be at most %s", err.Field(), err.Param())
		case "gt":
			message = fmt.Sprintf("%s must be greater than %s", err.Field(), err.Param())
		case "gte":
			message = fmt.Sprintf("%s must be at least %s", err.Field(), err.Param())
		case "gtfield":
			message = fmt.Sprintf("%s must be after %s", err.Field(), strings.ToLower(err.Param()))
		case "mongodb":
			message = fmt.Sprintf("%s must be a valid MongoDB ObjectID", err.Field())
		case "oneof":
			message = fmt.Sprintf("%s must be one of: %s", err.Field(), err.Param())
		case "datetime":
			message = fmt.Sprintf("%s must be a date in YYYY-MM-DD format", err.Field())
		case "payment_method":
			message = fmt.Sprintf("%s must be one of: cash, transfer, card, check, other", err.Field())
		case "payment_status":
			message = fmt.Sprintf("%s must be one of: pending, paid, failed, refunded", err.Field())
		}

		validationErrors = append(validationErrors, ValidationError{
			Field:   fieldPath(err),
			Message: message,
		})
	}

	return validationErrors
}

// fieldPath drops the root struct name so nested fields read like "deposit.amount".
func fieldPath(err validator.FieldError) string {
	ns := err.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return err.Field()
}
