package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"rentabook/internal/reservations/availability"
	"rentabook/internal/reservations/events"
	"rentabook/internal/reservations/ledger"
	"rentabook/internal/reservations/lifecycle"
	"rentabook/internal/reservations/repository"
	"rentabook/internal/reservations/validator"
	"rentabook/pkg/config"
	apperrors "rentabook/pkg/errors"
	"rentabook/pkg/lock"
	"rentabook/pkg/model"
	"rentabook/pkg/sanitizer"
)

type ReservationService interface {
	Create(ctx context.Context, req *model.CreateReservationRequest) (*model.Reservation, error)
	GetByID(ctx context.Context, id string) (*model.Reservation, error)
	GetAll(ctx context.Context, limit int, offset int64) ([]*model.Reservation, int64, error)
	SearchByProperty(ctx context.Context, propertyID string, from, to *time.Time, limit int, offset int64) ([]*model.Reservation, int64, error)
	UpdateStay(ctx context.Context, id string, update *model.StayUpdate) (*model.Reservation, error)
	Confirm(ctx context.Context, id string) (*model.Reservation, error)
	Cancel(ctx context.Context, id string, req *model.CancelRequest) (*model.Reservation, error)
	Complete(ctx context.Context, id string) (*model.Reservation, error)
	AddPayment(ctx context.Context, id string, req *model.PaymentRequest) (*model.Reservation, error)
	AvailableDays(ctx context.Context, propertyID string, from, to time.Time) ([]time.Time, error)
}

type reservationService struct {
	repo       repository.ReservationRepository
	properties repository.PropertyRepository
	clients    repository.ClientRepository
	checker    *availability.Checker
	locker     lock.Locker
	validator  *validator.ReservationValidator
	publisher  events.Publisher
	cfg        *config.Config
	now        func() time.Time
}

func NewReservationService(
	repo repository.ReservationRepository,
	properties repository.PropertyRepository,
	clients repository.ClientRepository,
	locker lock.Locker,
	validator *validator.ReservationValidator,
	publisher events.Publisher,
	cfg *config.Config,
) ReservationService {
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}
	return &reservationService{
		repo:       repo,
		properties: properties,
		clients:    clients,
		checker:    availability.NewChecker(repo),
		locker:     locker,
		validator:  validator,
		publisher:  publisher,
		cfg:        cfg,
		now:        time.Now,
	}
}

// Create admits a new pending reservation. Every check that does not depend on
// other reservations runs first; the overlap check and the insert run under the
// property's lock so two racing requests cannot both pass.
func (s *reservationService) Create(ctx context.Context, req *model.CreateReservationRequest) (*model.Reservation, error) {
	s.sanitizeCreate(req)
	if err := s.validator.ValidateCreate(req); err != nil {
		s.cfg.Log.Warn("Reservation validation failed", "property_id", req.PropertyID, "error", err)
		return nil, validationError("Invalid reservation input", err)
	}

	start, _ := model.ParseDay(req.StartDate)
	end, _ := model.ParseDay(req.EndDate)
	stay := model.NewDateRange(start, end)
	if stay.Start.Before(s.today()) {
		return nil, translate(fmt.Errorf("%w: start date %s is in the past", errInvalidDateRange, model.FormatDay(stay.Start)))
	}

	if _, err := s.admitProperty(ctx, req.PropertyID, req.GuestCount, true); err != nil {
		return nil, err
	}
	if err := s.requireClient(ctx, req.ClientID); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	reservation := &model.Reservation{
		PropertyID:  req.PropertyID,
		ClientID:    req.ClientID,
		CreatedBy:   req.CreatedBy,
		StartDate:   stay.Start,
		EndDate:     stay.End,
		State:       model.StatePending,
		TotalAmount: req.TotalAmount,
		GuestCount:  req.GuestCount,
		Payments:    []model.Payment{},
		Notes:       req.Notes,
	}
	var deposit *model.Payment
	if req.Deposit != nil {
		if _, err := ledger.AddPayment(reservation, req.Deposit.ToPayment(), now); err != nil {
			return nil, translate(err)
		}
		deposit = &reservation.Payments[0]
	}
	if err := s.validator.Validate(reservation); err != nil {
		return nil, validationError("Reservation validation failed", err)
	}

	err := s.withPropertyLock(ctx, reservation.PropertyID, func(ctx context.Context) error {
		return s.repo.ExecuteTransaction(ctx, func(txCtx context.Context) error {
			if err := s.verifyAvailability(txCtx, reservation); err != nil {
				return err
			}
			if err := txCtx.Err(); err != nil {
				return err
			}
			if err := s.repo.Create(txCtx, reservation); err != nil {
				return apperrors.Internal("Failed to create reservation", err)
			}
			return nil
		})
	})
	if err != nil {
		s.cfg.Log.Error("Failed to create reservation",
			"property_id", reservation.PropertyID,
			"stay", stay.String(),
			"error", err,
		)
		return nil, translate(err)
	}

	s.cfg.Log.Info("Reservation created successfully",
		"id", reservation.ID,
		"property_id", reservation.PropertyID,
		"client_id", reservation.ClientID,
		"stay", stay.String(),
	)

	event := events.NewReservationEvent(events.ReservationCreated, reservation, now)
	event.Payment = deposit
	s.publish(ctx, event)
	return reservation, nil
}

func (s *reservationService) GetByID(ctx context.Context, id string) (*model.Reservation, error) {
	id = sanitizer.SanitizeIdentifier(id)
	if id == "" {
		return nil, apperrors.InvalidInput("Reservation ID cannot be empty")
	}

	reservation, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if !isKnown(err) {
			s.cfg.Log.Error("Failed to retrieve reservation", "id", id, "error", err)
		}
		return nil, translateWithID(err, id)
	}

	return reservation, nil
}

func (s *reservationService) GetAll(ctx context.Context, limit int, offset int64) ([]*model.Reservation, int64, error) {
	var count int64
	var reservations []*model.Reservation
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.Count(ctx)
		if errCount != nil {
			s.cfg.Log.Error("Failed to count reservations", "error", errCount)
			errCount = apperrors.Internal("Failed to count reservations", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		reservations, errFind = s.repo.FindAll(ctx, limit, offset)
		if errFind != nil {
			s.cfg.Log.Error("Failed to list reservations", "error", errFind)
			errFind = apperrors.Internal("Failed to retrieve reservations", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return reservations, count, nil
}

func (s *reservationService) SearchByProperty(ctx context.Context, propertyID string, from, to *time.Time, limit int, offset int64) ([]*model.Reservation, int64, error) {
	propertyID = sanitizer.SanitizeIdentifier(propertyID)
	if propertyID == "" {
		return nil, 0, apperrors.InvalidInput("property_id is required")
	}
	if from != nil && to != nil && !to.After(*from) {
		return nil, 0, translate(fmt.Errorf("%w: end_date must be after start_date", errInvalidDateRange))
	}

	var count int64
	var reservations []*model.Reservation
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		var err error
		count, err = s.repo.CountByProperty(ctx, propertyID, from, to)
		if err != nil {
			s.cfg.Log.Error("Failed to count reservations by property", "property_id", propertyID, "error", err)
			errCount = apperrors.Internal("Failed to count reservations", err)
		}
	}()

	go func() {
		defer wg.Done()
		var err error
		reservations, err = s.repo.FindByProperty(ctx, propertyID, from, to, limit, offset)
		if err != nil {
			s.cfg.Log.Error("Failed to search reservations",
				"property_id", propertyID,
				"limit", limit,
				"offset", offset,
				"error", err,
			)
			errFind = apperrors.Internal("Failed to search reservations", err)
		}
	}()

	wg.Wait()

	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	s.cfg.Log.Debug("Reservation search completed",
		"property_id", propertyID,
		"count", len(reservations),
		"total_count", count,
	)
	return reservations, count, nil
}

// UpdateStay changes dates or guest count. It takes the property's lock like
// Create, so the edited stay is admitted against a stable reservation set.
func (s *reservationService) UpdateStay(ctx context.Context, id string, update *model.StayUpdate) (*model.Reservation, error) {
	id = sanitizer.SanitizeIdentifier(id)
	if id == "" {
		return nil, apperrors.InvalidInput("Reservation ID cannot be empty")
	}
	if err := s.validator.ValidateStayUpdate(update); err != nil {
		s.cfg.Log.Warn("Stay update validation failed", "id", id, "error", err)
		return nil, validationError("Invalid update input", err)
	}

	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, translateWithID(err, id)
	}

	var updated *model.Reservation
	err = s.withPropertyLock(ctx, existing.PropertyID, func(ctx context.Context) error {
		return s.repo.ExecuteTransaction(ctx, func(txCtx context.Context) error {
			current, err := s.repo.FindByID(txCtx, id)
			if err != nil {
				return err
			}
			merged, err := s.mergeStay(current, update)
			if err != nil {
				return err
			}
			if _, err := s.admitProperty(txCtx, merged.PropertyID, merged.GuestCount, false); err != nil {
				return err
			}
			if err := s.verifyAvailability(txCtx, merged); err != nil {
				return err
			}
			if err := txCtx.Err(); err != nil {
				return err
			}
			merged.UpdatedAt = s.now().UTC()
			if err := s.repo.Save(txCtx, merged); err != nil {
				return err
			}
			updated = merged
			return nil
		})
	})
	if err != nil {
		if !isKnown(err) {
			s.cfg.Log.Error("Failed to update reservation stay", "id", id, "error", err)
		}
		return existing, translateWithID(err, id)
	}

	s.cfg.Log.Info("Reservation stay updated successfully",
		"id", id,
		"stay", updated.Stay().String(),
		"guest_count", updated.GuestCount,
	)
	s.publish(ctx, events.NewReservationEvent(events.ReservationUpdated, updated, updated.UpdatedAt))
	return updated, nil
}

func (s *reservationService) Confirm(ctx context.Context, id string) (*model.Reservation, error) {
	return s.transition(ctx, id, events.ReservationConfirmed, func(r *model.Reservation, now time.Time) error {
		return lifecycle.Confirm(r, now)
	})
}

func (s *reservationService) Cancel(ctx context.Context, id string, req *model.CancelRequest) (*model.Reservation, error) {
	if req == nil {
		req = &model.CancelRequest{}
	}
	req.Reason = sanitizer.SanitizeText(req.Reason)
	if err := s.validator.ValidateCancel(req); err != nil {
		return nil, validationError("Invalid cancel input", err)
	}

	return s.transition(ctx, id, events.ReservationCancelled, func(r *model.Reservation, now time.Time) error {
		return lifecycle.Cancel(r, req.Reason, now)
	})
}

func (s *reservationService) Complete(ctx context.Context, id string) (*model.Reservation, error) {
	return s.transition(ctx, id, events.ReservationCompleted, func(r *model.Reservation, now time.Time) error {
		return lifecycle.Complete(r, now)
	})
}

// AddPayment records one ledger entry. A payment whose reference was already
// recorded leaves the reservation as it is and is not an error.
func (s *reservationService) AddPayment(ctx context.Context, id string, req *model.PaymentRequest) (*model.Reservation, error) {
	s.sanitizePayment(req)
	if err := s.validator.ValidatePayment(req); err != nil {
		s.cfg.Log.Warn("Payment validation failed", "id", id, "error", err)
		return nil, validationError("Invalid payment input", err)
	}

	var added model.Payment
	reservation, changed, err := s.modify(ctx, id, func(r *model.Reservation) (bool, error) {
		ok, err := ledger.AddPayment(r, req.ToPayment(), s.now().UTC())
		if ok {
			added = r.Payments[len(r.Payments)-1]
		}
		return ok, err
	})
	if err != nil {
		return reservation, err
	}
	if !changed {
		s.cfg.Log.Info("Payment already recorded", "id", id, "reference", req.Reference)
		return reservation, nil
	}

	s.cfg.Log.Info("Payment added successfully",
		"id", id,
		"payment_id", added.ID,
		"amount", added.Amount,
		"status", added.Status,
		"deposit_paid", reservation.DepositPaid,
	)
	event := events.NewReservationEvent(events.PaymentAdded, reservation, added.PaidAt)
	event.Payment = &added
	s.publish(ctx, event)
	return reservation, nil
}

// AvailableDays lists the free days of [from, to] without taking the property's
// lock. The answer may be stale by the time the caller acts on it.
func (s *reservationService) AvailableDays(ctx context.Context, propertyID string, from, to time.Time) ([]time.Time, error) {
	propertyID = sanitizer.SanitizeIdentifier(propertyID)
	if propertyID == "" {
		return nil, apperrors.InvalidInput("Property ID cannot be empty")
	}

	from, to = model.Day(from), model.Day(to)
	if to.Before(from) {
		return nil, translate(fmt.Errorf("%w: end_date must not be before start_date", errInvalidDateRange))
	}
	if days := int(to.Sub(from)/(24*time.Hour)) + 1; days > s.cfg.MaxCalendarDays {
		return nil, apperrors.Validation("Calendar range too large", map[string]any{
			"max_days":       s.cfg.MaxCalendarDays,
			"requested_days": days,
		})
	}

	if _, err := s.properties.FindByID(ctx, propertyID); err != nil {
		return nil, translateWithID(err, propertyID)
	}

	days, err := s.checker.AvailableDays(ctx, propertyID, from, to)
	if err != nil {
		s.cfg.Log.Error("Failed to build availability calendar", "property_id", propertyID, "error", err)
		return nil, apperrors.Internal("Failed to build availability calendar", err)
	}
	return days, nil
}

// --- Helpers ---

const maxSaveAttempts = 3

func (s *reservationService) transition(ctx context.Context, id string, eventType events.EventType, apply func(r *model.Reservation, now time.Time) error) (*model.Reservation, error) {
	reservation, _, err := s.modify(ctx, id, func(r *model.Reservation) (bool, error) {
		return true, apply(r, s.now().UTC())
	})
	if err != nil {
		return reservation, err
	}

	s.cfg.Log.Info("Reservation state changed", "id", reservation.ID, "state", reservation.State)
	s.publish(ctx, events.NewReservationEvent(eventType, reservation, reservation.UpdatedAt))
	return reservation, nil
}

// modify applies fn to a copy of the stored reservation and saves it. A save that
// loses a race with another writer is retried on a fresh copy. On error the
// stored reservation is returned unchanged.
func (s *reservationService) modify(ctx context.Context, id string, fn func(r *model.Reservation) (bool, error)) (*model.Reservation, bool, error) {
	id = sanitizer.SanitizeIdentifier(id)
	if id == "" {
		return nil, false, apperrors.InvalidInput("Reservation ID cannot be empty")
	}

	var (
		current *model.Reservation
		lastErr error
	)
	for attempt := 0; attempt < maxSaveAttempts; attempt++ {
		var err error
		current, err = s.repo.FindByID(ctx, id)
		if err != nil {
			return nil, false, translateWithID(err, id)
		}

		next := current.Clone()
		changed, err := fn(next)
		if err != nil {
			s.cfg.Log.Warn("Reservation change rejected", "id", id, "state", current.State, "error", err)
			return current, false, translate(err)
		}
		if !changed {
			return current, false, nil
		}

		err = s.repo.Save(ctx, next)
		if err == nil {
			return next, true, nil
		}
		if !errors.Is(err, errVersionConflict) {
			s.cfg.Log.Error("Failed to save reservation", "id", id, "error", err)
			return current, false, translateWithID(err, id)
		}
		lastErr = err
	}

	s.cfg.Log.Warn("Reservation kept changing during update", "id", id, "attempts", maxSaveAttempts)
	return current, false, translate(lastErr)
}

// withPropertyLock runs fn while holding the property's lock. Waiting is bounded
// by LockTimeout and a lock that cannot be taken in time is reported as Busy.
func (s *reservationService) withPropertyLock(ctx context.Context, propertyID string, fn func(ctx context.Context) error) error {
	key := lock.PropertyKey(propertyID)

	lockCtx, cancel := context.WithTimeout(ctx, s.cfg.LockTimeout)
	defer cancel()

	unlock, err := s.locker.Lock(lockCtx, key)
	if err != nil {
		if errors.Is(err, lock.ErrTimeout) {
			s.cfg.Log.Warn("Timed out waiting for property lock", "property_id", propertyID, "timeout", s.cfg.LockTimeout)
			return apperrors.Busy("Property is busy with another booking, please retry", err)
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return apperrors.Internal("Failed to acquire property lock", err)
	}
	defer func() {
		releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.WriteTimeout)
		defer cancel()
		if err := unlock(releaseCtx); err != nil {
			s.cfg.Log.Warn("Failed to release property lock", "key", key, "error", err)
		}
	}()

	return fn(ctx)
}

// admitProperty checks the property-level part of an admission decision.
func (s *reservationService) admitProperty(ctx context.Context, propertyID string, guests int, requireRentable bool) (*model.Property, error) {
	property, err := s.properties.FindByID(ctx, propertyID)
	if err != nil {
		if !isKnown(err) {
			s.cfg.Log.Error("Failed to look up property", "property_id", propertyID, "error", err)
		}
		return nil, translateWithID(err, propertyID)
	}
	if requireRentable && !property.Rentable() {
		return nil, translate(fmt.Errorf("%w: %s", errPropertyNotRentable, propertyID))
	}
	if !property.Fits(guests) {
		return nil, translate(fmt.Errorf("%w: %d guests, capacity %d", errCapacityExceeded, guests, *property.Capacity)).
			WithDetails(map[string]any{"guest_count": guests, "capacity": *property.Capacity})
	}
	return property, nil
}

func (s *reservationService) requireClient(ctx context.Context, clientID string) error {
	exists, err := s.clients.Exists(ctx, clientID)
	if err != nil {
		s.cfg.Log.Error("Failed to look up client", "client_id", clientID, "error", err)
		return apperrors.Internal("Failed to look up client", err)
	}
	if !exists {
		return translateWithID(errClientNotFound, clientID)
	}
	return nil
}

func (s *reservationService) verifyAvailability(ctx context.Context, r *model.Reservation) error {
	conflict, err := s.checker.Conflict(ctx, r.PropertyID, r.Stay(), r.ID)
	if err != nil {
		return apperrors.Internal("Failed to check existing reservations", err)
	}
	if conflict != nil {
		return dateConflict(conflict)
	}
	return nil
}

// mergeStay applies update to a copy of r. Moving the start date requires the
// new start to be today or later.
func (s *reservationService) mergeStay(r *model.Reservation, update *model.StayUpdate) (*model.Reservation, error) {
	if !lifecycle.IsEditable(r.State) {
		return nil, fmt.Errorf("%w: %s reservations cannot be edited", errInvalidTransition, r.State)
	}

	merged := r.Clone()
	if update.StartDate != nil {
		start, _ := model.ParseDay(*update.StartDate)
		merged.StartDate = start
	}
	if update.EndDate != nil {
		end, _ := model.ParseDay(*update.EndDate)
		merged.EndDate = end
	}
	if update.GuestCount != nil {
		merged.GuestCount = *update.GuestCount
	}

	stay := merged.Stay()
	if !stay.Valid() {
		return nil, fmt.Errorf("%w: %s", errInvalidDateRange, stay.String())
	}
	if !model.Day(merged.StartDate).Equal(model.Day(r.StartDate)) && stay.Start.Before(s.today()) {
		return nil, fmt.Errorf("%w: start date %s is in the past", errInvalidDateRange, model.FormatDay(stay.Start))
	}
	return merged, nil
}

func (s *reservationService) today() time.Time {
	loc := s.cfg.Location
	if loc == nil {
		loc = time.UTC
	}
	return model.Day(s.now().In(loc))
}

func (s *reservationService) publish(ctx context.Context, event events.ReservationEvent) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.PublishTimeout)
	defer cancel()

	if err := s.publisher.Publish(ctx, event); err != nil {
		s.cfg.Log.Warn("Failed to publish reservation event",
			"event_id", event.ID,
			"event_type", event.Type,
			"reservation_id", event.Reservation.ID,
			"error", err,
		)
	}
}

func (s *reservationService) sanitizeCreate(req *model.CreateReservationRequest) {
	req.PropertyID = sanitizer.SanitizeIdentifier(req.PropertyID)
	req.ClientID = sanitizer.SanitizeIdentifier(req.ClientID)
	req.CreatedBy = sanitizer.SanitizeIdentifier(req.CreatedBy)
	req.StartDate = sanitizer.SanitizeIdentifier(req.StartDate)
	req.EndDate = sanitizer.SanitizeIdentifier(req.EndDate)
	req.Notes = sanitizer.SanitizeNotes(req.Notes)
	if req.Deposit != nil {
		s.sanitizePayment(req.Deposit)
	}
}

func (s *reservationService) sanitizePayment(req *model.PaymentRequest) {
	req.Method = sanitizer.SanitizeCode(req.Method)
	req.Status = sanitizer.SanitizeCode(req.Status)
	req.Reference = sanitizer.SanitizeIdentifier(req.Reference)
	req.Notes = sanitizer.SanitizeNotes(req.Notes)
}
