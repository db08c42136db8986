package reservation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	reservationRepo "viewingdesk/database/repository/reservation"
	"viewingdesk/models"
	"viewingdesk/utils"
)

func validateChanges(changes models.ReservationChanges) error {
	if changes.Empty() {
		return invalidInput("no fields to update")
	}
	if changes.Phone != nil && strings.TrimSpace(*changes.Phone) == "" {
		return invalidInput("phone must not be empty")
	}
	if changes.Property != nil {
		if err := validateProperty(*changes.Property); err != nil {
			return err
		}
	}
	if changes.ViewingAt != nil && changes.ViewingAt.IsZero() {
		return invalidInput("viewing time must not be empty")
	}
	return nil
}

func slotKey(property string, slot models.HourSlot) string {
	return property + "|" + slot.Start.UTC().Format(time.RFC3339)
}

// Update applies changes to a reservation. When the property or viewing time changes, the
// effective post-update slot must pass the availability check (excluding the record itself)
// before anything is written.
func (s *DefaultReservationService) Update(ctx context.Context, recordID string, changes models.ReservationChanges) (*models.Reservation, error) {
	if !reservationRepo.ValidRecordID(recordID) {
		return nil, invalidInput("malformed record id")
	}
	if err := validateChanges(changes); err != nil {
		return nil, err
	}
	log := s.Logger.With(zap.String("recordId", recordID))

	if changes.TouchesSlot() {
		unlock, err := s.guard(ctx, log, recordID, changes)
		if err != nil {
			return nil, err
		}
		defer unlock()
	}

	updated, err := s.Repo.UpdateFields(ctx, recordID, changes)
	if err != nil {
		if errors.Is(err, reservationRepo.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		log.Error("failed to update reservation", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrStoreFailure, err)
	}

	log.Info("reservation updated")
	return updated, nil
}

// guard runs the availability pre-check and, when it passes, returns with the target slot
// locked until the caller releases it. A failure of the check itself is tolerated when
// FailOpen is set; rule violations never are.
func (s *DefaultReservationService) guard(ctx context.Context, log *zap.Logger, recordID string, changes models.ReservationChanges) (func(), error) {
	noop := func() {}

	current, err := s.Repo.GetByID(ctx, recordID)
	if err != nil {
		if errors.Is(err, reservationRepo.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return noop, s.checkFailed(log, "failed to load current reservation", err)
	}

	effective := changes.ApplyTo(*current)
	if effective.Property == "" || effective.ViewingAt.IsZero() {
		return noop, nil
	}

	slot := s.Cal.SlotOf(effective.ViewingAt)
	unlock, err := s.Locker.Lock(ctx, slotKey(effective.Property, slot))
	if err != nil {
		if errors.Is(err, utils.ErrSlotBusy) {
			return nil, &RuleViolation{
				Kind:   RuleSlotBusy,
				Reason: "この時間帯は他のお客様が手続き中です。しばらくしてから再度お試しください。",
			}
		}
		if ferr := s.checkFailed(log, "failed to acquire slot lock", err); ferr != nil {
			return nil, ferr
		}
		unlock = noop
	}

	violation, err := s.evaluate(ctx, effective.Property, effective.ViewingAt, recordID)
	if err != nil {
		unlock()
		if errors.Is(err, ErrInvalidInput) {
			return nil, err
		}
		if ferr := s.checkFailed(log, "availability check failed", err); ferr != nil {
			return nil, ferr
		}
		return noop, nil
	}
	if violation != nil {
		unlock()
		log.Info("update rejected", zap.String("rule", string(violation.Kind)))
		return nil, violation
	}

	return unlock, nil
}

// checkFailed applies the fail-open policy to an infrastructure failure of the pre-check.
func (s *DefaultReservationService) checkFailed(log *zap.Logger, msg string, err error) error {
	if s.FailOpen {
		log.Warn(msg+"; continuing with update", zap.Error(err))
		return nil
	}
	log.Error(msg, zap.Error(err))
	if errors.Is(err, ErrStoreFailure) {
		return err
	}
	return fmt.Errorf("%w: %v", ErrStoreFailure, err)
}
