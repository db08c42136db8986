package reservation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"

	"go.uber.org/zap"

	reservationRepo "viewingdesk/database/repository/reservation"
	"viewingdesk/models"
)

func validateProperty(property string) error {
	if strings.TrimSpace(property) == "" {
		return invalidInput("property is required")
	}
	if strings.IndexFunc(property, unicode.IsControl) >= 0 {
		return invalidInput("property contains control characters")
	}
	return nil
}

// CheckAvailability reports whether property can be booked in the hour slot containing at.
// Rule rejections come back as Available=false with a nil error; store failures as ErrStoreFailure.
func (s *DefaultReservationService) CheckAvailability(ctx context.Context, property string, at time.Time, excludeRecordID string) (models.AvailabilityResult, error) {
	if err := validateProperty(property); err != nil {
		return models.AvailabilityResult{}, err
	}
	if at.IsZero() {
		return models.AvailabilityResult{}, invalidInput("viewing time is required")
	}
	if excludeRecordID != "" && !reservationRepo.ValidRecordID(excludeRecordID) {
		return models.AvailabilityResult{}, invalidInput("malformed record id")
	}

	violation, err := s.evaluate(ctx, property, at, excludeRecordID)
	if err != nil {
		return models.AvailabilityResult{}, err
	}
	if violation != nil {
		return models.AvailabilityResult{Available: false, Reason: violation.Reason}, nil
	}
	return models.AvailabilityResult{Available: true}, nil
}

// evaluate runs the calendar rules and then the conflict query. It has no side effects.
func (s *DefaultReservationService) evaluate(ctx context.Context, property string, at time.Time, excludeRecordID string) (*RuleViolation, error) {
	if v := s.Cal.CheckRules(at); v != nil {
		return v, nil
	}

	slot := s.Cal.SlotOf(at)
	conflicts, err := s.Repo.FindActiveInSlot(ctx, models.SlotQuery{
		Property:        property,
		Slot:            slot,
		ExcludeRecordID: excludeRecordID,
	})
	if err != nil {
		if errors.Is(err, reservationRepo.ErrInvalidRecordID) {
			return nil, invalidInput("malformed record id")
		}
		s.Logger.Error("availability query failed",
			zap.String("property", property),
			zap.Time("slotStart", slot.Start),
			zap.Error(err),
		)
		return nil, fmt.Errorf("%w: %v", ErrStoreFailure, err)
	}

	if len(conflicts) > 0 {
		s.Logger.Debug("slot already booked",
			zap.String("property", property),
			zap.Time("slotStart", slot.Start),
			zap.String("conflictRecordId", conflicts[0].RecordID),
		)
		return &RuleViolation{Kind: RuleSlotBooked, Reason: s.Cal.bookedReason(property, slot)}, nil
	}
	return nil, nil
}
