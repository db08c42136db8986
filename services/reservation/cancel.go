package reservation

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	reservationRepo "viewingdesk/database/repository/reservation"
	"viewingdesk/models"
)

// Cancel moves a reservation to cancelled. Cancelling an already cancelled record is a no-op
// that reports alreadyCancelled=true without writing.
func (s *DefaultReservationService) Cancel(ctx context.Context, recordID string) (bool, error) {
	if !reservationRepo.ValidRecordID(recordID) {
		return false, invalidInput("malformed record id")
	}
	log := s.Logger.With(zap.String("recordId", recordID))

	current, err := s.Repo.GetByID(ctx, recordID)
	if err != nil {
		if errors.Is(err, reservationRepo.ErrRecordNotFound) {
			return false, ErrNotFound
		}
		log.Error("failed to load reservation for cancel", zap.Error(err))
		return false, fmt.Errorf("%w: %v", ErrStoreFailure, err)
	}

	if current.Status == models.StatusCancelled {
		log.Info("reservation already cancelled")
		return true, nil
	}

	if _, err := s.Repo.SetStatus(ctx, recordID, models.StatusCancelled); err != nil {
		if errors.Is(err, reservationRepo.ErrRecordNotFound) {
			return false, ErrNotFound
		}
		log.Error("failed to cancel reservation", zap.Error(err))
		return false, fmt.Errorf("%w: %v", ErrStoreFailure, err)
	}

	log.Info("reservation cancelled")
	return false, nil
}
