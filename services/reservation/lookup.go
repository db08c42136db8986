package reservation

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	reservationRepo "viewingdesk/database/repository/reservation"
	"viewingdesk/models"
)

// Lookup finds the active reservation whose reception code and phone both match exactly.
func (s *DefaultReservationService) Lookup(ctx context.Context, receptionCode, phone string) (*models.Reservation, error) {
	if strings.TrimSpace(receptionCode) == "" || strings.TrimSpace(phone) == "" {
		return nil, invalidInput("reception code and phone are required")
	}

	r, err := s.Repo.FindActiveByReceptionCode(ctx, receptionCode, phone)
	if err != nil {
		if errors.Is(err, reservationRepo.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		s.Logger.Error("lookup query failed", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrStoreFailure, err)
	}
	if !r.IsActive() {
		return nil, ErrNotFound
	}
	return r, nil
}
