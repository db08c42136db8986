package reservation

import (
	"context"
	"time"

	"go.uber.org/zap"

	reservationRepo "viewingdesk/database/repository/reservation"
	"viewingdesk/models"
	"viewingdesk/utils"
)

// ReservationService is the operation surface offered to the HTTP layer.
type ReservationService interface {
	Lookup(ctx context.Context, receptionCode, phone string) (*models.Reservation, error)
	CheckAvailability(ctx context.Context, property string, at time.Time, excludeRecordID string) (models.AvailabilityResult, error)
	Update(ctx context.Context, recordID string, changes models.ReservationChanges) (*models.Reservation, error)
	Cancel(ctx context.Context, recordID string) (alreadyCancelled bool, err error)
	Calendar() *Calendar
}

// DefaultReservationService implements ReservationService over a record store.
type DefaultReservationService struct {
	Repo     reservationRepo.ReservationRepository
	Cal      *Calendar
	Locker   utils.SlotLocker
	Logger   *zap.Logger
	FailOpen bool // proceed with an update when the availability pre-check itself fails
}

func NewReservationService(
	repo reservationRepo.ReservationRepository,
	cal *Calendar,
	locker utils.SlotLocker,
	failOpen bool,
	logger *zap.Logger,
) *DefaultReservationService {
	if cal == nil {
		cal = DefaultCalendar()
	}
	if locker == nil {
		locker = utils.NewLocalSlotLocker()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DefaultReservationService{
		Repo:     repo,
		Cal:      cal,
		Locker:   locker,
		Logger:   logger,
		FailOpen: failOpen,
	}
}

func (s *DefaultReservationService) Calendar() *Calendar {
	return s.Cal
}
