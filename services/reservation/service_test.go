package reservation

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"viewingdesk/database/repository/reservation/reservationtest"
	"viewingdesk/models"
	"viewingdesk/utils"
)

const sakura = "Sakura Heights"

var errBackend = errors.New("connection reset by peer")

func at(day, hour, minute int) time.Time {
	return time.Date(2025, 6, day, hour, minute, 0, 0, jst)
}

func newService(t *testing.T, failOpen bool) (*DefaultReservationService, *reservationtest.MemoryRepo) {
	t.Helper()
	repo := reservationtest.NewMemoryRepo()
	return NewReservationService(repo, DefaultCalendar(), utils.NewLocalSlotLocker(), failOpen, nil), repo
}

func strPtr(s string) *string { return &s }

func timePtr(t time.Time) *time.Time { return &t }

func TestCheckAvailability_FreeSlot(t *testing.T) {
	svc, _ := newService(t, true)

	res, err := svc.CheckAvailability(context.Background(), sakura, at(10, 10, 0), "")
	require.NoError(t, err)
	assert.Equal(t, models.AvailabilityResult{Available: true}, res)
}

func TestCheckAvailability_BookedSlot(t *testing.T) {
	svc, repo := newService(t, true)
	repo.Add(models.Reservation{Property: sakura, ViewingAt: at(10, 10, 15)})

	res, err := svc.CheckAvailability(context.Background(), sakura, at(10, 10, 0), "")
	require.NoError(t, err)
	assert.False(t, res.Available)
	assert.Contains(t, res.Reason, sakura)
	assert.Contains(t, res.Reason, "10:00")
	assert.Contains(t, res.Reason, "11:00")
}

func TestCheckAvailability_SlotBoundaries(t *testing.T) {
	svc, repo := newService(t, true)
	repo.Add(models.Reservation{Property: sakura, ViewingAt: at(10, 12, 15)})
	ctx := context.Background()

	tests := []struct {
		name      string
		at        time.Time
		available bool
	}{
		{"slot start", at(10, 12, 0), false},
		{"slot end minus a minute", at(10, 12, 59), false},
		{"previous slot", at(10, 11, 59), true},
		{"next slot", at(10, 13, 0), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := svc.CheckAvailability(ctx, sakura, tt.at, "")
			require.NoError(t, err)
			assert.Equal(t, tt.available, res.Available)
		})
	}
}

func TestCheckAvailability_OtherPropertyDoesNotConflict(t *testing.T) {
	svc, repo := newService(t, true)
	repo.Add(models.Reservation{Property: "Maple Court", ViewingAt: at(10, 14, 0)})

	res, err := svc.CheckAvailability(context.Background(), sakura, at(10, 14, 0), "")
	require.NoError(t, err)
	assert.True(t, res.Available)
}

func TestCheckAvailability_PropertyMatchIsCaseSensitive(t *testing.T) {
	svc, repo := newService(t, true)
	repo.Add(models.Reservation{Property: "sakura heights", ViewingAt: at(10, 14, 0)})

	res, err := svc.CheckAvailability(context.Background(), sakura, at(10, 14, 0), "")
	require.NoError(t, err)
	assert.True(t, res.Available)
}

func TestCheckAvailability_SelfExclusion(t *testing.T) {
	svc, repo := newService(t, true)
	own := repo.Add(models.Reservation{Property: sakura, ViewingAt: at(10, 14, 20)})

	res, err := svc.CheckAvailability(context.Background(), sakura, at(10, 14, 0), own.RecordID)
	require.NoError(t, err)
	assert.True(t, res.Available)
}

func TestCheckAvailability_CancelledReservationFreesSlot(t *testing.T) {
	svc, repo := newService(t, true)
	ctx := context.Background()
	r := repo.Add(models.Reservation{Property: sakura, ViewingAt: at(10, 15, 0)})

	res, err := svc.CheckAvailability(ctx, sakura, at(10, 15, 30), "")
	require.NoError(t, err)
	require.False(t, res.Available)

	_, err = svc.Cancel(ctx, r.RecordID)
	require.NoError(t, err)

	res, err = svc.CheckAvailability(ctx, sakura, at(10, 15, 30), "")
	require.NoError(t, err)
	assert.True(t, res.Available)
}

func TestCheckAvailability_BusinessRules(t *testing.T) {
	svc, repo := newService(t, true)
	repo.FailFind = errBackend // rules must reject before any query
	cal := svc.Calendar()

	res, err := svc.CheckAvailability(context.Background(), sakura, at(10, 16, 0), "")
	require.NoError(t, err)
	assert.Equal(t, models.AvailabilityResult{Available: false, Reason: cal.hoursReason()}, res)

	res, err = svc.CheckAvailability(context.Background(), sakura, at(11, 11, 0), "")
	require.NoError(t, err)
	assert.Equal(t, models.AvailabilityResult{Available: false, Reason: cal.closedReason()}, res)

	// Wednesday and before hours: either rule's reason, never an error.
	res, err = svc.CheckAvailability(context.Background(), sakura, at(11, 9, 0), "")
	require.NoError(t, err)
	assert.False(t, res.Available)
	assert.Contains(t, []string{cal.hoursReason(), cal.closedReason()}, res.Reason)
}

func TestCheckAvailability_InvalidInput(t *testing.T) {
	svc, repo := newService(t, true)
	repo.FailFind = errBackend
	ctx := context.Background()

	_, err := svc.CheckAvailability(ctx, "", at(10, 10, 0), "")
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.CheckAvailability(ctx, "  ", at(10, 10, 0), "")
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.CheckAvailability(ctx, "Sakura\nHeights", at(10, 10, 0), "")
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.CheckAvailability(ctx, sakura, time.Time{}, "")
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.CheckAvailability(ctx, sakura, at(10, 10, 0), "rec') OR TRUE()")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestCheckAvailability_StoreFailureIsNotARejection(t *testing.T) {
	svc, repo := newService(t, true)
	repo.FailFind = errBackend

	res, err := svc.CheckAvailability(context.Background(), sakura, at(10, 10, 0), "")
	assert.ErrorIs(t, err, ErrStoreFailure)
	assert.Equal(t, models.AvailabilityResult{}, res)
}

func TestLookup(t *testing.T) {
	svc, repo := newService(t, true)
	ctx := context.Background()
	r := repo.Add(models.Reservation{Property: sakura, ViewingAt: at(10, 10, 0)})
	cancelled := repo.Add(models.Reservation{Property: sakura, ViewingAt: at(10, 11, 0), Status: models.StatusCancelled})

	got, err := svc.Lookup(ctx, r.ReceptionCode, r.Phone)
	require.NoError(t, err)
	assert.Equal(t, r.RecordID, got.RecordID)

	_, err = svc.Lookup(ctx, r.ReceptionCode, r.Phone+"0")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.Lookup(ctx, cancelled.ReceptionCode, cancelled.Phone)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.Lookup(ctx, "", r.Phone)
	assert.ErrorIs(t, err, ErrInvalidInput)

	repo.FailFind = errBackend
	_, err = svc.Lookup(ctx, r.ReceptionCode, r.Phone)
	assert.ErrorIs(t, err, ErrStoreFailure)
}

func TestUpdate_PhoneOnlySkipsGuard(t *testing.T) {
	svc, repo := newService(t, false)
	r := repo.Add(models.Reservation{Property: sakura, ViewingAt: at(10, 10, 0)})
	repo.FailFind = errBackend

	updated, err := svc.Update(context.Background(), r.RecordID, models.ReservationChanges{Phone: strPtr("090-0000-0000")})
	require.NoError(t, err)
	assert.Equal(t, "090-0000-0000", updated.Phone)
}

func TestUpdate_MoveWithinOwnSlot(t *testing.T) {
	svc, repo := newService(t, false)
	r := repo.Add(models.Reservation{Property: sakura, ViewingAt: at(10, 10, 0)})

	updated, err := svc.Update(context.Background(), r.RecordID, models.ReservationChanges{ViewingAt: timePtr(at(10, 10, 30))})
	require.NoError(t, err)
	assert.True(t, updated.ViewingAt.Equal(at(10, 10, 30)))
}

func TestUpdate_RejectsBookedSlot(t *testing.T) {
	svc, repo := newService(t, true)
	r := repo.Add(models.Reservation{Property: sakura, ViewingAt: at(10, 10, 0)})
	repo.Add(models.Reservation{Property: sakura, ViewingAt: at(10, 13, 45)})

	_, err := svc.Update(context.Background(), r.RecordID, models.ReservationChanges{ViewingAt: timePtr(at(10, 13, 0))})
	var violation *RuleViolation
	require.ErrorAs(t, err, &violation)
	assert.Equal(t, RuleSlotBooked, violation.Kind)
	assert.Contains(t, violation.Reason, "13:00〜14:00")
	assert.Equal(t, 0, repo.Writes)
}

func TestUpdate_PropertyChangeOverlaysCurrentTime(t *testing.T) {
	svc, repo := newService(t, true)
	r := repo.Add(models.Reservation{Property: "Maple Court", ViewingAt: at(10, 11, 0)})
	repo.Add(models.Reservation{Property: sakura, ViewingAt: at(10, 11, 20)})

	_, err := svc.Update(context.Background(), r.RecordID, models.ReservationChanges{Property: strPtr(sakura)})
	var violation *RuleViolation
	require.ErrorAs(t, err, &violation)
	assert.Equal(t, RuleSlotBooked, violation.Kind)
}

func TestUpdate_RejectsBusinessRules(t *testing.T) {
	svc, repo := newService(t, true)
	r := repo.Add(models.Reservation{Property: sakura, ViewingAt: at(10, 10, 0)})

	_, err := svc.Update(context.Background(), r.RecordID, models.ReservationChanges{ViewingAt: timePtr(at(11, 12, 0))})
	var violation *RuleViolation
	require.ErrorAs(t, err, &violation)
	assert.Equal(t, RuleClosedDay, violation.Kind)

	_, err = svc.Update(context.Background(), r.RecordID, models.ReservationChanges{ViewingAt: timePtr(at(12, 18, 0))})
	require.ErrorAs(t, err, &violation)
	assert.Equal(t, RuleOutsideHours, violation.Kind)
	assert.Equal(t, 0, repo.Writes)
}

func TestUpdate_FailOpenProceedsWhenCheckFails(t *testing.T) {
	svc, repo := newService(t, true)
	r := repo.Add(models.Reservation{Property: sakura, ViewingAt: at(10, 10, 0)})
	repo.FailFind = errBackend

	_, err := svc.Update(context.Background(), r.RecordID, models.ReservationChanges{ViewingAt: timePtr(at(10, 14, 0))})
	require.NoError(t, err)
	assert.Equal(t, 1, repo.Writes)
}

func TestUpdate_FailClosedAbortsWhenCheckFails(t *testing.T) {
	svc, repo := newService(t, false)
	r := repo.Add(models.Reservation{Property: sakura, ViewingAt: at(10, 10, 0)})
	repo.FailFind = errBackend

	_, err := svc.Update(context.Background(), r.RecordID, models.ReservationChanges{ViewingAt: timePtr(at(10, 14, 0))})
	assert.ErrorIs(t, err, ErrStoreFailure)
	assert.Equal(t, 0, repo.Writes)

	repo.FailFind = nil
	repo.FailGet = errBackend
	_, err = svc.Update(context.Background(), r.RecordID, models.ReservationChanges{ViewingAt: timePtr(at(10, 14, 0))})
	assert.ErrorIs(t, err, ErrStoreFailure)
	assert.Equal(t, 0, repo.Writes)
}

func TestUpdate_InvalidAndMissing(t *testing.T) {
	svc, _ := newService(t, true)
	ctx := context.Background()

	_, err := svc.Update(ctx, "not-a-record", models.ReservationChanges{Phone: strPtr("1")})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.Update(ctx, reservationtest.RecordID(99), models.ReservationChanges{})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.Update(ctx, reservationtest.RecordID(99), models.ReservationChanges{Phone: strPtr(" ")})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.Update(ctx, reservationtest.RecordID(99), models.ReservationChanges{ViewingAt: timePtr(at(10, 10, 0))})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdate_ConcurrentMovesIntoSameSlot(t *testing.T) {
	svc, repo := newService(t, true)
	a := repo.Add(models.Reservation{Property: sakura, ViewingAt: at(10, 10, 0)})
	b := repo.Add(models.Reservation{Property: sakura, ViewingAt: at(10, 11, 0)})
	target := timePtr(at(10, 14, 0))

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, id := range []string{a.RecordID, b.RecordID} {
		wg.Add(1)
		go func(i int, id string) {
			defer wg.Done()
			_, errs[i] = svc.Update(context.Background(), id, models.ReservationChanges{ViewingAt: target})
		}(i, id)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		var violation *RuleViolation
		require.ErrorAs(t, err, &violation)
		assert.Equal(t, RuleSlotBooked, violation.Kind)
	}
	assert.Equal(t, 1, succeeded)
}

func TestCancel(t *testing.T) {
	svc, repo := newService(t, true)
	ctx := context.Background()
	r := repo.Add(models.Reservation{Property: sakura, ViewingAt: at(10, 10, 0)})

	already, err := svc.Cancel(ctx, r.RecordID)
	require.NoError(t, err)
	assert.False(t, already)
	stored, _ := repo.Get(r.RecordID)
	assert.Equal(t, models.StatusCancelled, stored.Status)

	already, err = svc.Cancel(ctx, r.RecordID)
	require.NoError(t, err)
	assert.True(t, already)
	assert.Equal(t, 1, repo.Writes)

	_, err = svc.Cancel(ctx, reservationtest.RecordID(404))
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.Cancel(ctx, "recX")
	assert.ErrorIs(t, err, ErrInvalidInput)

	other := repo.Add(models.Reservation{Property: sakura, ViewingAt: at(10, 12, 0)})
	repo.FailUpdate = errBackend
	_, err = svc.Cancel(ctx, other.RecordID)
	assert.ErrorIs(t, err, ErrStoreFailure)
}

// staleStatusRepo answers lookups with a fixed record regardless of its status.
type staleStatusRepo struct {
	*reservationtest.MemoryRepo
	record models.Reservation
}

func (s staleStatusRepo) FindActiveByReceptionCode(context.Context, string, string) (*models.Reservation, error) {
	r := s.record
	return &r, nil
}

func TestLookup_IgnoresInactiveRecordFromStore(t *testing.T) {
	repo := staleStatusRepo{
		MemoryRepo: reservationtest.NewMemoryRepo(),
		record:     models.Reservation{RecordID: reservationtest.RecordID(1), ReceptionCode: "R00001", Phone: "090", Status: models.StatusCancelled},
	}
	svc := NewReservationService(repo, DefaultCalendar(), nil, true, nil)

	_, err := svc.Lookup(context.Background(), "R00001", "090")
	assert.ErrorIs(t, err, ErrNotFound)
}
