// Package reservationtest provides an in-memory ReservationRepository for tests.
package reservationtest

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/brianvoe/gofakeit/v6"

	reservationRepo "viewingdesk/database/repository/reservation"
	"viewingdesk/models"
)

// MemoryRepo mirrors the record store's filter semantics. Set a Fail* field to make the
// corresponding call return that error.
type MemoryRepo struct {
	mu      sync.Mutex
	records map[string]models.Reservation
	seq     int

	FailGet    error
	FailFind   error
	FailUpdate error

	Writes int
}

var _ reservationRepo.ReservationRepository = (*MemoryRepo)(nil)

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{records: make(map[string]models.Reservation)}
}

// RecordID renders n as a well-formed record identifier.
func RecordID(n int) string {
	return fmt.Sprintf("rec%014d", n)
}

// Add stores r, filling in an id, reception code and contact fields when empty.
func (m *MemoryRepo) Add(r models.Reservation) models.Reservation {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.seq++
	if r.RecordID == "" {
		r.RecordID = RecordID(m.seq)
	}
	if r.ReceptionCode == "" {
		r.ReceptionCode = fmt.Sprintf("R%05d", m.seq)
	}
	if r.Name == "" {
		r.Name = gofakeit.Name()
	}
	if r.Phone == "" {
		r.Phone = gofakeit.Phone()
	}
	if r.Email == "" {
		r.Email = gofakeit.Email()
	}
	if r.Status == "" {
		r.Status = models.StatusActive
	}
	m.records[r.RecordID] = r
	return r
}

// Get returns the stored record without going through failure injection.
func (m *MemoryRepo) Get(recordID string) (models.Reservation, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.records[recordID]
	return r, ok
}

func (m *MemoryRepo) GetByID(_ context.Context, recordID string) (*models.Reservation, error) {
	if !reservationRepo.ValidRecordID(recordID) {
		return nil, reservationRepo.ErrInvalidRecordID
	}
	if m.FailGet != nil {
		return nil, m.FailGet
	}
	r, ok := m.Get(recordID)
	if !ok {
		return nil, reservationRepo.ErrRecordNotFound
	}
	return &r, nil
}

func (m *MemoryRepo) FindActiveByReceptionCode(_ context.Context, receptionCode, phone string) (*models.Reservation, error) {
	if m.FailFind != nil {
		return nil, m.FailFind
	}
	for _, r := range m.sorted() {
		if r.ReceptionCode == receptionCode && r.Phone == phone && r.IsActive() {
			return &r, nil
		}
	}
	return nil, reservationRepo.ErrRecordNotFound
}

func (m *MemoryRepo) FindActiveInSlot(_ context.Context, q models.SlotQuery) ([]models.Reservation, error) {
	if q.ExcludeRecordID != "" && !reservationRepo.ValidRecordID(q.ExcludeRecordID) {
		return nil, reservationRepo.ErrInvalidRecordID
	}
	if m.FailFind != nil {
		return nil, m.FailFind
	}
	var out []models.Reservation
	for _, r := range m.sorted() {
		if r.Property != q.Property || !r.IsActive() || r.RecordID == q.ExcludeRecordID {
			continue
		}
		if q.Slot.Contains(r.ViewingAt) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *MemoryRepo) UpdateFields(_ context.Context, recordID string, changes models.ReservationChanges) (*models.Reservation, error) {
	return m.write(recordID, func(r models.Reservation) models.Reservation {
		return changes.ApplyTo(r)
	})
}

func (m *MemoryRepo) SetStatus(_ context.Context, recordID string, status models.ReservationStatus) (*models.Reservation, error) {
	return m.write(recordID, func(r models.Reservation) models.Reservation {
		r.Status = status
		return r
	})
}

func (m *MemoryRepo) write(recordID string, fn func(models.Reservation) models.Reservation) (*models.Reservation, error) {
	if !reservationRepo.ValidRecordID(recordID) {
		return nil, reservationRepo.ErrInvalidRecordID
	}
	if m.FailUpdate != nil {
		return nil, m.FailUpdate
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.records[recordID]
	if !ok {
		return nil, reservationRepo.ErrRecordNotFound
	}
	r = fn(r)
	m.records[recordID] = r
	m.Writes++
	return &r, nil
}

func (m *MemoryRepo) sorted() []models.Reservation {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.Reservation, 0, len(m.records))
	for _, r := range m.records {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RecordID < out[j].RecordID })
	return out
}
