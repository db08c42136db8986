// File: database/repository/reservation/interface.go
package reservationRepo

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"viewingdesk/models"
)

var (
	// ErrRecordNotFound is returned when a point read or write targets an unknown record.
	ErrRecordNotFound = errors.New("record not found")
	// ErrStoreFailure marks any transport or service-side failure of the record store.
	ErrStoreFailure = errors.New("record store failure")
	// ErrInvalidRecordID is returned before any request when an id is malformed.
	ErrInvalidRecordID = errors.New("invalid record id")
)

// ReservationRepository is the record store contract used by the reservation service.
type ReservationRepository interface {
	GetByID(ctx context.Context, recordID string) (*models.Reservation, error)
	FindActiveByReceptionCode(ctx context.Context, receptionCode, phone string) (*models.Reservation, error)
	FindActiveInSlot(ctx context.Context, q models.SlotQuery) ([]models.Reservation, error)
	UpdateFields(ctx context.Context, recordID string, changes models.ReservationChanges) (*models.Reservation, error)
	SetStatus(ctx context.Context, recordID string, status models.ReservationStatus) (*models.Reservation, error)
}

// Options configures the Airtable-backed repository.
type Options struct {
	APIURL     string
	Token      string
	BaseID     string
	Table      string
	Timeout    time.Duration
	HTTPClient *http.Client
}

type airtableReservationRepo struct {
	client  *http.Client
	apiURL  string
	token   string
	baseID  string
	table   string
	timeout time.Duration
}

// NewAirtableReservationRepo constructs a ReservationRepository over the Airtable REST API.
func NewAirtableReservationRepo(opts Options) ReservationRepository {
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{}
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &airtableReservationRepo{
		client:  client,
		apiURL:  strings.TrimRight(opts.APIURL, "/"),
		token:   opts.Token,
		baseID:  opts.BaseID,
		table:   opts.Table,
		timeout: timeout,
	}
}
