// File: database/repository/reservation/crud.go
package reservationRepo

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"viewingdesk/models"
)

type airtableRecord struct {
	ID     string         `json:"id"`
	Fields map[string]any `json:"fields"`
}

type airtableList struct {
	Records []airtableRecord `json:"records"`
	Offset  string           `json:"offset,omitempty"`
}

// errTypeRecordNotFound is the error type the store reports for an unknown record id.
const errTypeRecordNotFound = "MODEL_ID_NOT_FOUND"

// APIError is an error payload or unexpected status returned by the record store.
type APIError struct {
	StatusCode int
	Type       string
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("record store responded %d: %s %s", e.StatusCode, e.Type, e.Message)
}

func (e *APIError) Unwrap() error {
	return ErrStoreFailure
}

func (repo *airtableReservationRepo) tableURL() string {
	return fmt.Sprintf("%s/v0/%s/%s", repo.apiURL, url.PathEscape(repo.baseID), url.PathEscape(repo.table))
}

func (repo *airtableReservationRepo) recordURL(recordID string) string {
	return repo.tableURL() + "/" + url.PathEscape(recordID)
}

// do performs one request and decodes a successful JSON body into out.
func (repo *airtableReservationRepo) do(ctx context.Context, method, target string, body any, out any) error {
	ctx, cancel := context.WithTimeout(ctx, repo.timeout)
	defer cancel()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+repo.token)
	req.Header.Set("Cache-Control", "no-store")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := repo.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStoreFailure, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: reading response: %v", ErrStoreFailure, err)
	}

	if apiErr := decodeAPIError(resp.StatusCode, raw); apiErr != nil {
		// Only an unknown record id means the record is gone. A 404 for the base or table
		// is a misconfiguration and stays a store failure.
		if resp.StatusCode == http.StatusNotFound && apiErr.Type == errTypeRecordNotFound {
			return ErrRecordNotFound
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%w: decoding response: %v", ErrStoreFailure, err)
	}
	return nil
}

// decodeAPIError returns a non-nil error for non-2xx statuses or bodies carrying an "error" member.
// The member is either a bare string or an object with type and message.
func decodeAPIError(status int, raw []byte) *APIError {
	var envelope struct {
		Error json.RawMessage `json:"error"`
	}
	_ = json.Unmarshal(raw, &envelope)

	ok := status >= 200 && status < 300
	if ok && len(envelope.Error) == 0 {
		return nil
	}

	apiErr := &APIError{StatusCode: status}
	if len(envelope.Error) > 0 {
		var detail struct {
			Type    string `json:"type"`
			Message string `json:"message"`
		}
		if err := json.Unmarshal(envelope.Error, &detail); err == nil {
			apiErr.Type, apiErr.Message = detail.Type, detail.Message
		} else {
			var code string
			if json.Unmarshal(envelope.Error, &code) == nil {
				apiErr.Type = code
			}
		}
	}
	return apiErr
}

func (repo *airtableReservationRepo) list(ctx context.Context, formula string, maxRecords int) ([]models.Reservation, error) {
	query := url.Values{}
	query.Set("filterByFormula", formula)
	if maxRecords > 0 {
		query.Set("maxRecords", strconv.Itoa(maxRecords))
	}

	var page airtableList
	if err := repo.do(ctx, http.MethodGet, repo.tableURL()+"?"+query.Encode(), nil, &page); err != nil {
		return nil, err
	}

	out := make([]models.Reservation, 0, len(page.Records))
	for _, rec := range page.Records {
		r, err := toReservation(rec)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrStoreFailure, err)
		}
		out = append(out, *r)
	}
	return out, nil
}

func (repo *airtableReservationRepo) GetByID(ctx context.Context, recordID string) (*models.Reservation, error) {
	if !ValidRecordID(recordID) {
		return nil, ErrInvalidRecordID
	}

	var rec airtableRecord
	if err := repo.do(ctx, http.MethodGet, repo.recordURL(recordID), nil, &rec); err != nil {
		return nil, err
	}

	r, err := toReservation(rec)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreFailure, err)
	}
	return r, nil
}

func (repo *airtableReservationRepo) FindActiveByReceptionCode(ctx context.Context, receptionCode, phone string) (*models.Reservation, error) {
	found, err := repo.list(ctx, lookupFormula(receptionCode, phone), 1)
	if err != nil {
		return nil, err
	}
	if len(found) == 0 {
		return nil, ErrRecordNotFound
	}
	return &found[0], nil
}

func (repo *airtableReservationRepo) FindActiveInSlot(ctx context.Context, q models.SlotQuery) ([]models.Reservation, error) {
	formula, err := slotFormula(q)
	if err != nil {
		return nil, err
	}
	return repo.list(ctx, formula, 1)
}

func (repo *airtableReservationRepo) patch(ctx context.Context, recordID string, fields map[string]any) (*models.Reservation, error) {
	if !ValidRecordID(recordID) {
		return nil, ErrInvalidRecordID
	}

	var rec airtableRecord
	body := map[string]any{"fields": fields}
	if err := repo.do(ctx, http.MethodPatch, repo.recordURL(recordID), body, &rec); err != nil {
		return nil, err
	}

	r, err := toReservation(rec)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreFailure, err)
	}
	return r, nil
}

func (repo *airtableReservationRepo) UpdateFields(ctx context.Context, recordID string, changes models.ReservationChanges) (*models.Reservation, error) {
	return repo.patch(ctx, recordID, changesToFields(changes))
}

func (repo *airtableReservationRepo) SetStatus(ctx context.Context, recordID string, status models.ReservationStatus) (*models.Reservation, error) {
	return repo.patch(ctx, recordID, map[string]any{fieldStatus: statusLabel(status)})
}
