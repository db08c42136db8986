// File: database/repository/reservation/fields.go
package reservationRepo

import (
	"fmt"
	"strconv"
	"time"

	"viewingdesk/models"
)

// Column names of the reservation table.
const (
	fieldReceptionCode = "受付番号"
	fieldName          = "氏名"
	fieldPhone         = "電話番号"
	fieldEmail         = "メールアドレス"
	fieldProperty      = "物件名"
	fieldViewingAt     = "内見希望日時"
	fieldStatus        = "ステータス"
)

// Status labels as stored in the table.
const (
	labelActive    = "予約中"
	labelCancelled = "キャンセル済み"
)

// storeTimeLayout is the UTC layout written to the timestamp column.
const storeTimeLayout = "2006-01-02T15:04:05.000Z"

func statusLabel(s models.ReservationStatus) string {
	switch s {
	case models.StatusActive:
		return labelActive
	case models.StatusCancelled:
		return labelCancelled
	}
	return string(s)
}

func statusFromLabel(label string) models.ReservationStatus {
	switch label {
	case labelActive:
		return models.StatusActive
	case labelCancelled:
		return models.StatusCancelled
	}
	return models.ReservationStatus(label)
}

func formatStoreTime(t time.Time) string {
	return t.UTC().Format(storeTimeLayout)
}

// stringField reads a column as text; number columns (e.g. autonumber codes) are formatted plainly.
func stringField(fields map[string]any, key string) string {
	switch v := fields[key].(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		return fmt.Sprint(v)
	}
}

func toReservation(rec airtableRecord) (*models.Reservation, error) {
	r := &models.Reservation{
		RecordID:      rec.ID,
		ReceptionCode: stringField(rec.Fields, fieldReceptionCode),
		Name:          stringField(rec.Fields, fieldName),
		Phone:         stringField(rec.Fields, fieldPhone),
		Email:         stringField(rec.Fields, fieldEmail),
		Property:      stringField(rec.Fields, fieldProperty),
		Status:        statusFromLabel(stringField(rec.Fields, fieldStatus)),
	}

	if raw := stringField(rec.Fields, fieldViewingAt); raw != "" {
		t, err := time.Parse(time.RFC3339Nano, raw)
		if err != nil {
			return nil, fmt.Errorf("record %s: malformed %s %q: %w", rec.ID, fieldViewingAt, raw, err)
		}
		r.ViewingAt = t
	}

	return r, nil
}

func changesToFields(changes models.ReservationChanges) map[string]any {
	fields := make(map[string]any, 3)
	if changes.Phone != nil {
		fields[fieldPhone] = *changes.Phone
	}
	if changes.Property != nil {
		fields[fieldProperty] = *changes.Property
	}
	if changes.ViewingAt != nil {
		fields[fieldViewingAt] = formatStoreTime(*changes.ViewingAt)
	}
	return fields
}
