// File: database/repository/reservation/formula.go
package reservationRepo

import (
	"regexp"
	"strings"

	"viewingdesk/models"
)

var recordIDPattern = regexp.MustCompile(`^rec[0-9A-Za-z]{14}$`)

// ValidRecordID reports whether id has the shape of a store record identifier.
func ValidRecordID(id string) bool {
	return recordIDPattern.MatchString(id)
}

var literalEscaper = strings.NewReplacer(
	`\`, `\\`,
	`'`, `\'`,
	"\n", `\n`,
	"\r", `\r`,
	"\t", `\t`,
)

// quote renders s as a single-quoted formula string literal.
func quote(s string) string {
	return "'" + literalEscaper.Replace(s) + "'"
}

func ref(field string) string {
	return "{" + field + "}"
}

func eq(field, value string) string {
	return ref(field) + "=" + quote(value)
}

func and(terms ...string) string {
	return "AND(" + strings.Join(terms, ",") + ")"
}

func lookupFormula(receptionCode, phone string) string {
	return and(
		eq(fieldReceptionCode, receptionCode),
		eq(fieldPhone, phone),
		eq(fieldStatus, labelActive),
	)
}

// slotFormula selects active reservations of q.Property whose timestamp lies in [start, end).
func slotFormula(q models.SlotQuery) (string, error) {
	terms := []string{
		eq(fieldProperty, q.Property),
		eq(fieldStatus, labelActive),
		"NOT(IS_BEFORE(" + ref(fieldViewingAt) + "," + quote(formatStoreTime(q.Slot.Start)) + "))",
		"IS_BEFORE(" + ref(fieldViewingAt) + "," + quote(formatStoreTime(q.Slot.End)) + ")",
	}
	if q.ExcludeRecordID != "" {
		if !ValidRecordID(q.ExcludeRecordID) {
			return "", ErrInvalidRecordID
		}
		terms = append(terms, "RECORD_ID()!="+quote(q.ExcludeRecordID))
	}
	return and(terms...), nil
}
