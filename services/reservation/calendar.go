package reservation

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"viewingdesk/models"
)

var weekdayNames = [...]string{"日", "月", "火", "水", "木", "金", "土"}

// zonelessLayouts are accepted for timestamps that carry no offset; they are read in the civic zone.
var zonelessLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

// Calendar is the single civic time reference used by every availability rule.
// All hour and weekday arithmetic happens in its fixed-offset zone, never in the host zone.
type Calendar struct {
	loc       *time.Location
	openHour  int
	closeHour int
	closedDay time.Weekday
}

// NewCalendar returns a calendar in a fixed UTC offset with business hours [openHour, closeHour).
func NewCalendar(zoneName string, utcOffsetHours, openHour, closeHour int, closedDay time.Weekday) (*Calendar, error) {
	if utcOffsetHours < -12 || utcOffsetHours > 14 {
		return nil, fmt.Errorf("utc offset %d out of range", utcOffsetHours)
	}
	if openHour < 0 || closeHour > 24 || openHour >= closeHour {
		return nil, fmt.Errorf("invalid business hours [%d, %d)", openHour, closeHour)
	}
	if closedDay < time.Sunday || closedDay > time.Saturday {
		return nil, fmt.Errorf("invalid closure weekday %d", closedDay)
	}
	return &Calendar{
		loc:       time.FixedZone(zoneName, utcOffsetHours*60*60),
		openHour:  openHour,
		closeHour: closeHour,
		closedDay: closedDay,
	}, nil
}

// DefaultCalendar is UTC+9 with viewings 10:00-16:00 and Wednesdays closed.
func DefaultCalendar() *Calendar {
	cal, _ := NewCalendar("JST", 9, 10, 16, time.Wednesday)
	return cal
}

func (c *Calendar) Location() *time.Location {
	return c.loc
}

// Local converts t into the civic zone.
func (c *Calendar) Local(t time.Time) time.Time {
	return t.In(c.loc)
}

// SlotOf returns the hour slot containing t, truncated in the civic zone.
func (c *Calendar) SlotOf(t time.Time) models.HourSlot {
	l := t.In(c.loc)
	start := time.Date(l.Year(), l.Month(), l.Day(), l.Hour(), 0, 0, 0, c.loc)
	return models.HourSlot{Start: start, End: start.Add(time.Hour)}
}

// CheckRules applies business hours first, then the closure day.
func (c *Calendar) CheckRules(t time.Time) *RuleViolation {
	l := t.In(c.loc)
	if h := l.Hour(); h < c.openHour || h >= c.closeHour {
		return &RuleViolation{Kind: RuleOutsideHours, Reason: c.hoursReason()}
	}
	if l.Weekday() == c.closedDay {
		return &RuleViolation{Kind: RuleClosedDay, Reason: c.closedReason()}
	}
	return nil
}

func (c *Calendar) hoursReason() string {
	return fmt.Sprintf("内見対応時間は%d:00〜%d:00です。この時間帯でご指定ください。", c.openHour, c.closeHour)
}

func (c *Calendar) closedReason() string {
	return fmt.Sprintf("%s曜日は定休日のため、内見のご予約を承ることができません。", weekdayNames[c.closedDay])
}

func (c *Calendar) bookedReason(property string, slot models.HourSlot) string {
	h := slot.Start.In(c.loc).Hour()
	return fmt.Sprintf("%sの%d:00〜%d:00は既に予約が入っています。別の時間帯をお選びください。", property, h, h+1)
}

// absoluteLayouts carry their own offset; seconds may be omitted as in ISO 8601.
var absoluteLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04Z07:00",
}

// ParseInstant reads an RFC3339 timestamp, or a zone-less local timestamp in the civic zone.
func (c *Calendar) ParseInstant(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, errors.New("empty timestamp")
	}
	for _, layout := range absoluteLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	for _, layout := range zonelessLayouts {
		if t, err := time.ParseInLocation(layout, s, c.loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}
