package domain

import "time"

// DateLayout is the wire format of calendar dates.
const DateLayout = "2006-01-02"

// CalendarEvent is a dated entry, optionally linked to a quote or project.
type CalendarEvent struct {
	ID        uint
	OwnerID   uint
	Title     string
	Date      time.Time
	QuoteID   *uint
	ProjectID *uint
}

// ParseDate parses a YYYY-MM-DD calendar date in UTC.
func ParseDate(field, s string) (time.Time, error) {
	d, err := time.ParseInLocation(DateLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, NewValidationErrorWithValue(field, "must be a date in YYYY-MM-DD format", s)
	}

	return d, nil
}
