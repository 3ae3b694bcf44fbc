package shared

import (
	"fmt"
	"strings"
	"time"
)

// CalendarLayout is the wire format for calendar dates
const CalendarLayout = "2006-01-02"

// CalendarDay returns the calendar day of t as seen in loc, as UTC midnight.
// Calendar dates are stored and compared in this form.
func CalendarDay(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// ParseCalendarDate parses YYYY-MM-DD. A blank value means the day of now in loc.
func ParseCalendarDate(field, value string, now time.Time, loc *time.Location) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return CalendarDay(now, loc), nil
	}
	t, err := time.Parse(CalendarLayout, value)
	if err != nil {
		return time.Time{}, NewValidationError(fmt.Sprintf("%s must be a date in YYYY-MM-DD form", field)).
			WithDetail("field", field).
			WithDetail("value", value)
	}
	return t, nil
}

// DaysInclusive counts the calendar days from start through end, each read in
// its own location. It is zero when end is before start.
func DaysInclusive(start, end time.Time) int {
	from := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
	to := time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, time.UTC)
	if to.Before(from) {
		return 0
	}
	return int(to.Sub(from)/(24*time.Hour)) + 1
}
