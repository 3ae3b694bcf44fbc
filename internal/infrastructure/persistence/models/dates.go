package models

import "time"

// DateLayout binds calendar dates as query parameters
const DateLayout = time.DateOnly

// CalendarDate is t's calendar day at midnight UTC. Date columns are written
// this way so the stored day never shifts with the session time zone.
func CalendarDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DateParam is t as a date literal
func DateParam(t time.Time) string {
	return t.Format(DateLayout)
}

// NextDateParam is the day after t, the exclusive end of a day range
func NextDateParam(t time.Time) string {
	return t.AddDate(0, 0, 1).Format(DateLayout)
}
