package models

import "time"

// DateLayout is the calendar-date wire format used throughout the app.
const DateLayout = "2006-01-02"

// ParseDate parses a yyyy-MM-dd calendar date in UTC.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, s)
}

// FormatDate renders a time as a yyyy-MM-dd calendar date.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// DaysBetween returns the number of whole days from a to b.
func DaysBetween(a, b time.Time) int {
	return int(b.Sub(a).Hours() / 24)
}
