package models

import (
	"fmt"
	"time"
)

// DateLayout is the calendar-day format accepted and produced by the API.
const DateLayout = "2006-01-02"

// MonthLayout is the budget month format.
const MonthLayout = "2006-01"

// ParseDate accepts either a calendar day (2025-03-14) or a full RFC3339 timestamp.
// Calendar days are interpreted in loc; the result is always UTC.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	if t, err := time.ParseInLocation(DateLayout, s, loc); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: use YYYY-MM-DD or RFC3339", s)
	}
	return t.UTC(), nil
}

// ParseMonth parses YYYY-MM into the first instant of that month in loc.
func ParseMonth(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	t, err := time.ParseInLocation(MonthLayout, s, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid month %q: use YYYY-MM", s)
	}
	return t, nil
}
