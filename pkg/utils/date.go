package utils

import (
	"time"

	"hotel-booking/pkg/apperror"
)

// DateLayout is the wire format for calendar dates.
const DateLayout = "2006-01-02"

// ParseDate parses a YYYY-MM-DD calendar date as UTC midnight.
func ParseDate(field, value string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, value, time.UTC)
	if err != nil {
		return time.Time{}, apperror.InvalidField(field, "must be a date in YYYY-MM-DD format")
	}
	return t, nil
}

// DateOnly truncates t to the UTC calendar day that contains it.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func FormatDate(t time.Time) string {
	return t.UTC().Format(DateLayout)
}

// DaysBetween counts the nights in [from, to). Negative when to precedes from.
func DaysBetween(from, to time.Time) int {
	return int(DateOnly(to).Sub(DateOnly(from)).Hours() / 24)
}

// EachDay calls fn for every day in [from, to).
func EachDay(from, to time.Time, fn func(day time.Time)) {
	for d := DateOnly(from); d.Before(to); d = d.AddDate(0, 0, 1) {
		fn(d)
	}
}

func FormatDates(days []time.Time) []string {
	out := make([]string, len(days))
	for i, d := range days {
		out[i] = FormatDate(d)
	}
	return out
}
