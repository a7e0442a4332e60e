package utils

import (
	"testing"
	"time"

	"hotel-booking/pkg/apperror"

	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	d, err := ParseDate("check_in", "2025-03-10")
	require.NoError(t, err)
	require.Equal(t, time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC), d)

	_, err = ParseDate("check_in", "10/03/2025")
	require.ErrorIs(t, err, apperror.ErrValidation)
	require.Contains(t, err.Error(), "check_in")
}

func TestDateOnlyUsesUTC(t *testing.T) {
	loc := time.FixedZone("UTC+9", 9*3600)
	local := time.Date(2025, 3, 10, 5, 0, 0, 0, loc)

	require.Equal(t, "2025-03-09", FormatDate(DateOnly(local)))
}

func TestEachDayIsHalfOpen(t *testing.T) {
	from := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, 3)

	var days []time.Time
	EachDay(from, to, func(d time.Time) { days = append(days, d) })

	require.Equal(t, []string{"2025-03-10", "2025-03-11", "2025-03-12"}, FormatDates(days))
	require.Equal(t, 3, DaysBetween(from, to))
	require.Equal(t, -3, DaysBetween(to, from))
}
