package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestFederalHolidaysFixedDates(t *testing.T) {
	c := NewRealClock()

	require.True(t, c.IsHoliday(date(2026, time.January, 1)))
	require.True(t, c.IsHoliday(date(2026, time.June, 19)))
	require.True(t, c.IsHoliday(date(2026, time.July, 4)))
	require.True(t, c.IsHoliday(date(2026, time.November, 11)))
	require.True(t, c.IsHoliday(date(2026, time.December, 25)))
	require.False(t, c.IsHoliday(date(2026, time.March, 3)))
}

func TestFederalHolidaysFloatingDates(t *testing.T) {
	c := NewRealClock()

	// 2026: MLK Day is the third Monday of January -> Jan 19.
	require.True(t, c.IsHoliday(date(2026, time.January, 19)))
	// Thanksgiving is the fourth Thursday of November -> Nov 26.
	require.True(t, c.IsHoliday(date(2026, time.November, 26)))
	// Memorial Day is the last Monday of May -> May 25.
	require.True(t, c.IsHoliday(date(2026, time.May, 25)))
}

func TestIsHolidayCachesPerYear(t *testing.T) {
	c := NewRealClock()

	require.True(t, c.IsHoliday(date(2026, time.December, 25)))
	_, cached := c.years[2026]
	require.True(t, cached)
}

func TestToEpochUsesNamedLocation(t *testing.T) {
	c := NewRealClock()

	local := time.Date(2026, time.March, 1, 9, 30, 0, 0, time.UTC)
	got, err := c.ToEpoch(local, "America/New_York")
	require.NoError(t, err)
	require.Equal(t, "America/New_York", got.Location().String())
	require.Equal(t, 9, got.Hour())
}

func TestNowInRejectsUnknownZone(t *testing.T) {
	c := NewRealClock()

	_, err := c.NowIn("Not/AZone")
	require.Error(t, err)
}
