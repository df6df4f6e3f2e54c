package scheduler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newTestJob(t *testing.T, every, at string, strict *bool) *Job {
	t.Helper()
	kind, ok := resolveKind(every)
	require.True(t, ok, "interval %q should resolve to a kind", every)
	return &Job{
		id:         0,
		kind:       kind,
		every:      every,
		at:         at,
		isEnabled:  true,
		strictDate: strict,
	}
}

func TestResolveKindOrder(t *testing.T) {
	cases := map[string]Kind{
		"5":           KindRepeat,
		"2026-03-01":  KindOneTime,
		"31st":        KindMonthly,
		"businessday": KindDaily,
		"monday":      KindDaily,
		"never":       KindNever,
	}
	for every, want := range cases {
		kind, ok := resolveKind(every)
		require.True(t, ok, every)
		require.Equal(t, want, kind, every)
	}

	_, ok := resolveKind("not-a-schedule")
	require.False(t, ok)
}

func TestComputeNextRunRepeat(t *testing.T) {
	j := newTestJob(t, "5", "", nil)
	now := time.Date(2026, time.March, 1, 10, 0, 0, 0, time.UTC)
	got := computeNextRunRepeat(j, now)
	require.Equal(t, now.Add(5*time.Second).Unix(), got)
}

func TestComputeNextRunOneTimeFuture(t *testing.T) {
	tomorrow := time.Now().AddDate(0, 0, 1)
	j := newTestJob(t, tomorrow.Format(isoDateLayout), "09:00", nil)
	j.tzName = "UTC"
	got := computeNextRunOneTime(j, time.Now())
	require.Greater(t, got, time.Now().Unix())
}

func TestComputeNextRunOneTimePastBecomesTerminal(t *testing.T) {
	yesterday := time.Now().AddDate(0, 0, -1)
	j := newTestJob(t, yesterday.Format(isoDateLayout), "09:00", nil)
	j.tzName = "UTC"
	j.startupGraceMins = 0
	got := computeNextRunOneTime(j, time.Now())
	require.Zero(t, got)
}

func TestComputeNextRunOneTimeWithinGraceStaysInPast(t *testing.T) {
	now := time.Now().UTC()
	past := now.Add(-2 * time.Minute)
	j := newTestJob(t, past.Format(isoDateLayout), past.Format("15:04"), nil)
	j.tzName = "UTC"
	j.startupGraceMins = 10
	got := computeNextRunOneTime(j, now)
	require.NotZero(t, got)
	require.LessOrEqual(t, got, now.Unix())
}

func TestComputeNextRunMonthlyStrictSkipsFebruary(t *testing.T) {
	strict := true
	j := newTestJob(t, "31st", "09:00", &strict)
	j.tzName = "UTC"
	from := time.Date(2026, time.January, 31, 10, 0, 0, 0, time.UTC) // past Jan 31's anchor
	got := computeNextRunMonthly(j, from)
	tm := time.Unix(got, 0).UTC()
	require.Equal(t, time.March, tm.Month())
	require.Equal(t, 31, tm.Day())
}

func TestComputeNextRunMonthlyNonStrictRollsToLastDay(t *testing.T) {
	strict := false
	j := newTestJob(t, "31st", "09:00", &strict)
	j.tzName = "UTC"
	from := time.Date(2026, time.January, 31, 10, 0, 0, 0, time.UTC)
	got := computeNextRunMonthly(j, from)
	tm := time.Unix(got, 0).UTC()
	require.Equal(t, time.February, tm.Month())
	require.Equal(t, 28, tm.Day()) // 2026 is not a leap year
}

func TestMustRunTodayBusinessday(t *testing.T) {
	j := newTestJob(t, "businessday", "10:00", nil)
	j.calendar = noHolidays{}

	monday := time.Date(2026, time.March, 2, 0, 0, 0, 0, time.UTC)
	saturday := time.Date(2026, time.March, 7, 0, 0, 0, 0, time.UTC)
	require.True(t, mustRunTodayDaily(j, monday))
	require.False(t, mustRunTodayDaily(j, saturday))
}

func TestMustRunTodayBusinessdayRespectsHolidays(t *testing.T) {
	j := newTestJob(t, "businessday", "10:00", nil)
	goodFriday := time.Date(2020, time.April, 10, 0, 0, 0, 0, time.UTC)
	j.calendar = holidaySet{goodFriday}
	require.False(t, mustRunTodayDaily(j, goodFriday))
}

func TestComputeNextRunDailyWeekdayAnchoring(t *testing.T) {
	now := time.Now()
	todayName := weekdayName(now.Weekday())
	j := newTestJob(t, todayName, now.Add(-time.Minute).Format("15:04"), nil)
	j.tzName = "" // local

	got := computeNextRunDaily(j, now)
	delta := got - now.Unix()
	require.Greater(t, delta, int64(6*24*60*60))
	require.Less(t, delta, int64(8*24*60*60))
}

func weekdayName(d time.Weekday) string {
	for name, wd := range weekdayNames {
		if wd == d {
			return name
		}
	}
	return ""
}

// noHolidays is a calendar.Calendar stand-in with no holidays.
type noHolidays struct{}

func (noHolidays) NowUTC() time.Time                                     { return time.Now().UTC() }
func (noHolidays) NowIn(tz string) (time.Time, error)                    { return time.Now(), nil }
func (noHolidays) IsHoliday(time.Time) bool                              { return false }
func (noHolidays) ToEpoch(local time.Time, tz string) (time.Time, error) { return local, nil }

// holidaySet treats every listed date as a holiday.
type holidaySet []time.Time

func (h holidaySet) NowUTC() time.Time                  { return time.Now().UTC() }
func (h holidaySet) NowIn(tz string) (time.Time, error) { return time.Now(), nil }
func (h holidaySet) IsHoliday(d time.Time) bool {
	y, m, dd := d.Date()
	for _, hd := range h {
		hy, hm, hdd := hd.Date()
		if y == hy && m == hm && dd == hdd {
			return true
		}
	}
	return false
}
func (h holidaySet) ToEpoch(local time.Time, tz string) (time.Time, error) { return local, nil }
