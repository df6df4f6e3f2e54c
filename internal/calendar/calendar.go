// Package calendar supplies the timezone and holiday lookups the scheduler
// needs to turn a declarative schedule into a concrete next-run time.
package calendar

import (
	"sort"
	"sync"
	"time"
)

// Calendar answers the two questions the scheduler asks of wall-clock time:
// what time is it right now, and is a given date a holiday. Callers can
// supply their own implementation (e.g. backed by a holidays table) in place
// of RealClock.
type Calendar interface {
	// NowUTC returns the current instant in UTC.
	NowUTC() time.Time

	// NowIn returns the current instant in the named location. An empty name
	// means the system's local zone.
	NowIn(tz string) (time.Time, error)

	// IsHoliday reports whether the given local date is a holiday.
	IsHoliday(date time.Time) bool

	// ToEpoch converts a local wall-clock time in the named location to its
	// absolute instant.
	ToEpoch(local time.Time, tz string) (time.Time, error)
}

// RealClock is the default Calendar: system time plus a fixed US-federal
// holiday table, computed per year on first use and cached.
type RealClock struct {
	mu    sync.Mutex
	years map[int][]time.Time
}

// NewRealClock builds a Calendar backed by system time and the built-in
// federal holiday table.
func NewRealClock() *RealClock {
	return &RealClock{years: make(map[int][]time.Time)}
}

// NowUTC implements Calendar.
func (c *RealClock) NowUTC() time.Time {
	return time.Now().UTC()
}

// NowIn implements Calendar.
func (c *RealClock) NowIn(tz string) (time.Time, error) {
	loc, err := loadLocation(tz)
	if err != nil {
		return time.Time{}, err
	}
	return time.Now().In(loc), nil
}

// ToEpoch implements Calendar.
func (c *RealClock) ToEpoch(local time.Time, tz string) (time.Time, error) {
	loc, err := loadLocation(tz)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(local.Year(), local.Month(), local.Day(),
		local.Hour(), local.Minute(), local.Second(), local.Nanosecond(), loc), nil
}

// IsHoliday implements Calendar. It checks the cached federal holiday table
// for the date's year, computing and caching it on first use.
func (c *RealClock) IsHoliday(date time.Time) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	year := date.Year()
	holidays, ok := c.years[year]
	if !ok {
		holidays = federalHolidays(year)
		c.years[year] = holidays
	}

	y, m, d := date.Date()
	for _, h := range holidays {
		hy, hm, hd := h.Date()
		if hy == y && hm == m && hd == d {
			return true
		}
	}
	return false
}

func loadLocation(tz string) (*time.Location, error) {
	if tz == "" {
		return time.Local, nil
	}
	return time.LoadLocation(tz)
}

// federalHolidays returns the US federal holiday dates observed in the given
// year, each truncated to midnight in an unspecified but consistent location
// (only the calendar date is compared by IsHoliday).
func federalHolidays(year int) []time.Time {
	days := []time.Time{
		date(year, time.January, 1),                       // New Year's Day
		nthWeekday(year, time.January, time.Monday, 3),    // MLK Day
		nthWeekday(year, time.February, time.Monday, 3),   // Presidents Day
		lastWeekday(year, time.May, time.Monday),          // Memorial Day
		date(year, time.June, 19),                         // Juneteenth
		date(year, time.July, 4),                          // Independence Day
		nthWeekday(year, time.September, time.Monday, 1),  // Labor Day
		nthWeekday(year, time.October, time.Monday, 2),    // Columbus Day
		date(year, time.November, 11),                     // Veterans Day
		nthWeekday(year, time.November, time.Thursday, 4), // Thanksgiving
		date(year, time.December, 25),                     // Christmas
	}

	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })
	return days
}

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// nthWeekday returns the date of the nth occurrence of weekday in month/year.
func nthWeekday(year int, month time.Month, weekday time.Weekday, n int) time.Time {
	first := date(year, month, 1)
	offset := int(weekday-first.Weekday()+7) % 7
	return first.AddDate(0, 0, offset+7*(n-1))
}

// lastWeekday returns the date of the last occurrence of weekday in month/year.
func lastWeekday(year int, month time.Month, weekday time.Weekday) time.Time {
	next := date(year, month+1, 1)
	last := next.AddDate(0, 0, -1)
	offset := int(last.Weekday()-weekday+7) % 7
	return last.AddDate(0, 0, -offset)
}
