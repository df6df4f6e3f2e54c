package scheduler

import "time"

// maxDailySearchDays bounds the forward scan for the next matching day,
// mirroring generator.go's MaxDelayIterations search-forward cap.
const maxDailySearchDays = 30

var weekdayNames = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

// isValidIntervalDaily matches "day", "weekday", "weekend", "businessday",
// or a named weekday.
func isValidIntervalDaily(every string) bool {
	switch every {
	case "day", "weekday", "weekend", "businessday":
		return true
	}
	_, ok := weekdayNames[every]
	return ok
}

// mustRunTodayDaily is the businessday/weekday/weekend/named-day predicate.
func mustRunTodayDaily(j *Job, date time.Time) bool {
	switch j.every {
	case "day":
		return true
	case "weekday":
		return date.Weekday() >= time.Monday && date.Weekday() <= time.Friday
	case "weekend":
		return date.Weekday() == time.Saturday || date.Weekday() == time.Sunday
	case "businessday":
		isWeekday := date.Weekday() >= time.Monday && date.Weekday() <= time.Friday
		return isWeekday && (j.calendar == nil || !j.calendar.IsHoliday(date))
	default:
		wd, ok := weekdayNames[j.every]
		return ok && date.Weekday() == wd
	}
}

// computeNextRunDaily scans forward day by day from from's date, starting
// with today's own anchor time, until it finds a day satisfying
// mustRunTodayDaily whose anchor time is still ahead of from.
func computeNextRunDaily(j *Job, from time.Time) int64 {
	loc, err := loadLocation(j.tzName)
	if err != nil {
		return 0
	}
	hour, minute, err := parseAtTime(j.at)
	if err != nil {
		return 0
	}
	from = from.In(loc)

	candidate := time.Date(from.Year(), from.Month(), from.Day(), hour, minute, 0, 0, loc)
	if candidate.After(from) && mustRunTodayDaily(j, candidate) {
		return candidate.Unix()
	}

	for i := 1; i <= maxDailySearchDays; i++ {
		candidate = candidate.AddDate(0, 0, 1)
		if mustRunTodayDaily(j, candidate) {
			return candidate.Unix()
		}
	}
	return 0
}
