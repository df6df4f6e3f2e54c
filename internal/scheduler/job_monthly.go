package scheduler

import (
	"strconv"
	"strings"
	"time"
)

var monthlyOrdinals = map[string]int{}

func init() {
	suffixes := []string{"st", "nd", "rd", "th"}
	for day := 1; day <= 31; day++ {
		for _, suf := range suffixes {
			monthlyOrdinals[strconv.Itoa(day)+suf] = day
		}
	}
}

// isValidIntervalMonthly matches a day ordinal 1..31 followed by any of the
// suffixes st/nd/rd/th, case-insensitively ("1st", "22nd", "31st", but also
// "3th").
func isValidIntervalMonthly(every string) bool {
	_, ok := monthlyOrdinals[strings.ToLower(every)]
	return ok
}

func monthlyOrdinalDay(every string) int {
	return monthlyOrdinals[strings.ToLower(every)]
}

// daysInMonth returns how many days the given year/month has.
func daysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// computeNextRunMonthly finds the next occurrence of the configured
// day-of-month. strict_date=true skips months shorter than the target day;
// strict_date=false rolls to that month's last day instead. Searches forward
// up to 12 months, which always terminates: every ordinal 1-28 exists every
// month, and every ordinal up to 31 recurs within a year.
func computeNextRunMonthly(j *Job, from time.Time) int64 {
	loc, err := loadLocation(j.tzName)
	if err != nil {
		return 0
	}
	day := monthlyOrdinalDay(j.every)
	hour, minute, err := parseAtTime(j.at)
	if err != nil {
		return 0
	}
	strict := j.strictDate != nil && *j.strictDate

	year, month := from.Year(), from.Month()
	for i := 0; i < 12; i++ {
		monthLen := daysInMonth(year, month)
		var candidateDay int
		if day <= monthLen {
			candidateDay = day
		} else if strict {
			month++
			if month > 12 {
				month = 1
				year++
			}
			continue
		} else {
			candidateDay = monthLen
		}

		candidate := time.Date(year, month, candidateDay, hour, minute, 0, 0, loc)
		if candidate.After(from) {
			return candidate.Unix()
		}

		month++
		if month > 12 {
			month = 1
			year++
		}
	}
	return 0
}
