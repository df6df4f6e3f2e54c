package scheduler

import "time"

const isoDateLayout = "2006-01-02"

// isValidIntervalOneTime matches a literal ISO calendar date.
func isValidIntervalOneTime(every string) bool {
	_, err := time.Parse(isoDateLayout, every)
	return err == nil
}

// computeNextRunOneTime fires once at the configured date/time. Past the
// startup grace window a stale date becomes terminal (next_run_at = 0);
// within the window it is left in the past so the next tick fires it.
func computeNextRunOneTime(j *Job, from time.Time) int64 {
	loc, err := loadLocation(j.tzName)
	if err != nil {
		return 0
	}
	date, err := time.Parse(isoDateLayout, j.every)
	if err != nil {
		return 0
	}
	hour, minute, err := parseAtTime(j.at)
	if err != nil {
		return 0
	}
	runAt := time.Date(date.Year(), date.Month(), date.Day(), hour, minute, 0, 0, loc)

	if runAt.After(from) {
		return runAt.Unix()
	}

	grace := time.Duration(j.startupGraceMins) * time.Minute
	if grace > 0 && from.Sub(runAt) <= grace {
		return runAt.Unix()
	}
	return 0
}
