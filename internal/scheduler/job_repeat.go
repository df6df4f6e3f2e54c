package scheduler

import (
	"strconv"
	"time"
)

// isValidIntervalRepeat matches a positive integer number of seconds.
func isValidIntervalRepeat(every string) bool {
	n, err := strconv.Atoi(every)
	return err == nil && n > 0
}

// computeNextRunRepeat ignores at/timezone/calendar entirely: next_run_at is
// always last_run_at + N, or now + N on first registration.
func computeNextRunRepeat(j *Job, from time.Time) int64 {
	n, _ := strconv.Atoi(j.every)
	return from.Add(time.Duration(n) * time.Second).Unix()
}
