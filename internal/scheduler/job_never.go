package scheduler

import "time"

// isValidIntervalNever matches the literal "never" descriptor.
func isValidIntervalNever(every string) bool {
	return every == "never"
}

// computeNextRunNever is always terminal: a NeverJob only runs via explicit
// Scheduler.Rerun.
func computeNextRunNever(j *Job, from time.Time) int64 {
	return 0
}
