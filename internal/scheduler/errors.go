package scheduler

import "fmt"

// BadScheduleError is raised synchronously from the builder: an invalid
// interval, a missing required field, or an unknown timezone. Fatal to the
// caller — it never reaches the dispatch loop.
type BadScheduleError struct {
	Reason string
}

func NewBadScheduleError(reason string) *BadScheduleError {
	return &BadScheduleError{Reason: reason}
}

func (e *BadScheduleError) Error() string {
	return fmt.Sprintf("bad schedule: %s", e.Reason)
}

// UserJobError wraps a failure raised inside a registered Func. It is
// captured into the job's logs and dispatched to an error handler; it is
// never propagated out of run().
type UserJobError struct {
	JobID int
	Err   error
}

func (e *UserJobError) Error() string {
	return fmt.Sprintf("job %d failed: %v", e.JobID, e.Err)
}

func (e *UserJobError) Unwrap() error {
	return e.Err
}

// CallbackError wraps a failure inside a lifecycle callback. Logged and
// swallowed; it never aborts the run that triggered it.
type CallbackError struct {
	Kind CallbackKind
	Err  error
}

func (e *CallbackError) Error() string {
	return fmt.Sprintf("%s callback failed: %v", e.Kind, e.Err)
}

func (e *CallbackError) Unwrap() error {
	return e.Err
}

// RerunConflictError is returned by Rerun when the target job is already
// running.
type RerunConflictError struct {
	JobID int
}

func (e *RerunConflictError) Error() string {
	return fmt.Sprintf("cannot rerun job %d: already running", e.JobID)
}

// UnknownJobError is returned by Rerun for an id that does not match a
// registered job. (GetJobByID reports an unknown id by returning nil.)
type UnknownJobError struct {
	JobID int
}

func (e *UnknownJobError) Error() string {
	return fmt.Sprintf("unknown job id %d", e.JobID)
}
