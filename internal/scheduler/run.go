package scheduler

import (
	"bytes"
	"context"
	"fmt"
	"time"
)

// Run executes the job synchronously on the caller's goroutine, following
// the eight-step sequence: claim, reset logs, fire on-enable, capture
// output, invoke the callable, settle logs, advance the schedule (unless
// this is a rerun), fire on-complete. A second call while already running is
// a no-op — exactly one concurrent execution per job is ever permitted.
func (j *Job) Run(isRerun bool) {
	if !j.claim() {
		return
	}
	j.runBody(isRerun)
}

// runBody is the post-claim remainder of Run, factored out so AsyncJob can
// claim synchronously on the launching goroutine and run the body on a
// worker goroutine without a second claim attempt racing the first.
func (j *Job) runBody(isRerun bool) {
	j.fireCallbacks(CallbackOnEnable)

	var out, errOut bytes.Buffer
	err := j.invoke(&out, &errOut)

	now := time.Now()
	var next int64
	if !isRerun {
		next = computeNextRun(j, now)
	}

	j.mu.Lock()
	j.logs.End = &now
	j.logs.Log = out.String()
	if err != nil {
		j.logs.Err = errOut.String()
		if j.logs.Err == "" {
			j.logs.Err = err.Error()
		}
	} else {
		j.logs.Err = errOut.String()
	}
	j.isRunning = false
	if !isRerun {
		j.nextRunAt = next
	}
	j.mu.Unlock()

	if err != nil {
		j.dispatchError(err)
	}

	j.fireCallbacks(CallbackOnComplete)
}

// claim atomically transitions the job from idle to running, returning
// false if a run is already in flight.
func (j *Job) claim() bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.isRunning {
		return false
	}
	j.isRunning = true
	start := time.Now()
	j.logs.Start = &start
	j.logs.End = nil
	j.logs.Log = ""
	j.logs.Err = ""
	return true
}

// invoke calls the registered Func, recovering a panic into a UserJobError
// so a misbehaving job can never take the dispatcher down with it.
func (j *Job) invoke(out, errOut *bytes.Buffer) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &UserJobError{JobID: j.id, Err: fmt.Errorf("panic: %v", r)}
		}
	}()
	if callErr := j.fn(context.Background(), out, errOut, j.kwargs); callErr != nil {
		err = &UserJobError{JobID: j.id, Err: callErr}
	}
	return err
}

// dispatchError routes a failed run to the per-job handler if set, else the
// scheduler-wide handler, else it is silently recorded in logs.Err. Handlers
// receive the raw error the callable (or panic recovery) produced, not the
// *UserJobError wrapper — that wrapper exists for internal bookkeeping
// (logs.Err formatting) only and must never leak into handler-observed
// error text.
func (j *Job) dispatchError(err error) {
	j.mu.Lock()
	handler := j.onError
	j.mu.Unlock()

	if handler == nil {
		return
	}
	if userErr, ok := err.(*UserJobError); ok {
		err = userErr.Err
	}
	defer func() {
		if r := recover(); r != nil {
			j.log().Printf("error handler for job %d panicked: %v", j.id, r)
		}
	}()
	handler(err)
}
