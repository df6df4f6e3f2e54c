package scheduler

import "sync"

// handle is the common interface the dispatch loop, the registry, and the
// monitor use so wrapped and unwrapped jobs are treated uniformly.
type handle interface {
	ID() int
	IsDue() bool
	IsRunning() bool
	Run(isRerun bool)
	Inner() *Job
}

// Inner returns the job itself.
func (j *Job) Inner() *Job {
	return j
}

// AsyncJob offloads a Job's execution onto a worker goroutine so the
// dispatch loop never blocks on user code. Its IsRunning reflects worker
// liveness, which is the same is_running flag the inner Job's claim/runBody
// pair already maintains — the wrapper itself does not duplicate that state.
type AsyncJob struct {
	job *Job
	wg  sync.WaitGroup
}

// WrapAsync wraps an already-constructed Job for parallel execution.
func WrapAsync(j *Job) *AsyncJob {
	return &AsyncJob{job: j}
}

// ID delegates to the wrapped job.
func (a *AsyncJob) ID() int {
	return a.job.ID()
}

// IsDue delegates to the wrapped job.
func (a *AsyncJob) IsDue() bool {
	return a.job.IsDue()
}

// IsRunning delegates to the wrapped job.
func (a *AsyncJob) IsRunning() bool {
	return a.job.IsRunning()
}

// Inner returns the wrapped job.
func (a *AsyncJob) Inner() *Job {
	return a.job
}

// Run claims the job synchronously — so is_running is visible to the caller
// before Run returns, and the same dispatch tick cannot re-launch it — then
// runs the body on a worker goroutine.
func (a *AsyncJob) Run(isRerun bool) {
	if !a.job.claim() {
		return
	}
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		a.job.runBody(isRerun)
	}()
}

// Join waits for the worker goroutine, if any, to finish.
func (a *AsyncJob) Join() {
	a.wg.Wait()
}
