package scheduler

import (
	"log"
	"sync"
	"time"

	"github.com/strefethen/taskscheduler/internal/calendar"
	"github.com/strefethen/taskscheduler/internal/jobstore"
)

// Scheduler owns the job registry and the dispatch loop. It is safe for
// concurrent use: registration, Check, Rerun, EnableAll/DisableAll, and the
// running dispatch loop may all be called from different goroutines.
type Scheduler struct {
	mu   sync.Mutex
	jobs []handle

	checkInterval    time.Duration
	defaultTZ        string
	defaultCalendar  calendar.Calendar
	onJobError       func(error)
	startupGraceMins int
	store            jobstore.Store
	logger           *log.Logger

	stopCh  chan struct{}
	running bool
}

// Options configure a new Scheduler. A zero-value Options is usable — every
// field has a sane default applied by New, mirroring the original's
// TaskScheduler constructor defaults (check_interval=5s, startup_grace=0,
// persist_states via a non-nil Store).
type Options struct {
	CheckInterval    time.Duration
	DefaultTimezone  string
	Calendar         calendar.Calendar
	OnJobError       func(error)
	StartupGraceMins int
	Store            jobstore.Store
	Logger           *log.Logger
}

// New builds a Scheduler. A nil Calendar defaults to calendar.NewRealClock();
// a nil Logger defaults to log.Default(); a nil Store disables persistence.
func New(opts Options) *Scheduler {
	if opts.CheckInterval <= 0 {
		opts.CheckInterval = 5 * time.Second
	}
	if opts.Calendar == nil {
		opts.Calendar = calendar.NewRealClock()
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	return &Scheduler{
		checkInterval:    opts.CheckInterval,
		defaultTZ:        opts.DefaultTimezone,
		defaultCalendar:  opts.Calendar,
		onJobError:       opts.OnJobError,
		startupGraceMins: opts.StartupGraceMins,
		store:            opts.Store,
		logger:           opts.Logger,
	}
}

// Every begins a fluent registration. calendar, if given, overrides the
// scheduler-wide default calendar for this one job. Alias: On.
func (s *Scheduler) Every(interval string, cal ...calendar.Calendar) *Builder {
	b := &Builder{s: s, every: interval, tzName: s.defaultTZ}
	if len(cal) > 0 {
		b.cal = cal[0]
	}
	return b
}

// On is an alias of Every.
func (s *Scheduler) On(interval string, cal ...calendar.Calendar) *Builder {
	return s.Every(interval, cal...)
}

// Jobs returns a snapshot of the registered jobs, in registration order, for
// the monitor to read.
func (s *Scheduler) Jobs() []*Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*Job, len(s.jobs))
	for i, h := range s.jobs {
		out[i] = h.Inner()
	}
	return out
}

// GetJobByID returns the job with the given id, or nil.
func (s *Scheduler) GetJobByID(id int) *Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, h := range s.jobs {
		if h.ID() == id {
			return h.Inner()
		}
	}
	return nil
}

// Check performs one dispatch pass: every due, non-running job is run. It
// iterates over a shallow copy of the registry so concurrent registration
// or a rerun cannot invalidate iteration.
func (s *Scheduler) Check() {
	s.mu.Lock()
	snapshot := append([]handle{}, s.jobs...)
	s.mu.Unlock()

	for _, h := range snapshot {
		if h.IsDue() && !h.IsRunning() {
			h.Run(false)
		}
	}
}

// Start blocks, restoring persisted logs, running an immediate dispatch
// pass, then ticking every CheckInterval until Stop is called. Mirrors
// JobRunner.runPollLoop's "poll once before entering the ticker loop" shape
// so a freshly-registered repeat job fires on the first pass, not a full
// interval later.
func (s *Scheduler) Start() {
	s.restoreAllJobLogs()

	s.mu.Lock()
	s.running = true
	s.stopCh = make(chan struct{})
	stopCh := s.stopCh
	s.mu.Unlock()

	s.Check()

	ticker := time.NewTicker(s.checkInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stopCh:
			s.Join()
			return
		case <-ticker.C:
			s.Check()
		}
	}
}

// Stop requests a graceful shutdown; safe to call from a signal handler and
// safe to call more than once.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return
	}
	s.running = false
	close(s.stopCh)
}

// Join waits for every async job still in flight to finish.
func (s *Scheduler) Join() {
	s.mu.Lock()
	snapshot := append([]handle{}, s.jobs...)
	s.mu.Unlock()

	for _, h := range snapshot {
		if async, ok := h.(*AsyncJob); ok {
			async.Join()
		}
	}
}

// Rerun force-runs a job via the async wrapper regardless of how it was
// originally registered, rejecting if the job is already running or the id
// is unknown.
func (s *Scheduler) Rerun(id int) error {
	s.mu.Lock()
	var found handle
	idx := -1
	for i, h := range s.jobs {
		if h.ID() == id {
			found = h
			idx = i
			break
		}
	}
	s.mu.Unlock()

	if found == nil {
		return &UnknownJobError{JobID: id}
	}
	if found.IsRunning() {
		return &RerunConflictError{JobID: id}
	}

	async, ok := found.(*AsyncJob)
	if !ok {
		async = WrapAsync(found.Inner())
		s.mu.Lock()
		s.jobs[idx] = async
		s.mu.Unlock()
	}
	async.Run(true)
	return nil
}

// EnableAll enables every registered job.
func (s *Scheduler) EnableAll() {
	for _, j := range s.Jobs() {
		j.Enable()
	}
}

// DisableAll disables every registered job; in-flight runs complete
// normally and still fire on-complete.
func (s *Scheduler) DisableAll() {
	for _, j := range s.Jobs() {
		j.Disable()
	}
}

func (s *Scheduler) restoreAllJobLogs() {
	if s.store == nil {
		return
	}
	records, err := s.store.LoadAll()
	if err != nil {
		s.logger.Printf("unable to restore job states: %v", err)
		return
	}

	byIdentity := make(map[string]jobstore.Record, len(records))
	for _, rec := range records {
		byIdentity[rec.Identity] = rec
	}

	for _, j := range s.Jobs() {
		if rec, ok := byIdentity[j.Identity()]; ok {
			j.applyRecord(rec)
		}
	}
}

func (s *Scheduler) saveJobLogsCallback(j *Job) {
	if s.store == nil {
		return
	}
	if err := s.store.Save(j.toRecord()); err != nil {
		s.logger.Printf("unable to save job %d state: %v", j.id, err)
	}
}

func (j *Job) toRecord() jobstore.Record {
	j.mu.Lock()
	defer j.mu.Unlock()
	return jobstore.Record{
		Identity:  j.Identity(),
		NextRunAt: j.nextRunAt,
		IsEnabled: j.isEnabled,
		Start:     j.logs.Start,
		End:       j.logs.End,
		Log:       j.logs.Log,
		Err:       j.logs.Err,
	}
}

func (j *Job) applyRecord(rec jobstore.Record) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.nextRunAt = rec.NextRunAt
	j.isEnabled = rec.IsEnabled
	j.logs.Start = rec.Start
	j.logs.End = rec.End
	j.logs.Log = rec.Log
	j.logs.Err = rec.Err
}
