// Package scheduler implements the declarative job registry and dispatch
// loop: schedule resolution, the per-job run state machine, and the
// cooperative polling loop that drives it.
package scheduler

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log"
	"reflect"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/strefethen/taskscheduler/internal/calendar"
)

// Kind identifies which of the five schedule variants a Job was resolved to.
type Kind string

const (
	KindRepeat  Kind = "repeat"
	KindOneTime Kind = "onetime"
	KindMonthly Kind = "monthly"
	KindDaily   Kind = "daily"
	KindNever   Kind = "never"
)

// Func is the signature user code registers with .Do(). out/errOut are
// per-run buffers, not os.Stdout/os.Stderr — capture must survive two async
// jobs overlapping, so nothing here touches a process-global stream.
type Func func(ctx context.Context, out, errOut io.Writer, kwargs map[string]interface{}) error

// Logs is the last-run record the monitor and the state store both read.
type Logs struct {
	Start *time.Time
	End   *time.Time
	Log   string
	Err   string
}

// MonitorState is the derived state the read API reports.
type MonitorState string

const (
	StateReady   MonitorState = "READY"
	StateRunning MonitorState = "RUNNING"
	StateError   MonitorState = "ERROR"
	StateSuccess MonitorState = "SUCCESS"
)

// Job is the central entity: a resolved, registered schedule bound to a
// callable. All mutable fields are guarded by mu so the dispatcher, the
// monitor, and a running worker goroutine can observe a consistent tuple.
type Job struct {
	mu sync.Mutex

	id   int
	kind Kind

	every      string
	at         string
	tzName     string
	calendar   calendar.Calendar
	strictDate *bool // only meaningful for KindMonthly

	fn       Func
	funcName string
	doc      string
	kwargs   map[string]interface{}

	nextRunAt int64 // epoch seconds; 0 = terminal ("never again")
	isRunning bool
	isEnabled bool
	logs      Logs

	onError          func(error)
	startupGraceMins int

	callbacks map[CallbackKind][]func(*Job)

	logger *log.Logger
}

func (j *Job) log() *log.Logger {
	if j.logger != nil {
		return j.logger
	}
	return log.Default()
}

// ID is the job's dense registration index.
func (j *Job) ID() int {
	return j.id
}

// FuncName is the registered callable's name, reported as the monitor's
// func_name field and used as part of the identity digest.
func (j *Job) FuncName() string {
	return j.funcName
}

// Doc is the human-readable description set via Builder.Doc, the Go
// equivalent of the original's func.__doc__ introspection — Go has no
// runtime-accessible doc comments, so the monitor's doc field is explicit.
func (j *Job) Doc() string {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.doc
}

// ScheduleString renders the declarative descriptor the builder was given,
// e.g. "businessday@10:00" — the monitor's schedule_string field.
func (j *Job) ScheduleString() string {
	if j.at == "" {
		return j.every
	}
	return fmt.Sprintf("%s@%s", j.every, j.at)
}

// IsRunning reports whether a run is currently in flight.
func (j *Job) IsRunning() bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.isRunning
}

// IsEnabled reports whether the job is eligible for scheduled dispatch.
func (j *Job) IsEnabled() bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.isEnabled
}

// NextRunAt returns the next scheduled fire time, 0 meaning terminal.
func (j *Job) NextRunAt() int64 {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.nextRunAt
}

// Logs returns a copy of the last-run record.
func (j *Job) Logs() Logs {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.logs
}

// Enable clears the disabled flag, firing on-enable callbacks.
func (j *Job) Enable() {
	j.mu.Lock()
	j.isEnabled = true
	j.mu.Unlock()
	j.fireCallbacks(CallbackOnEnable)
}

// Disable clears future eligibility without affecting an in-flight run; the
// run, if any, completes normally and still fires on-complete.
func (j *Job) Disable() {
	j.mu.Lock()
	j.isEnabled = false
	j.mu.Unlock()
	j.fireCallbacks(CallbackOnDisable)
}

// State computes the monitor's derived state from the current log snapshot.
func (j *Job) State() MonitorState {
	j.mu.Lock()
	defer j.mu.Unlock()
	switch {
	case j.isRunning:
		return StateRunning
	case j.logs.Err != "":
		return StateError
	case j.logs.End != nil && j.logs.Log != "":
		return StateSuccess
	default:
		return StateReady
	}
}

// Duration returns how long the last (or in-flight) run has taken, zero if
// the job has never run.
func (j *Job) Duration() time.Duration {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.logs.Start == nil {
		return 0
	}
	end := time.Now()
	if j.logs.End != nil {
		end = *j.logs.End
	}
	return end.Sub(*j.logs.Start)
}

// IsDue implements the eligibility invariant:
// is_enabled ∧ ¬is_running ∧ now ≥ next_run_at ∧ must_run_today.
func (j *Job) IsDue() bool {
	j.mu.Lock()
	enabled := j.isEnabled
	running := j.isRunning
	next := j.nextRunAt
	j.mu.Unlock()

	if !enabled || running || next == 0 {
		return false
	}
	now, err := j.nowInTZ()
	if err != nil {
		return false
	}
	if now.Unix() < next {
		return false
	}
	return j.mustRunToday(now)
}

// Catch attaches a per-job error handler, overriding the scheduler-wide
// default for this job only.
func (j *Job) Catch(handler func(error)) *Job {
	j.mu.Lock()
	j.onError = handler
	j.mu.Unlock()
	return j
}

// Identity is the stable digest used by the state store: a hash over the
// job's declarative fields, not its dense index, so reordering registrations
// across a code edit does not misalign restored logs.
func (j *Job) Identity() string {
	keys := make([]string, 0, len(j.kwargs))
	for k := range j.kwargs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(j.funcName)
	b.WriteByte('|')
	b.WriteString(j.every)
	b.WriteByte('|')
	b.WriteString(j.at)
	for _, k := range keys {
		fmt.Fprintf(&b, "|%s=%v", k, j.kwargs[k])
	}

	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}

func (j *Job) nowInTZ() (time.Time, error) {
	loc, err := loadLocation(j.tzName)
	if err != nil {
		return time.Time{}, err
	}
	return time.Now().In(loc), nil
}

func (j *Job) mustRunToday(now time.Time) bool {
	switch j.kind {
	case KindDaily:
		return mustRunTodayDaily(j, now)
	case KindNever:
		return false
	default:
		return true
	}
}

func loadLocation(tz string) (*time.Location, error) {
	if tz == "" {
		return time.Local, nil
	}
	return time.LoadLocation(tz)
}

func funcName(fn Func) string {
	name := runtime.FuncForPC(reflect.ValueOf(fn).Pointer()).Name()
	if i := strings.LastIndex(name, "."); i >= 0 {
		name = name[i+1:]
	}
	return strings.TrimSuffix(name, "-fm")
}
