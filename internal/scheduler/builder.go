package scheduler

import (
	"fmt"
	"time"

	"github.com/strefethen/taskscheduler/internal/calendar"
)

// Builder accumulates a partial schedule specification between fluent
// calls. It is reset implicitly: each call to Scheduler.Every/On returns a
// fresh Builder value, so builders are never shared across goroutines and
// there is no mutable state to reset after Do() the way the original's
// single shared builder instance required.
type Builder struct {
	s   *Scheduler
	err error

	every      string
	at         string
	tzName     string
	cal        calendar.Calendar
	strictDate *bool
	doc        string
}

// Doc attaches a human-readable description the monitor reports verbatim.
func (b *Builder) Doc(doc string) *Builder {
	b.doc = doc
	return b
}

// StrictDate is required before Do() for monthly schedules ("1st".."31st")
// and rejected for every other variant.
func (b *Builder) StrictDate(strict bool) *Builder {
	if b.err != nil {
		return b
	}
	if !isValidIntervalMonthly(b.every) {
		b.err = NewBadScheduleError(".StrictDate(bool) only applies to monthly schedules, e.g. .Every(\"31st\").StrictDate(true)")
		return b
	}
	b.strictDate = &strict
	return b
}

// At sets the HH:MM wall-clock anchor. Optional for repeat schedules,
// required (or defaulted at Do() time) for every other variant.
func (b *Builder) At(timeString string) *Builder {
	if b.err != nil {
		return b
	}
	if _, _, err := parseAtTime(timeString); err != nil {
		b.err = NewBadScheduleError(err.Error())
		return b
	}
	b.at = timeString
	return b
}

// Timezone sets the IANA timezone the schedule is resolved against.
// Alias: Tz.
func (b *Builder) Timezone(tzName string) *Builder {
	if b.err != nil {
		return b
	}
	if _, err := time.LoadLocation(tzName); err != nil {
		b.err = NewBadScheduleError(fmt.Sprintf("unknown timezone %q", tzName))
		return b
	}
	b.tzName = tzName
	return b
}

// Tz is an alias of Timezone.
func (b *Builder) Tz(tzName string) *Builder {
	return b.Timezone(tzName)
}

// Do finalizes the builder into a concrete Job, registers it, and resets
// the builder's place in the pipeline (a fresh Builder is produced by the
// next Every()/On() call — there is nothing left to reset here).
func (b *Builder) Do(fn Func, kwargs map[string]interface{}) (*Job, error) {
	return b.build(fn, false, kwargs)
}

// DoParallel is shorthand for Do with the async wrapper engaged.
func (b *Builder) DoParallel(fn Func, kwargs map[string]interface{}) (*Job, error) {
	return b.build(fn, true, kwargs)
}

func (b *Builder) build(fn Func, parallel bool, kwargs map[string]interface{}) (*Job, error) {
	if b.err != nil {
		return nil, b.err
	}
	if b.every == "" {
		return nil, NewBadScheduleError("use .Every()/.On() before .Do()")
	}

	kind, ok := resolveKind(b.every)
	if !ok {
		return nil, NewBadScheduleError(fmt.Sprintf("%q is not a valid interval", b.every))
	}
	if kind == KindMonthly && b.strictDate == nil {
		return nil, NewBadScheduleError("StrictDate(bool) is required for monthly schedules")
	}

	s := b.s
	tzName := b.tzName
	if tzName == "" {
		tzName = s.defaultTZ
	}

	at := b.at
	if at == "" {
		// The default anchor always derives from the scheduler's default
		// timezone, never the job's own (possibly overridden) timezone —
		// matching the original's dt.now(tz.gettz(self._tz_default)).
		now := time.Now()
		if loc, err := time.LoadLocation(s.defaultTZ); err == nil {
			now = now.In(loc)
		}
		at = now.Format("15:04")
	}

	cal := b.cal
	if cal == nil {
		cal = s.defaultCalendar
	}

	s.mu.Lock()
	id := len(s.jobs)
	s.mu.Unlock()

	j := &Job{
		id:               id,
		kind:             kind,
		every:            b.every,
		at:               at,
		tzName:           tzName,
		calendar:         cal,
		strictDate:       b.strictDate,
		fn:               fn,
		funcName:         funcName(fn),
		doc:              b.doc,
		kwargs:           kwargs,
		isEnabled:        true,
		onError:          s.onJobError,
		startupGraceMins: s.startupGraceMins,
		logger:           s.logger,
	}

	initNow := time.Now()
	if jobNow, err := j.nowInTZ(); err == nil {
		initNow = jobNow
	}
	j.nextRunAt = computeNextRun(j, initNow)

	if s.store != nil {
		j.RegisterCallback(CallbackOnEnable, s.saveJobLogsCallback)
		j.RegisterCallback(CallbackOnDisable, s.saveJobLogsCallback)
		j.RegisterCallback(CallbackOnComplete, s.saveJobLogsCallback)
	}

	var h handle = j
	if parallel {
		h = WrapAsync(j)
	}

	s.mu.Lock()
	s.jobs = append(s.jobs, h)
	s.mu.Unlock()

	return j, nil
}
