// Package monitor exposes a read/control HTTP API over a *scheduler.Scheduler,
// grounded on the teacher's internal/scheduler/routes.go mountable
// chi.Router pattern.
package monitor

import (
	"time"

	"github.com/strefethen/taskscheduler/internal/scheduler"
)

// logsView mirrors scheduler.Logs with JSON field names matching the
// monitor read contract's logs: {start,end,log,err} shape.
type logsView struct {
	Start *time.Time `json:"start"`
	End   *time.Time `json:"end"`
	Log   string     `json:"log"`
	Err   string     `json:"err"`
}

// jobView is the unchanged monitor read shape: { id, func_name,
// schedule_string, doc, state, duration, next_run, logs }.
type jobView struct {
	Object          string   `json:"object"`
	ID              int      `json:"id"`
	FuncName        string   `json:"func_name"`
	ScheduleString  string   `json:"schedule_string"`
	Doc             string   `json:"doc"`
	State           string   `json:"state"`
	DurationSeconds float64  `json:"duration"`
	NextRun         int64    `json:"next_run"`
	IsEnabled       bool     `json:"is_enabled"`
	IsRunning       bool     `json:"is_running"`
	Logs            logsView `json:"logs"`
}

func newJobView(j *scheduler.Job) jobView {
	logs := j.Logs()
	return jobView{
		Object:          "job",
		ID:              j.ID(),
		FuncName:        j.FuncName(),
		ScheduleString:  j.ScheduleString(),
		Doc:             j.Doc(),
		State:           string(j.State()),
		DurationSeconds: j.Duration().Seconds(),
		NextRun:         j.NextRunAt(),
		IsEnabled:       j.IsEnabled(),
		IsRunning:       j.IsRunning(),
		Logs: logsView{
			Start: logs.Start,
			End:   logs.End,
			Log:   logs.Log,
			Err:   logs.Err,
		},
	}
}
