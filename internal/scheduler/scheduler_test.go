package scheduler

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/strefethen/taskscheduler/internal/jobstore"
)

// Scenario 3: one-time cleanup. Past job terminates; future job is untouched;
// both remain in the registry.
func TestOneTimeCleanupOnCheck(t *testing.T) {
	s := testScheduler(t)
	yesterday := time.Now().AddDate(0, 0, -1).Format(isoDateLayout)
	tomorrow := time.Now().AddDate(0, 0, 1).Format(isoDateLayout)

	past, err := s.On(yesterday).At("23:59").Do(dummyFunc, nil)
	require.NoError(t, err)
	future, err := s.On(tomorrow).At("23:59").Do(dummyFunc, nil)
	require.NoError(t, err)
	futureNext := future.NextRunAt()

	s.Check()

	require.Equal(t, int64(0), past.NextRunAt())
	require.Equal(t, futureNext, future.NextRunAt())
	require.Len(t, s.Jobs(), 2)
}

// Scenario 4: repeat cadence.
func TestRepeatCadenceAdvancesOneInterval(t *testing.T) {
	s := testScheduler(t)
	t0 := time.Now()
	j, err := s.Every("1").Do(dummyFunc, nil)
	require.NoError(t, err)
	require.InDelta(t, t0.Add(time.Second).Unix(), j.NextRunAt(), 1)

	time.Sleep(1100 * time.Millisecond)
	s.Check()

	require.InDelta(t, float64(t0.Add(2*time.Second).Unix()), float64(j.NextRunAt()), 1)
}

// Scenario 5: parallel non-blocking — two async jobs both begin on one
// tick, the next tick does not re-dispatch them, and both advance.
func TestParallelJobsDoNotBlockOrDoubleDispatch(t *testing.T) {
	s := testScheduler(t)
	var starts int32
	var mu sync.Mutex
	slow := func(ctx context.Context, out, errOut io.Writer, kwargs map[string]interface{}) error {
		mu.Lock()
		starts++
		mu.Unlock()
		time.Sleep(300 * time.Millisecond)
		return nil
	}

	j1, err := s.Every("1").DoParallel(slow, nil)
	require.NoError(t, err)
	j2, err := s.Every("1").DoParallel(slow, nil)
	require.NoError(t, err)
	next1, next2 := j1.NextRunAt(), j2.NextRunAt()

	time.Sleep(1100 * time.Millisecond)
	s.Check()
	require.True(t, j1.IsRunning())
	require.True(t, j2.IsRunning())

	s.Check() // must not re-dispatch while running
	mu.Lock()
	require.Equal(t, int32(2), starts)
	mu.Unlock()

	s.Join()
	require.False(t, j1.IsRunning())
	require.False(t, j2.IsRunning())
	require.Greater(t, j1.NextRunAt(), next1)
	require.Greater(t, j2.NextRunAt(), next2)
}

// Scenario 6: error routing — scheduler-wide handler collects two, a
// per-job .Catch() override collects the third.
func TestErrorRoutingAcrossThreeJobs(t *testing.T) {
	var mu sync.Mutex
	var errs []string
	s := New(Options{
		DefaultTimezone: "UTC",
		OnJobError:      func(err error) { mu.Lock(); errs = append(errs, err.Error()); mu.Unlock() },
	})

	failing := func(msg string) Func {
		return func(ctx context.Context, out, errOut io.Writer, kwargs map[string]interface{}) error {
			return simpleError(msg)
		}
	}

	j1, err := s.Every("1").Do(failing("one"), nil)
	require.NoError(t, err)
	j2, err := s.Every("1").Do(failing("two"), nil)
	require.NoError(t, err)
	j3, err := s.Every("1").Do(failing("three"), nil)
	require.NoError(t, err)
	j3.Catch(func(err error) { mu.Lock(); errs = append(errs, err.Error()+"_specific"); mu.Unlock() })

	j1.Run(false)
	j2.Run(false)
	j3.Run(false)

	mu.Lock()
	sort.Strings(errs)
	require.Equal(t, []string{"one", "three_specific", "two"}, errs)
	require.Len(t, errs, 3)
	mu.Unlock()
}

func TestRerunRejectsRunningJob(t *testing.T) {
	release := make(chan struct{})
	s := testScheduler(t)
	blocking := func(ctx context.Context, out, errOut io.Writer, kwargs map[string]interface{}) error {
		<-release
		return nil
	}
	j, err := s.Every("5").DoParallel(blocking, nil)
	require.NoError(t, err)

	s.jobs[0].Run(false) // the registered async handle: claims, then runs on a worker
	require.True(t, j.IsRunning())

	err = s.Rerun(j.ID())
	require.Error(t, err)
	var conflict *RerunConflictError
	require.ErrorAs(t, err, &conflict)

	close(release)
}

func TestRerunUnknownJobID(t *testing.T) {
	s := testScheduler(t)
	err := s.Rerun(999)
	require.Error(t, err)
	var unknown *UnknownJobError
	require.ErrorAs(t, err, &unknown)
}

func TestDisableAllPreventsDispatchButNotInFlightRun(t *testing.T) {
	s := testScheduler(t)
	completed := false
	j, err := s.Every("1").Do(dummyFunc, nil)
	require.NoError(t, err)
	j.RegisterCallback(CallbackOnComplete, func(*Job) { completed = true })

	j.nextRunAt = time.Now().Add(-time.Second).Unix()
	require.True(t, j.IsDue())

	s.DisableAll()
	require.False(t, j.IsDue())

	j.Run(false) // an in-flight run (simulated directly) still completes
	require.True(t, completed)
}

// P6: restart recovery — save then restore round-trips logs and next_run_at.
func TestPersistenceRoundTrip(t *testing.T) {
	dir := t.TempDir()
	store, err := jobstore.NewFileStore(dir)
	require.NoError(t, err)

	s1 := New(Options{DefaultTimezone: "UTC", Store: store})
	j1, err := s1.Every("1").Do(dummyFunc, nil)
	require.NoError(t, err)
	j1.Run(false)
	firstLogs := j1.Logs()
	firstNext := j1.NextRunAt()

	s2 := New(Options{DefaultTimezone: "UTC", Store: store})
	j2, err := s2.Every("1").Do(dummyFunc, nil)
	require.NoError(t, err)
	require.Equal(t, j1.Identity(), j2.Identity())

	s2.restoreAllJobLogs()

	require.Equal(t, firstNext, j2.NextRunAt())
	require.Equal(t, firstLogs.Log, j2.Logs().Log)
}

func TestPersistenceSkipsCorruptRecordsOnRestore(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "deadbeef.json"), []byte("{not json"), 0o600))
	store, err := jobstore.NewFileStore(dir)
	require.NoError(t, err)

	s := New(Options{DefaultTimezone: "UTC", Store: store})
	require.NotPanics(t, func() { s.restoreAllJobLogs() })
}
