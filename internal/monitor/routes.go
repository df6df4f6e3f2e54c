package monitor

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/strefethen/taskscheduler/internal/api"
	"github.com/strefethen/taskscheduler/internal/apperrors"
	"github.com/strefethen/taskscheduler/internal/auth"
	"github.com/strefethen/taskscheduler/internal/config"
	"github.com/strefethen/taskscheduler/internal/scheduler"
)

// Routes builds the monitor's read/control API as a mountable chi.Router,
// grounded on the teacher's internal/scheduler/routes.go
// "func Routes(...) chi.Router" shape. GET /jobs and GET /jobs/{id} are the
// spec's unchanged read contract; the rerun/enable/disable/stream routes
// are additive. Only rerun/enable/disable are guarded by an optional bearer
// token when cfg.MonitorJWTSecret is set; the stream route is always open.
func Routes(sched *scheduler.Scheduler, cfg config.Config) chi.Router {
	router := chi.NewRouter()
	router.Use(middleware.StripSlashes)
	router.Use(api.RequestIDMiddleware)
	router.Use(api.RecovererMiddleware)

	h := newHub()
	for _, j := range sched.Jobs() {
		h.wireJob(j)
	}

	router.Method(http.MethodGet, "/jobs", api.Handler(func(w http.ResponseWriter, r *http.Request) error {
		jobs := sched.Jobs()
		views := make([]jobView, len(jobs))
		for i, j := range jobs {
			views[i] = newJobView(j)
		}
		return api.WriteList(w, "/jobs", views, false)
	}))

	router.Method(http.MethodGet, "/jobs/{id}", api.Handler(func(w http.ResponseWriter, r *http.Request) error {
		j, err := lookupJob(sched, r)
		if err != nil {
			return err
		}
		return api.WriteResource(w, http.StatusOK, newJobView(j))
	}))

	router.Get("/jobs/stream", h.serveStream)

	router.Method(http.MethodPost, "/jobs/{id}/rerun", auth.RequireBearer(cfg.MonitorJWTSecret, api.Handler(func(w http.ResponseWriter, r *http.Request) error {
		id, err := jobIDFromPath(r)
		if err != nil {
			return err
		}
		if err := sched.Rerun(id); err != nil {
			return mapSchedulerError(err)
		}
		return api.WriteAction(w, http.StatusAccepted, map[string]any{"object": "rerun", "id": id, "status": "started"})
	})))

	router.Method(http.MethodPost, "/jobs/{id}/enable", auth.RequireBearer(cfg.MonitorJWTSecret, api.Handler(func(w http.ResponseWriter, r *http.Request) error {
		j, err := lookupJob(sched, r)
		if err != nil {
			return err
		}
		j.Enable()
		return api.WriteAction(w, http.StatusOK, map[string]any{"object": "enable", "id": j.ID(), "is_enabled": true})
	})))

	router.Method(http.MethodPost, "/jobs/{id}/disable", auth.RequireBearer(cfg.MonitorJWTSecret, api.Handler(func(w http.ResponseWriter, r *http.Request) error {
		j, err := lookupJob(sched, r)
		if err != nil {
			return err
		}
		j.Disable()
		return api.WriteAction(w, http.StatusOK, map[string]any{"object": "disable", "id": j.ID(), "is_enabled": false})
	})))

	return router
}

func jobIDFromPath(r *http.Request) (int, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperrors.NewValidationError("job id must be an integer", map[string]any{"id": raw})
	}
	return id, nil
}

func lookupJob(sched *scheduler.Scheduler, r *http.Request) (*scheduler.Job, error) {
	id, err := jobIDFromPath(r)
	if err != nil {
		return nil, err
	}
	j := sched.GetJobByID(id)
	if j == nil {
		return nil, apperrors.NewNotFoundResource("job", chi.URLParam(r, "id"))
	}
	return j, nil
}

func mapSchedulerError(err error) error {
	switch err.(type) {
	case *scheduler.RerunConflictError:
		return apperrors.NewConflictError(err.Error(), nil)
	case *scheduler.UnknownJobError:
		return apperrors.NewNotFoundResource("job", "")
	default:
		return apperrors.NewInternalError(err.Error())
	}
}
