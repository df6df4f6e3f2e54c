// Command taskscheduler is a thin demonstration host: it wires config,
// persistence, the calendar, the scheduler, and the monitor API together
// and optionally loads a declarative job manifest. It is not part of the
// library surface — embedding applications construct a *scheduler.Scheduler
// and mount monitor.Routes directly.
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/strefethen/taskscheduler/internal/calendar"
	"github.com/strefethen/taskscheduler/internal/config"
	"github.com/strefethen/taskscheduler/internal/jobstore"
	"github.com/strefethen/taskscheduler/internal/manifest"
	"github.com/strefethen/taskscheduler/internal/monitor"
	"github.com/strefethen/taskscheduler/internal/scheduler"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	store, err := openStore(cfg)
	if err != nil {
		log.Fatalf("jobstore init error: %v", err)
	}
	if closer, ok := store.(interface{ Close() error }); ok {
		defer closer.Close()
	}

	sched := scheduler.New(scheduler.Options{
		CheckInterval:    time.Duration(cfg.CheckIntervalSec) * time.Second,
		DefaultTimezone:  cfg.DefaultTimezone,
		Calendar:         calendar.NewRealClock(),
		StartupGraceMins: cfg.StartupGraceMinutes,
		Store:            store,
		OnJobError: func(err error) {
			log.Printf("job error: %v", err)
		},
	})

	if manifestPath := os.Getenv("JOB_MANIFEST_PATH"); manifestPath != "" {
		if err := manifest.Load(manifestPath, sched, demoRegistry()); err != nil {
			log.Fatalf("manifest load error: %v", err)
		}
	}

	router := monitor.Routes(sched, cfg)
	srv := &http.Server{
		Addr:              cfg.MonitorAddr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go sched.Start()

	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-shutdownCh
		sched.Stop()

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			log.Printf("monitor shutdown error: %v", err)
		}
	}()

	log.Printf("taskscheduler monitor listening on %s", cfg.MonitorAddr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("monitor server error: %v", err)
	}
}

func openStore(cfg config.Config) (jobstore.Store, error) {
	if !cfg.PersistStates {
		return nil, nil
	}
	switch cfg.StorageDriver {
	case "none":
		return nil, nil
	case "sqlite":
		return jobstore.NewSQLiteStore(cfg.SQLiteDBPath)
	default:
		return jobstore.NewFileStore(cfg.StorageDir)
	}
}

// demoRegistry is the set of functions the demo host's job manifest may
// reference by name. A real embedder supplies its own manifest.Registry.
func demoRegistry() manifest.Registry {
	return manifest.Registry{}
}
