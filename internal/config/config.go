// Package config loads the scheduler's environment-driven configuration.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config holds the base scheduler configuration.
type Config struct {
	// CheckIntervalSec is how often the dispatch loop scans jobs for eligibility.
	CheckIntervalSec int

	// DefaultTimezone is used by jobs that don't override .Timezone().
	// Empty means "system local".
	DefaultTimezone string

	// StartupGraceMinutes is the window within which a missed next_run_at is
	// still fired on the next tick instead of being advanced past it.
	StartupGraceMinutes int

	// PersistStates turns on the state store (restore on start, save on every
	// callback).
	PersistStates bool

	// StorageDriver selects the jobstore backend: "file", "sqlite", or "none".
	StorageDriver string

	// StorageDir is the directory FileStore writes one-JSON-file-per-job into.
	StorageDir string

	// SQLiteDBPath is the database file SQLiteStore opens.
	SQLiteDBPath string

	// MonitorAddr is the address the demo host binds the monitor API to.
	MonitorAddr string

	// MonitorJWTSecret, when non-empty, requires a bearer token on the
	// monitor's mutate routes (rerun/enable/disable). Empty disables auth.
	MonitorJWTSecret string

	// NodeEnv mirrors dev/prod. It is loaded but not consulted anywhere;
	// it does not affect monitor auth.
	NodeEnv string

	// AllowTestMode is loaded from ALLOW_TEST_MODE but not consulted
	// anywhere: no request bypasses the monitor's bearer-token check.
	AllowTestMode bool
}

// Load reads configuration from environment variables with defaults.
func Load() (Config, error) {
	checkInterval := envInt("CHECK_INTERVAL_SECONDS", 5)
	if checkInterval <= 0 {
		return Config{}, fmt.Errorf("CHECK_INTERVAL_SECONDS must be positive, got %d", checkInterval)
	}

	cfg := Config{
		CheckIntervalSec:    checkInterval,
		DefaultTimezone:     envString("SCHEDULER_TZ", ""),
		StartupGraceMinutes: envInt("STARTUP_GRACE_MINUTES", 0),
		PersistStates:       envBool("PERSIST_STATES", true),
		StorageDriver:       envString("STORAGE_DRIVER", "file"),
		StorageDir:          envString("STORAGE_DIR", "./data/jobs"),
		SQLiteDBPath:        envString("SQLITE_DB_PATH", "./data/scheduler.db"),
		MonitorAddr:         envString("MONITOR_ADDR", "127.0.0.1:9090"),
		MonitorJWTSecret:    envString("MONITOR_JWT_SECRET", ""),
		NodeEnv:             envString("NODE_ENV", "development"),
		AllowTestMode:       envBool("ALLOW_TEST_MODE", false),
	}

	switch cfg.StorageDriver {
	case "file", "sqlite", "none":
	default:
		return Config{}, fmt.Errorf("unknown STORAGE_DRIVER %q (want file, sqlite, or none)", cfg.StorageDriver)
	}

	return cfg, nil
}

func envString(key, fallback string) string {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	return val
}

func envInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func envBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	return strings.EqualFold(val, "true")
}
