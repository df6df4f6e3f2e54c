// Package manifest loads a declarative YAML job list into a
// *scheduler.Scheduler at startup, generalizing the teacher's
// internal/openapi/routes.go "parse a YAML document" idiom from serving a
// static spec to driving builder calls.
package manifest

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/strefethen/taskscheduler/internal/scheduler"
)

// Entry is one declared job. Func names the callable in a Registry passed
// to Load; kwargs are forwarded to the job verbatim.
type Entry struct {
	Func       string                 `yaml:"func"`
	Every      string                 `yaml:"every"`
	At         string                 `yaml:"at"`
	Timezone   string                 `yaml:"timezone"`
	StrictDate *bool                  `yaml:"strict_date"`
	Parallel   bool                   `yaml:"parallel"`
	Doc        string                 `yaml:"doc"`
	Kwargs     map[string]interface{} `yaml:"kwargs"`
}

// Document is the top-level manifest shape: a flat list of job entries.
type Document struct {
	Jobs []Entry `yaml:"jobs"`
}

// Registry maps the manifest's func names to the Go callables they invoke.
// The manifest can only reference functions the host process registered in
// advance — there is no dynamic code loading, matching spec.md's Non-goal
// on arbitrary remote job definitions.
type Registry map[string]scheduler.Func

// Load parses path and registers every entry against sched using funcs to
// resolve each entry's callable. It runs once, before Start(); it is not a
// hot-reload mechanism.
func Load(path string, sched *scheduler.Scheduler, funcs Registry) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading manifest: %w", err)
	}

	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("parsing manifest: %w", err)
	}

	for i, entry := range doc.Jobs {
		if err := register(sched, funcs, entry); err != nil {
			return fmt.Errorf("manifest entry %d (%s): %w", i, entry.Func, err)
		}
	}
	return nil
}

func register(sched *scheduler.Scheduler, funcs Registry, entry Entry) error {
	fn, ok := funcs[entry.Func]
	if !ok {
		return fmt.Errorf("no registered function named %q", entry.Func)
	}

	b := sched.Every(entry.Every)
	if entry.At != "" {
		b = b.At(entry.At)
	}
	if entry.Timezone != "" {
		b = b.Timezone(entry.Timezone)
	}
	if entry.StrictDate != nil {
		b = b.StrictDate(*entry.StrictDate)
	}
	if entry.Doc != "" {
		b = b.Doc(entry.Doc)
	}

	var err error
	if entry.Parallel {
		_, err = b.DoParallel(fn, entry.Kwargs)
	} else {
		_, err = b.Do(fn, entry.Kwargs)
	}
	return err
}
