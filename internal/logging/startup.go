package logging

import (
	"os"
	"runtime"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// RunLogger collects what a run is about to do, then emits one structured
// event so a single log line shows how the run was configured.
type RunLogger struct {
	name     string
	runID    string
	roster   []string
	backends map[string]string
	paths    map[string]string
	features map[string]bool
	config   map[string]string
	initDur  time.Duration
}

// NewRunLogger creates a RunLogger for the given entry point
// (e.g. "brainrot", "generate-lambda").
func NewRunLogger(name string) *RunLogger {
	return &RunLogger{
		name:     name,
		backends: make(map[string]string),
		paths:    make(map[string]string),
		features: make(map[string]bool),
		config:   make(map[string]string),
	}
}

// RunID sets the identifier shared by every artifact of this run.
func (r *RunLogger) RunID(id string) *RunLogger {
	r.runID = id
	return r
}

// Roster records the models asked for ideas.
func (r *RunLogger) Roster(models []string) *RunLogger {
	r.roster = append([]string(nil), models...)
	return r
}

// Backend registers the service used for one stage (e.g. "image" → "xai").
func (r *RunLogger) Backend(stage, name string) *RunLogger {
	r.backends[stage] = name
	return r
}

// Path registers an output location. Buckets and tables go here too.
func (r *RunLogger) Path(label, path string) *RunLogger {
	if path != "" {
		r.paths[label] = path
	}
	return r
}

// Feature registers a boolean feature flag (e.g. "publish", "metrics").
func (r *RunLogger) Feature(name string, enabled bool) *RunLogger {
	r.features[name] = enabled
	return r
}

// Config registers a non-sensitive configuration value. Never pass secrets.
func (r *RunLogger) Config(key, value string) *RunLogger {
	r.config[key] = value
	return r
}

// InitDuration records how long startup took.
func (r *RunLogger) InitDuration(d time.Duration) *RunLogger {
	r.initDur = d
	return r
}

// Log emits the collected information as a single INFO event.
func (r *RunLogger) Log() {
	evt := log.Info()

	runtimeDict := zerolog.Dict().
		Str("name", r.name).
		Str("goVersion", runtime.Version()).
		Str("arch", runtime.GOARCH)
	if fn := os.Getenv("AWS_LAMBDA_FUNCTION_NAME"); fn != "" {
		runtimeDict = runtimeDict.
			Str("functionName", fn).
			Str("region", os.Getenv("AWS_REGION"))
	}
	evt = evt.Dict("runtime", runtimeDict)

	if r.runID != "" {
		evt = evt.Str("run_id", r.runID)
	}
	if len(r.roster) > 0 {
		evt = evt.Strs("roster", r.roster)
	}
	if len(r.backends) > 0 {
		evt = evt.Dict("backends", dictFromMap(r.backends))
	}
	if len(r.paths) > 0 {
		evt = evt.Dict("paths", dictFromMap(r.paths))
	}
	if len(r.features) > 0 {
		d := zerolog.Dict()
		for k, v := range r.features {
			d = d.Bool(k, v)
		}
		evt = evt.Dict("features", d)
	}
	if len(r.config) > 0 {
		evt = evt.Dict("config", dictFromMap(r.config))
	}
	if r.initDur > 0 {
		evt = evt.Dur("initDuration", r.initDur)
	}

	evt.Msg("Run starting")
}

func dictFromMap(m map[string]string) *zerolog.Event {
	d := zerolog.Dict()
	for k, v := range m {
		d = d.Str(k, v)
	}
	return d
}
