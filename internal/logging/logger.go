// Package logging configures the global zerolog logger and emits the
// structured run-start event.
package logging

import (
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// LevelEnv overrides the log level when no explicit level is given.
const LevelEnv = "BRAINROT_LOG_LEVEL"

// Init sets the global level and installs a human-readable console writer
// on stderr. An empty level falls back to BRAINROT_LOG_LEVEL, then info.
func Init(level string) {
	zerolog.SetGlobalLevel(ParseLevel(resolve(level)))
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
}

// InitJSON sets the global level and keeps zerolog's JSON output on
// stdout, where CloudWatch Logs can index the fields.
func InitJSON(level string) {
	zerolog.SetGlobalLevel(ParseLevel(resolve(level)))
	log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
}

// ParseLevel maps debug, warn and error to their zerolog levels.
// Anything else is info.
func ParseLevel(level string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

func resolve(level string) string {
	if level != "" {
		return level
	}
	return os.Getenv(LevelEnv)
}
