// Package logger configures the process-wide structured logger.
package logger

import (
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Setup initializes the global logger with console output on stderr and
// RFC3339 timestamps. Accepts the standard zerolog level names; unknown
// or empty names fall back to info.
func Setup(level string) {
	zerolog.TimeFieldFormat = time.RFC3339

	lvl, err := zerolog.ParseLevel(level)
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
}

// For returns a logger tagged with the given component name. Components
// keep log lines attributable when several subsystems share one process.
func For(component string) zerolog.Logger {
	return log.With().Str("component", component).Logger()
}
