// Package logger wires zerolog's global logger to the scanner's
// configuration. Engines log through the leveled helpers below so the
// verbosity switch lives in one place.
package logger

import (
	"github.com/fixmyk8s/kubecuro/internal/config"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Init sets the global log level from the loaded configuration. Info is the
// default; Debug enables per-file ingest tracing.
func Init(cfg *config.Config) {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if cfg.Debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
}

// Debug returns a debug-level event, emitted only in debug mode
func Debug() *zerolog.Event {
	return log.Debug()
}

// Info returns an info-level event
func Info() *zerolog.Event {
	return log.Info()
}

// Warn returns a warning-level event
func Warn() *zerolog.Event {
	return log.Warn()
}

// Error returns an error-level event
func Error() *zerolog.Event {
	return log.Error()
}

// Fatal returns a fatal event; emitting it exits the process with status 1
func Fatal() *zerolog.Event {
	return log.Fatal()
}
