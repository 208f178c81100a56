// Package sysutil holds process-level helpers: logger setup and small
// environment parsing utilities shared by config and cmd/server.
package sysutil

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// ConfigureLogger sets the global level, builds the process logger writing to
// w (stderr when nil) and installs it as zerolog's global and default context
// logger. Every line carries the service and host so events from several
// realtime hubs can be told apart. pretty switches to the console writer.
func ConfigureLogger(service, level string, pretty bool, w io.Writer) zerolog.Logger {
	SetLogLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339Nano
	if w == nil {
		w = os.Stderr
	}
	if pretty {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}
	lc := zerolog.New(w).With().Timestamp().Str("service", service)
	if host, err := os.Hostname(); err == nil {
		lc = lc.Str("host", host)
	}
	l := lc.Logger()
	log.Logger = l
	zerolog.DefaultContextLogger = &l
	return l
}

// SetLogLevel parses lvl with zerolog's level names (plus the "warning"
// alias), installs it globally and returns it. Empty or unknown names mean
// info.
func SetLogLevel(lvl string) zerolog.Level {
	name := strings.ToLower(strings.TrimSpace(lvl))
	if name == "warning" {
		name = "warn"
	}
	l, err := zerolog.ParseLevel(name)
	if err != nil || l == zerolog.NoLevel {
		l = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(l)
	return l
}

// IsTruthy accepts "1", "true", "yes", "y" and "on", case-insensitively.
func IsTruthy(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "y", "on":
		return true
	default:
		return false
	}
}

// FirstNonEmpty returns the first value that is not blank, unchanged.
func FirstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
