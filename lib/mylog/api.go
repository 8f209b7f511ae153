package mylog

import (
	"context"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// Severity uses the names Cloud Logging expects in its severity field.
type Severity string

const (
	SeverityDebug Severity = "DEBUG"
	SeverityInfo  Severity = "INFO"
	SeverityWarn  Severity = "WARN"
	SeverityError Severity = "ERROR"
)

func (s Severity) level() zerolog.Level {
	switch s {
	case SeverityDebug:
		return zerolog.DebugLevel
	case SeverityWarn:
		return zerolog.WarnLevel
	case SeverityError:
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

type Logger interface {
	// Log writes one entry. aggregateUID ties together the entries of one driver or order.
	Log(c context.Context, aggregateUID string, severity Severity, format string, a ...any)
}

// New returns a json logger for Cloud Logging when running on GCP and a console logger otherwise.
func New(component string) Logger {
	if os.Getenv("GOOGLE_CLOUD_PROJECT") != "" {
		return newCloudLogger(component, os.Stdout)
	}
	return newConsoleLogger(component, os.Stderr)
}

// SetLevel limits the output of all loggers to the given level (debug, info, warn, error).
func SetLevel(level string) {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
}
