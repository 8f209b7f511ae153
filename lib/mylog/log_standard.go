package mylog

import (
	"context"
	"io"

	"github.com/rs/zerolog"
)

type consoleLogger struct {
	logger zerolog.Logger
}

func newConsoleLogger(component string, out io.Writer) Logger {
	return consoleLogger{
		logger: zerolog.New(zerolog.ConsoleWriter{Out: out, NoColor: true}).
			With().
			Timestamp().
			Str("component", component).
			Logger(),
	}
}

func (l consoleLogger) Log(c context.Context, aggregateUID string, severity Severity, format string, a ...any) {
	event := l.logger.WithLevel(severity.level())
	if aggregateUID != "" {
		event = event.Str("aggregate", aggregateUID)
	}
	event.Msgf(format, a...)
}
