package mylog

import (
	"context"
	"io"

	"github.com/rs/zerolog"

	"github.com/MarcGrol/deliverybackend/lib/mycontext"
)

const (
	cloudLabelsField = "logging.googleapis.com/labels"
	cloudTraceField  = "logging.googleapis.com/trace"
)

// cloudLogger writes one json object per line in the structured format the logging agent of
// Cloud Run and App Engine picks up. The platform adds the timestamp.
type cloudLogger struct {
	logger zerolog.Logger
}

func newCloudLogger(component string, out io.Writer) Logger {
	return cloudLogger{
		logger: zerolog.New(out).With().Str("component", component).Logger(),
	}
}

func (l cloudLogger) Log(c context.Context, aggregateUID string, severity Severity, format string, a ...any) {
	if severity.level() < zerolog.GlobalLevel() {
		return
	}

	// Log() omits zerolog's own level field, severity takes its place
	event := l.logger.Log().Str("severity", string(severity))
	if aggregateUID != "" {
		event = event.Dict(cloudLabelsField, zerolog.Dict().Str("aggregate", aggregateUID))
	}
	if trace := mycontext.TraceFromContext(c); trace != "" {
		event = event.Str(cloudTraceField, trace)
	}
	event.Msgf(format, a...)
}
