package logging

import (
	"fmt"

	"github.com/rs/zerolog"
)

// TemporalLogger adapts a zerolog.Logger to the Temporal SDK's log.Logger
// interface so workflow and activity logs land in the same stream, with the
// same format, as everything else the binary emits.
type TemporalLogger struct {
	logger zerolog.Logger
}

// NewTemporalLogger wraps the given logger for use in Temporal client options.
func NewTemporalLogger(logger zerolog.Logger) *TemporalLogger {
	return &TemporalLogger{logger: logger}
}

func (l *TemporalLogger) Debug(msg string, keyvals ...interface{}) {
	l.emit(l.logger.Debug(), msg, keyvals)
}

func (l *TemporalLogger) Info(msg string, keyvals ...interface{}) {
	l.emit(l.logger.Info(), msg, keyvals)
}

func (l *TemporalLogger) Warn(msg string, keyvals ...interface{}) {
	l.emit(l.logger.Warn(), msg, keyvals)
}

func (l *TemporalLogger) Error(msg string, keyvals ...interface{}) {
	l.emit(l.logger.Error(), msg, keyvals)
}

func (l *TemporalLogger) emit(ev *zerolog.Event, msg string, keyvals []interface{}) {
	for i := 0; i+1 < len(keyvals); i += 2 {
		ev = ev.Interface(fmt.Sprint(keyvals[i]), keyvals[i+1])
	}
	ev.Msg(msg)
}
