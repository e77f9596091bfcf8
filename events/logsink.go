package events

import (
	"log/slog"
	"time"
)

// LogSink mirrors controller events into the structured log.
type LogSink struct {
	Logger *slog.Logger
}

func (l LogSink) OnEvent(ts time.Time, message string) {
	if l.Logger != nil {
		l.Logger.Info("monitor event", "at", ts.Format(time.RFC3339), "message", message)
	}
}
