package log

import (
	"context"
	"log/slog"
)

// SlogAdapter writes connection events to an slog.Logger.
// Useful for development when you want to see supervisor activity in console.
type SlogAdapter struct {
	logger *slog.Logger
}

// NewSlogAdapter creates a new SlogAdapter that writes to the given slog.Logger.
func NewSlogAdapter(logger *slog.Logger) *SlogAdapter {
	return &SlogAdapter{logger: logger}
}

// Log writes the event to the slog logger.
// Error events go out at Warn level, everything else at Debug.
func (a *SlogAdapter) Log(event Event) {
	attrs := []slog.Attr{
		slog.String("category", event.Category.String()),
	}

	if event.ConnectionID != "" {
		attrs = append(attrs, slog.String("conn_id", event.ConnectionID))
	}
	if event.RemoteAddr != "" {
		attrs = append(attrs, slog.String("remote_addr", event.RemoteAddr))
	}
	if event.LocalAddr != "" {
		attrs = append(attrs, slog.String("local_addr", event.LocalAddr))
	}
	if event.Message != "" {
		attrs = append(attrs, slog.String("message", event.Message))
	}

	switch {
	case event.Attempt != nil:
		attrs = append(attrs, slog.Int("failure_count", event.Attempt.FailureCount))
		if event.Attempt.Elapsed != 0 {
			attrs = append(attrs, slog.Duration("elapsed", event.Attempt.Elapsed))
		}
		if event.Attempt.NextRetry != 0 {
			attrs = append(attrs, slog.Duration("next_retry", event.Attempt.NextRetry))
		}
	case event.StateChange != nil:
		attrs = append(attrs,
			slog.String("old_state", event.StateChange.OldState),
			slog.String("new_state", event.StateChange.NewState),
		)
		if event.StateChange.Reason != "" {
			attrs = append(attrs, slog.String("reason", event.StateChange.Reason))
		}
	case event.Error != nil:
		attrs = append(attrs,
			slog.String("error_msg", event.Error.Message),
			slog.Bool("network", event.Error.Network),
		)
		if event.Error.Target != "" {
			attrs = append(attrs, slog.String("target", event.Error.Target))
		}
	}

	level := slog.LevelDebug
	if event.Category == CategoryError {
		level = slog.LevelWarn
	}
	a.logger.LogAttrs(context.Background(), level, "connection", attrs...)
}

// Compile-time interface satisfaction check.
var _ Logger = (*SlogAdapter)(nil)
