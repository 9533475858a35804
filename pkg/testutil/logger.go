package testutil

import "log/slog"

// DiscardLogger returns a logger whose output goes nowhere. Tests assert on
// behavior, not log lines.
func DiscardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
