package slark

import (
	"log/slog"

	"github.com/gogpu/slark/internal/logger"
)

// SetLogger configures the logger for slark and all its sub-packages.
// By default, slark produces no log output. Call SetLogger to enable logging.
//
// SetLogger is safe for concurrent use. Decode sessions bind the logger when
// they start, so only sessions opened afterwards use the new one.
// Pass nil to disable logging (restore default silent behavior).
//
// Log levels used by slark:
//   - [slog.LevelDebug]: per-frame diagnostics (frame delays, APNG offsets)
//   - [slog.LevelInfo]: decode session lifecycle (started, fully decoded)
//   - [slog.LevelWarn]: non-fatal issues (unsupported files, corrupt streams)
//
// Example:
//
//	// Enable info-level logging to stderr:
//	slark.SetLogger(slog.Default())
//
//	// Enable debug-level logging for full diagnostics:
//	slark.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
//	    Level: slog.LevelDebug,
//	})))
func SetLogger(l *slog.Logger) {
	logger.Set(l)
}

// Logger returns the current logger used by slark.
//
// Logger is safe for concurrent use.
func Logger() *slog.Logger {
	return logger.Get()
}
