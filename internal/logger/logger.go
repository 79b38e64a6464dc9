// Package logger holds the process-wide slark logger.
//
// The root package exposes SetLogger and Logger; internal packages read the
// logger from here so they do not import the root package.
package logger

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// nopHandler is a slog.Handler that silently discards all log records.
// Enabled returns false so callers skip message formatting entirely.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

func newNop() *slog.Logger { return slog.New(nopHandler{}) }

var ptr atomic.Pointer[slog.Logger]

func init() {
	ptr.Store(newNop())
}

// Set stores l as the active logger. A nil logger restores silent output.
func Set(l *slog.Logger) {
	if l == nil {
		l = newNop()
	}
	ptr.Store(l)
}

// Get returns the active logger. It never returns nil.
func Get() *slog.Logger {
	return ptr.Load()
}
