package rix

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// nopHandler discards every record. Enabled reports false so callers skip
// attribute formatting entirely.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

func newNopLogger() *slog.Logger { return slog.New(nopHandler{}) }

// loggerPtr holds the active logger. The decode loops of the threaded
// rasterizer log from worker goroutines, so access is atomic.
var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(newNopLogger())
}

// SetLogger configures the logger shared by rix and all of its sub-packages.
// By default rix is silent. Passing nil restores the silent logger.
//
// Levels used by rix:
//   - [slog.LevelDebug]: display list flushes, buffer swaps, page allocation
//   - [slog.LevelInfo]: lifecycle (renderer created, device attached)
//   - [slog.LevelWarn]: unsupported feature requests, capacity exhaustion
//   - [slog.LevelError]: display list decode failures (the decode loop aborts)
//
// Example:
//
//	rix.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
//	    Level: slog.LevelDebug,
//	})))
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = newNopLogger()
	}
	loggerPtr.Store(l)
}

// Logger returns the logger used by rix. Sub-packages call this instead of
// holding their own reference so SetLogger takes effect everywhere.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}
