// Package logger provides opinionated logging capabilities for dispatch
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"

	charmlog "github.com/charmbracelet/log"
)

type config struct {
	level   slog.Level
	pretty  bool
	json    bool
	source  bool
	writers []io.Writer
}

// New creates a *slog.Logger. The default is a plain text handler at Info
// level writing to os.Stdout.
func New(opts ...Option) *slog.Logger {
	c := &config{
		level: slog.LevelInfo,
	}
	for _, opt := range opts {
		opt(c)
	}

	var w io.Writer
	switch len(c.writers) {
	case 0:
		w = os.Stdout
	case 1:
		w = c.writers[0]
	default:
		w = io.MultiWriter(c.writers...)
	}

	switch {
	case c.json:
		return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
			Level:     c.level,
			AddSource: c.source,
		}))

	case c.pretty:
		charmLevel := charmlog.InfoLevel
		if c.level <= slog.LevelDebug {
			charmLevel = charmlog.DebugLevel
		}
		return slog.New(charmlog.NewWithOptions(w, charmlog.Options{
			Level:           charmLevel,
			ReportTimestamp: true,
			ReportCaller:    c.source,
		}))

	default:
		return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
			Level:     c.level,
			AddSource: c.source,
		}))
	}
}

// Nop returns a logger that discards everything.
func Nop() *slog.Logger {
	return slog.New(nopHandler{})
}

type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (h nopHandler) WithAttrs([]slog.Attr) slog.Handler      { return h }
func (h nopHandler) WithGroup(string) slog.Handler           { return h }
