package logger

import (
	"context"
	"errors"
	"log/slog"
)

// fanout delivers each record to every handler that accepts its level. With
// --log-file set, dispatch pairs the stderr handler with a JSON file handler;
// a failing file write must not swallow the stderr line, so every handler
// runs and their errors are joined.
type fanout []slog.Handler

// Multi combines the handlers behind loggers into one logger. Nil loggers are
// ignored.
func Multi(loggers ...*slog.Logger) *slog.Logger {
	hs := make(fanout, 0, len(loggers))
	for _, l := range loggers {
		if l != nil {
			hs = append(hs, l.Handler())
		}
	}
	return slog.New(hs)
}

func (f fanout) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range f {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (f fanout) Handle(ctx context.Context, r slog.Record) error {
	var errs []error
	for _, h := range f {
		if !h.Enabled(ctx, r.Level) {
			continue
		}
		if err := h.Handle(ctx, r.Clone()); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (f fanout) WithAttrs(attrs []slog.Attr) slog.Handler {
	return f.derive(func(h slog.Handler) slog.Handler { return h.WithAttrs(attrs) })
}

func (f fanout) WithGroup(name string) slog.Handler {
	return f.derive(func(h slog.Handler) slog.Handler { return h.WithGroup(name) })
}

func (f fanout) derive(fn func(slog.Handler) slog.Handler) fanout {
	out := make(fanout, len(f))
	for i, h := range f {
		out[i] = fn(h)
	}
	return out
}
