package logger

import (
	"io"
	"log/slog"
)

// Option configures a Logger created with New.
type Option func(*config)

// WithLevel sets the minimum level that is written.
func WithLevel(level slog.Level) Option {
	return func(c *config) {
		c.level = level
	}
}

// WithDebug is the --debug flag: Debug level when set, Info otherwise.
func WithDebug(debug bool) Option {
	if debug {
		return WithLevel(slog.LevelDebug)
	}
	return WithLevel(slog.LevelInfo)
}

// WithPretty switches to the charmbracelet/log handler used when stderr is a
// terminal.
func WithPretty(pretty bool) Option {
	return func(c *config) {
		c.pretty = pretty
	}
}

// WithJSON switches to JSON lines, as written to --log-file. It takes
// precedence over WithPretty.
func WithJSON(json bool) Option {
	return func(c *config) {
		c.json = json
	}
}

// WithWriter sends output to w only. Without a writer option New writes to
// os.Stdout; dispatch itself always logs to stderr so model responses own
// stdout.
func WithWriter(w io.Writer) Option {
	return WithWriters(w)
}

// WithWriters sends every line to each of ws.
func WithWriters(ws ...io.Writer) Option {
	return func(c *config) {
		c.writers = ws
	}
}

// WithSource adds the calling file and line to each record.
func WithSource(source bool) Option {
	return func(c *config) {
		c.source = source
	}
}
