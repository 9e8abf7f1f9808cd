package config

import (
	"fmt"
	"strconv"
	"strings"
)

// Config represents the persistent dispatch configuration stored as
// config.toml in the .dispatch/ directory. The TOML layout uses sections for
// logical grouping.
type Config struct {
	Version     int               `toml:"version"`
	Storage     StorageConfig     `toml:"storage"`
	Runner      RunnerConfig      `toml:"runner"`
	Backends    BackendsConfig    `toml:"backends"`
	Session     SessionConfig     `toml:"session"`
	EventStream EventStreamConfig `toml:"eventstream"`
}

// StorageConfig selects and locates the chat history store.
type StorageConfig struct {
	Driver      string `toml:"driver,omitempty"`
	SQLitePath  string `toml:"sqlite_path,omitempty"`
	PostgresDSN string `toml:"postgres_dsn,omitempty"`
}

// RunnerConfig is the external command used to invoke a model. The model name
// is appended as the final argument.
type RunnerConfig struct {
	Command    string `toml:"command,omitempty"`
	Subcommand string `toml:"subcommand,omitempty"`
}

// BackendsConfig maps each backend to the model that serves it.
type BackendsConfig struct {
	Vision  string `toml:"vision,omitempty"`
	Code    string `toml:"code,omitempty"`
	Math    string `toml:"math,omitempty"`
	General string `toml:"general,omitempty"`
}

// SessionConfig holds interactive session settings.
type SessionConfig struct {
	ContextWindow int `toml:"context_window,omitempty"`
}

// EventStreamConfig holds exchange event publishing settings.
type EventStreamConfig struct {
	Provider string   `toml:"provider,omitempty"`
	Brokers  []string `toml:"brokers,omitempty"`
	Topic    string   `toml:"topic,omitempty"`
}

// configKeyInfo maps a user-facing dotted key name to a getter and setter on *Config.
type configKeyInfo struct {
	get func(c *Config) string
	set func(c *Config, v string) error
}

func oneOf(key, v string, allowed ...string) error {
	for _, a := range allowed {
		if v == a {
			return nil
		}
	}
	return fmt.Errorf("invalid value for %s: %q (available: %s)", key, v, strings.Join(allowed, ", "))
}

// configKeys is the authoritative map of all supported config keys.
// Keys use dotted notation matching the TOML section structure.
var configKeys = map[string]configKeyInfo{
	"storage.driver": {
		get: func(c *Config) string { return c.Storage.Driver },
		set: func(c *Config, v string) error {
			if err := oneOf("storage.driver", v, StorageSQLite, StoragePostgres, StorageMemory); err != nil {
				return err
			}
			c.Storage.Driver = v
			return nil
		},
	},
	"storage.sqlite_path": {
		get: func(c *Config) string { return c.Storage.SQLitePath },
		set: func(c *Config, v string) error { c.Storage.SQLitePath = v; return nil },
	},
	"storage.postgres_dsn": {
		get: func(c *Config) string { return c.Storage.PostgresDSN },
		set: func(c *Config, v string) error { c.Storage.PostgresDSN = v; return nil },
	},
	"runner.command": {
		get: func(c *Config) string { return c.Runner.Command },
		set: func(c *Config, v string) error { c.Runner.Command = v; return nil },
	},
	"runner.subcommand": {
		get: func(c *Config) string { return c.Runner.Subcommand },
		set: func(c *Config, v string) error { c.Runner.Subcommand = v; return nil },
	},
	"backends.vision": {
		get: func(c *Config) string { return c.Backends.Vision },
		set: func(c *Config, v string) error { c.Backends.Vision = v; return nil },
	},
	"backends.code": {
		get: func(c *Config) string { return c.Backends.Code },
		set: func(c *Config, v string) error { c.Backends.Code = v; return nil },
	},
	"backends.math": {
		get: func(c *Config) string { return c.Backends.Math },
		set: func(c *Config, v string) error { c.Backends.Math = v; return nil },
	},
	"backends.general": {
		get: func(c *Config) string { return c.Backends.General },
		set: func(c *Config, v string) error { c.Backends.General = v; return nil },
	},
	"session.context_window": {
		get: func(c *Config) string {
			if c.Session.ContextWindow == 0 {
				return ""
			}
			return strconv.Itoa(c.Session.ContextWindow)
		},
		set: func(c *Config, v string) error {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("invalid value for session.context_window: %w", err)
			}
			if n < 1 {
				return fmt.Errorf("invalid value for session.context_window: must be at least 1, got %d", n)
			}
			c.Session.ContextWindow = n
			return nil
		},
	},
	"eventstream.provider": {
		get: func(c *Config) string { return c.EventStream.Provider },
		set: func(c *Config, v string) error {
			if err := oneOf("eventstream.provider", v, EventStreamNone, EventStreamKafka); err != nil {
				return err
			}
			c.EventStream.Provider = v
			return nil
		},
	},
	"eventstream.brokers": {
		get: func(c *Config) string { return strings.Join(c.EventStream.Brokers, ",") },
		set: func(c *Config, v string) error { c.EventStream.Brokers = SplitList(v); return nil },
	},
	"eventstream.topic": {
		get: func(c *Config) string { return c.EventStream.Topic },
		set: func(c *Config, v string) error { c.EventStream.Topic = v; return nil },
	},
}

// SplitList splits a comma separated value, dropping blanks.
func SplitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
