package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/papercomputeco/dispatch/pkg/dotdir"
)

// EnvPrefix prefixes every environment variable viper binds.
const EnvPrefix = "DISPATCH"

// InitViper creates and returns a configured *viper.Viper.
// It sets defaults from NewDefaultConfig(), reads the config.toml file
// (if found via dotdir resolution), and binds environment variables
// with the DISPATCH_ prefix.
//
// Config precedence (highest to lowest):
//  1. CLI flags (once bound via BindRegisteredFlags)
//  2. Environment variables (DISPATCH_STORAGE_DRIVER, DISPATCH_BACKENDS_CODE, etc.)
//  3. config.toml file values
//  4. Defaults from NewDefaultConfig()
func InitViper(configDir string) (*viper.Viper, error) {
	v := viper.New()

	setViperDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("toml")

	ddm := dotdir.NewManager()
	target, err := ddm.Target(configDir)
	if err != nil {
		return nil, fmt.Errorf("resolving config dir: %w", err)
	}

	if target != "" {
		v.AddConfigPath(target)
	}

	if err := v.ReadInConfig(); err != nil {
		// Config file not found errors are fine, defaults will apply.
		if !errors.As(err, &viper.ConfigFileNotFoundError{}) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v, nil
}

// setViperDefaults registers defaults from NewDefaultConfig() into viper
// using dotted-key notation. This keeps defaults.go as the single source of truth.
func setViperDefaults(v *viper.Viper) {
	d := NewDefaultConfig()

	v.SetDefault("version", d.Version)

	// Storage
	v.SetDefault("storage.driver", d.Storage.Driver)
	v.SetDefault("storage.sqlite_path", d.Storage.SQLitePath)
	v.SetDefault("storage.postgres_dsn", d.Storage.PostgresDSN)

	// Runner
	v.SetDefault("runner.command", d.Runner.Command)
	v.SetDefault("runner.subcommand", d.Runner.Subcommand)

	// Backends
	v.SetDefault("backends.vision", d.Backends.Vision)
	v.SetDefault("backends.code", d.Backends.Code)
	v.SetDefault("backends.math", d.Backends.Math)
	v.SetDefault("backends.general", d.Backends.General)

	// Session
	v.SetDefault("session.context_window", d.Session.ContextWindow)

	// Event stream
	v.SetDefault("eventstream.provider", d.EventStream.Provider)
	v.SetDefault("eventstream.brokers", d.EventStream.Brokers)
	v.SetDefault("eventstream.topic", d.EventStream.Topic)
}

// FromViper resolves the effective Config from v after flags, environment
// and file have been layered.
func FromViper(v *viper.Viper) *Config {
	cfg := &Config{
		Version: v.GetInt("version"),
		Storage: StorageConfig{
			Driver:      v.GetString("storage.driver"),
			SQLitePath:  v.GetString("storage.sqlite_path"),
			PostgresDSN: v.GetString("storage.postgres_dsn"),
		},
		Runner: RunnerConfig{
			Command:    v.GetString("runner.command"),
			Subcommand: v.GetString("runner.subcommand"),
		},
		Backends: BackendsConfig{
			Vision:  v.GetString("backends.vision"),
			Code:    v.GetString("backends.code"),
			Math:    v.GetString("backends.math"),
			General: v.GetString("backends.general"),
		},
		Session: SessionConfig{
			ContextWindow: v.GetInt("session.context_window"),
		},
		EventStream: EventStreamConfig{
			Provider: v.GetString("eventstream.provider"),
			// Environment values arrive as one comma separated string.
			Brokers: SplitList(strings.Join(v.GetStringSlice("eventstream.brokers"), ",")),
			Topic:   v.GetString("eventstream.topic"),
		},
	}

	applyDefaults(cfg)
	return cfg
}
