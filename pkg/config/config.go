// Package config reads and writes the dispatch config.toml and layers it
// with environment variables and flags through viper.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/papercomputeco/dispatch/pkg/dotdir"
)

const (
	configFile = "config.toml"

	// v0 is the alpha version of the config
	v0 = 0

	// CurrentV is the currently supported version, points to v0
	CurrentV = v0
)

// UnknownKeyError is returned for keys missing from the config key registry.
type UnknownKeyError struct {
	Key string
}

func (e *UnknownKeyError) Error() string {
	return fmt.Sprintf("unknown config key: %q (valid keys: %s)", e.Key, strings.Join(ValidConfigKeys(), ", "))
}

type Configer struct {
	ddm        *dotdir.Manager
	targetPath string
}

func NewConfiger(override string) (*Configer, error) {
	cfger := &Configer{}

	cfger.ddm = dotdir.NewManager()
	target, err := cfger.ddm.Target(override)
	if err != nil {
		return nil, err
	}

	path := filepath.Join(target, configFile)
	_, err = os.Stat(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	// Set even when the file is absent so SaveConfig can create it.
	cfger.targetPath = path

	return cfger, nil
}

// ValidConfigKeys returns all supported configuration key names in TOML
// section order.
func ValidConfigKeys() []string {
	ordered := []string{
		"storage.driver",
		"storage.sqlite_path",
		"storage.postgres_dsn",
		"runner.command",
		"runner.subcommand",
		"backends.vision",
		"backends.code",
		"backends.math",
		"backends.general",
		"session.context_window",
		"eventstream.provider",
		"eventstream.brokers",
		"eventstream.topic",
	}

	result := make([]string, 0, len(configKeys))
	seen := make(map[string]bool, len(configKeys))
	for _, k := range ordered {
		if _, ok := configKeys[k]; ok {
			result = append(result, k)
			seen[k] = true
		}
	}

	var rest []string
	for k := range configKeys {
		if !seen[k] {
			rest = append(rest, k)
		}
	}
	slices.Sort(rest)

	return append(result, rest...)
}

// IsValidConfigKey returns true if the given key is a supported configuration key.
func IsValidConfigKey(key string) bool {
	_, ok := configKeys[key]
	return ok
}

func (c *Configer) GetTarget() string {
	return c.targetPath
}

// LoadConfig loads config.toml from the target .dispatch/ directory.
// If the file does not exist, returns NewDefaultConfig() so callers always
// receive a fully-populated Config. Fields explicitly set in the file
// override the defaults.
func (c *Configer) LoadConfig() (*Config, error) {
	if c.targetPath == "" {
		return NewDefaultConfig(), nil
	}

	data, err := os.ReadFile(c.targetPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return NewDefaultConfig(), nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	cfg, err := ParseConfigTOML(data)
	if err != nil {
		return nil, err
	}

	applyDefaults(cfg)

	return cfg, nil
}

// applyDefaults fills zero-value fields in cfg with values from NewDefaultConfig().
func applyDefaults(cfg *Config) {
	defaults := NewDefaultConfig()

	if cfg.Version == 0 {
		cfg.Version = defaults.Version
	}

	if cfg.Storage.Driver == "" {
		cfg.Storage.Driver = defaults.Storage.Driver
	}

	if cfg.Runner.Command == "" {
		cfg.Runner.Command = defaults.Runner.Command
	}
	if cfg.Runner.Subcommand == "" {
		cfg.Runner.Subcommand = defaults.Runner.Subcommand
	}

	if cfg.Backends.Vision == "" {
		cfg.Backends.Vision = defaults.Backends.Vision
	}
	if cfg.Backends.Code == "" {
		cfg.Backends.Code = defaults.Backends.Code
	}
	if cfg.Backends.Math == "" {
		cfg.Backends.Math = defaults.Backends.Math
	}
	if cfg.Backends.General == "" {
		cfg.Backends.General = defaults.Backends.General
	}

	if cfg.Session.ContextWindow == 0 {
		cfg.Session.ContextWindow = defaults.Session.ContextWindow
	}

	if cfg.EventStream.Provider == "" {
		cfg.EventStream.Provider = defaults.EventStream.Provider
	}
	if len(cfg.EventStream.Brokers) == 0 {
		cfg.EventStream.Brokers = defaults.EventStream.Brokers
	}
	if cfg.EventStream.Topic == "" {
		cfg.EventStream.Topic = defaults.EventStream.Topic
	}
}

// SaveConfig persists the configuration to config.toml in the target .dispatch/ directory.
func (c *Configer) SaveConfig(cfg *Config) error {
	if cfg == nil {
		return errors.New("cannot save nil config")
	}

	if c.targetPath == "" {
		return errors.New("cannot save empty target path")
	}

	var buf bytes.Buffer
	encoder := toml.NewEncoder(&buf)
	if err := encoder.Encode(cfg); err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	if err := os.WriteFile(c.targetPath, buf.Bytes(), 0o600); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}

// SetConfigValue loads the config, sets the given key to the given value, and saves it.
func (c *Configer) SetConfigValue(key string, value string) error {
	info, ok := configKeys[key]
	if !ok {
		return &UnknownKeyError{Key: key}
	}

	cfg, err := c.LoadConfig()
	if err != nil {
		return err
	}

	if err := info.set(cfg, value); err != nil {
		return err
	}

	return c.SaveConfig(cfg)
}

// GetConfigValue loads the config and returns the string representation of the given key.
func (c *Configer) GetConfigValue(key string) (string, error) {
	info, ok := configKeys[key]
	if !ok {
		return "", &UnknownKeyError{Key: key}
	}

	cfg, err := c.LoadConfig()
	if err != nil {
		return "", err
	}

	return info.get(cfg), nil
}

// ParseConfigTOML parses raw TOML bytes into a Config.
// Returns an error if the version field is present and not equal to CurrentV.
func ParseConfigTOML(data []byte) (*Config, error) {
	cfg := &Config{}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config TOML: %w", err)
	}

	if cfg.Version != 0 && cfg.Version != CurrentV {
		return nil, fmt.Errorf("unsupported config version %d (expected %d)", cfg.Version, CurrentV)
	}

	return cfg, nil
}
