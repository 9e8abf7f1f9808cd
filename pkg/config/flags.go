package config

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Flag is the single source of truth for a CLI flag.
// Commands reference flags by registry key rather than hard-coding names,
// shorthands, defaults, and descriptions inline. This prevents flag drift
// when the same logical flag appears on multiple commands (e.g., --sqlite
// on both "dispatch" and "dispatch history").
type Flag struct {
	// Name is the long flag name (e.g. "sqlite").
	Name string

	// Shorthand is the one-letter short flag (e.g. "s"). Empty for no shorthand.
	Shorthand string

	// ViperKey is the dotted config key this flag maps to (e.g. "storage.sqlite_path").
	ViperKey string

	// Description is the help text shown in --help output.
	Description string
}

// FlagSet is a mapping of flag names to Flag structs that hold their name,
// shorthand, viper key, etc.
type FlagSet map[string]Flag

// Flag registry keys.
// Use these constants when calling AddStringFlag, AddIntFlag,
// and BindRegisteredFlags to avoid typos or drift from one command to another.
const (
	FlagStorageDriver = "storage"
	FlagSQLite        = "sqlite"
	FlagPostgresDSN   = "postgres-dsn"
	FlagRunnerCommand = "runner-command"
	FlagRunnerSub     = "runner-subcommand"
	FlagVisionModel   = "vision-model"
	FlagCodeModel     = "code-model"
	FlagMathModel     = "math-model"
	FlagGeneralModel  = "general-model"
	FlagContextWindow = "context-window"
	FlagEventProvider = "eventstream"
	FlagEventBrokers  = "eventstream-brokers"
	FlagEventTopic    = "eventstream-topic"
)

// Flags is the registry shared by all dispatch commands.
var Flags = FlagSet{
	FlagStorageDriver: {
		Name:        "storage",
		ViperKey:    "storage.driver",
		Description: "History store driver (sqlite, postgres, memory)",
	},
	FlagSQLite: {
		Name:        "sqlite",
		Shorthand:   "s",
		ViperKey:    "storage.sqlite_path",
		Description: "Path to the SQLite history database",
	},
	FlagPostgresDSN: {
		Name:        "postgres-dsn",
		ViperKey:    "storage.postgres_dsn",
		Description: "PostgreSQL connection string for the postgres driver",
	},
	FlagRunnerCommand: {
		Name:        "runner-command",
		ViperKey:    "runner.command",
		Description: "Executable used to run models",
	},
	FlagRunnerSub: {
		Name:        "runner-subcommand",
		ViperKey:    "runner.subcommand",
		Description: "Subcommand passed to the runner before the model name",
	},
	FlagVisionModel: {
		Name:        "vision-model",
		ViperKey:    "backends.vision",
		Description: "Model serving image prompts",
	},
	FlagCodeModel: {
		Name:        "code-model",
		ViperKey:    "backends.code",
		Description: "Model serving programming prompts",
	},
	FlagMathModel: {
		Name:        "math-model",
		ViperKey:    "backends.math",
		Description: "Model serving math prompts",
	},
	FlagGeneralModel: {
		Name:        "general-model",
		ViperKey:    "backends.general",
		Description: "Model serving everything else",
	},
	FlagContextWindow: {
		Name:        "context-window",
		Shorthand:   "w",
		ViperKey:    "session.context_window",
		Description: "Number of previous turns sent as context",
	},
	FlagEventProvider: {
		Name:        "eventstream",
		ViperKey:    "eventstream.provider",
		Description: "Exchange event publisher (none, kafka)",
	},
	FlagEventBrokers: {
		Name:        "eventstream-brokers",
		ViperKey:    "eventstream.brokers",
		Description: "Comma separated Kafka broker addresses",
	},
	FlagEventTopic: {
		Name:        "eventstream-topic",
		ViperKey:    "eventstream.topic",
		Description: "Kafka topic for exchange events",
	},
}

// AddStringFlag registers a string flag on cmd from the given FlagSet.
// The flag's name, shorthand, default, and description all come from the
// FlagSet entry so they cannot drift across commands.
func AddStringFlag(cmd *cobra.Command, fs FlagSet, key string, target *string) {
	def, ok := fs[key]
	if !ok {
		return
	}

	defaultVal := defaultString(def.ViperKey)
	if def.Shorthand != "" {
		cmd.Flags().StringVarP(target, def.Name, def.Shorthand, defaultVal, def.Description)
	} else {
		cmd.Flags().StringVar(target, def.Name, defaultVal, def.Description)
	}
}

// AddIntFlag registers an int flag on cmd from the given FlagSet.
func AddIntFlag(cmd *cobra.Command, fs FlagSet, registryKey string, target *int) {
	def, ok := fs[registryKey]
	if !ok {
		return
	}

	defaultVal := defaultInt(def.ViperKey)
	if def.Shorthand != "" {
		cmd.Flags().IntVarP(target, def.Name, def.Shorthand, defaultVal, def.Description)
	} else {
		cmd.Flags().IntVar(target, def.Name, defaultVal, def.Description)
	}
}

// BindRegisteredFlags binds already-registered flags to viper using definitions
// from the given FlagSet. Call this in PreRunE after InitViper to connect flags
// to the viper precedence chain (flag > env > config file > default).
func BindRegisteredFlags(v *viper.Viper, cmd *cobra.Command, fs FlagSet, registryKeys []string) {
	for _, registryKey := range registryKeys {
		def, ok := fs[registryKey]
		if !ok {
			continue
		}

		f := cmd.Flags().Lookup(def.Name)
		if f == nil {
			continue
		}

		_ = v.BindPFlag(def.ViperKey, f)
	}
}

// defaultString returns the default string value for a viper key from NewDefaultConfig.
func defaultString(viperKey string) string {
	v := viper.New()
	setViperDefaults(v)
	if list, ok := v.Get(viperKey).([]string); ok {
		return strings.Join(list, ",")
	}
	return v.GetString(viperKey)
}

// defaultInt returns the default int value for a viper key from NewDefaultConfig.
func defaultInt(viperKey string) int {
	v := viper.New()
	setViperDefaults(v)
	return v.GetInt(viperKey)
}
