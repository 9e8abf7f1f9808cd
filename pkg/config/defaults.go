package config

import (
	"github.com/papercomputeco/dispatch/pkg/router"
	"github.com/papercomputeco/dispatch/pkg/runner"
	"github.com/papercomputeco/dispatch/pkg/session"
)

// Storage driver names.
const (
	StorageSQLite   = "sqlite"
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

// Event stream provider names.
const (
	EventStreamNone  = "none"
	EventStreamKafka = "kafka"
)

const (
	defaultStorageDriver = StorageSQLite

	defaultBroker = "localhost:9092"
	defaultTopic  = "dispatch.exchanges"
)

// NewDefaultConfig returns a Config with sane defaults for all fields.
// This is the single source of truth for default values.
func NewDefaultConfig() *Config {
	return &Config{
		Version: CurrentV,
		Storage: StorageConfig{
			Driver: defaultStorageDriver,
		},
		Runner: RunnerConfig{
			Command:    runner.DefaultCommand,
			Subcommand: runner.DefaultSubcommand,
		},
		Backends: BackendsConfig{
			Vision:  router.DefaultModel(router.Vision),
			Code:    router.DefaultModel(router.Code),
			Math:    router.DefaultModel(router.Math),
			General: router.DefaultModel(router.General),
		},
		Session: SessionConfig{
			ContextWindow: session.DefaultWindow,
		},
		EventStream: EventStreamConfig{
			Provider: EventStreamNone,
			Brokers:  []string{defaultBroker},
			Topic:    defaultTopic,
		},
	}
}

// Models returns the backend to model mapping described by b.
func (b BackendsConfig) Models() map[router.Backend]string {
	return map[router.Backend]string{
		router.Vision:  b.Vision,
		router.Code:    b.Code,
		router.Math:    b.Math,
		router.General: b.General,
	}
}
