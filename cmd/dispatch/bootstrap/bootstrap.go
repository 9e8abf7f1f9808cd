// Package bootstrap builds the runtime dependencies shared by dispatch
// commands from the layered configuration.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/papercomputeco/dispatch/cmd/dispatch/sqlitepath"
	"github.com/papercomputeco/dispatch/pkg/config"
	"github.com/papercomputeco/dispatch/pkg/dotdir"
	"github.com/papercomputeco/dispatch/pkg/eventstream"
	"github.com/papercomputeco/dispatch/pkg/eventstream/kafka"
	"github.com/papercomputeco/dispatch/pkg/eventstream/nop"
	"github.com/papercomputeco/dispatch/pkg/logger"
	"github.com/papercomputeco/dispatch/pkg/runner"
	"github.com/papercomputeco/dispatch/pkg/storage"
	"github.com/papercomputeco/dispatch/pkg/storage/inmemory"
	"github.com/papercomputeco/dispatch/pkg/storage/postgres"
	"github.com/papercomputeco/dispatch/pkg/storage/sqlite"
)

// Global flag names registered on the root command.
const (
	FlagDebug     = "debug"
	FlagConfigDir = "config-dir"
	FlagLogFile   = "log-file"
)

// LoadConfig resolves the effective config for cmd, binding the given
// registry flags over environment, file and defaults. It also returns the
// resolved .dispatch/ directory.
func LoadConfig(cmd *cobra.Command, registryKeys []string) (*config.Config, string, error) {
	configDir, _ := cmd.Flags().GetString(FlagConfigDir)

	v, err := config.InitViper(configDir)
	if err != nil {
		return nil, "", fmt.Errorf("loading config: %w", err)
	}
	config.BindRegisteredFlags(v, cmd, config.Flags, registryKeys)

	dir, err := dotdir.NewManager().Target(configDir)
	if err != nil {
		return nil, "", fmt.Errorf("resolving config dir: %w", err)
	}

	return config.FromViper(v), dir, nil
}

// NewLogger builds the CLI logger. Records go to stderr, colorized when it is
// a terminal. With --log-file set, JSON records are also appended to that
// file. The returned close func releases the file.
func NewLogger(cmd *cobra.Command) (*slog.Logger, func() error, error) {
	debug, _ := cmd.Flags().GetBool(FlagDebug)
	logFile, _ := cmd.Flags().GetString(FlagLogFile)

	stderr := cmd.ErrOrStderr()
	log := logger.New(
		logger.WithDebug(debug),
		logger.WithPretty(IsTerminal(stderr)),
		logger.WithWriter(stderr),
	)

	if logFile == "" {
		return log, func() error { return nil }, nil
	}

	f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, nil, fmt.Errorf("opening log file: %w", err)
	}

	fileLog := logger.New(
		logger.WithDebug(debug),
		logger.WithJSON(true),
		logger.WithWriter(f),
	)
	return logger.Multi(log, fileLog), f.Close, nil
}

// IsTerminal reports whether w is a terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// NewDriver opens the history store selected by cfg.Storage.Driver.
func NewDriver(ctx context.Context, cfg *config.Config, dotDir string, log *slog.Logger) (storage.Driver, error) {
	switch cfg.Storage.Driver {
	case config.StorageSQLite, "":
		path, err := sqlitepath.ResolveSQLitePath(cfg.Storage.SQLitePath, dotDir)
		if err != nil {
			return nil, err
		}
		log.Debug("opening sqlite history", "path", path)
		d, err := sqlite.NewSQLiteDriver(path)
		if err != nil {
			return nil, fmt.Errorf("opening sqlite history %s: %w", path, err)
		}
		return d, nil

	case config.StoragePostgres:
		if cfg.Storage.PostgresDSN == "" {
			return nil, errors.New("postgres storage requires storage.postgres_dsn")
		}
		log.Debug("connecting to postgres history")
		d, err := postgres.NewDriver(ctx, cfg.Storage.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("connecting to postgres history: %w", err)
		}
		return d, nil

	case config.StorageMemory:
		log.Debug("using in-memory history")
		return inmemory.NewDriver(), nil

	default:
		return nil, fmt.Errorf("unknown storage driver: %q", cfg.Storage.Driver)
	}
}

// NewPublisher creates the exchange event publisher selected by
// cfg.EventStream.Provider.
func NewPublisher(cfg *config.Config, log *slog.Logger) (eventstream.Publisher, error) {
	switch cfg.EventStream.Provider {
	case eventstream.ProviderNone, "":
		return nop.NewPublisher(), nil

	case eventstream.ProviderKafka:
		log.Debug("publishing exchanges to kafka",
			"brokers", cfg.EventStream.Brokers,
			"topic", cfg.EventStream.Topic,
		)
		p, err := kafka.NewPublisher(kafka.Config{
			Brokers: cfg.EventStream.Brokers,
			Topic:   cfg.EventStream.Topic,
		})
		if err != nil {
			return nil, fmt.Errorf("creating kafka publisher: %w", err)
		}
		return p, nil

	default:
		return nil, fmt.Errorf("unknown event stream provider: %q", cfg.EventStream.Provider)
	}
}

// NewRunner creates the subprocess runner described by cfg.Runner.
func NewRunner(cfg *config.Config) *runner.ExecRunner {
	var args []string
	if cfg.Runner.Subcommand != "" {
		args = append(args, cfg.Runner.Subcommand)
	}
	return runner.NewExecRunner(cfg.Runner.Command, args...)
}
