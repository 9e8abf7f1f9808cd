// Package configcmder provides the config command for managing persistent
// dispatch configuration stored in the .dispatch/ directory.
package configcmder

import (
	"github.com/spf13/cobra"

	"github.com/papercomputeco/dispatch/pkg/config"
)

const configLongDesc string = `Manage persistent dispatch configuration.

Configuration is stored as config.toml in the .dispatch/ directory and provides
default values for command flags. DISPATCH_* environment variables override
file values and CLI flags override both.

Keys use dotted notation matching the TOML section structure:
  storage.driver, storage.sqlite_path, storage.postgres_dsn,
  runner.command, runner.subcommand,
  backends.vision, backends.code, backends.math, backends.general,
  session.context_window,
  eventstream.provider, eventstream.brokers, eventstream.topic

Use subcommands to get, set, or list configuration values:
  dispatch config set <key> <value>    Set a configuration value
  dispatch config get <key>            Get a configuration value
  dispatch config list                 List all configuration values

Examples:
  dispatch config set backends.code codellama
  dispatch config set session.context_window 4
  dispatch config get storage.driver
  dispatch config list`

const configShortDesc string = "Manage persistent dispatch configuration"

func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: configShortDesc,
		Long:  configLongDesc,
	}

	cmd.AddCommand(newSetCmd())
	cmd.AddCommand(newGetCmd())
	cmd.AddCommand(newListCmd())

	return cmd
}

func completeKeys(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
	if len(args) == 0 {
		return config.ValidConfigKeys(), cobra.ShellCompDirectiveNoFileComp
	}
	return nil, cobra.ShellCompDirectiveNoFileComp
}
