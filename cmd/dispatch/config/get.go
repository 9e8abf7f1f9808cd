package configcmder

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/dispatch/pkg/cliui"
	"github.com/papercomputeco/dispatch/pkg/config"
)

const getLongDesc string = `Get a configuration value.

Reads the value for the given key from the config.toml file
stored in the .dispatch/ directory. Keys use dotted notation matching
the TOML section structure.

Examples:
  dispatch config get backends.math
  dispatch config get storage.sqlite_path`

const getShortDesc string = "Get a configuration value"

func newGetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get <key>",
		Short: getShortDesc,
		Long:  getLongDesc,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			configDir, _ := cmd.Flags().GetString("config-dir")
			return runGet(cmd.OutOrStdout(), args[0], configDir)
		},
		ValidArgsFunction: completeKeys,
	}

	return cmd
}

func runGet(out io.Writer, key, configDir string) error {
	if !config.IsValidConfigKey(key) {
		return &config.UnknownKeyError{Key: key}
	}

	cfger, err := config.NewConfiger(configDir)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	cliui.Fprintf(out, "\n  %s %s\n\n",
		cliui.KeyStyle.Render("Config file:"),
		cliui.DimStyle.Render(cfger.GetTarget()),
	)

	value, err := cfger.GetConfigValue(key)
	if err != nil {
		return err
	}

	if value == "" {
		cliui.Fprintf(out, "  %s  %s\n\n", cliui.KeyStyle.Render(key), cliui.DimStyle.Render("<not set>"))
	} else {
		cliui.Fprintf(out, "  %s  %s\n\n", cliui.KeyStyle.Render(key), cliui.ValueStyle.Render(value))
	}

	return nil
}
