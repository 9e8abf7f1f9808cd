package configcmder

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/dispatch/pkg/cliui"
	"github.com/papercomputeco/dispatch/pkg/config"
)

const setLongDesc string = `Set a configuration value.

Sets the given key to the provided value in the config.toml file
stored in the .dispatch/ directory, creating the file if needed.
List values such as eventstream.brokers are comma separated.

Examples:
  dispatch config set backends.vision llava
  dispatch config set storage.driver postgres
  dispatch config set eventstream.brokers kafka-1:9092,kafka-2:9092`

const setShortDesc string = "Set a configuration value"

func newSetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set <key> <value>",
		Short: setShortDesc,
		Long:  setLongDesc,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			configDir, _ := cmd.Flags().GetString("config-dir")
			return runSet(cmd.OutOrStdout(), args[0], args[1], configDir)
		},
		ValidArgsFunction: completeKeys,
	}

	return cmd
}

func runSet(out io.Writer, key, value, configDir string) error {
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

	if err := cfger.SetConfigValue(key, value); err != nil {
		return err
	}

	cliui.Fprintf(out, "  %s Set %s = %s\n\n",
		cliui.SuccessMark,
		cliui.KeyStyle.Render(key),
		cliui.ValueStyle.Render(value),
	)
	return nil
}
