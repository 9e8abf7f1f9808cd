// Package dispatchcmder is the dispatch root command. Run without a
// subcommand it starts the interactive routing session.
package dispatchcmder

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	askcmder "github.com/papercomputeco/dispatch/cmd/dispatch/ask"
	"github.com/papercomputeco/dispatch/cmd/dispatch/bootstrap"
	configcmder "github.com/papercomputeco/dispatch/cmd/dispatch/config"
	historycmder "github.com/papercomputeco/dispatch/cmd/dispatch/history"
	versioncmder "github.com/papercomputeco/dispatch/cmd/version"
	"github.com/papercomputeco/dispatch/pkg/config"
	"github.com/papercomputeco/dispatch/pkg/dispatch"
)

const dispatchLongDesc string = `Dispatch routes each prompt to the local model best suited to answer it.

Every line typed at the >> prompt is classified by keyword and sent to one
backend model through "ollama run <model>":
  image paths (.png .jpg .jpeg .bmp .gif)  vision   (llama3.2-vision)
  programming keywords                     code     (qwen2.5-coder)
  math keywords                            math     (mathstral)
  anything else                            general  (mistral)

Recent turns are sent back as context and every exchange is appended to the
chat_history table of the configured store. Type "exit" or "/exit" to quit.

Other commands:
  dispatch ask <backend>   Query one backend directly
  dispatch history         Show recorded exchanges
  dispatch config          Manage persistent configuration`

const dispatchShortDesc string = "Dispatch - keyword router for local models"

// sessionFlags are the registry flags the session loop binds to config.
var sessionFlags = []string{
	config.FlagStorageDriver,
	config.FlagSQLite,
	config.FlagPostgresDSN,
	config.FlagRunnerCommand,
	config.FlagRunnerSub,
	config.FlagVisionModel,
	config.FlagCodeModel,
	config.FlagMathModel,
	config.FlagGeneralModel,
	config.FlagContextWindow,
	config.FlagEventProvider,
	config.FlagEventBrokers,
	config.FlagEventTopic,
}

type dispatchCommander struct {
	storageDriver string
	sqlitePath    string
	postgresDSN   string
	runnerCommand string
	runnerSub     string
	visionModel   string
	codeModel     string
	mathModel     string
	generalModel  string
	contextWindow int
	eventProvider string
	eventBrokers  string
	eventTopic    string

	logger *slog.Logger
}

func NewDispatchCmd() *cobra.Command {
	cmder := &dispatchCommander{}

	cmd := &cobra.Command{
		Use:          "dispatch",
		Short:        dispatchShortDesc,
		Long:         dispatchLongDesc,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE:         cmder.run,
	}

	// Global flags
	cmd.PersistentFlags().BoolP(bootstrap.FlagDebug, "d", false, "Enable debug logging")
	cmd.PersistentFlags().String(bootstrap.FlagConfigDir, "", "Override the .dispatch/ config directory")
	cmd.PersistentFlags().String(bootstrap.FlagLogFile, "", "Also append JSON logs to this file")

	config.AddStringFlag(cmd, config.Flags, config.FlagStorageDriver, &cmder.storageDriver)
	config.AddStringFlag(cmd, config.Flags, config.FlagSQLite, &cmder.sqlitePath)
	config.AddStringFlag(cmd, config.Flags, config.FlagPostgresDSN, &cmder.postgresDSN)
	config.AddStringFlag(cmd, config.Flags, config.FlagRunnerCommand, &cmder.runnerCommand)
	config.AddStringFlag(cmd, config.Flags, config.FlagRunnerSub, &cmder.runnerSub)
	config.AddStringFlag(cmd, config.Flags, config.FlagVisionModel, &cmder.visionModel)
	config.AddStringFlag(cmd, config.Flags, config.FlagCodeModel, &cmder.codeModel)
	config.AddStringFlag(cmd, config.Flags, config.FlagMathModel, &cmder.mathModel)
	config.AddStringFlag(cmd, config.Flags, config.FlagGeneralModel, &cmder.generalModel)
	config.AddIntFlag(cmd, config.Flags, config.FlagContextWindow, &cmder.contextWindow)
	config.AddStringFlag(cmd, config.Flags, config.FlagEventProvider, &cmder.eventProvider)
	config.AddStringFlag(cmd, config.Flags, config.FlagEventBrokers, &cmder.eventBrokers)
	config.AddStringFlag(cmd, config.Flags, config.FlagEventTopic, &cmder.eventTopic)

	cmd.AddCommand(askcmder.NewAskCmd())
	cmd.AddCommand(configcmder.NewConfigCmd())
	cmd.AddCommand(historycmder.NewHistoryCmd())
	cmd.AddCommand(versioncmder.NewVersionCmd())

	return cmd
}

func (c *dispatchCommander) run(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	log, closeLog, err := bootstrap.NewLogger(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = closeLog() }()
	c.logger = log

	cfg, dotDir, err := bootstrap.LoadConfig(cmd, sessionFlags)
	if err != nil {
		return err
	}

	driver, err := bootstrap.NewDriver(ctx, cfg, dotDir, c.logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := driver.Close(); err != nil {
			c.logger.Warn("closing history store", "error", err)
		}
	}()

	publisher, err := bootstrap.NewPublisher(cfg, c.logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := publisher.Close(); err != nil {
			c.logger.Warn("closing event publisher", "error", err)
		}
	}()

	d, err := dispatch.NewDispatcher(&dispatch.Config{
		Runner:        bootstrap.NewRunner(cfg),
		Driver:        driver,
		Publisher:     publisher,
		Models:        cfg.Backends.Models(),
		ContextWindow: cfg.Session.ContextWindow,
		Logger:        c.logger,
	})
	if err != nil {
		return fmt.Errorf("creating dispatcher: %w", err)
	}

	c.logger.Debug("session started",
		"session_id", d.SessionID(),
		"storage", cfg.Storage.Driver,
		"context_window", cfg.Session.ContextWindow,
	)

	opts := []dispatch.LoopOption{dispatch.WithLogger(c.logger)}
	if stderr := cmd.ErrOrStderr(); bootstrap.IsTerminal(stderr) {
		opts = append(opts, dispatch.WithProgress(stderr))
	}

	loop := dispatch.NewLoop(d, cmd.InOrStdin(), cmd.OutOrStdout(), opts...)
	return loop.Run(ctx)
}
