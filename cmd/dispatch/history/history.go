// Package historycmder provides the history command for reviewing recorded
// exchanges.
package historycmder

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/dispatch/cmd/dispatch/bootstrap"
	"github.com/papercomputeco/dispatch/pkg/cliui"
	"github.com/papercomputeco/dispatch/pkg/config"
	"github.com/papercomputeco/dispatch/pkg/storage"
	"github.com/papercomputeco/dispatch/pkg/utils"
)

const historyLongDesc string = `Show the most recent recorded exchanges, newest first.

Records are read from the configured chat_history store. Output is a
rendered markdown table; pass --raw for plain tab separated lines.

Examples:
  dispatch history
  dispatch history --limit 5
  dispatch history --sqlite ./history.db --raw`

const historyShortDesc string = "Show recorded exchanges"

const (
	defaultLimit = 20

	// cellWidth bounds query and response columns in the table.
	cellWidth = 48
)

var historyFlags = []string{
	config.FlagStorageDriver,
	config.FlagSQLite,
	config.FlagPostgresDSN,
}

type historyCommander struct {
	limit         int
	raw           bool
	storageDriver string
	sqlitePath    string
	postgresDSN   string
}

func NewHistoryCmd() *cobra.Command {
	cmder := &historyCommander{}

	cmd := &cobra.Command{
		Use:          "history",
		Short:        historyShortDesc,
		Long:         historyLongDesc,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE:         cmder.run,
	}

	cmd.Flags().IntVarP(&cmder.limit, "limit", "n", defaultLimit, "Maximum number of records to show")
	cmd.Flags().BoolVar(&cmder.raw, "raw", false, "Print plain text instead of a rendered table")
	config.AddStringFlag(cmd, config.Flags, config.FlagStorageDriver, &cmder.storageDriver)
	config.AddStringFlag(cmd, config.Flags, config.FlagSQLite, &cmder.sqlitePath)
	config.AddStringFlag(cmd, config.Flags, config.FlagPostgresDSN, &cmder.postgresDSN)

	return cmd
}

func (c *historyCommander) run(cmd *cobra.Command, _ []string) error {
	if c.limit < 1 {
		return fmt.Errorf("--limit must be at least 1, got %d", c.limit)
	}

	log, closeLog, err := bootstrap.NewLogger(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = closeLog() }()

	cfg, dotDir, err := bootstrap.LoadConfig(cmd, historyFlags)
	if err != nil {
		return err
	}

	driver, err := bootstrap.NewDriver(cmd.Context(), cfg, dotDir, log)
	if err != nil {
		return err
	}
	defer driver.Close()

	records, err := driver.Recent(cmd.Context(), c.limit)
	if err != nil {
		return fmt.Errorf("reading history: %w", err)
	}

	out := cmd.OutOrStdout()
	if len(records) == 0 {
		cliui.Fprintf(out, "  %s\n", cliui.DimStyle.Render("No exchanges recorded yet."))
		return nil
	}

	if c.raw {
		return writeRaw(out, records)
	}

	rendered, err := cliui.RenderMarkdown(Markdown(records))
	if err != nil {
		return err
	}
	cliui.Fprint(out, rendered)
	return nil
}

// Markdown renders records as a markdown table.
func Markdown(records []*storage.LogRecord) string {
	var b strings.Builder
	b.WriteString("| id | time | model | seconds | query | response |\n")
	b.WriteString("|---:|---|---|---:|---|---|\n")
	for _, r := range records {
		fmt.Fprintf(&b, "| %d | %s | %s | %.3f | %s | %s |\n",
			r.ID,
			r.Timestamp.Local().Format("2006-01-02 15:04:05"),
			cell(r.AgentName),
			r.ResponseTime,
			cell(utils.Truncate(oneLine(r.Query), cellWidth)),
			cell(utils.Truncate(oneLine(r.Response), cellWidth)),
		)
	}
	return b.String()
}

func writeRaw(out io.Writer, records []*storage.LogRecord) error {
	for _, r := range records {
		_, err := fmt.Fprintf(out, "%d\t%s\t%s\t%.3f\t%s\t%s\n",
			r.ID,
			r.Timestamp.Format(storage.TimestampLayout),
			r.AgentName,
			r.ResponseTime,
			oneLine(r.Query),
			oneLine(r.Response),
		)
		if err != nil {
			return err
		}
	}
	return nil
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// cell escapes pipes so a value cannot break the table.
func cell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
