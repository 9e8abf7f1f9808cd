// Package askcmder provides the ask command, which sends a single prompt to
// one named backend without classification or recording.
package askcmder

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/dispatch/cmd/dispatch/bootstrap"
	"github.com/papercomputeco/dispatch/pkg/cliui"
	"github.com/papercomputeco/dispatch/pkg/config"
	"github.com/papercomputeco/dispatch/pkg/prompt"
	"github.com/papercomputeco/dispatch/pkg/router"
	"github.com/papercomputeco/dispatch/pkg/runner"
)

const askLongDesc string = `Send one prompt straight to a single backend.

The prompt is not classified, no context is attached and nothing is
recorded. Pass the prompt as arguments or type it when asked.

Examples:
  dispatch ask chat "tell me a joke"
  dispatch ask code
  dispatch ask math "integrate x^2 from 0 to 1"
  dispatch ask vision ./photo.png "what is in this picture?"`

const askShortDesc string = "Query one backend directly"

// askFlags are the registry flags ask subcommands bind to config.
var askFlags = []string{
	config.FlagRunnerCommand,
	config.FlagRunnerSub,
	config.FlagVisionModel,
	config.FlagCodeModel,
	config.FlagMathModel,
	config.FlagGeneralModel,
}

type askCommander struct {
	backend router.Backend

	runnerCommand string
	runnerSub     string
	visionModel   string
	codeModel     string
	mathModel     string
	generalModel  string

	// runner overrides the configured subprocess runner.
	runner runner.Runner
}

// Option configures the ask command.
type Option func(*askCommander)

// WithRunner replaces the configured subprocess runner.
func WithRunner(r runner.Runner) Option {
	return func(c *askCommander) {
		c.runner = r
	}
}

func NewAskCmd(opts ...Option) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ask",
		Short: askShortDesc,
		Long:  askLongDesc,
	}

	cmd.AddCommand(newBackendCmd(router.General, "chat", "Ask the general chat model", opts))
	cmd.AddCommand(newBackendCmd(router.Code, "code", "Ask the coding model", opts))
	cmd.AddCommand(newBackendCmd(router.Math, "math", "Ask the math model", opts))
	cmd.AddCommand(newVisionCmd(opts))

	return cmd
}

func newCommander(backend router.Backend, opts []Option) *askCommander {
	c := &askCommander{backend: backend}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *askCommander) addFlags(cmd *cobra.Command) {
	config.AddStringFlag(cmd, config.Flags, config.FlagRunnerCommand, &c.runnerCommand)
	config.AddStringFlag(cmd, config.Flags, config.FlagRunnerSub, &c.runnerSub)
	config.AddStringFlag(cmd, config.Flags, config.FlagVisionModel, &c.visionModel)
	config.AddStringFlag(cmd, config.Flags, config.FlagCodeModel, &c.codeModel)
	config.AddStringFlag(cmd, config.Flags, config.FlagMathModel, &c.mathModel)
	config.AddStringFlag(cmd, config.Flags, config.FlagGeneralModel, &c.generalModel)
}

func newBackendCmd(backend router.Backend, use, short string, opts []Option) *cobra.Command {
	cmder := newCommander(backend, opts)

	cmd := &cobra.Command{
		Use:          use + " [prompt]",
		Short:        short,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			in := bufio.NewReader(cmd.InOrStdin())

			text := strings.Join(args, " ")
			if text == "" {
				var err error
				text, err = readLine(in, cmd.OutOrStdout(), "Prompt: ")
				if err != nil {
					return err
				}
			}

			return cmder.ask(cmd, text)
		},
	}
	cmder.addFlags(cmd)

	return cmd
}

func newVisionCmd(opts []Option) *cobra.Command {
	cmder := newCommander(router.Vision, opts)

	cmd := &cobra.Command{
		Use:          "vision [image] [prompt]",
		Short:        "Ask the vision model about an image",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			in := bufio.NewReader(cmd.InOrStdin())
			out := cmd.OutOrStdout()

			var (
				imagePath string
				text      string
				err       error
			)

			if len(args) > 0 {
				imagePath = strings.TrimSpace(args[0])
			} else if imagePath, err = readLine(in, out, "Image path: "); err != nil {
				return err
			}

			if len(args) > 1 {
				text = strings.Join(args[1:], " ")
			} else if text, err = readLine(in, out, "Prompt: "); err != nil {
				return err
			}

			if _, err := os.Stat(imagePath); err != nil {
				cliui.Fprintf(out, "  %s Image not found: %s\n", cliui.FailMark, imagePath)
				return nil
			}

			return cmder.ask(cmd, prompt.WrapAttachment(imagePath, text))
		},
	}
	cmder.addFlags(cmd)

	return cmd
}

func (c *askCommander) ask(cmd *cobra.Command, text string) error {
	log, closeLog, err := bootstrap.NewLogger(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = closeLog() }()

	cfg, _, err := bootstrap.LoadConfig(cmd, askFlags)
	if err != nil {
		return err
	}

	r := c.runner
	if r == nil {
		r = bootstrap.NewRunner(cfg)
	}

	model := cfg.Backends.Models()[c.backend]
	if model == "" {
		model = router.DefaultModel(c.backend)
	}

	log.Debug("asking backend", "backend", c.backend, "model", model)

	res := r.Invoke(cmd.Context(), model, text)
	if res.Failed() {
		return fmt.Errorf("running %s: %w", model, res.Err)
	}

	out := cmd.OutOrStdout()
	cliui.Fprintf(out, "\n%s %s\n\n",
		cliui.NameStyle.Render(model),
		cliui.DimStyle.Render(fmt.Sprintf("response (%s)", cliui.FormatDuration(res.Elapsed))),
	)
	fmt.Fprintln(out, res.Response)

	return nil
}

// readLine prints label and returns the next trimmed input line. A final line
// without a newline is accepted.
func readLine(in *bufio.Reader, out io.Writer, label string) (string, error) {
	cliui.Fprint(out, cliui.PromptStyle.Render(label))

	line, err := in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		if errors.Is(err, io.EOF) {
			return "", errors.New("no input provided")
		}
		return "", fmt.Errorf("reading input: %w", err)
	}

	return strings.TrimSpace(line), nil
}
