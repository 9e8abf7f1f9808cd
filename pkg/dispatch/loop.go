package dispatch

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/papercomputeco/dispatch/pkg/cliui"
	"github.com/papercomputeco/dispatch/pkg/logger"
	"github.com/papercomputeco/dispatch/pkg/session"
)

// State is the session loop state.
type State int

const (
	Running State = iota
	Terminated
)

func (s State) String() string {
	switch s {
	case Running:
		return "running"
	case Terminated:
		return "terminated"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Prompt is written before each input line.
const Prompt = ">> "

// IsExitCommand reports whether line ends the session. The match is exact
// apart from case.
func IsExitCommand(line string) bool {
	switch strings.ToLower(line) {
	case "exit", "/exit":
		return true
	default:
		return false
	}
}

// Loop reads queries line by line and handles each one to completion before
// reading the next.
type Loop struct {
	dispatcher *Dispatcher
	history    *session.History
	in         io.Reader
	out        io.Writer
	progress   io.Writer
	logger     *slog.Logger
	state      State
}

// LoopOption configures a Loop.
type LoopOption func(*Loop)

// WithProgress shows a spinner on w while a backend is running.
func WithProgress(w io.Writer) LoopOption {
	return func(l *Loop) {
		l.progress = w
	}
}

// WithLogger sets the loop's logger.
func WithLogger(log *slog.Logger) LoopOption {
	return func(l *Loop) {
		l.logger = log
	}
}

// NewLoop creates a Loop that owns a fresh session history.
func NewLoop(d *Dispatcher, in io.Reader, out io.Writer, opts ...LoopOption) *Loop {
	l := &Loop{
		dispatcher: d,
		history:    session.NewHistory(),
		in:         in,
		out:        out,
		logger:     logger.Nop(),
		state:      Running,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// State returns the current loop state.
func (l *Loop) State() State {
	return l.state
}

// History returns the session history owned by the loop.
func (l *Loop) History() *session.History {
	return l.history
}

// Run processes input until an exit command, EOF or context cancellation.
// Lines have no length limit. A final line without a newline is handled
// before the loop stops at EOF.
func (l *Loop) Run(ctx context.Context) error {
	cliui.Fprintf(l.out, "\n%s\n\n", cliui.DimStyle.Render("Dispatch started. Type 'exit' to quit."))

	reader := bufio.NewReader(l.in)

	for l.state == Running {
		if ctx.Err() != nil {
			l.state = Terminated
			break
		}

		cliui.Fprint(l.out, cliui.PromptStyle.Render(Prompt))
		line, err := reader.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
			l.state = Terminated
			if errors.Is(err, io.EOF) {
				break
			}
			return fmt.Errorf("reading input: %w", err)
		}

		query := strings.TrimSuffix(strings.TrimSuffix(line, "\n"), "\r")
		if IsExitCommand(query) {
			fmt.Fprintln(l.out, "Goodbye!")
			l.state = Terminated
			break
		}

		l.handle(ctx, query)
	}

	return nil
}

func (l *Loop) handle(ctx context.Context, query string) {
	var (
		ex  *Exchange
		err error
	)

	run := func() error {
		ex, err = l.dispatcher.Handle(ctx, l.history, query)
		if err == nil && ex.Result.Failed() {
			return ex.Result.Err
		}
		return err
	}

	if l.progress != nil {
		_ = cliui.Step(l.progress, "Waiting for backend", run)
	} else {
		_ = run()
	}

	if err != nil {
		l.logger.Error("failed to record exchange", "error", err)
	}
	if ex != nil {
		fmt.Fprintln(l.out, ex.Result.Response)
	}
}
