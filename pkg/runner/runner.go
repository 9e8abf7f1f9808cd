// Package runner invokes model backends as external processes. The prompt is
// written to the process's stdin and the answer is read from its stdout; a
// non-zero exit status is the only error signal.
package runner

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"os/exec"
	"strings"
	"time"
)

const (
	// DefaultCommand is the model runner executable.
	DefaultCommand = "ollama"

	// DefaultSubcommand is passed before the model name.
	DefaultSubcommand = "run"
)

// Result is the outcome of one backend invocation.
type Result struct {
	// Response is the trimmed stdout on success, or a readable error line
	// naming the backend on failure.
	Response string

	// Backend is the model name that was invoked.
	Backend string

	// Elapsed is the wall-clock duration of the invocation.
	Elapsed time.Duration

	// Err is non-nil when the invocation failed.
	Err error
}

// Failed reports whether the invocation failed.
func (r Result) Failed() bool {
	return r.Err != nil
}

// ElapsedSeconds returns the elapsed time in seconds rounded to three decimal
// places. Failed invocations report 0.
func (r Result) ElapsedSeconds() float64 {
	if r.Failed() {
		return 0
	}
	return math.Round(r.Elapsed.Seconds()*1000) / 1000
}

// Runner invokes a model with a prompt.
type Runner interface {
	Invoke(ctx context.Context, model, prompt string) Result
}

// RunnerFunc adapts a function to the Runner interface.
type RunnerFunc func(ctx context.Context, model, prompt string) Result

func (f RunnerFunc) Invoke(ctx context.Context, model, prompt string) Result {
	return f(ctx, model, prompt)
}

// Failure builds the failed Result for model and cause.
func Failure(model string, cause error) Result {
	return Result{
		Response: fmt.Sprintf("Error running %s: %v", model, cause),
		Backend:  model,
		Err:      cause,
	}
}

// ExecRunner runs "<Command> <Args...> <model>" for each invocation.
type ExecRunner struct {
	Command string
	Args    []string
}

// NewExecRunner creates an ExecRunner. An empty command falls back to
// "ollama run".
func NewExecRunner(command string, args ...string) *ExecRunner {
	if command == "" {
		command = DefaultCommand
		args = []string{DefaultSubcommand}
	}
	return &ExecRunner{
		Command: command,
		Args:    args,
	}
}

// Invoke blocks until the backend process exits.
func (r *ExecRunner) Invoke(ctx context.Context, model, prompt string) Result {
	args := append(append([]string{}, r.Args...), model)

	// #nosec G204 -- the command comes from local configuration.
	cmd := exec.CommandContext(ctx, r.Command, args...)
	cmd.Stdin = strings.NewReader(prompt)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	elapsed := time.Since(start)

	if err != nil {
		if detail := strings.TrimSpace(stderr.String()); detail != "" {
			err = fmt.Errorf("%w: %s", err, detail)
		}
		return Failure(model, err)
	}

	return Result{
		Response: strings.TrimSpace(stdout.String()),
		Backend:  model,
		Elapsed:  elapsed,
	}
}
