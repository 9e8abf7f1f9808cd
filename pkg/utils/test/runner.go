package testutils

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/papercomputeco/dispatch/pkg/runner"
)

// Invocation is one call observed by ScriptedRunner.
type Invocation struct {
	Model  string
	Prompt string
}

// ScriptedRunner is a runner.Runner that records invocations and answers
// with "<model> says: ok" unless a response is queued.
type ScriptedRunner struct {
	mu sync.Mutex

	Calls []Invocation

	// Responses are consumed in order before falling back to the default
	// answer.
	Responses []string

	// FailModels lists models whose invocations fail.
	FailModels map[string]bool
}

// NewScriptedRunner creates a new scripted runner.
func NewScriptedRunner(responses ...string) *ScriptedRunner {
	return &ScriptedRunner{
		Responses:  responses,
		FailModels: map[string]bool{},
	}
}

func (r *ScriptedRunner) Invoke(_ context.Context, model, prompt string) runner.Result {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.Calls = append(r.Calls, Invocation{Model: model, Prompt: prompt})

	if r.FailModels[model] {
		return runner.Failure(model, errors.New("exit status 1"))
	}

	response := model + " says: ok"
	if len(r.Responses) > 0 {
		response, r.Responses = r.Responses[0], r.Responses[1:]
	}

	return runner.Result{
		Response: response,
		Backend:  model,
		Elapsed:  250 * time.Millisecond,
	}
}

// LastCall returns the most recent invocation.
func (r *ScriptedRunner) LastCall() Invocation {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.Calls) == 0 {
		return Invocation{}
	}
	return r.Calls[len(r.Calls)-1]
}
