// Package dispatch wires classification, prompt assembly, backend invocation
// and recording into a single request cycle, and drives the interactive
// session loop around it.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/papercomputeco/dispatch/pkg/eventstream"
	"github.com/papercomputeco/dispatch/pkg/eventstream/nop"
	"github.com/papercomputeco/dispatch/pkg/logger"
	"github.com/papercomputeco/dispatch/pkg/prompt"
	"github.com/papercomputeco/dispatch/pkg/router"
	"github.com/papercomputeco/dispatch/pkg/runner"
	"github.com/papercomputeco/dispatch/pkg/session"
	"github.com/papercomputeco/dispatch/pkg/storage"
)

// Config is the configuration for a Dispatcher.
type Config struct {
	// Runner invokes backends. Required.
	Runner runner.Runner

	// Driver is the append-only log store. Required.
	Driver storage.Driver

	// Publisher receives an event per recorded exchange. Defaults to a no-op.
	Publisher eventstream.Publisher

	// Classifier routes queries. Defaults to router.NewClassifier().
	Classifier *router.Classifier

	// Models maps backends to model names. Missing entries use
	// router.DefaultModel.
	Models map[router.Backend]string

	// ContextWindow is the number of trailing turns fed back in text mode.
	// Defaults to session.DefaultWindow.
	ContextWindow int

	// SessionID tags log lines and events. Defaults to a random UUID.
	SessionID string

	Logger *slog.Logger
}

// Exchange is the outcome of handling one query.
type Exchange struct {
	Query  string
	Route  router.Route
	Model  string
	Prompt string
	Result runner.Result

	// Record is the persisted log record, nil if the write failed.
	Record *storage.LogRecord
}

// Dispatcher handles queries one at a time.
type Dispatcher struct {
	runner     runner.Runner
	driver     storage.Driver
	publisher  eventstream.Publisher
	classifier *router.Classifier
	models     map[router.Backend]string
	window     int
	sessionID  string
	logger     *slog.Logger
}

// NewDispatcher validates c and fills in defaults.
func NewDispatcher(c *Config) (*Dispatcher, error) {
	if c.Runner == nil {
		return nil, errors.New("dispatcher requires a runner")
	}
	if c.Driver == nil {
		return nil, errors.New("dispatcher requires a storage driver")
	}

	d := &Dispatcher{
		runner:     c.Runner,
		driver:     c.Driver,
		publisher:  c.Publisher,
		classifier: c.Classifier,
		models:     c.Models,
		window:     c.ContextWindow,
		sessionID:  c.SessionID,
		logger:     c.Logger,
	}

	if d.publisher == nil {
		d.publisher = nop.NewPublisher()
	}
	if d.classifier == nil {
		d.classifier = router.NewClassifier()
	}
	if d.window <= 0 {
		d.window = session.DefaultWindow
	}
	if d.sessionID == "" {
		d.sessionID = uuid.NewString()
	}
	if d.logger == nil {
		d.logger = logger.Nop()
	}
	d.logger = d.logger.With("session_id", d.sessionID)

	return d, nil
}

// SessionID returns the identifier stamped on this dispatcher's events.
func (d *Dispatcher) SessionID() string {
	return d.sessionID
}

// Model returns the model name serving backend b.
func (d *Dispatcher) Model(b router.Backend) string {
	if m := d.models[b]; m != "" {
		return m
	}
	return router.DefaultModel(b)
}

// Handle runs one classify, assemble, invoke and record cycle. The turn is
// appended to history whether or not the backend succeeded; callers branch
// on Exchange.Result.Failed. The returned error only reports a failed log
// write, in which case the Exchange is still returned.
func (d *Dispatcher) Handle(ctx context.Context, history *session.History, query string) (*Exchange, error) {
	route := d.classifier.Classify(query)
	model := d.Model(route.Backend)
	window := history.Window(d.window)

	ex := &Exchange{
		Query:  query,
		Route:  route,
		Model:  model,
		Prompt: prompt.Assemble(query, route.Attachment, window),
	}

	d.logger.Debug("routed query",
		"backend", route.Backend,
		"rule", route.Rule,
		"model", model,
		"attachment", route.Attachment,
		"context_turns", len(window),
	)

	ex.Result = d.runner.Invoke(ctx, model, ex.Prompt)
	if ex.Result.Failed() {
		d.logger.Warn("backend invocation failed",
			"model", model,
			"error", ex.Result.Err,
		)
	} else {
		d.logger.Debug("backend answered",
			"model", model,
			"elapsed_seconds", ex.Result.ElapsedSeconds(),
		)
	}

	history.Append(session.Turn{Query: query, Response: ex.Result.Response})

	record := &storage.LogRecord{
		Query:        query,
		Response:     ex.Result.Response,
		AgentName:    ex.Result.Backend,
		ResponseTime: ex.Result.ElapsedSeconds(),
	}
	if err := d.driver.Append(ctx, record); err != nil {
		return ex, fmt.Errorf("recording exchange: %w", err)
	}
	ex.Record = record

	d.publish(ctx, ex)

	return ex, nil
}

// publish emits the exchange event. Failures are logged, never returned.
func (d *Dispatcher) publish(ctx context.Context, ex *Exchange) {
	meta := eventstream.ExchangeMeta{
		Query:          ex.Query,
		Response:       ex.Result.Response,
		ElapsedSeconds: ex.Result.ElapsedSeconds(),
		Failed:         ex.Result.Failed(),
	}
	if ex.Record != nil {
		meta.LogID = ex.Record.ID
	}
	if ex.Result.Err != nil {
		meta.Error = ex.Result.Err.Error()
	}

	event := eventstream.NewExchangeRecordedEvent(d.sessionID, eventstream.RouteMeta{
		Backend:    string(ex.Route.Backend),
		Rule:       ex.Route.Rule,
		Attachment: ex.Route.Attachment,
		Model:      ex.Model,
	}, meta)

	if err := d.publisher.PublishExchange(ctx, event); err != nil {
		d.logger.Warn("failed to publish exchange event",
			"event_id", event.EventID,
			"error", err,
		)
	}
}
