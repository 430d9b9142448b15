package workflow

import (
	"context"
	"errors"
	"log/slog"
	"maps"
	"sync"

	"github.com/launchflow/launchflow/pkg/metrics"
	"github.com/launchflow/launchflow/pkg/models"
	"github.com/launchflow/launchflow/pkg/otelhelper"
	"github.com/launchflow/launchflow/pkg/protocol"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

// ErrEngineStopped is returned by Shutdown when called twice.
var ErrEngineStopped = errors.New("workflow engine already stopped")

// Engine turns domain events into workflow executions.
type Engine struct {
	lookup   protocol.WorkflowLookup
	executor *Executor
	matcher  *TriggerMatcher
	logger   *slog.Logger
	tracer   trace.Tracer
	metrics  *metrics.Metrics

	// concurrency bounds parallel executions per event; zero means unbounded.
	concurrency int

	// base is cancelled when the engine's owner shuts down; background runs
	// started by TriggerWorkflow stop with it.
	base    context.Context
	mu      sync.Mutex
	stopped bool
	running sync.WaitGroup
}

type EngineOption func(*Engine)

// WithConcurrency bounds how many workflows run in parallel for one event.
func WithConcurrency(limit int) EngineOption {
	return func(e *Engine) { e.concurrency = limit }
}

func WithEngineTracer(tracer trace.Tracer) EngineOption {
	return func(e *Engine) { e.tracer = tracer }
}

func WithEngineMetrics(m *metrics.Metrics) EngineOption {
	return func(e *Engine) { e.metrics = m }
}

// NewEngine creates an engine. Cancelling ctx cancels in-flight background runs.
func NewEngine(
	ctx context.Context,
	lookup protocol.WorkflowLookup,
	executor *Executor,
	logger *slog.Logger,
	opts ...EngineOption,
) *Engine {
	engine := &Engine{
		lookup:   lookup,
		executor: executor,
		matcher:  NewTriggerMatcher(logger),
		logger:   logger.With("module", "workflow_engine"),
		tracer:   otelhelper.NoopTracer(),
		base:     ctx,
	}

	for _, opt := range opts {
		opt(engine)
	}

	return engine
}

// ExecuteWorkflow runs a single definition. See Executor.ExecuteWorkflow.
func (e *Engine) ExecuteWorkflow(
	ctx context.Context,
	definition *models.WorkflowDefinition,
	triggerData map[string]any,
	triggeredBy string,
) *models.WorkflowExecutionLog {
	return e.executor.ExecuteWorkflow(ctx, definition, triggerData, triggeredBy)
}

// TriggerWorkflows runs every enabled workflow whose trigger type is eventType
// and returns their logs in definition order. Distinct workflows run
// concurrently. It never fails: lookup errors and panics yield an empty slice.
func (e *Engine) TriggerWorkflows(
	ctx context.Context,
	eventType models.WorkflowTriggerType,
	eventData map[string]any,
	actingUserID string,
) (logs []*models.WorkflowExecutionLog) {
	ctx, span := otelhelper.StartSpan(ctx, e.tracer, "workflow.trigger",
		attribute.String(otelhelper.EventTypeKey, string(eventType)),
		attribute.String(otelhelper.UserIDKey, actingUserID),
	)
	defer span.End()

	logger := e.logger.With("event_type", eventType)

	defer func() {
		if r := recover(); r != nil {
			logger.ErrorContext(ctx, "Workflow dispatch panicked", "panic", r)

			logs = []*models.WorkflowExecutionLog{}
		}
	}()

	definitions, err := e.lookup.EnabledWorkflows(ctx)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to load enabled workflows", "error", err)
		otelhelper.SetError(span, err)

		return []*models.WorkflowExecutionLog{}
	}

	matched := e.matcher.MatchWorkflows(eventType, definitions)
	e.metrics.ObserveDispatch(eventType, len(matched))

	if len(matched) == 0 {
		return []*models.WorkflowExecutionLog{}
	}

	data := withEventType(eventData, eventType)
	results := make([]*models.WorkflowExecutionLog, len(matched))

	var group errgroup.Group
	if e.concurrency > 0 {
		group.SetLimit(e.concurrency)
	}

	for index, definition := range matched {
		group.Go(func() error {
			defer func() {
				if r := recover(); r != nil {
					logger.ErrorContext(ctx, "Workflow run panicked", "workflow_id", definition.ID, "panic", r)
				}
			}()

			results[index] = e.executor.ExecuteWorkflow(ctx, definition, data, actingUserID)

			return nil
		})
	}

	_ = group.Wait()

	logs = make([]*models.WorkflowExecutionLog, 0, len(results))

	for _, log := range results {
		if log != nil {
			logs = append(logs, log)
		}
	}

	logger.InfoContext(ctx, "Dispatched event to workflows", "matched", len(matched), "executed", len(logs))

	return logs
}

// TriggerWorkflow dispatches an event in the background and returns at once.
// The run keeps the values of ctx but not its cancellation, so it outlives
// the request that caused it; it stops only when the engine context is
// cancelled. Nothing is reported back to the caller.
func (e *Engine) TriggerWorkflow(
	ctx context.Context,
	eventType models.WorkflowTriggerType,
	eventData map[string]any,
	actingUserID string,
) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.stopped {
		e.logger.WarnContext(ctx, "Engine stopped, dropping event", "event_type", eventType)

		return
	}

	e.running.Add(1)

	go func() {
		defer e.running.Done()

		runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
		defer cancel()

		stop := context.AfterFunc(e.base, cancel)
		defer stop()

		defer func() {
			if r := recover(); r != nil {
				e.logger.ErrorContext(runCtx, "Background workflow dispatch panicked", "panic", r)
			}
		}()

		e.TriggerWorkflows(runCtx, eventType, eventData, actingUserID)
	}()
}

// Shutdown stops accepting background runs and waits for in-flight ones until
// ctx is done.
func (e *Engine) Shutdown(ctx context.Context) error {
	e.mu.Lock()
	if e.stopped {
		e.mu.Unlock()

		return ErrEngineStopped
	}

	e.stopped = true
	e.mu.Unlock()

	done := make(chan struct{})

	go func() {
		e.running.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// withEventType copies data and sets eventType unless the caller provided one.
func withEventType(data map[string]any, eventType models.WorkflowTriggerType) map[string]any {
	out := make(map[string]any, len(data)+1)
	maps.Copy(out, data)

	if _, ok := out["eventType"]; !ok {
		out["eventType"] = string(eventType)
	}

	return out
}
