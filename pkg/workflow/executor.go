// Package workflow runs workflow definitions: it checks trigger conditions,
// dispatches actions in order and produces execution logs.
package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/launchflow/launchflow/pkg/conditions"
	"github.com/launchflow/launchflow/pkg/eventbus"
	"github.com/launchflow/launchflow/pkg/events"
	"github.com/launchflow/launchflow/pkg/metrics"
	"github.com/launchflow/launchflow/pkg/models"
	"github.com/launchflow/launchflow/pkg/otelhelper"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"k8s.io/utils/clock"
)

// ErrNilDefinition is recorded when an execution is requested without a definition.
var ErrNilDefinition = errors.New("workflow definition is required")

// ExecutionRecorder stores finished execution logs.
type ExecutionRecorder interface {
	SaveExecutionLog(ctx context.Context, log *models.WorkflowExecutionLog) error
}

type Executor struct {
	dispatcher *ActionDispatcher
	logger     *slog.Logger
	clock      clock.Clock
	tracer     trace.Tracer
	metrics    *metrics.Metrics
	recorder   ExecutionRecorder
	publisher  eventbus.EventPublisher
}

type ExecutorOption func(*Executor)

// WithClock replaces the wall clock used for timestamps and delays.
func WithClock(clk clock.Clock) ExecutorOption {
	return func(e *Executor) { e.clock = clk }
}

func WithTracer(tracer trace.Tracer) ExecutorOption {
	return func(e *Executor) { e.tracer = tracer }
}

func WithMetrics(m *metrics.Metrics) ExecutorOption {
	return func(e *Executor) { e.metrics = m }
}

// WithRecorder stores every finished log.
func WithRecorder(recorder ExecutionRecorder) ExecutorOption {
	return func(e *Executor) { e.recorder = recorder }
}

// WithPublisher publishes a completed or failed event for every finished log.
func WithPublisher(publisher eventbus.EventPublisher) ExecutorOption {
	return func(e *Executor) { e.publisher = publisher }
}

func NewExecutor(dispatcher *ActionDispatcher, logger *slog.Logger, opts ...ExecutorOption) *Executor {
	executor := &Executor{
		dispatcher: dispatcher,
		logger:     logger.With("module", "workflow_executor"),
		clock:      clock.RealClock{},
		tracer:     otelhelper.NoopTracer(),
	}

	for _, opt := range opts {
		opt(executor)
	}

	return executor
}

// ExecuteWorkflow runs one definition against triggerData and returns its log,
// which is always terminal. Action failures are recorded and the remaining
// actions still run. A cancelled ctx interrupts a pending delay and fails the
// whole execution.
func (e *Executor) ExecuteWorkflow(
	ctx context.Context,
	definition *models.WorkflowDefinition,
	triggerData map[string]any,
	triggeredBy string,
) (log *models.WorkflowExecutionLog) {
	log = &models.WorkflowExecutionLog{
		ID:              uuid.New().String(),
		TriggeredBy:     triggeredBy,
		TriggerData:     triggerData,
		Status:          models.ExecutionStatusPending,
		ExecutedActions: []models.ExecutedAction{},
		StartedAt:       e.clock.Now(),
	}

	var triggerType models.WorkflowTriggerType
	if definition != nil {
		log.WorkflowID = definition.ID
		triggerType = definition.Trigger.Type
	}

	ctx, span := otelhelper.StartSpan(ctx, e.tracer, "workflow.execute",
		attribute.String(otelhelper.WorkflowIDKey, log.WorkflowID),
		attribute.String(otelhelper.ExecutionIDKey, log.ID),
		attribute.String(otelhelper.TriggerTypeKey, string(triggerType)),
		attribute.String(otelhelper.UserIDKey, triggeredBy),
	)

	logger := e.logger.With("workflow_id", log.WorkflowID, "execution_id", log.ID)

	defer func() {
		if r := recover(); r != nil {
			logger.ErrorContext(ctx, "Workflow execution panicked", "panic", r)
			log.Complete(models.ExecutionStatusFailed, fmt.Sprint(r), e.clock.Now())
		}

		e.finish(ctx, logger, triggerType, log, span)
	}()

	if definition == nil {
		log.Complete(models.ExecutionStatusFailed, ErrNilDefinition.Error(), e.clock.Now())

		return log
	}

	logger.InfoContext(ctx, "Starting workflow execution", "workflow_name", definition.Name)

	if !conditions.EvaluateAll(definition.Trigger.Conditions, triggerData) {
		logger.InfoContext(ctx, "Workflow conditions not met")
		log.Complete(models.ExecutionStatusFailed, models.ErrConditionsNotMet, e.clock.Now())

		return log
	}

	for index, action := range definition.Actions {
		if delay := action.DelayDuration(); delay > 0 {
			logger.DebugContext(ctx, "Delaying action", "action_index", index, "delay", delay)

			if err := e.wait(ctx, delay); err != nil {
				logger.WarnContext(ctx, "Workflow execution interrupted during delay", "error", err)
				log.Complete(models.ExecutionStatusFailed, err.Error(), e.clock.Now())

				return log
			}
		}

		result := e.dispatcher.ExecuteAction(ctx, action, triggerData, triggeredBy)

		executed := models.ExecutedAction{
			Action:     action.Type,
			Status:     models.ExecutionStatusSuccess,
			ExecutedAt: e.clock.Now(),
		}

		if !result.Success {
			executed.Status = models.ExecutionStatusFailed
			executed.Error = result.Error
		}

		log.ExecutedActions = append(log.ExecutedActions, executed)
		e.metrics.ObserveAction(action.Type, executed.Status)
	}

	status := models.ExecutionStatusFailed
	if log.AllActionsSucceeded() {
		status = models.ExecutionStatusSuccess
	}

	log.Complete(status, "", e.clock.Now())

	return log
}

func (e *Executor) wait(ctx context.Context, delay time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-e.clock.After(delay):
		return nil
	}
}

// finish hands a terminal log to the observers. Observer failures are logged only.
func (e *Executor) finish(
	ctx context.Context,
	logger *slog.Logger,
	triggerType models.WorkflowTriggerType,
	log *models.WorkflowExecutionLog,
	span trace.Span,
) {
	defer span.End()

	span.SetAttributes(
		attribute.String("launchflow.execution.status", string(log.Status)),
		attribute.Int("launchflow.execution.actions", len(log.ExecutedActions)),
	)

	if log.Status == models.ExecutionStatusFailed {
		message := log.Error
		if message == "" {
			message = "one or more actions failed"
		}

		otelhelper.SetError(span, errors.New(message))
	}

	logger.InfoContext(ctx, "Workflow execution finished",
		"status", log.Status,
		"executed_actions", len(log.ExecutedActions),
		"duration", log.Duration(),
	)

	e.metrics.ObserveExecution(triggerType, log)

	observerCtx := context.WithoutCancel(ctx)

	if e.recorder != nil && log.WorkflowID != "" {
		if err := e.recorder.SaveExecutionLog(observerCtx, log); err != nil {
			logger.ErrorContext(ctx, "Failed to save execution log", "error", err)
		}
	}

	if e.publisher != nil {
		event := events.NewExecutionEvent(triggerType, log)
		if err := e.publisher.Publish(observerCtx, log.WorkflowID, event); err != nil {
			logger.ErrorContext(ctx, "Failed to publish execution event", "error", err)
		}
	}
}
