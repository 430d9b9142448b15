package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/launchflow/launchflow/pkg/models"
	"github.com/launchflow/launchflow/pkg/otelhelper"
	"github.com/launchflow/launchflow/pkg/protocol"
	"github.com/launchflow/launchflow/pkg/template"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// ActionCreator builds executable actions by type. *registry.Registry implements it.
type ActionCreator interface {
	CreateAction(ctx context.Context, actionType string, config map[string]any) (protocol.Action, error)
}

// ActionResult is the outcome of one dispatched action.
type ActionResult struct {
	Success bool
	Error   string
}

// ActionDispatcher resolves an action's config against event data and runs it.
type ActionDispatcher struct {
	actions ActionCreator
	logger  *slog.Logger
	tracer  trace.Tracer
}

func NewActionDispatcher(actions ActionCreator, logger *slog.Logger, tracer trace.Tracer) *ActionDispatcher {
	if tracer == nil {
		tracer = otelhelper.NoopTracer()
	}

	return &ActionDispatcher{
		actions: actions,
		logger:  logger.With("module", "action_dispatcher"),
		tracer:  tracer,
	}
}

// ExecuteAction never returns an error and never panics: every failure,
// including a panic inside the action, becomes an unsuccessful result.
func (d *ActionDispatcher) ExecuteAction(
	ctx context.Context,
	action models.WorkflowAction,
	data map[string]any,
	actingUserID string,
) (result ActionResult) {
	ctx, span := otelhelper.StartSpan(ctx, d.tracer, "workflow.action",
		attribute.String(otelhelper.ActionTypeKey, string(action.Type)),
	)
	defer span.End()

	logger := d.logger.With("action_type", action.Type)

	defer func() {
		if r := recover(); r != nil {
			logger.ErrorContext(ctx, "Action panicked", "panic", r)

			result = ActionResult{Success: false, Error: fmt.Sprint(r)}
		}

		if !result.Success {
			otelhelper.SetError(span, errors.New(result.Error))
		}
	}()

	config := template.SubstituteConfig(action.Config, data)

	executable, err := d.actions.CreateAction(ctx, string(action.Type), config)
	if err != nil {
		logger.WarnContext(ctx, "Failed to create action", "error", err)

		return ActionResult{Success: false, Error: err.Error()}
	}

	err = executable.Execute(ctx, protocol.ActionInput{Data: data, ActingUserID: actingUserID}, logger)
	if err != nil {
		logger.WarnContext(ctx, "Action failed", "error", err)

		return ActionResult{Success: false, Error: err.Error()}
	}

	return ActionResult{Success: true}
}
