// Package task provides the CREATE_TASK workflow action. Projects have no task
// store yet, so the action only records that it ran.
package task

import (
	"context"
	"log/slog"

	"github.com/launchflow/launchflow/pkg/models"
	"github.com/launchflow/launchflow/pkg/protocol"
	"github.com/launchflow/launchflow/pkg/template"
)

type Action struct {
	Title string
}

func (a *Action) Execute(ctx context.Context, input protocol.ActionInput, logger *slog.Logger) error {
	logger.InfoContext(ctx, "Task creation requested",
		"module", "task_action",
		"title", a.Title,
		"project_id", input.ProjectID(),
	)

	return nil
}

type ActionFactory struct{}

func NewActionFactory() *ActionFactory {
	return &ActionFactory{}
}

func (f *ActionFactory) Create(_ context.Context, config map[string]any) (protocol.Action, error) {
	return &Action{Title: template.Stringify(config["title"])}, nil
}

func (f *ActionFactory) ID() string {
	return string(models.ActionCreateTask)
}

func (f *ActionFactory) Name() string {
	return "Create task"
}

func (f *ActionFactory) Description() string {
	return "Records a task request for the project the event belongs to."
}

func (f *ActionFactory) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"title": map[string]any{
				"type":        "string",
				"description": "Task title. Supports {{path}} tokens.",
			},
		},
	}
}
