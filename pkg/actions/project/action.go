// Package project provides the workflow actions that mutate the project the
// event belongs to: UPDATE_STATUS, ASSIGN_USER and UPDATE_FIELD.
//
// Each of them is a no-op when the event carries no projectId.
package project

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/launchflow/launchflow/pkg/protocol"
	"github.com/launchflow/launchflow/pkg/template"
)

// StatusAction sets the project status.
type StatusAction struct {
	Status string

	store protocol.ProjectStore
}

func NewStatusAction(store protocol.ProjectStore, config map[string]any) *StatusAction {
	return &StatusAction{Status: template.Stringify(config["status"]), store: store}
}

func (a *StatusAction) Execute(ctx context.Context, input protocol.ActionInput, logger *slog.Logger) error {
	projectID := input.ProjectID()
	if projectID == "" {
		logger.DebugContext(ctx, "No project in event, skipping status update", "module", "project_action")

		return nil
	}

	if err := a.store.UpdateProjectStatus(ctx, projectID, a.Status); err != nil {
		return fmt.Errorf("failed to update status of project %s: %w", projectID, err)
	}

	return nil
}

// AssignAction sets the project lead.
type AssignAction struct {
	UserID string

	store protocol.ProjectStore
}

func NewAssignAction(store protocol.ProjectStore, config map[string]any) *AssignAction {
	return &AssignAction{UserID: template.Stringify(config["userId"]), store: store}
}

func (a *AssignAction) Execute(ctx context.Context, input protocol.ActionInput, logger *slog.Logger) error {
	projectID := input.ProjectID()
	if projectID == "" || a.UserID == "" {
		logger.DebugContext(ctx, "Missing project or user, skipping assignment", "module", "project_action")

		return nil
	}

	if err := a.store.AssignProjectLead(ctx, projectID, a.UserID); err != nil {
		return fmt.Errorf("failed to assign lead of project %s: %w", projectID, err)
	}

	return nil
}

// FieldAction sets an arbitrary project field. Value keeps its type.
type FieldAction struct {
	Field string
	Value any

	store protocol.ProjectStore
}

func NewFieldAction(store protocol.ProjectStore, config map[string]any) *FieldAction {
	return &FieldAction{
		Field: template.Stringify(config["field"]),
		Value: config["value"],
		store: store,
	}
}

func (a *FieldAction) Execute(ctx context.Context, input protocol.ActionInput, logger *slog.Logger) error {
	projectID := input.ProjectID()
	if projectID == "" || a.Field == "" || a.Value == nil {
		logger.DebugContext(ctx, "Missing project, field or value, skipping field update", "module", "project_action")

		return nil
	}

	if err := a.store.UpdateProjectField(ctx, projectID, a.Field, a.Value); err != nil {
		return fmt.Errorf("failed to update field %s of project %s: %w", a.Field, projectID, err)
	}

	return nil
}
