package project

import (
	"context"

	"github.com/launchflow/launchflow/pkg/models"
	"github.com/launchflow/launchflow/pkg/protocol"
)

type StatusActionFactory struct {
	store protocol.ProjectStore
}

func NewStatusActionFactory(store protocol.ProjectStore) *StatusActionFactory {
	return &StatusActionFactory{store: store}
}

func (f *StatusActionFactory) Create(_ context.Context, config map[string]any) (protocol.Action, error) {
	return NewStatusAction(f.store, config), nil
}

func (f *StatusActionFactory) ID() string {
	return string(models.ActionUpdateStatus)
}

func (f *StatusActionFactory) Name() string {
	return "Update project status"
}

func (f *StatusActionFactory) Description() string {
	return "Sets the status of the project the event belongs to."
}

func (f *StatusActionFactory) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"status": map[string]any{
				"type":        "string",
				"description": "New project status",
				"examples":    []string{"IN_REVIEW", "APPROVED", "ON_HOLD"},
			},
		},
		"required": []string{"status"},
	}
}

type AssignActionFactory struct {
	store protocol.ProjectStore
}

func NewAssignActionFactory(store protocol.ProjectStore) *AssignActionFactory {
	return &AssignActionFactory{store: store}
}

func (f *AssignActionFactory) Create(_ context.Context, config map[string]any) (protocol.Action, error) {
	return NewAssignAction(f.store, config), nil
}

func (f *AssignActionFactory) ID() string {
	return string(models.ActionAssignUser)
}

func (f *AssignActionFactory) Name() string {
	return "Assign project lead"
}

func (f *AssignActionFactory) Description() string {
	return "Makes a user the lead of the project the event belongs to."
}

func (f *AssignActionFactory) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"userId": map[string]any{
				"type":        "string",
				"description": "User to assign. Supports {{path}} tokens.",
			},
		},
		"required": []string{"userId"},
	}
}

type FieldActionFactory struct {
	store protocol.ProjectStore
}

func NewFieldActionFactory(store protocol.ProjectStore) *FieldActionFactory {
	return &FieldActionFactory{store: store}
}

func (f *FieldActionFactory) Create(_ context.Context, config map[string]any) (protocol.Action, error) {
	return NewFieldAction(f.store, config), nil
}

func (f *FieldActionFactory) ID() string {
	return string(models.ActionUpdateField)
}

func (f *FieldActionFactory) Name() string {
	return "Update project field"
}

func (f *FieldActionFactory) Description() string {
	return "Sets one field of the project the event belongs to."
}

func (f *FieldActionFactory) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"field": map[string]any{
				"type":        "string",
				"description": "Project column to set",
				"pattern":     "^[a-zA-Z_][a-zA-Z0-9_]*$",
				"examples":    []string{"priority", "due_date"},
			},
			"value": map[string]any{
				"description": "Value to store. Any JSON type.",
			},
		},
		"required": []string{"field", "value"},
	}
}
