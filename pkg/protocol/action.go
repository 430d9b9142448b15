// Package protocol defines the contracts between the workflow engine, its
// pluggable actions and the external collaborators those actions drive.
package protocol

import (
	"context"
	"log/slog"
)

// ActionInput is what an action sees when it runs: the event data the
// workflow was triggered with and the user that caused the event.
type ActionInput struct {
	Data         map[string]any
	ActingUserID string
}

// ProjectID returns data.projectId as a string, or "" when absent.
func (in ActionInput) ProjectID() string {
	projectID, _ := in.Data["projectId"].(string)

	return projectID
}

// Action performs one externally visible effect.
type Action interface {
	Execute(ctx context.Context, input ActionInput, logger *slog.Logger) error
}

// ActionFactory creates actions of one type from an already substituted
// configuration and describes that configuration.
type ActionFactory interface {
	// Create decodes config into a typed action
	Create(ctx context.Context, config map[string]any) (Action, error)

	// ID returns the action type this factory builds, e.g. SEND_EMAIL
	ID() string

	// Name returns the human-readable name for this action type
	Name() string

	// Description returns a description of what this action does
	Description() string

	// Schema returns the JSON schema for configuring this action
	Schema() map[string]any
}
