// Package web provides HTTP request and response types for the workflow API.
package web

import (
	"github.com/launchflow/launchflow/pkg/models"
	"github.com/launchflow/launchflow/pkg/protocol"
)

// WorkflowRequest is the body of POST /workflows and PUT /workflows/:id.
// Trigger and action rules are checked by the service.
type WorkflowRequest struct {
	Name        string                  `json:"name"                  validate:"required,min=3"`
	Description string                  `json:"description,omitempty"`
	Enabled     *bool                   `json:"enabled,omitempty"`
	Trigger     models.WorkflowTrigger  `json:"trigger"`
	Actions     []models.WorkflowAction `json:"actions"`
	CreatedBy   string                  `json:"createdBy"             validate:"required"`
}

// Definition converts the request. Workflows are enabled unless the request
// says otherwise.
func (r WorkflowRequest) Definition() *models.WorkflowDefinition {
	enabled := true
	if r.Enabled != nil {
		enabled = *r.Enabled
	}

	actions := r.Actions
	if actions == nil {
		actions = []models.WorkflowAction{}
	}

	return &models.WorkflowDefinition{
		Name:        r.Name,
		Description: r.Description,
		Enabled:     enabled,
		Trigger:     r.Trigger,
		Actions:     actions,
		CreatedBy:   r.CreatedBy,
	}
}

// ExecuteWorkflowRequest is the body of POST /workflows/:id/execute.
type ExecuteWorkflowRequest struct {
	Data   map[string]any `json:"data"`
	UserID string         `json:"userId"`
}

// TriggerEventRequest is the body of POST /events.
type TriggerEventRequest struct {
	Type   string         `json:"type"   validate:"required"`
	Data   map[string]any `json:"data"`
	UserID string         `json:"userId"`
}

// ActionResponse describes a registered action type.
type ActionResponse struct {
	Type        string         `json:"type"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Schema      map[string]any `json:"schema"`
}

func TransformActionResponse(factory protocol.ActionFactory) ActionResponse {
	return ActionResponse{
		Type:        factory.ID(),
		Name:        factory.Name(),
		Description: factory.Description(),
		Schema:      factory.Schema(),
	}
}
