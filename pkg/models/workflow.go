// Package models defines the core domain models for event-driven workflow automation
package models

import "time"

// WorkflowTriggerType is the domain event a workflow reacts to.
type WorkflowTriggerType string

const (
	TriggerProjectCreated     WorkflowTriggerType = "PROJECT_CREATED"
	TriggerStatusChanged      WorkflowTriggerType = "STATUS_CHANGED"
	TriggerApprovalRequested  WorkflowTriggerType = "APPROVAL_REQUESTED"
	TriggerApprovalApproved   WorkflowTriggerType = "APPROVAL_APPROVED"
	TriggerApprovalRejected   WorkflowTriggerType = "APPROVAL_REJECTED"
	TriggerPhaseCompleted     WorkflowTriggerType = "PHASE_COMPLETED"
	TriggerCommentAdded       WorkflowTriggerType = "COMMENT_ADDED"
	TriggerFileUploaded       WorkflowTriggerType = "FILE_UPLOADED"
	TriggerDueDateApproaching WorkflowTriggerType = "DUE_DATE_APPROACHING"
	TriggerSchedule           WorkflowTriggerType = "SCHEDULE"
	TriggerWebhookReceived    WorkflowTriggerType = "WEBHOOK_RECEIVED"
)

// TriggerTypes lists every supported trigger type.
var TriggerTypes = []WorkflowTriggerType{
	TriggerProjectCreated,
	TriggerStatusChanged,
	TriggerApprovalRequested,
	TriggerApprovalApproved,
	TriggerApprovalRejected,
	TriggerPhaseCompleted,
	TriggerCommentAdded,
	TriggerFileUploaded,
	TriggerDueDateApproaching,
	TriggerSchedule,
	TriggerWebhookReceived,
}

// IsValid reports whether t is one of the known trigger types.
func (t WorkflowTriggerType) IsValid() bool {
	for _, known := range TriggerTypes {
		if t == known {
			return true
		}
	}

	return false
}

// WorkflowDefinition is a named, enable-able automation rule: one trigger and
// an ordered list of actions.
type WorkflowDefinition struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"                  validate:"required,min=3"`
	Description string           `json:"description,omitempty"`
	Enabled     bool             `json:"enabled"`
	Trigger     WorkflowTrigger  `json:"trigger"               validate:"required"`
	Actions     []WorkflowAction `json:"actions"               validate:"dive"`
	CreatedBy   string           `json:"createdBy"             validate:"required"`
	CreatedAt   time.Time        `json:"createdAt"`
	UpdatedAt   time.Time        `json:"updatedAt"`
}

// WorkflowTrigger determines whether a workflow fires for a given event.
// Schedule is only meaningful for the SCHEDULE trigger type.
type WorkflowTrigger struct {
	Type       WorkflowTriggerType `json:"type"                 validate:"required,trigger_type"`
	Conditions []WorkflowCondition `json:"conditions,omitempty" validate:"dive"`
	Schedule   *WorkflowSchedule   `json:"schedule,omitempty"`
}

// HasConditions reports whether the trigger carries any conditions.
func (t WorkflowTrigger) HasConditions() bool {
	return len(t.Conditions) > 0
}
