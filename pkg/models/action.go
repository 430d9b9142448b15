package models

import (
	"math"
	"time"
)

// ActionType identifies the side effect performed by a workflow action.
type ActionType string

const (
	ActionSendEmail        ActionType = "SEND_EMAIL"
	ActionSendNotification ActionType = "SEND_NOTIFICATION"
	ActionUpdateStatus     ActionType = "UPDATE_STATUS"
	ActionAssignUser       ActionType = "ASSIGN_USER"
	ActionCreateTask       ActionType = "CREATE_TASK"
	ActionSendWebhook      ActionType = "SEND_WEBHOOK"
	ActionUpdateField      ActionType = "UPDATE_FIELD"
	ActionAddComment       ActionType = "ADD_COMMENT"
)

// ActionTypes lists every supported action type.
var ActionTypes = []ActionType{
	ActionSendEmail,
	ActionSendNotification,
	ActionUpdateStatus,
	ActionAssignUser,
	ActionCreateTask,
	ActionSendWebhook,
	ActionUpdateField,
	ActionAddComment,
}

// WorkflowAction is one step of a workflow. Config values may contain
// {{path}} template tokens resolved against the event data before dispatch.
// Delay is expressed in minutes.
type WorkflowAction struct {
	Type   ActionType     `json:"type"            validate:"required"`
	Config map[string]any `json:"config"`
	Delay  float64        `json:"delay,omitempty" validate:"min=0"`
}

// DelayDuration converts the action delay into a time.Duration.
func (a WorkflowAction) DelayDuration() time.Duration {
	if a.Delay <= 0 {
		return 0
	}

	// Delays past the time.Duration range saturate instead of wrapping negative.
	nanos := a.Delay * float64(time.Minute)
	if nanos >= math.MaxInt64 {
		return time.Duration(math.MaxInt64)
	}

	return time.Duration(nanos)
}
