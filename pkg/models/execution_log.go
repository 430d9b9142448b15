package models

import "time"

// ExecutionStatus is the state of a workflow execution or of a single action.
type ExecutionStatus string

const (
	ExecutionStatusPending ExecutionStatus = "PENDING"
	ExecutionStatusSuccess ExecutionStatus = "SUCCESS"
	ExecutionStatusFailed  ExecutionStatus = "FAILED"
)

// ErrConditionsNotMet is the log error recorded when trigger conditions reject an event.
const ErrConditionsNotMet = "Workflow conditions not met"

// ExecutedAction records the outcome of one dispatched action.
type ExecutedAction struct {
	Action     ActionType      `json:"action"`
	Status     ExecutionStatus `json:"status"`
	Error      string          `json:"error,omitempty"`
	ExecutedAt time.Time       `json:"executedAt"`
}

// WorkflowExecutionLog is the write-once audit record of one workflow run.
type WorkflowExecutionLog struct {
	ID              string           `json:"id"`
	WorkflowID      string           `json:"workflowId"`
	TriggeredBy     string           `json:"triggeredBy"`
	TriggerData     map[string]any   `json:"triggerData"`
	Status          ExecutionStatus  `json:"status"`
	ExecutedActions []ExecutedAction `json:"executedActions"`
	StartedAt       time.Time        `json:"startedAt"`
	CompletedAt     *time.Time       `json:"completedAt,omitempty"`
	Error           string           `json:"error,omitempty"`
}

// AllActionsSucceeded reports whether every executed action succeeded. It is
// vacuously true when no action ran.
func (l *WorkflowExecutionLog) AllActionsSucceeded() bool {
	for _, executed := range l.ExecutedActions {
		if executed.Status != ExecutionStatusSuccess {
			return false
		}
	}

	return true
}

// Complete moves the log into a terminal state.
func (l *WorkflowExecutionLog) Complete(status ExecutionStatus, errMessage string, at time.Time) {
	l.Status = status
	l.Error = errMessage
	l.CompletedAt = &at
}

// IsTerminal reports whether the execution has finished.
func (l *WorkflowExecutionLog) IsTerminal() bool {
	return l.Status != ExecutionStatusPending && l.CompletedAt != nil
}

// Duration returns how long the execution took, or zero while it is pending.
func (l *WorkflowExecutionLog) Duration() time.Duration {
	if l.CompletedAt == nil {
		return 0
	}

	return l.CompletedAt.Sub(l.StartedAt)
}
