// Package events defines the messages carried on the launchflow event bus.
package events

import (
	"time"

	"github.com/google/uuid"
	"github.com/launchflow/launchflow/pkg/models"
	"github.com/launchflow/launchflow/pkg/protocol"
)

type EventType string

// Topic is the single bus topic; the event type travels in message metadata.
const Topic = "launchflow.events"

const EventMetadataKey = "key"
const EventTypeMetadataKey = "event_type"

const (
	// DomainEventReceived carries a domain event from the host application.
	DomainEventReceived EventType = "domain.event.received"

	// Workflow execution outcome events.
	WorkflowExecutionCompletedEvent EventType = "workflow.execution.completed"
	WorkflowExecutionFailedEvent    EventType = "workflow.execution.failed"

	// EmailRequestedEvent asks the mailer to deliver one email.
	EmailRequestedEvent EventType = "email.requested"
)

type BaseEvent struct {
	ID         string         `json:"id"`
	Type       EventType      `json:"type"`
	Timestamp  time.Time      `json:"timestamp"`
	WorkflowID string         `json:"workflow_id,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}

func NewBaseEvent(eventType EventType, workflowID string) BaseEvent {
	return BaseEvent{
		ID:         uuid.New().String(),
		Type:       eventType,
		Timestamp:  time.Now().UTC(),
		WorkflowID: workflowID,
	}
}

// DomainEvent is something that happened to a project, e.g. an approval
// request, that workflows may react to.
type DomainEvent struct {
	BaseEvent

	EventType models.WorkflowTriggerType `json:"event_type"`
	Data      map[string]any             `json:"data"`
	UserID    string                     `json:"user_id"`
}

func (e DomainEvent) GetType() EventType {
	return DomainEventReceived
}

type WorkflowExecutionCompleted struct {
	BaseEvent

	ExecutionID     string                     `json:"execution_id"`
	TriggerType     models.WorkflowTriggerType `json:"trigger_type"`
	TriggeredBy     string                     `json:"triggered_by"`
	ExecutedActions int                        `json:"executed_actions"`
	Duration        time.Duration              `json:"duration"`
}

func (w WorkflowExecutionCompleted) GetType() EventType {
	return WorkflowExecutionCompletedEvent
}

type WorkflowExecutionFailed struct {
	BaseEvent

	ExecutionID   string                     `json:"execution_id"`
	TriggerType   models.WorkflowTriggerType `json:"trigger_type"`
	TriggeredBy   string                     `json:"triggered_by"`
	Error         string                     `json:"error,omitempty"`
	FailedActions []models.ActionType        `json:"failed_actions,omitempty"`
	Duration      time.Duration              `json:"duration"`
}

func (w WorkflowExecutionFailed) GetType() EventType {
	return WorkflowExecutionFailedEvent
}

// EmailRequested is published by the outbox sender and consumed by the mailer.
type EmailRequested struct {
	BaseEvent

	Message protocol.EmailMessage `json:"message"`
}

func (e EmailRequested) GetType() EventType {
	return EmailRequestedEvent
}

// Typed is implemented by every event in this package.
type Typed interface {
	GetType() EventType
}

// NewExecutionEvent builds the completed or failed event for a finished log.
//
//nolint:ireturn // one of two concrete event types
func NewExecutionEvent(triggerType models.WorkflowTriggerType, log *models.WorkflowExecutionLog) Typed {
	if log.Status == models.ExecutionStatusSuccess {
		return WorkflowExecutionCompleted{
			BaseEvent:       NewBaseEvent(WorkflowExecutionCompletedEvent, log.WorkflowID),
			ExecutionID:     log.ID,
			TriggerType:     triggerType,
			TriggeredBy:     log.TriggeredBy,
			ExecutedActions: len(log.ExecutedActions),
			Duration:        log.Duration(),
		}
	}

	failed := make([]models.ActionType, 0)

	for _, executed := range log.ExecutedActions {
		if executed.Status != models.ExecutionStatusSuccess {
			failed = append(failed, executed.Action)
		}
	}

	return WorkflowExecutionFailed{
		BaseEvent:     NewBaseEvent(WorkflowExecutionFailedEvent, log.WorkflowID),
		ExecutionID:   log.ID,
		TriggerType:   triggerType,
		TriggeredBy:   log.TriggeredBy,
		Error:         log.Error,
		FailedActions: failed,
		Duration:      log.Duration(),
	}
}
