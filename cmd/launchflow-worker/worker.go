// Package main provides the launchflow worker, which runs workflows for domain
// events read from the bus and delivers queued emails.
package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/launchflow/launchflow/pkg/eventbus"
	"github.com/launchflow/launchflow/pkg/events"
	"github.com/launchflow/launchflow/pkg/models"
)

// Dispatcher runs the workflows matching an event. *workflow.Engine implements it.
type Dispatcher interface {
	TriggerWorkflows(
		ctx context.Context,
		eventType models.WorkflowTriggerType,
		eventData map[string]any,
		actingUserID string,
	) []*models.WorkflowExecutionLog
}

type Worker struct {
	bus        eventbus.EventSubscriber
	dispatcher Dispatcher
	logger     *slog.Logger
}

func NewWorker(bus eventbus.EventSubscriber, dispatcher Dispatcher, logger *slog.Logger) *Worker {
	return &Worker{
		bus:        bus,
		dispatcher: dispatcher,
		logger:     logger.With("module", "worker"),
	}
}

// Start registers the domain event handler and starts consuming. It returns
// once the subscription is live; consumption stops when ctx is done.
func (w *Worker) Start(ctx context.Context) error {
	w.logger.InfoContext(ctx, "Starting worker subscriptions")

	if err := w.bus.Handle(events.DomainEventReceived, w.handleDomainEvent); err != nil {
		return fmt.Errorf("failed to register domain event handler: %w", err)
	}

	if err := w.bus.Subscribe(ctx); err != nil {
		return fmt.Errorf("failed to subscribe to events: %w", err)
	}

	w.logger.InfoContext(ctx, "Worker started successfully")

	return nil
}

// handleDomainEvent runs matching workflows before the message is
// acknowledged. Workflow failures live in the logs, so it never asks for
// redelivery.
func (w *Worker) handleDomainEvent(ctx context.Context, event any) error {
	domainEvent, ok := event.(*events.DomainEvent)
	if !ok {
		w.logger.ErrorContext(ctx, "Unexpected event", "event", fmt.Sprintf("%T", event))

		return nil
	}

	logger := w.logger.With("event_id", domainEvent.ID, "event_type", domainEvent.EventType)

	if !domainEvent.EventType.IsValid() {
		logger.WarnContext(ctx, "Dropping event with unknown trigger type")

		return nil
	}

	logs := w.dispatcher.TriggerWorkflows(ctx, domainEvent.EventType, domainEvent.Data, domainEvent.UserID)

	logger.InfoContext(ctx, "Domain event handled", "executions", len(logs))

	return nil
}
