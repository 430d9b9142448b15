// Package mailer delivers workflow emails. OutboxSender hands messages to the
// event bus; SMTPDeliverer consumes them and talks to the SMTP server, so that
// a slow mail server never holds up a workflow execution.
package mailer

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/launchflow/launchflow/pkg/eventbus"
	"github.com/launchflow/launchflow/pkg/events"
	"github.com/launchflow/launchflow/pkg/protocol"
)

// OutboxSender implements protocol.EmailSender by publishing email.requested
// events. A message counts as sent once the bus accepted it.
type OutboxSender struct {
	publisher eventbus.EventPublisher
	logger    *slog.Logger
}

func NewOutboxSender(publisher eventbus.EventPublisher, logger *slog.Logger) *OutboxSender {
	return &OutboxSender{publisher: publisher, logger: logger.With("module", "mail_outbox")}
}

func (s *OutboxSender) Send(ctx context.Context, message protocol.EmailMessage) (bool, error) {
	err := s.publisher.Publish(ctx, message.To, events.EmailRequested{
		BaseEvent: events.NewBaseEvent(events.EmailRequestedEvent, ""),
		Message:   message,
	})
	if err != nil {
		return false, fmt.Errorf("failed to queue email: %w", err)
	}

	s.logger.DebugContext(ctx, "Email queued", "template", message.Template)

	return true, nil
}
