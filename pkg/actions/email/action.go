// Package email provides the SEND_EMAIL workflow action.
package email

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"

	"github.com/launchflow/launchflow/pkg/protocol"
	"github.com/launchflow/launchflow/pkg/template"
)

// ErrEmailNotSent is returned when the sender declines the message.
var ErrEmailNotSent = errors.New("email was not sent")

// Action sends one templated email through an EmailSender.
type Action struct {
	To       string
	Template string
	Subject  string
	// Config is the full resolved config, merged over the event data.
	Config map[string]any

	sender protocol.EmailSender
}

// NewAction decodes a resolved SEND_EMAIL config.
func NewAction(sender protocol.EmailSender, config map[string]any) *Action {
	return &Action{
		To:       template.Stringify(config["to"]),
		Template: template.Stringify(config["template"]),
		Subject:  template.Stringify(config["subject"]),
		Config:   config,
		sender:   sender,
	}
}

func (a *Action) Execute(ctx context.Context, input protocol.ActionInput, logger *slog.Logger) error {
	logger = logger.With("module", "email_action")

	data := make(map[string]any, len(input.Data)+len(a.Config))
	maps.Copy(data, input.Data)
	maps.Copy(data, a.Config)

	sent, err := a.sender.Send(ctx, protocol.EmailMessage{
		To:       a.To,
		Template: a.Template,
		Subject:  a.Subject,
		Data:     data,
	})
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	if !sent {
		return ErrEmailNotSent
	}

	logger.DebugContext(ctx, "Email accepted", "to", a.To, "template", a.Template)

	return nil
}
