package email

import (
	"context"

	"github.com/launchflow/launchflow/pkg/models"
	"github.com/launchflow/launchflow/pkg/protocol"
)

// ActionFactory creates SEND_EMAIL actions bound to one sender.
type ActionFactory struct {
	sender protocol.EmailSender
}

func NewActionFactory(sender protocol.EmailSender) *ActionFactory {
	return &ActionFactory{sender: sender}
}

func (f *ActionFactory) Create(_ context.Context, config map[string]any) (protocol.Action, error) {
	return NewAction(f.sender, config), nil
}

func (f *ActionFactory) ID() string {
	return string(models.ActionSendEmail)
}

func (f *ActionFactory) Name() string {
	return "Send email"
}

func (f *ActionFactory) Description() string {
	return "Sends a templated email. The template receives the event data merged with this config."
}

func (f *ActionFactory) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"to": map[string]any{
				"type":        "string",
				"description": "Recipient address. Supports {{path}} tokens.",
				"examples":    []string{"{{reviewer.email}}", "{{approvals[].reviewer.email}}"},
			},
			"template": map[string]any{
				"type":        "string",
				"description": "Name of the email template to render",
				"examples":    []string{"approval-requested", "phase-completed"},
			},
			"subject": map[string]any{
				"type":        "string",
				"description": "Subject line. Supports {{path}} tokens.",
			},
		},
		"required": []string{"to"},
	}
}
