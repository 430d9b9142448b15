package notification

import (
	"context"

	"github.com/launchflow/launchflow/pkg/models"
	"github.com/launchflow/launchflow/pkg/protocol"
)

type ActionFactory struct {
	creator protocol.NotificationCreator
}

func NewActionFactory(creator protocol.NotificationCreator) *ActionFactory {
	return &ActionFactory{creator: creator}
}

func (f *ActionFactory) Create(_ context.Context, config map[string]any) (protocol.Action, error) {
	return NewAction(f.creator, config), nil
}

func (f *ActionFactory) ID() string {
	return string(models.ActionSendNotification)
}

func (f *ActionFactory) Name() string {
	return "Send notification"
}

func (f *ActionFactory) Description() string {
	return "Creates an in-app notification for a user."
}

func (f *ActionFactory) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"userId": map[string]any{
				"type":        "string",
				"description": "User to notify. Supports {{path}} tokens.",
				"examples":    []string{"{{reviewer.id}}"},
			},
			"type": map[string]any{
				"type":        "string",
				"description": "Notification category shown in the inbox",
				"examples":    []string{"APPROVAL_REQUESTED", "STATUS_CHANGED"},
			},
			"message": map[string]any{
				"type":        "string",
				"description": "Notification text. Supports {{path}} tokens.",
			},
		},
		"required": []string{"userId"},
	}
}
