// Package notification provides the SEND_NOTIFICATION workflow action.
package notification

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/launchflow/launchflow/pkg/protocol"
	"github.com/launchflow/launchflow/pkg/template"
)

type Action struct {
	UserID  string
	Type    string
	Message string

	creator protocol.NotificationCreator
}

func NewAction(creator protocol.NotificationCreator, config map[string]any) *Action {
	return &Action{
		UserID:  template.Stringify(config["userId"]),
		Type:    template.Stringify(config["type"]),
		Message: template.Stringify(config["message"]),
		creator: creator,
	}
}

// Execute creates the notification for the configured user. The project and
// the triggering user come from the event.
func (a *Action) Execute(ctx context.Context, input protocol.ActionInput, logger *slog.Logger) error {
	err := a.creator.CreateNotification(ctx, protocol.Notification{
		UserID:        a.UserID,
		Type:          a.Type,
		Message:       a.Message,
		ProjectID:     input.ProjectID(),
		TriggeredByID: input.ActingUserID,
	})
	if err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}

	logger.DebugContext(ctx, "Notification created", "module", "notification_action", "user_id", a.UserID)

	return nil
}
