// Package comment provides the ADD_COMMENT workflow action.
package comment

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/launchflow/launchflow/pkg/protocol"
	"github.com/launchflow/launchflow/pkg/template"
)

// Action adds a system comment, authored by the acting user, to the event's project.
type Action struct {
	Text string

	store protocol.CommentStore
}

func NewAction(store protocol.CommentStore, config map[string]any) *Action {
	return &Action{Text: template.Stringify(config["text"]), store: store}
}

func (a *Action) Execute(ctx context.Context, input protocol.ActionInput, logger *slog.Logger) error {
	projectID := input.ProjectID()
	if projectID == "" {
		logger.DebugContext(ctx, "No project in event, skipping comment", "module", "comment_action")

		return nil
	}

	if err := a.store.CreateSystemComment(ctx, projectID, a.Text, input.ActingUserID); err != nil {
		return fmt.Errorf("failed to add comment to project %s: %w", projectID, err)
	}

	return nil
}
