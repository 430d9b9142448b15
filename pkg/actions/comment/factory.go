package comment

import (
	"context"

	"github.com/launchflow/launchflow/pkg/models"
	"github.com/launchflow/launchflow/pkg/protocol"
)

type ActionFactory struct {
	store protocol.CommentStore
}

func NewActionFactory(store protocol.CommentStore) *ActionFactory {
	return &ActionFactory{store: store}
}

func (f *ActionFactory) Create(_ context.Context, config map[string]any) (protocol.Action, error) {
	return NewAction(f.store, config), nil
}

func (f *ActionFactory) ID() string {
	return string(models.ActionAddComment)
}

func (f *ActionFactory) Name() string {
	return "Add comment"
}

func (f *ActionFactory) Description() string {
	return "Adds a system comment to the project the event belongs to."
}

func (f *ActionFactory) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"text": map[string]any{
				"type":        "string",
				"description": "Comment body. Supports {{path}} tokens.",
				"examples":    []string{"Phase {{phase.name}} completed by {{user.name}}"},
			},
		},
		"required": []string{"text"},
	}
}
