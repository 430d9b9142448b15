// Package persistence provides the storage abstraction for workflow
// definitions, execution logs and the project records actions mutate.
package persistence

import (
	"context"

	"github.com/launchflow/launchflow/pkg/models"
	"github.com/launchflow/launchflow/pkg/protocol"
)

// DefaultExecutionLogLimit caps ExecutionLogs when no limit is given.
const DefaultExecutionLogLimit = 50

type Persistence interface {
	// Workflows returns every stored definition, newest first.
	Workflows(ctx context.Context) ([]*models.WorkflowDefinition, error)
	// WorkflowByID returns ErrWorkflowNotFound when no definition has id.
	WorkflowByID(ctx context.Context, id string) (*models.WorkflowDefinition, error)
	// SaveWorkflow inserts or replaces a definition, assigning ID and timestamps.
	SaveWorkflow(ctx context.Context, workflow *models.WorkflowDefinition) error
	DeleteWorkflow(ctx context.Context, id string) error

	// EnabledWorkflows serves the engine's definition lookup.
	EnabledWorkflows(ctx context.Context) ([]*models.WorkflowDefinition, error)

	SaveExecutionLog(ctx context.Context, log *models.WorkflowExecutionLog) error
	// ExecutionLogs returns the logs of one workflow, most recent first.
	ExecutionLogs(ctx context.Context, workflowID string, limit int) ([]*models.WorkflowExecutionLog, error)

	protocol.ProjectStore
	protocol.CommentStore
	protocol.NotificationCreator

	HealthCheck(ctx context.Context) error
	Close(ctx context.Context) error
}
