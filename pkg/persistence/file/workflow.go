package file

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/launchflow/launchflow/pkg/models"
	"github.com/launchflow/launchflow/pkg/persistence"
)

// Workflows returns every stored definition, newest first.
func (fp *Persistence) Workflows(_ context.Context) ([]*models.WorkflowDefinition, error) {
	fp.mu.RLock()
	defer fp.mu.RUnlock()

	workflows, err := readDir[models.WorkflowDefinition](fp.path("workflows"))
	if err != nil {
		return nil, fmt.Errorf("failed to load workflows: %w", err)
	}

	slices.SortStableFunc(workflows, func(a, b *models.WorkflowDefinition) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})

	return workflows, nil
}

// EnabledWorkflows returns the enabled definitions, newest first.
func (fp *Persistence) EnabledWorkflows(ctx context.Context) ([]*models.WorkflowDefinition, error) {
	workflows, err := fp.Workflows(ctx)
	if err != nil {
		return nil, err
	}

	return slices.DeleteFunc(workflows, func(workflow *models.WorkflowDefinition) bool {
		return !workflow.Enabled
	}), nil
}

// WorkflowByID retrieves a workflow by its ID from the file system.
func (fp *Persistence) WorkflowByID(_ context.Context, id string) (*models.WorkflowDefinition, error) {
	if !validName(id) {
		return nil, persistence.NewWorkflowError("GetByID", id, persistence.ErrWorkflowNotFound)
	}

	fp.mu.RLock()
	defer fp.mu.RUnlock()

	var workflow models.WorkflowDefinition

	err := readJSON(fp.path("workflows", id+".json"), &workflow)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, persistence.NewWorkflowError("GetByID", id, persistence.ErrWorkflowNotFound)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to fetch workflow %s: %w", id, err)
	}

	return &workflow, nil
}

// SaveWorkflow saves a workflow to the file system.
func (fp *Persistence) SaveWorkflow(_ context.Context, workflow *models.WorkflowDefinition) error {
	if workflow.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return fmt.Errorf("failed to generate workflow ID: %w", err)
		}

		workflow.ID = id.String()
	}

	if !validName(workflow.ID) {
		return persistence.NewWorkflowError("Save", workflow.ID, errors.New("invalid workflow id"))
	}

	now := time.Now().UTC()
	if workflow.CreatedAt.IsZero() {
		workflow.CreatedAt = now
	}

	workflow.UpdatedAt = now

	fp.mu.Lock()
	defer fp.mu.Unlock()

	return writeJSON(fp.path("workflows", workflow.ID+".json"), workflow)
}

// DeleteWorkflow removes a workflow and its execution logs.
func (fp *Persistence) DeleteWorkflow(_ context.Context, id string) error {
	if !validName(id) {
		return persistence.NewWorkflowError("Delete", id, persistence.ErrWorkflowNotFound)
	}

	fp.mu.Lock()
	defer fp.mu.Unlock()

	err := os.Remove(fp.path("workflows", id+".json"))
	if errors.Is(err, fs.ErrNotExist) {
		return persistence.NewWorkflowError("Delete", id, persistence.ErrWorkflowNotFound)
	}

	if err != nil {
		return fmt.Errorf("failed to delete workflow %s: %w", id, err)
	}

	if err := os.RemoveAll(fp.path("executions", id)); err != nil {
		return fmt.Errorf("failed to delete executions of workflow %s: %w", id, err)
	}

	return nil
}

// SaveExecutionLog stores a finished execution below its workflow.
func (fp *Persistence) SaveExecutionLog(_ context.Context, log *models.WorkflowExecutionLog) error {
	if !validName(log.WorkflowID) || !validName(log.ID) {
		return fmt.Errorf("invalid execution log %q of workflow %q", log.ID, log.WorkflowID)
	}

	fp.mu.Lock()
	defer fp.mu.Unlock()

	return writeJSON(fp.path("executions", log.WorkflowID, log.ID+".json"), log)
}

// ExecutionLogs returns up to limit logs of a workflow, most recent first.
func (fp *Persistence) ExecutionLogs(_ context.Context, workflowID string, limit int) ([]*models.WorkflowExecutionLog, error) {
	if !validName(workflowID) {
		return []*models.WorkflowExecutionLog{}, nil
	}

	if limit <= 0 {
		limit = persistence.DefaultExecutionLogLimit
	}

	fp.mu.RLock()
	defer fp.mu.RUnlock()

	logs, err := readDir[models.WorkflowExecutionLog](fp.path("executions", workflowID))
	if err != nil {
		return nil, fmt.Errorf("failed to load executions of workflow %s: %w", workflowID, err)
	}

	slices.SortStableFunc(logs, func(a, b *models.WorkflowExecutionLog) int {
		return b.StartedAt.Compare(a.StartedAt)
	})

	if len(logs) > limit {
		logs = logs[:limit]
	}

	return logs, nil
}
