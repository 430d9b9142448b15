package postgresql

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/launchflow/launchflow/pkg/models"
	"github.com/launchflow/launchflow/pkg/persistence"
)

// ExecutionRepository stores workflow execution logs.
type ExecutionRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

func NewExecutionRepository(db *sql.DB, logger *slog.Logger) *ExecutionRepository {
	return &ExecutionRepository{db: db, logger: logger}
}

// Save writes a log. Logs are write-once; saving the same id again is a no-op.
func (r *ExecutionRepository) Save(ctx context.Context, log *models.WorkflowExecutionLog) error {
	triggerData, err := json.Marshal(log.TriggerData)
	if err != nil {
		return fmt.Errorf("failed to marshal trigger data: %w", err)
	}

	executedActions, err := json.Marshal(log.ExecutedActions)
	if err != nil {
		return fmt.Errorf("failed to marshal executed actions: %w", err)
	}

	query := `
		INSERT INTO workflow_executions (id, workflow_id, triggered_by, trigger_data,
status, executed_actions, started_at, completed_at, error)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NULLIF($9, ''))
		ON CONFLICT (id) DO NOTHING
	`

	_, err = r.db.ExecContext(ctx, query,
		log.ID,
		log.WorkflowID,
		log.TriggeredBy,
		triggerData,
		log.Status,
		executedActions,
		log.StartedAt,
		log.CompletedAt,
		log.Error,
	)
	if err != nil {
		return persistence.NewWorkflowError("SaveExecution", log.WorkflowID, err)
	}

	return nil
}

// GetByWorkflow returns up to limit logs, most recent first.
func (r *ExecutionRepository) GetByWorkflow(ctx context.Context, workflowID string, limit int) ([]*models.WorkflowExecutionLog, error) {
	if uuid.Validate(workflowID) != nil {
		return []*models.WorkflowExecutionLog{}, nil
	}

	if limit <= 0 {
		limit = persistence.DefaultExecutionLogLimit
	}

	query := `
		SELECT
			id
		  , workflow_id
		  , triggered_by
		  , trigger_data
		  , status
		  , executed_actions
		  , started_at
		  , completed_at
		  , COALESCE(error, '')
		FROM workflow_executions
		WHERE workflow_id = $1
		ORDER BY started_at DESC
		LIMIT $2
	`

	rows, err := r.db.QueryContext(ctx, query, workflowID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query executions: %w", err)
	}

	defer func() {
		err := rows.Close()
		if err != nil {
			r.logger.ErrorContext(ctx, "failed to close rows", "error", err)
		}
	}()

	logs := make([]*models.WorkflowExecutionLog, 0)

	for rows.Next() {
		var (
			log             models.WorkflowExecutionLog
			triggerData     []byte
			executedActions []byte
			completedAt     sql.NullTime
		)

		err := rows.Scan(
			&log.ID,
			&log.WorkflowID,
			&log.TriggeredBy,
			&triggerData,
			&log.Status,
			&executedActions,
			&log.StartedAt,
			&completedAt,
			&log.Error,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan execution: %w", err)
		}

		if completedAt.Valid {
			log.CompletedAt = &completedAt.Time
		}

		if err := json.Unmarshal(triggerData, &log.TriggerData); err != nil {
			return nil, fmt.Errorf("failed to unmarshal trigger data of execution %s: %w", log.ID, err)
		}

		if err := json.Unmarshal(executedActions, &log.ExecutedActions); err != nil {
			return nil, fmt.Errorf("failed to unmarshal executed actions of execution %s: %w", log.ID, err)
		}

		logs = append(logs, &log)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("error iterating executions: %w", err)
	}

	return logs, nil
}
