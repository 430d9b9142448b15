package postgresql_test

import (
	"context"
	"database/sql"
	"log/slog"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/launchflow/launchflow/pkg/models"
	"github.com/launchflow/launchflow/pkg/persistence"
	"github.com/launchflow/launchflow/pkg/persistence/postgresql"
	"github.com/launchflow/launchflow/pkg/protocol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
)

var (
	containerOnce     sync.Once
	postgresContainer *postgres.PostgresContainer
	containerErr      error
)

func dropDb(ctx context.Context, t *testing.T, databaseURL string) {
	t.Helper()

	db, err := sql.Open("postgres", databaseURL)
	require.NoError(t, err)

	// Children first, parents last.
	for _, table := range []string{"notifications", "comments", "projects", "workflow_executions", "workflow_definitions", "schema_migrations"} {
		_, err = db.ExecContext(ctx, "DROP TABLE IF EXISTS "+table+" CASCADE")
		require.NoError(t, err)
	}

	require.NoError(t, db.Close())
}

func setupTestDB(t *testing.T) (*postgresql.Persistence, context.Context, *sql.DB) {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping PostgreSQL integration test in short mode")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)

	containerOnce.Do(func() {
		postgresContainer, containerErr = postgres.Run(context.Background(),
			"postgres:16-alpine",
			postgres.WithDatabase("launchflow_test"),
			postgres.WithUsername("launchflow"),
			postgres.WithPassword("launchflow"),
			postgres.BasicWaitStrategies(),
		)
	})
	require.NoError(t, containerErr)

	databaseURL, err := postgresContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	dropDb(ctx, t, databaseURL)

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

	p, err := postgresql.NewPersistence(ctx, logger, databaseURL)
	require.NoError(t, err)

	db, err := sql.Open("postgres", databaseURL)
	require.NoError(t, err)

	t.Cleanup(func() {
		require.NoError(t, db.Close())
		require.NoError(t, p.Close(ctx))
		dropDb(ctx, t, databaseURL)
		cancel()
	})

	return p, ctx, db
}

func TestNewPersistence_Migrations(t *testing.T) {
	p, ctx, db := setupTestDB(t)

	var version int
	require.NoError(t, db.QueryRowContext(ctx, "SELECT MAX(version) FROM schema_migrations").Scan(&version))
	assert.Equal(t, 2, version)

	require.NoError(t, p.HealthCheck(ctx))
}

func TestPersistence_WorkflowLifecycle(t *testing.T) {
	p, ctx, _ := setupTestDB(t)

	enabled := &models.WorkflowDefinition{
		Name:    "Escalate rejections",
		Enabled: true,
		Trigger: models.WorkflowTrigger{
			Type: models.TriggerApprovalRejected,
			Conditions: []models.WorkflowCondition{
				{Field: "approval.stage", Operator: models.OperatorIn, Value: []any{"legal", "finance"}},
			},
		},
		Actions: []models.WorkflowAction{
			{Type: models.ActionAddComment, Config: map[string]any{"text": "Rejected by {{approver.name}}"}, Delay: 5},
		},
		CreatedBy: "u1",
	}
	require.NoError(t, p.SaveWorkflow(ctx, enabled))
	require.NoError(t, uuid.Validate(enabled.ID))

	disabled := &models.WorkflowDefinition{
		Name:      "Disabled",
		Trigger:   models.WorkflowTrigger{Type: models.TriggerFileUploaded},
		CreatedBy: "u1",
	}
	require.NoError(t, p.SaveWorkflow(ctx, disabled))

	loaded, err := p.WorkflowByID(ctx, enabled.ID)
	require.NoError(t, err)
	assert.Equal(t, enabled.Name, loaded.Name)
	assert.Equal(t, enabled.Trigger.Type, loaded.Trigger.Type)
	require.Len(t, loaded.Trigger.Conditions, 1)
	assert.Equal(t, []any{"legal", "finance"}, loaded.Trigger.Conditions[0].Value)
	require.Len(t, loaded.Actions, 1)
	assert.InDelta(t, 5, loaded.Actions[0].Delay, 0)

	all, err := p.Workflows(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	active, err := p.EnabledWorkflows(ctx)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, enabled.ID, active[0].ID)

	enabled.Enabled = false
	require.NoError(t, p.SaveWorkflow(ctx, enabled))

	active, err = p.EnabledWorkflows(ctx)
	require.NoError(t, err)
	assert.Empty(t, active)

	require.NoError(t, p.DeleteWorkflow(ctx, enabled.ID))

	_, err = p.WorkflowByID(ctx, enabled.ID)
	assert.ErrorIs(t, err, persistence.ErrWorkflowNotFound)
	assert.ErrorIs(t, p.DeleteWorkflow(ctx, enabled.ID), persistence.ErrWorkflowNotFound)

	_, err = p.WorkflowByID(ctx, "not-a-uuid")
	assert.ErrorIs(t, err, persistence.ErrWorkflowNotFound)
}

func TestPersistence_ExecutionLogs(t *testing.T) {
	p, ctx, _ := setupTestDB(t)

	workflow := &models.WorkflowDefinition{
		Name:      "Phase done",
		Enabled:   true,
		Trigger:   models.WorkflowTrigger{Type: models.TriggerPhaseCompleted},
		CreatedBy: "u1",
	}
	require.NoError(t, p.SaveWorkflow(ctx, workflow))

	started := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	completed := started.Add(2 * time.Second)

	older := &models.WorkflowExecutionLog{
		ID:          uuid.NewString(),
		WorkflowID:  workflow.ID,
		TriggeredBy: "u1",
		TriggerData: map[string]any{"projectId": "p-1"},
		Status:      models.ExecutionStatusFailed,
		ExecutedActions: []models.ExecutedAction{
			{Action: models.ActionSendWebhook, Status: models.ExecutionStatusFailed, Error: "webhook url is required", ExecutedAt: started},
		},
		StartedAt:   started,
		CompletedAt: &completed,
	}
	newer := &models.WorkflowExecutionLog{
		ID:              uuid.NewString(),
		WorkflowID:      workflow.ID,
		TriggerData:     map[string]any{},
		Status:          models.ExecutionStatusFailed,
		ExecutedActions: []models.ExecutedAction{},
		StartedAt:       started.Add(time.Hour),
		CompletedAt:     &completed,
		Error:           models.ErrConditionsNotMet,
	}

	require.NoError(t, p.SaveExecutionLog(ctx, older))
	require.NoError(t, p.SaveExecutionLog(ctx, newer))
	require.NoError(t, p.SaveExecutionLog(ctx, newer), "saving twice is a no-op")

	logs, err := p.ExecutionLogs(ctx, workflow.ID, 10)
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, newer.ID, logs[0].ID)
	assert.Equal(t, models.ErrConditionsNotMet, logs[0].Error)
	assert.Equal(t, older.ID, logs[1].ID)
	assert.Equal(t, "p-1", logs[1].TriggerData["projectId"])
	require.Len(t, logs[1].ExecutedActions, 1)
	assert.Equal(t, "webhook url is required", logs[1].ExecutedActions[0].Error)
	assert.Empty(t, logs[1].Error)

	require.NoError(t, p.DeleteWorkflow(ctx, workflow.ID))

	logs, err = p.ExecutionLogs(ctx, workflow.ID, 10)
	require.NoError(t, err)
	assert.Empty(t, logs)
}

func TestPersistence_ProjectSideEffects(t *testing.T) {
	p, ctx, db := setupTestDB(t)

	_, err := db.ExecContext(ctx, "INSERT INTO projects (id, name) VALUES ('p-1', 'Apollo')")
	require.NoError(t, err)

	require.NoError(t, p.UpdateProjectStatus(ctx, "p-1", "IN_REVIEW"))
	require.NoError(t, p.AssignProjectLead(ctx, "p-1", "u2"))
	require.NoError(t, p.UpdateProjectField(ctx, "p-1", "name", "Apollo II"))
	require.NoError(t, p.UpdateProjectField(ctx, "p-1", "budget", 1500))

	var (
		name, status, lead string
		budget             float64
	)

	require.NoError(t, db.QueryRowContext(ctx,
		"SELECT name, status, lead_id, (custom_fields->>'budget')::float FROM projects WHERE id = 'p-1'",
	).Scan(&name, &status, &lead, &budget))
	assert.Equal(t, "Apollo II", name)
	assert.Equal(t, "IN_REVIEW", status)
	assert.Equal(t, "u2", lead)
	assert.InDelta(t, 1500, budget, 0)

	assert.ErrorIs(t, p.UpdateProjectStatus(ctx, "p-404", "DONE"), persistence.ErrProjectNotFound)
	assert.ErrorIs(t, p.UpdateProjectField(ctx, "p-1", "name = 'x'; --", "y"), persistence.ErrInvalidFieldName)

	require.NoError(t, p.CreateSystemComment(ctx, "p-1", "Status changed", "u1"))
	require.NoError(t, p.CreateNotification(ctx, protocol.Notification{
		UserID:  "u2",
		Type:    "PROJECT_ASSIGNED",
		Message: "You lead Apollo II",
	}))

	var (
		content  string
		isSystem bool
	)

	require.NoError(t, db.QueryRowContext(ctx,
		"SELECT content, is_system FROM comments WHERE project_id = 'p-1'").Scan(&content, &isSystem))
	assert.Equal(t, "Status changed", content)
	assert.True(t, isSystem)

	var projectID sql.NullString

	require.NoError(t, db.QueryRowContext(ctx,
		"SELECT project_id FROM notifications WHERE user_id = 'u2'").Scan(&projectID))
	assert.False(t, projectID.Valid)
}
