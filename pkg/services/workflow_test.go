package services_test

import (
	"errors"
	"log/slog"
	"testing"

	"github.com/launchflow/launchflow/pkg/mocks"
	"github.com/launchflow/launchflow/pkg/models"
	"github.com/launchflow/launchflow/pkg/persistence"
	"github.com/launchflow/launchflow/pkg/persistence/file"
	"github.com/launchflow/launchflow/pkg/registry"
	"github.com/launchflow/launchflow/pkg/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newService(t *testing.T) (*services.Workflow, *file.Persistence, *mocks.MockRunner) {
	t.Helper()

	store := file.NewPersistence(t.TempDir())
	reg := registry.NewRegistry(slog.Default())
	reg.RegisterDefaultActions(registry.Collaborators{})

	runner := &mocks.MockRunner{}

	return services.NewWorkflow(store, reg, runner, slog.Default()), store, runner
}

func approvalWorkflow(name string) *models.WorkflowDefinition {
	return &models.WorkflowDefinition{
		Name:      name,
		Enabled:   true,
		CreatedBy: "user-1",
		Trigger:   models.WorkflowTrigger{Type: models.TriggerApprovalRequested},
		Actions: []models.WorkflowAction{
			{Type: models.ActionSendEmail, Config: map[string]any{"to": "{{reviewer.email}}", "template": "approval_requested"}},
		},
	}
}

func TestWorkflow_Create(t *testing.T) {
	t.Parallel()

	service, store, _ := newService(t)

	workflow := approvalWorkflow("Notify reviewers")
	workflow.ID = "client-chosen"

	created, err := service.Create(t.Context(), workflow)
	require.NoError(t, err)

	assert.NotEmpty(t, created.ID)
	assert.NotEqual(t, "client-chosen", created.ID)
	assert.False(t, created.CreatedAt.IsZero())

	stored, err := store.WorkflowByID(t.Context(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Notify reviewers", stored.Name)
}

func TestWorkflow_Create_Validation(t *testing.T) {
	t.Parallel()

	service, _, _ := newService(t)

	tests := []struct {
		name     string
		workflow *models.WorkflowDefinition
		want     error
	}{
		{name: "nil workflow", workflow: nil, want: services.ErrWorkflowNil},
		{
			name: "name too short",
			workflow: func() *models.WorkflowDefinition {
				w := approvalWorkflow("ab")

				return w
			}(),
			want: services.ErrInvalidDefinition,
		},
		{
			name: "unknown trigger",
			workflow: func() *models.WorkflowDefinition {
				w := approvalWorkflow("Unknown trigger")
				w.Trigger.Type = "PROJECT_ARCHIVED"

				return w
			}(),
			want: services.ErrInvalidDefinition,
		},
		{
			name: "schedule trigger without schedule",
			workflow: func() *models.WorkflowDefinition {
				w := approvalWorkflow("Nightly")
				w.Trigger.Type = models.TriggerSchedule

				return w
			}(),
			want: services.ErrInvalidDefinition,
		},
		{
			name: "email without recipient",
			workflow: func() *models.WorkflowDefinition {
				w := approvalWorkflow("No recipient")
				w.Actions[0].Config = map[string]any{"template": "approval_requested"}

				return w
			}(),
			want: services.ErrInvalidActionConfig,
		},
		{
			name: "unknown action type",
			workflow: func() *models.WorkflowDefinition {
				w := approvalWorkflow("Unknown action")
				w.Actions = append(w.Actions, models.WorkflowAction{Type: "SEND_FAX"})

				return w
			}(),
			want: services.ErrInvalidActionConfig,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := service.Create(t.Context(), tt.workflow)
			require.ErrorIs(t, err, tt.want)
			assert.True(t, services.IsValidationError(err))
		})
	}
}

func TestWorkflow_Update(t *testing.T) {
	t.Parallel()

	service, _, _ := newService(t)

	created, err := service.Create(t.Context(), approvalWorkflow("Original"))
	require.NoError(t, err)

	createdAt := created.CreatedAt

	replacement := approvalWorkflow("Renamed")
	updated, err := service.Update(t.Context(), created.ID, replacement)
	require.NoError(t, err)

	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, "Renamed", updated.Name)
	assert.True(t, createdAt.Equal(updated.CreatedAt))

	_, err = service.Update(t.Context(), "missing", approvalWorkflow("Missing"))
	assert.True(t, persistence.IsWorkflowNotFound(err))
}

func TestWorkflow_ListWorkflows(t *testing.T) {
	t.Parallel()

	service, _, _ := newService(t)

	for _, name := range []string{"Charlie", "Alpha", "Bravo"} {
		_, err := service.Create(t.Context(), approvalWorkflow(name))
		require.NoError(t, err)
	}

	disabled := approvalWorkflow("Delta")
	disabled.Enabled = false
	disabled.Trigger.Type = models.TriggerCommentAdded
	_, err := service.Create(t.Context(), disabled)
	require.NoError(t, err)

	result, err := service.ListWorkflows(t.Context(), services.ListWorkflowsRequest{SortBy: "name", SortOrder: "asc", Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, 4, result.TotalCount)
	assert.True(t, result.HasNextPage)
	require.Len(t, result.Workflows, 2)
	assert.Equal(t, "Alpha", result.Workflows[0].Name)
	assert.Equal(t, "Bravo", result.Workflows[1].Name)

	enabled := true
	result, err = service.ListWorkflows(t.Context(), services.ListWorkflowsRequest{
		Enabled:     &enabled,
		TriggerType: models.TriggerApprovalRequested,
		SortBy:      "name",
		SortOrder:   "desc",
	})
	require.NoError(t, err)
	assert.Equal(t, 3, result.TotalCount)
	assert.False(t, result.HasNextPage)
	assert.Equal(t, "Charlie", result.Workflows[0].Name)

	_, err = service.ListWorkflows(t.Context(), services.ListWorkflowsRequest{SortBy: "trigger"})
	require.ErrorIs(t, err, services.ErrInvalidSortField)

	_, err = service.ListWorkflows(t.Context(), services.ListWorkflowsRequest{SortOrder: "sideways"})
	require.ErrorIs(t, err, services.ErrInvalidSortOrder)

	_, err = service.ListWorkflows(t.Context(), services.ListWorkflowsRequest{TriggerType: "PROJECT_ARCHIVED"})
	require.ErrorIs(t, err, services.ErrInvalidTrigger)
}

func TestWorkflow_SetEnabled(t *testing.T) {
	t.Parallel()

	service, store, _ := newService(t)

	created, err := service.Create(t.Context(), approvalWorkflow("Toggle me"))
	require.NoError(t, err)

	_, err = service.SetEnabled(t.Context(), created.ID, false)
	require.NoError(t, err)

	enabled, err := store.EnabledWorkflows(t.Context())
	require.NoError(t, err)
	assert.Empty(t, enabled)

	toggled, err := service.SetEnabled(t.Context(), created.ID, true)
	require.NoError(t, err)
	assert.True(t, toggled.Enabled)

	_, err = service.SetEnabled(t.Context(), "missing", true)
	assert.True(t, persistence.IsWorkflowNotFound(err))
}

func TestWorkflow_Delete(t *testing.T) {
	t.Parallel()

	service, _, _ := newService(t)

	created, err := service.Create(t.Context(), approvalWorkflow("Short lived"))
	require.NoError(t, err)

	require.NoError(t, service.Delete(t.Context(), created.ID))

	_, err = service.FetchByID(t.Context(), created.ID)
	require.ErrorIs(t, err, services.ErrWorkflowNotFound)

	err = service.Delete(t.Context(), created.ID)
	assert.True(t, persistence.IsWorkflowNotFound(err))
}

func TestWorkflow_Execute(t *testing.T) {
	t.Parallel()

	service, _, runner := newService(t)

	created, err := service.Create(t.Context(), approvalWorkflow("Run now"))
	require.NoError(t, err)

	log := &models.WorkflowExecutionLog{ID: "exec-1", WorkflowID: created.ID, Status: models.ExecutionStatusSuccess}
	runner.On("ExecuteWorkflow", mock.Anything, mock.MatchedBy(func(def *models.WorkflowDefinition) bool {
		return def.ID == created.ID
	}), map[string]any{"eventType": "APPROVAL_REQUESTED", "projectId": "p1"}, "user-9").Return(log).Once()

	got, err := service.Execute(t.Context(), created.ID, map[string]any{"projectId": "p1"}, "user-9")
	require.NoError(t, err)
	assert.Same(t, log, got)

	_, err = service.SetEnabled(t.Context(), created.ID, false)
	require.NoError(t, err)

	_, err = service.Execute(t.Context(), created.ID, nil, "user-9")
	require.ErrorIs(t, err, services.ErrWorkflowDisabled)
	assert.True(t, services.IsConflictError(err))

	_, err = service.Execute(t.Context(), "missing", nil, "user-9")
	assert.True(t, persistence.IsWorkflowNotFound(err))

	runner.AssertExpectations(t)
}

func TestWorkflow_Trigger(t *testing.T) {
	t.Parallel()

	service, _, runner := newService(t)

	logs := []*models.WorkflowExecutionLog{{ID: "exec-1"}}
	data := map[string]any{"commentId": "c1"}
	runner.On("TriggerWorkflows", mock.Anything, models.TriggerCommentAdded, data, "user-2").Return(logs).Once()

	got, err := service.Trigger(t.Context(), models.TriggerCommentAdded, data, "user-2")
	require.NoError(t, err)
	assert.Equal(t, logs, got)

	_, err = service.Trigger(t.Context(), "PROJECT_ARCHIVED", data, "user-2")
	require.ErrorIs(t, err, services.ErrInvalidTrigger)

	runner.AssertExpectations(t)
}

func TestWorkflow_Executions(t *testing.T) {
	t.Parallel()

	service, store, _ := newService(t)

	created, err := service.Create(t.Context(), approvalWorkflow("Logged"))
	require.NoError(t, err)

	require.NoError(t, store.SaveExecutionLog(t.Context(), &models.WorkflowExecutionLog{
		ID:         "exec-1",
		WorkflowID: created.ID,
		Status:     models.ExecutionStatusSuccess,
	}))

	logs, err := service.Executions(t.Context(), created.ID, 0)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, "exec-1", logs[0].ID)

	_, err = service.Executions(t.Context(), "missing", 10)
	assert.True(t, persistence.IsWorkflowNotFound(err))
}

func TestWorkflow_HealthCheck(t *testing.T) {
	t.Parallel()

	store := &mocks.MockPersistence{}
	store.On("HealthCheck", mock.Anything).Return(errors.New("connection refused")).Once()
	store.On("HealthCheck", mock.Anything).Return(nil).Once()

	service := services.NewWorkflow(store, registry.NewRegistry(slog.Default()), &mocks.MockRunner{}, slog.Default())

	message, ok := service.HealthCheck(t.Context())
	assert.False(t, ok)
	assert.Contains(t, message, "connection refused")

	message, ok = service.HealthCheck(t.Context())
	assert.True(t, ok)
	assert.Equal(t, "Persistence layer is healthy", message)
}

func TestWorkflow_Enqueue(t *testing.T) {
	t.Parallel()

	service, _, runner := newService(t)

	data := map[string]any{"source": "crm"}
	runner.On("TriggerWorkflow", mock.Anything, models.TriggerWebhookReceived, data, "").Return().Once()

	require.NoError(t, service.Enqueue(t.Context(), models.TriggerWebhookReceived, data, ""))
	require.ErrorIs(t, service.Enqueue(t.Context(), "", data, ""), services.ErrInvalidTrigger)

	runner.AssertExpectations(t)
}
