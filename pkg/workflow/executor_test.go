package workflow_test

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/launchflow/launchflow/pkg/metrics"
	"github.com/launchflow/launchflow/pkg/mocks"
	"github.com/launchflow/launchflow/pkg/models"
	"github.com/launchflow/launchflow/pkg/protocol"
	"github.com/launchflow/launchflow/pkg/registry"
	"github.com/launchflow/launchflow/pkg/workflow"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	clocktesting "k8s.io/utils/clock/testing"
)

var testNow = time.Date(2025, 4, 2, 15, 4, 5, 0, time.UTC)

type fixture struct {
	emails        *mocks.MockEmailSender
	notifications *mocks.MockNotificationCreator
	projects      *mocks.MockProjectStore
	comments      *mocks.MockCommentStore
	clock         *clocktesting.FakeClock
	registry      *registry.Registry
	logger        *slog.Logger
}

func newFixture() *fixture {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

	f := &fixture{
		emails:        &mocks.MockEmailSender{},
		notifications: &mocks.MockNotificationCreator{},
		projects:      &mocks.MockProjectStore{},
		comments:      &mocks.MockCommentStore{},
		clock:         clocktesting.NewFakeClock(testNow),
		logger:        logger,
	}

	f.registry = registry.NewRegistry(logger)
	f.registry.RegisterDefaultActions(registry.Collaborators{
		Emails:        f.emails,
		Notifications: f.notifications,
		Projects:      f.projects,
		Comments:      f.comments,
		Clock:         f.clock,
	})

	return f
}

func (f *fixture) executor(opts ...workflow.ExecutorOption) *workflow.Executor {
	dispatcher := workflow.NewActionDispatcher(f.registry, f.logger, nil)

	return workflow.NewExecutor(dispatcher, f.logger, append([]workflow.ExecutorOption{workflow.WithClock(f.clock)}, opts...)...)
}

func definition(id string, trigger models.WorkflowTriggerType, actions ...models.WorkflowAction) *models.WorkflowDefinition {
	return &models.WorkflowDefinition{
		ID:        id,
		Name:      "Workflow " + id,
		Enabled:   true,
		Trigger:   models.WorkflowTrigger{Type: trigger},
		Actions:   actions,
		CreatedBy: "owner",
	}
}

type panicFactory struct{}

func (panicFactory) Create(context.Context, map[string]any) (protocol.Action, error) {
	return panicAction{}, nil
}
func (panicFactory) ID() string             { return string(models.ActionCreateTask) }
func (panicFactory) Name() string           { return "panics" }
func (panicFactory) Description() string    { return "panics" }
func (panicFactory) Schema() map[string]any { return map[string]any{} }

type panicAction struct{}

func (panicAction) Execute(context.Context, protocol.ActionInput, *slog.Logger) error {
	panic("task store exploded")
}

type recorder struct {
	mu   sync.Mutex
	logs []*models.WorkflowExecutionLog
	err  error
}

func (r *recorder) SaveExecutionLog(_ context.Context, log *models.WorkflowExecutionLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.logs = append(r.logs, log)

	return r.err
}

func (r *recorder) saved() []*models.WorkflowExecutionLog {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]*models.WorkflowExecutionLog(nil), r.logs...)
}

func TestExecuteWorkflow_ConditionsNotMet(t *testing.T) {
	t.Parallel()

	f := newFixture()

	def := definition("wf-1", models.TriggerStatusChanged,
		models.WorkflowAction{Type: models.ActionSendEmail, Config: map[string]any{"to": "a@x.com"}},
	)
	def.Trigger.Conditions = []models.WorkflowCondition{
		{Field: "status", Operator: models.OperatorEquals, Value: "APPROVED"},
		{Field: "score", Operator: models.OperatorGreaterThan, Value: 5},
	}

	log := f.executor().ExecuteWorkflow(context.Background(), def,
		map[string]any{"status": "APPROVED", "score": 2}, "u1")

	assert.Equal(t, models.ExecutionStatusFailed, log.Status)
	assert.Equal(t, "Workflow conditions not met", log.Error)
	assert.Empty(t, log.ExecutedActions)
	assert.NotNil(t, log.CompletedAt)
	f.emails.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
}

func TestExecuteWorkflow_ConditionsMet(t *testing.T) {
	t.Parallel()

	f := newFixture()

	def := definition("wf-1", models.TriggerStatusChanged, models.WorkflowAction{Type: models.ActionCreateTask})
	def.Trigger.Conditions = []models.WorkflowCondition{
		{Field: "status", Operator: models.OperatorEquals, Value: "APPROVED"},
	}

	log := f.executor().ExecuteWorkflow(context.Background(), def, map[string]any{"status": "APPROVED"}, "u1")

	assert.Equal(t, models.ExecutionStatusSuccess, log.Status)
	assert.Len(t, log.ExecutedActions, 1)
}

func TestExecuteWorkflow_ActionFailureDoesNotAbort(t *testing.T) {
	t.Parallel()

	f := newFixture()

	def := definition("wf-1", models.TriggerPhaseCompleted,
		models.WorkflowAction{Type: models.ActionSendWebhook, Config: map[string]any{}},
		models.WorkflowAction{Type: models.ActionCreateTask, Config: map[string]any{"title": "Follow up"}},
	)

	log := f.executor().ExecuteWorkflow(context.Background(), def, map[string]any{}, "u1")

	require.Len(t, log.ExecutedActions, 2)
	assert.Equal(t, models.ActionSendWebhook, log.ExecutedActions[0].Action)
	assert.Equal(t, models.ExecutionStatusFailed, log.ExecutedActions[0].Status)
	assert.Equal(t, "webhook url is required", log.ExecutedActions[0].Error)
	assert.Equal(t, models.ActionCreateTask, log.ExecutedActions[1].Action)
	assert.Equal(t, models.ExecutionStatusSuccess, log.ExecutedActions[1].Status)
	assert.Equal(t, models.ExecutionStatusFailed, log.Status)
	assert.Empty(t, log.Error)
}

func TestExecuteWorkflow_EmptyActionsSucceed(t *testing.T) {
	t.Parallel()

	f := newFixture()

	log := f.executor().ExecuteWorkflow(context.Background(),
		definition("wf-1", models.TriggerProjectCreated), map[string]any{}, "u1")

	assert.Equal(t, models.ExecutionStatusSuccess, log.Status)
	assert.Empty(t, log.ExecutedActions)
	assert.Equal(t, testNow, log.StartedAt)
	require.NotNil(t, log.CompletedAt)
	assert.Equal(t, testNow, *log.CompletedAt)
	assert.NotEmpty(t, log.ID)
	assert.Equal(t, "wf-1", log.WorkflowID)
	assert.Equal(t, "u1", log.TriggeredBy)
}

func TestExecuteWorkflow_UnknownActionType(t *testing.T) {
	t.Parallel()

	f := newFixture()

	log := f.executor().ExecuteWorkflow(context.Background(),
		definition("wf-1", models.TriggerProjectCreated, models.WorkflowAction{Type: "SEND_FAX"}),
		map[string]any{}, "u1")

	require.Len(t, log.ExecutedActions, 1)
	assert.Equal(t, "Unknown action type", log.ExecutedActions[0].Error)
	assert.Equal(t, models.ExecutionStatusFailed, log.Status)
}

func TestExecuteWorkflow_ActionPanicIsRecovered(t *testing.T) {
	t.Parallel()

	f := newFixture()
	f.registry.RegisterAction(panicFactory{})
	f.comments.On("CreateSystemComment", mock.Anything, "p-1", "still runs", "u1").Return(nil)

	log := f.executor().ExecuteWorkflow(context.Background(),
		definition("wf-1", models.TriggerProjectCreated,
			models.WorkflowAction{Type: models.ActionCreateTask},
			models.WorkflowAction{Type: models.ActionAddComment, Config: map[string]any{"text": "still runs"}},
		),
		map[string]any{"projectId": "p-1"}, "u1")

	require.Len(t, log.ExecutedActions, 2)
	assert.Equal(t, "task store exploded", log.ExecutedActions[0].Error)
	assert.Equal(t, models.ExecutionStatusSuccess, log.ExecutedActions[1].Status)
	f.comments.AssertExpectations(t)
}

func TestExecuteWorkflow_NilDefinition(t *testing.T) {
	t.Parallel()

	log := newFixture().executor().ExecuteWorkflow(context.Background(), nil, map[string]any{}, "u1")

	assert.Equal(t, models.ExecutionStatusFailed, log.Status)
	assert.Equal(t, workflow.ErrNilDefinition.Error(), log.Error)
	assert.True(t, log.IsTerminal())
}

func TestExecuteWorkflow_SubstitutesConfig(t *testing.T) {
	t.Parallel()

	f := newFixture()
	f.projects.On("UpdateProjectField", mock.Anything, "p-1", "lead_email", "lead@x.com").Return(nil)
	f.notifications.On("CreateNotification", mock.Anything, protocol.Notification{
		UserID:        "u2",
		Type:          "PHASE_COMPLETED",
		Message:       "Packaging is done ({{missing.path}})",
		ProjectID:     "p-1",
		TriggeredByID: "u1",
	}).Return(nil)

	log := f.executor().ExecuteWorkflow(context.Background(),
		definition("wf-1", models.TriggerPhaseCompleted,
			models.WorkflowAction{Type: models.ActionUpdateField, Config: map[string]any{
				"field": "lead_email",
				"value": "{{lead.email}}",
			}},
			models.WorkflowAction{Type: models.ActionSendNotification, Config: map[string]any{
				"userId":  "{{lead.id}}",
				"type":    "PHASE_COMPLETED",
				"message": "{{phase.name}} is done ({{missing.path}})",
			}},
		),
		map[string]any{
			"projectId": "p-1",
			"lead":      map[string]any{"id": "u2", "email": "lead@x.com"},
			"phase":     map[string]any{"name": "Packaging"},
		}, "u1")

	assert.Equal(t, models.ExecutionStatusSuccess, log.Status)
	f.projects.AssertExpectations(t)
	f.notifications.AssertExpectations(t)
}

func TestExecuteWorkflow_WaitsForDelay(t *testing.T) {
	t.Parallel()

	f := newFixture()

	def := definition("wf-1", models.TriggerDueDateApproaching,
		models.WorkflowAction{Type: models.ActionCreateTask},
		models.WorkflowAction{Type: models.ActionCreateTask, Delay: 10},
	)

	done := make(chan *models.WorkflowExecutionLog, 1)

	go func() {
		done <- f.executor().ExecuteWorkflow(context.Background(), def, map[string]any{}, "u1")
	}()

	require.Eventually(t, f.clock.HasWaiters, time.Second, time.Millisecond)

	select {
	case <-done:
		t.Fatal("execution finished before the delay elapsed")
	default:
	}

	f.clock.Step(10 * time.Minute)

	select {
	case log := <-done:
		require.Len(t, log.ExecutedActions, 2)
		assert.Equal(t, testNow, log.ExecutedActions[0].ExecutedAt)
		assert.Equal(t, testNow.Add(10*time.Minute), log.ExecutedActions[1].ExecutedAt)
		assert.Equal(t, 10*time.Minute, log.Duration())
		assert.Equal(t, models.ExecutionStatusSuccess, log.Status)
	case <-time.After(time.Second):
		t.Fatal("execution did not resume after the delay")
	}
}

func TestExecuteWorkflow_CancelledDuringDelay(t *testing.T) {
	t.Parallel()

	f := newFixture()

	def := definition("wf-1", models.TriggerDueDateApproaching,
		models.WorkflowAction{Type: models.ActionCreateTask},
		models.WorkflowAction{Type: models.ActionCreateTask, Delay: 60},
	)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan *models.WorkflowExecutionLog, 1)

	go func() {
		done <- f.executor().ExecuteWorkflow(ctx, def, map[string]any{}, "u1")
	}()

	require.Eventually(t, f.clock.HasWaiters, time.Second, time.Millisecond)
	cancel()

	select {
	case log := <-done:
		assert.Equal(t, models.ExecutionStatusFailed, log.Status)
		assert.Equal(t, context.Canceled.Error(), log.Error)
		assert.Len(t, log.ExecutedActions, 1)
	case <-time.After(time.Second):
		t.Fatal("execution ignored cancellation")
	}
}

func TestExecuteWorkflow_Observers(t *testing.T) {
	t.Parallel()

	f := newFixture()
	rec := &recorder{err: errors.New("disk full")}
	publisher := &mocks.MockEventBus{}
	publisher.On("Publish", mock.Anything, "wf-1", mock.Anything).Return(nil)

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	log := f.executor(
		workflow.WithRecorder(rec),
		workflow.WithPublisher(publisher),
		workflow.WithMetrics(m),
	).ExecuteWorkflow(context.Background(),
		definition("wf-1", models.TriggerCommentAdded, models.WorkflowAction{Type: models.ActionCreateTask}),
		map[string]any{}, "u1")

	assert.Equal(t, models.ExecutionStatusSuccess, log.Status, "observer failures never change the outcome")
	assert.Equal(t, []*models.WorkflowExecutionLog{log}, rec.saved())
	publisher.AssertNumberOfCalls(t, "Publish", 1)
	assert.InDelta(t, 1, testutil.ToFloat64(m.ExecutionsCounter().WithLabelValues("COMMENT_ADDED", "SUCCESS")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.ActionsCounter().WithLabelValues("CREATE_TASK", "SUCCESS")), 0)
}

func TestExecuteWorkflow_HugeDelayStillWaits(t *testing.T) {
	t.Parallel()

	f := newFixture()

	def := definition("wf-1", models.TriggerDueDateApproaching,
		models.WorkflowAction{Type: models.ActionCreateTask, Delay: 1e9},
	)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan *models.WorkflowExecutionLog, 1)

	go func() {
		done <- f.executor().ExecuteWorkflow(ctx, def, map[string]any{}, "u1")
	}()

	require.Eventually(t, f.clock.HasWaiters, time.Second, time.Millisecond)
	cancel()

	select {
	case log := <-done:
		assert.Equal(t, models.ExecutionStatusFailed, log.Status)
		assert.Empty(t, log.ExecutedActions)
	case <-time.After(time.Second):
		t.Fatal("execution ignored cancellation")
	}
}
