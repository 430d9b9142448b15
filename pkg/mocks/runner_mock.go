package mocks

import (
	"context"

	"github.com/launchflow/launchflow/pkg/models"
	"github.com/stretchr/testify/mock"
)

// MockRunner is a mock implementation of services.Runner interface.
type MockRunner struct {
	mock.Mock
}

func (m *MockRunner) ExecuteWorkflow(
	ctx context.Context,
	definition *models.WorkflowDefinition,
	triggerData map[string]any,
	triggeredBy string,
) *models.WorkflowExecutionLog {
	args := m.Called(ctx, definition, triggerData, triggeredBy)
	if args.Get(0) == nil {
		return nil
	}

	return args.Get(0).(*models.WorkflowExecutionLog)
}

func (m *MockRunner) TriggerWorkflows(
	ctx context.Context,
	eventType models.WorkflowTriggerType,
	eventData map[string]any,
	actingUserID string,
) []*models.WorkflowExecutionLog {
	args := m.Called(ctx, eventType, eventData, actingUserID)
	if args.Get(0) == nil {
		return nil
	}

	return args.Get(0).([]*models.WorkflowExecutionLog)
}

func (m *MockRunner) TriggerWorkflow(
	ctx context.Context,
	eventType models.WorkflowTriggerType,
	eventData map[string]any,
	actingUserID string,
) {
	m.Called(ctx, eventType, eventData, actingUserID)
}
