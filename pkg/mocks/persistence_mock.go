package mocks

import (
	"context"

	"github.com/launchflow/launchflow/pkg/models"
	"github.com/launchflow/launchflow/pkg/protocol"
	"github.com/stretchr/testify/mock"
)

// MockPersistence is a mock implementation of persistence.Persistence interface.
type MockPersistence struct {
	mock.Mock
}

func (m *MockPersistence) Workflows(ctx context.Context) ([]*models.WorkflowDefinition, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]*models.WorkflowDefinition), args.Error(1)
}

func (m *MockPersistence) WorkflowByID(ctx context.Context, id string) (*models.WorkflowDefinition, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*models.WorkflowDefinition), args.Error(1)
}

func (m *MockPersistence) SaveWorkflow(ctx context.Context, workflow *models.WorkflowDefinition) error {
	args := m.Called(ctx, workflow)

	return args.Error(0)
}

func (m *MockPersistence) DeleteWorkflow(ctx context.Context, id string) error {
	args := m.Called(ctx, id)

	return args.Error(0)
}

func (m *MockPersistence) EnabledWorkflows(ctx context.Context) ([]*models.WorkflowDefinition, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]*models.WorkflowDefinition), args.Error(1)
}

func (m *MockPersistence) SaveExecutionLog(ctx context.Context, log *models.WorkflowExecutionLog) error {
	args := m.Called(ctx, log)

	return args.Error(0)
}

func (m *MockPersistence) ExecutionLogs(ctx context.Context, workflowID string, limit int) ([]*models.WorkflowExecutionLog, error) {
	args := m.Called(ctx, workflowID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]*models.WorkflowExecutionLog), args.Error(1)
}

func (m *MockPersistence) UpdateProjectStatus(ctx context.Context, projectID string, status string) error {
	args := m.Called(ctx, projectID, status)

	return args.Error(0)
}

func (m *MockPersistence) AssignProjectLead(ctx context.Context, projectID string, userID string) error {
	args := m.Called(ctx, projectID, userID)

	return args.Error(0)
}

func (m *MockPersistence) UpdateProjectField(ctx context.Context, projectID string, field string, value any) error {
	args := m.Called(ctx, projectID, field, value)

	return args.Error(0)
}

func (m *MockPersistence) CreateSystemComment(ctx context.Context, projectID string, text string, authorID string) error {
	args := m.Called(ctx, projectID, text, authorID)

	return args.Error(0)
}

func (m *MockPersistence) CreateNotification(ctx context.Context, notification protocol.Notification) error {
	args := m.Called(ctx, notification)

	return args.Error(0)
}

func (m *MockPersistence) HealthCheck(ctx context.Context) error {
	args := m.Called(ctx)

	return args.Error(0)
}

func (m *MockPersistence) Close(ctx context.Context) error {
	args := m.Called(ctx)

	return args.Error(0)
}
