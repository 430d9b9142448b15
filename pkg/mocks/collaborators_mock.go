package mocks

import (
	"context"

	"github.com/launchflow/launchflow/pkg/models"
	"github.com/launchflow/launchflow/pkg/protocol"
	"github.com/stretchr/testify/mock"
)

// MockEmailSender is a mock implementation of protocol.EmailSender interface.
type MockEmailSender struct {
	mock.Mock
}

func (m *MockEmailSender) Send(ctx context.Context, message protocol.EmailMessage) (bool, error) {
	args := m.Called(ctx, message)

	return args.Bool(0), args.Error(1)
}

// MockNotificationCreator is a mock implementation of protocol.NotificationCreator interface.
type MockNotificationCreator struct {
	mock.Mock
}

func (m *MockNotificationCreator) CreateNotification(ctx context.Context, notification protocol.Notification) error {
	args := m.Called(ctx, notification)

	return args.Error(0)
}

// MockProjectStore is a mock implementation of protocol.ProjectStore interface.
type MockProjectStore struct {
	mock.Mock
}

func (m *MockProjectStore) UpdateProjectStatus(ctx context.Context, projectID string, status string) error {
	args := m.Called(ctx, projectID, status)

	return args.Error(0)
}

func (m *MockProjectStore) AssignProjectLead(ctx context.Context, projectID string, userID string) error {
	args := m.Called(ctx, projectID, userID)

	return args.Error(0)
}

func (m *MockProjectStore) UpdateProjectField(ctx context.Context, projectID string, field string, value any) error {
	args := m.Called(ctx, projectID, field, value)

	return args.Error(0)
}

// MockCommentStore is a mock implementation of protocol.CommentStore interface.
type MockCommentStore struct {
	mock.Mock
}

func (m *MockCommentStore) CreateSystemComment(ctx context.Context, projectID string, text string, authorID string) error {
	args := m.Called(ctx, projectID, text, authorID)

	return args.Error(0)
}

// MockWorkflowLookup is a mock implementation of protocol.WorkflowLookup interface.
type MockWorkflowLookup struct {
	mock.Mock
}

func (m *MockWorkflowLookup) EnabledWorkflows(ctx context.Context) ([]*models.WorkflowDefinition, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]*models.WorkflowDefinition), args.Error(1)
}
