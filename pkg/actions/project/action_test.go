package project_test

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/launchflow/launchflow/pkg/actions/project"
	"github.com/launchflow/launchflow/pkg/mocks"
	"github.com/launchflow/launchflow/pkg/protocol"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var withProject = protocol.ActionInput{Data: map[string]any{"projectId": "p-1"}, ActingUserID: "u9"}

func TestStatusAction(t *testing.T) {
	t.Parallel()

	store := &mocks.MockProjectStore{}
	store.On("UpdateProjectStatus", mock.Anything, "p-1", "APPROVED").Return(nil)

	err := project.NewStatusAction(store, map[string]any{"status": "APPROVED"}).
		Execute(context.Background(), withProject, slog.Default())

	require.NoError(t, err)
	store.AssertExpectations(t)
}

func TestStatusAction_NoProjectIsNoop(t *testing.T) {
	t.Parallel()

	store := &mocks.MockProjectStore{}

	err := project.NewStatusAction(store, map[string]any{"status": "APPROVED"}).
		Execute(context.Background(), protocol.ActionInput{Data: map[string]any{}}, slog.Default())

	require.NoError(t, err)
	store.AssertNotCalled(t, "UpdateProjectStatus", mock.Anything, mock.Anything, mock.Anything)
}

func TestStatusAction_StoreError(t *testing.T) {
	t.Parallel()

	dbDown := errors.New("db down")
	store := &mocks.MockProjectStore{}
	store.On("UpdateProjectStatus", mock.Anything, "p-1", "APPROVED").Return(dbDown)

	err := project.NewStatusAction(store, map[string]any{"status": "APPROVED"}).
		Execute(context.Background(), withProject, slog.Default())

	require.ErrorIs(t, err, dbDown)
}

func TestAssignAction(t *testing.T) {
	t.Parallel()

	store := &mocks.MockProjectStore{}
	store.On("AssignProjectLead", mock.Anything, "p-1", "u2").Return(nil)

	err := project.NewAssignAction(store, map[string]any{"userId": "u2"}).
		Execute(context.Background(), withProject, slog.Default())

	require.NoError(t, err)
	store.AssertExpectations(t)
}

func TestAssignAction_MissingUserIsNoop(t *testing.T) {
	t.Parallel()

	store := &mocks.MockProjectStore{}

	err := project.NewAssignAction(store, map[string]any{}).
		Execute(context.Background(), withProject, slog.Default())

	require.NoError(t, err)
	store.AssertNotCalled(t, "AssignProjectLead", mock.Anything, mock.Anything, mock.Anything)
}

func TestFieldAction(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		config map[string]any
		input  protocol.ActionInput
		called bool
	}{
		{"sets value", map[string]any{"field": "priority", "value": 2.0}, withProject, true},
		{"false is a value", map[string]any{"field": "archived", "value": false}, withProject, true},
		{"missing value", map[string]any{"field": "priority"}, withProject, false},
		{"missing field", map[string]any{"value": 2.0}, withProject, false},
		{"missing project", map[string]any{"field": "priority", "value": 2.0}, protocol.ActionInput{}, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			store := &mocks.MockProjectStore{}
			store.On("UpdateProjectField", mock.Anything, "p-1", tc.config["field"], tc.config["value"]).Return(nil).Maybe()

			err := project.NewFieldAction(store, tc.config).Execute(context.Background(), tc.input, slog.Default())

			require.NoError(t, err)

			if tc.called {
				store.AssertNumberOfCalls(t, "UpdateProjectField", 1)
			} else {
				store.AssertNotCalled(t, "UpdateProjectField", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
			}
		})
	}
}
