package notification_test

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/launchflow/launchflow/pkg/actions/notification"
	"github.com/launchflow/launchflow/pkg/mocks"
	"github.com/launchflow/launchflow/pkg/protocol"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestAction_Execute(t *testing.T) {
	t.Parallel()

	creator := &mocks.MockNotificationCreator{}
	creator.On("CreateNotification", mock.Anything, protocol.Notification{
		UserID:        "u1",
		Type:          "APPROVAL_REQUESTED",
		Message:       "Please review Spring Drop",
		ProjectID:     "p-1",
		TriggeredByID: "u9",
	}).Return(nil)

	action, err := notification.NewActionFactory(creator).Create(context.Background(), map[string]any{
		"userId":  "u1",
		"type":    "APPROVAL_REQUESTED",
		"message": "Please review Spring Drop",
	})
	require.NoError(t, err)

	err = action.Execute(context.Background(), protocol.ActionInput{
		Data:         map[string]any{"projectId": "p-1"},
		ActingUserID: "u9",
	}, slog.Default())

	require.NoError(t, err)
	creator.AssertExpectations(t)
}

func TestAction_Execute_CreatorError(t *testing.T) {
	t.Parallel()

	storeDown := errors.New("store down")
	creator := &mocks.MockNotificationCreator{}
	creator.On("CreateNotification", mock.Anything, mock.Anything).Return(storeDown)

	err := notification.NewAction(creator, map[string]any{"userId": "u1"}).
		Execute(context.Background(), protocol.ActionInput{}, slog.Default())

	require.ErrorIs(t, err, storeDown)
}
