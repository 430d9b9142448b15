package task_test

import (
	"context"
	"log/slog"
	"testing"

	"github.com/launchflow/launchflow/pkg/actions/task"
	"github.com/launchflow/launchflow/pkg/protocol"
	"github.com/stretchr/testify/require"
)

func TestAction_AlwaysSucceeds(t *testing.T) {
	t.Parallel()

	action, err := task.NewActionFactory().Create(context.Background(), nil)
	require.NoError(t, err)

	require.NoError(t, action.Execute(context.Background(), protocol.ActionInput{}, slog.Default()))
}
