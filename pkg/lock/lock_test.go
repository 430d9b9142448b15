package lock_test

import (
	"testing"
	"time"

	"github.com/launchflow/launchflow/pkg/lock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	clocktesting "k8s.io/utils/clock/testing"
)

func TestLocal_TryLock(t *testing.T) {
	t.Parallel()

	clk := clocktesting.NewFakePassiveClock(time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC))
	locker := lock.NewLocal(clk)

	ok, err := locker.TryLock(t.Context(), "schedule:wf-1", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = locker.TryLock(t.Context(), "schedule:wf-1", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok, "held until expiry")

	ok, err = locker.TryLock(t.Context(), "schedule:wf-2", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok, "keys are independent")

	clk.SetTime(clk.Now().Add(time.Minute))

	ok, err = locker.TryLock(t.Context(), "schedule:wf-1", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok, "expired locks can be taken again")
}
