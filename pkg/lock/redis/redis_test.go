package redis_test

import (
	"testing"
	"time"

	"github.com/launchflow/launchflow/pkg/lock/redis"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	rediscontainer "github.com/testcontainers/testcontainers-go/modules/redis"
)

func TestNewClient_InvalidURL(t *testing.T) {
	t.Parallel()

	_, err := redis.NewClient("http://not-redis")
	assert.Error(t, err)
}

func TestLocker_TryLock(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping Redis integration test in short mode")
	}

	ctx := t.Context()

	redisInstance, err := rediscontainer.Run(ctx, "redis:7-alpine")
	testcontainers.CleanupContainer(t, redisInstance)
	require.NoError(t, err)

	url, err := redisInstance.ConnectionString(ctx)
	require.NoError(t, err)

	client, err := redis.NewClient(url)
	require.NoError(t, err)

	t.Cleanup(func() { _ = client.Close() })

	first := redis.NewLocker(client, "")
	second := redis.NewLocker(client, "")

	ok, err := first.TryLock(ctx, "schedule:wf-1:202506010900", time.Second)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = second.TryLock(ctx, "schedule:wf-1:202506010900", time.Second)
	require.NoError(t, err)
	assert.False(t, ok, "only one replica holds a tick")

	holder, err := client.Get(ctx, "launchflow:lock:schedule:wf-1:202506010900").Result()
	require.NoError(t, err)
	assert.Equal(t, first.Owner(), holder)

	require.Eventually(t, func() bool {
		ok, err := second.TryLock(ctx, "schedule:wf-1:202506010900", time.Second)

		return err == nil && ok
	}, 5*time.Second, 100*time.Millisecond, "lock expires with its ttl")
}
