package webhook_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/launchflow/launchflow/pkg/actions/webhook"
	"github.com/launchflow/launchflow/pkg/protocol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	clocktesting "k8s.io/utils/clock/testing"
)

var now = time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)

func newAction(t *testing.T, clk *clocktesting.FakeClock, config map[string]any) protocol.Action {
	t.Helper()

	action, err := webhook.NewActionFactory(http.DefaultClient, clk).Create(context.Background(), config)
	require.NoError(t, err)

	return action
}

func TestNewAction(t *testing.T) {
	t.Parallel()

	clk := clocktesting.NewFakeClock(now)

	action, err := webhook.NewAction(http.DefaultClient, clk, map[string]any{
		"url":     "https://hooks.example.com/launch",
		"method":  "put",
		"headers": map[string]any{"X-Token": "secret"},
		"timeout": 5.0,
		"retry":   map[string]any{"attempts": 3.0, "delay": 2.0},
	})
	require.NoError(t, err)

	assert.Equal(t, "https://hooks.example.com/launch", action.URL)
	assert.Equal(t, http.MethodPut, action.Method)
	assert.Equal(t, map[string]string{"Content-Type": "application/json", "X-Token": "secret"}, action.Headers)
	assert.Equal(t, 5*time.Second, action.Timeout)
	assert.Equal(t, webhook.RetryConfig{Attempts: 3, Delay: 2}, action.Retry)
}

func TestNewAction_Defaults(t *testing.T) {
	t.Parallel()

	action, err := webhook.NewAction(http.DefaultClient, clocktesting.NewFakeClock(now), map[string]any{
		"url": "https://hooks.example.com",
	})
	require.NoError(t, err)

	assert.Equal(t, http.MethodPost, action.Method)
	assert.Equal(t, 30*time.Second, action.Timeout)
	assert.Equal(t, webhook.RetryConfig{Attempts: 1, Delay: 0}, action.Retry)
}

func TestNewAction_URLRequired(t *testing.T) {
	t.Parallel()

	_, err := webhook.NewAction(http.DefaultClient, clocktesting.NewFakeClock(now), map[string]any{})

	require.ErrorIs(t, err, webhook.ErrWebhookURLRequired)
	assert.Equal(t, "webhook url is required", err.Error())
}

func TestAction_Execute_PostsEvent(t *testing.T) {
	t.Parallel()

	var received webhook.Payload

	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		assert.Equal(t, http.MethodPost, request.Method)
		assert.Equal(t, "application/json", request.Header.Get("Content-Type"))
		assert.Equal(t, "secret", request.Header.Get("X-Token"))

		assert.NoError(t, json.NewDecoder(request.Body).Decode(&received))
		writer.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	action := newAction(t, clocktesting.NewFakeClock(now), map[string]any{
		"url":     server.URL,
		"headers": map[string]any{"X-Token": "secret"},
	})

	err := action.Execute(context.Background(), protocol.ActionInput{
		Data: map[string]any{"eventType": "PHASE_COMPLETED", "projectId": "p-1"},
	}, slog.Default())
	require.NoError(t, err)

	assert.Equal(t, "PHASE_COMPLETED", received.Event)
	assert.Equal(t, map[string]any{"eventType": "PHASE_COMPLETED", "projectId": "p-1"}, received.Data)
	assert.Equal(t, "2025-03-14T09:30:00Z", received.Timestamp)
}

func TestAction_Execute_NonSuccessStatus(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, _ *http.Request) {
		writer.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	err := newAction(t, clocktesting.NewFakeClock(now), map[string]any{"url": server.URL}).
		Execute(context.Background(), protocol.ActionInput{Data: map[string]any{}}, slog.Default())

	require.ErrorIs(t, err, webhook.ErrWebhookStatus)
	assert.Contains(t, err.Error(), "404")
}

func TestAction_Execute_RetriesServerErrors(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) < 3 {
			writer.WriteHeader(http.StatusBadGateway)

			return
		}

		writer.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	action := newAction(t, clocktesting.NewFakeClock(now), map[string]any{
		"url":   server.URL,
		"retry": map[string]any{"attempts": 3.0, "delay": 0.0},
	})

	err := action.Execute(context.Background(), protocol.ActionInput{Data: map[string]any{}}, slog.Default())

	require.NoError(t, err)
	assert.Equal(t, int32(3), calls.Load())
}

func TestAction_Execute_GivesUpAfterAttempts(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		writer.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	action := newAction(t, clocktesting.NewFakeClock(now), map[string]any{
		"url":   server.URL,
		"retry": map[string]any{"attempts": 2.0},
	})

	err := action.Execute(context.Background(), protocol.ActionInput{Data: map[string]any{}}, slog.Default())

	require.ErrorIs(t, err, webhook.ErrWebhookStatus)
	assert.Equal(t, int32(2), calls.Load())
}

func TestAction_Execute_WaitsBetweenAttempts(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) == 1 {
			writer.WriteHeader(http.StatusInternalServerError)

			return
		}

		writer.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	clk := clocktesting.NewFakeClock(now)
	action := newAction(t, clk, map[string]any{
		"url":   server.URL,
		"retry": map[string]any{"attempts": 2.0, "delay": 5.0},
	})

	done := make(chan error, 1)

	go func() {
		done <- action.Execute(context.Background(), protocol.ActionInput{Data: map[string]any{}}, slog.Default())
	}()

	require.Eventually(t, clk.HasWaiters, time.Second, time.Millisecond)
	assert.Equal(t, int32(1), calls.Load())

	clk.Step(5 * time.Second)

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("webhook did not retry after the delay")
	}

	assert.Equal(t, int32(2), calls.Load())
}

func TestAction_Execute_CancelledDuringRetryDelay(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, _ *http.Request) {
		writer.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	clk := clocktesting.NewFakeClock(now)
	action := newAction(t, clk, map[string]any{
		"url":   server.URL,
		"retry": map[string]any{"attempts": 2.0, "delay": 60.0},
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)

	go func() {
		done <- action.Execute(ctx, protocol.ActionInput{Data: map[string]any{}}, slog.Default())
	}()

	require.Eventually(t, clk.HasWaiters, time.Second, time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("webhook ignored cancellation")
	}
}
