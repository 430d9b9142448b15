// Package webhook provides the SEND_WEBHOOK workflow action.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/launchflow/launchflow/pkg/protocol"
	"github.com/launchflow/launchflow/pkg/template"
	"k8s.io/utils/clock"
)

const defaultTimeoutSeconds = 30

var (
	// ErrWebhookURLRequired is returned when the config has no url.
	ErrWebhookURLRequired = errors.New("webhook url is required")
	// ErrWebhookStatus is returned for non-2xx responses.
	ErrWebhookStatus = errors.New("webhook responded with non-success status")
	// ErrHTTPServerError is returned when the server answers 5xx and a retry is due.
	ErrHTTPServerError = errors.New("server error during webhook request")
)

// Action posts the triggering event to an external URL.
type Action struct {
	URL     string
	Method  string
	Headers map[string]string
	Timeout time.Duration
	Retry   RetryConfig

	client protocol.HTTPDoer
	clock  clock.Clock
}

// RetryConfig defines retry behavior for webhook requests. Delay is in seconds.
type RetryConfig struct {
	Attempts int
	Delay    int
}

// Payload is the JSON body every webhook receives.
type Payload struct {
	Event     any            `json:"event"`
	Data      map[string]any `json:"data"`
	Timestamp string         `json:"timestamp"`
}

// NewAction decodes a resolved SEND_WEBHOOK config.
func NewAction(client protocol.HTTPDoer, clk clock.Clock, config map[string]any) (*Action, error) {
	url := strings.TrimSpace(template.Stringify(config["url"]))
	if url == "" {
		return nil, ErrWebhookURLRequired
	}

	method, _ := config["method"].(string)
	if method == "" {
		method = http.MethodPost
	}

	headers := map[string]string{"Content-Type": "application/json"}

	switch configured := config["headers"].(type) {
	case map[string]any:
		for k, v := range configured {
			headers[k] = template.Stringify(v)
		}
	case map[string]string:
		for k, v := range configured {
			headers[k] = v
		}
	}

	timeout := defaultTimeoutSeconds * time.Second
	if seconds, ok := number(config["timeout"]); ok && seconds > 0 {
		timeout = time.Duration(seconds * float64(time.Second))
	}

	return &Action{
		URL:     url,
		Method:  strings.ToUpper(method),
		Headers: headers,
		Timeout: timeout,
		Retry:   parseRetryConfig(config["retry"]),
		client:  client,
		clock:   clk,
	}, nil
}

func parseRetryConfig(retryConfig any) RetryConfig {
	retry := RetryConfig{Attempts: 1, Delay: 0}

	retryMap, ok := retryConfig.(map[string]any)
	if !ok {
		return retry
	}

	if attempts, ok := number(retryMap["attempts"]); ok && attempts >= 1 {
		retry.Attempts = int(attempts)
	}

	if delay, ok := number(retryMap["delay"]); ok && delay >= 0 {
		retry.Delay = int(delay)
	}

	return retry
}

func number(value any) (float64, bool) {
	switch typed := value.(type) {
	case float64:
		return typed, true
	case int:
		return float64(typed), true
	case int64:
		return float64(typed), true
	case json.Number:
		f, err := typed.Float64()

		return f, err == nil
	default:
		return 0, false
	}
}

// Execute sends the event and succeeds on any 2xx response. Transport errors
// and 5xx responses are retried up to Retry.Attempts times.
func (a *Action) Execute(ctx context.Context, input protocol.ActionInput, logger *slog.Logger) error {
	logger = logger.With("module", "webhook_action", "url", a.URL)

	body, err := json.Marshal(Payload{
		Event:     input.Data["eventType"],
		Data:      input.Data,
		Timestamp: a.clock.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal webhook payload: %w", err)
	}

	var lastErr error

	for attempt := 1; attempt <= a.Retry.Attempts; attempt++ {
		if attempt > 1 {
			logger.InfoContext(ctx, fmt.Sprintf("Webhook retry attempt %d/%d", attempt, a.Retry.Attempts))

			if err := a.wait(ctx); err != nil {
				return err
			}
		}

		status, err := a.send(ctx, body)
		if err != nil {
			lastErr = fmt.Errorf("webhook request failed: %w", err)

			continue
		}

		if status >= 500 && attempt < a.Retry.Attempts {
			lastErr = fmt.Errorf("status %d: %w", status, ErrHTTPServerError)

			continue
		}

		if status < 200 || status > 299 {
			return fmt.Errorf("%w: %d", ErrWebhookStatus, status)
		}

		logger.DebugContext(ctx, "Webhook delivered", "status", status, "attempt", attempt)

		return nil
	}

	return fmt.Errorf("all retry attempts failed, last error: %w", lastErr)
}

func (a *Action) wait(ctx context.Context) error {
	if a.Retry.Delay <= 0 {
		return nil
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-a.clock.After(time.Duration(a.Retry.Delay) * time.Second):
		return nil
	}
}

func (a *Action) send(ctx context.Context, body []byte) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, a.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, a.Method, a.URL, bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("failed to create http request: %w", err)
	}

	for key, value := range a.Headers {
		req.Header.Set(key, value)
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return 0, err
	}

	defer func() {
		_ = resp.Body.Close()
	}()

	_, _ = io.Copy(io.Discard, resp.Body)

	return resp.StatusCode, nil
}
