package webhook

import (
	"context"
	"net/http"

	"github.com/launchflow/launchflow/pkg/models"
	"github.com/launchflow/launchflow/pkg/protocol"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"k8s.io/utils/clock"
)

// ActionFactory creates SEND_WEBHOOK actions sharing one HTTP client.
type ActionFactory struct {
	client protocol.HTTPDoer
	clock  clock.Clock
}

// NewActionFactory uses client when given, otherwise an http.Client with a
// traced transport.
func NewActionFactory(client protocol.HTTPDoer, clk clock.Clock) *ActionFactory {
	if client == nil {
		client = &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)}
	}

	if clk == nil {
		clk = clock.RealClock{}
	}

	return &ActionFactory{client: client, clock: clk}
}

func (f *ActionFactory) Create(_ context.Context, config map[string]any) (protocol.Action, error) {
	return NewAction(f.client, f.clock, config)
}

func (f *ActionFactory) ID() string {
	return string(models.ActionSendWebhook)
}

func (f *ActionFactory) Name() string {
	return "Send webhook"
}

func (f *ActionFactory) Description() string {
	return "Posts the triggering event as JSON to an external URL."
}

func (f *ActionFactory) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"url": map[string]any{
				"title":       "URL",
				"type":        "string",
				"description": "The URL to send the event to. Supports {{path}} tokens.",
				"examples": []string{
					"https://hooks.example.com/launch",
					"https://hooks.example.com/projects/{{projectId}}",
				},
			},
			"method": map[string]any{
				"type":        "string",
				"description": "HTTP method to use",
				"default":     "POST",
				"enum":        []string{"GET", "POST", "PUT", "DELETE", "PATCH"},
			},
			"headers": map[string]any{
				"type":        "object",
				"description": "Extra HTTP headers. Content-Type defaults to application/json.",
				"additionalProperties": map[string]any{
					"type": "string",
				},
			},
			"timeout": map[string]any{
				"type":        "number",
				"description": "Request timeout in seconds",
				"default":     defaultTimeoutSeconds,
				"minimum":     0,
			},
			"retry": map[string]any{
				"type":        "object",
				"description": "Retry configuration for 5xx responses and transport errors",
				"properties": map[string]any{
					"attempts": map[string]any{
						"type":        "integer",
						"description": "Total number of attempts",
						"default":     1,
						"minimum":     1,
						"maximum":     10, //nolint:mnd // schema bound
					},
					"delay": map[string]any{
						"type":        "integer",
						"description": "Delay between attempts in seconds",
						"default":     0,
						"minimum":     0,
					},
				},
			},
		},
		"required": []string{"url"},
	}
}
