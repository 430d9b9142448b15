package cmd

import (
	"context"
	"log/slog"

	"github.com/launchflow/launchflow/pkg/eventbus"
	"github.com/launchflow/launchflow/pkg/metrics"
	"github.com/launchflow/launchflow/pkg/otelhelper"
	"github.com/launchflow/launchflow/pkg/persistence"
	"github.com/launchflow/launchflow/pkg/registry"
	"github.com/launchflow/launchflow/pkg/workflow"
	"go.opentelemetry.io/otel/trace"
)

// EngineConfig collects what every binary needs to run workflows.
type EngineConfig struct {
	Persistence persistence.Persistence
	Registry    *registry.Registry
	Publisher   eventbus.EventPublisher
	Tracer      trace.Tracer
	Metrics     *metrics.Metrics
	Concurrency int
}

// NewEngine wires an engine that stores every log and publishes its outcome.
// Cancelling ctx stops background runs.
func NewEngine(ctx context.Context, logger *slog.Logger, config EngineConfig) *workflow.Engine {
	tracer := config.Tracer
	if tracer == nil {
		tracer = otelhelper.NoopTracer()
	}

	dispatcher := workflow.NewActionDispatcher(config.Registry, logger, tracer)

	options := []workflow.ExecutorOption{
		workflow.WithTracer(tracer),
		workflow.WithMetrics(config.Metrics),
		workflow.WithRecorder(config.Persistence),
	}
	if config.Publisher != nil {
		options = append(options, workflow.WithPublisher(config.Publisher))
	}

	executor := workflow.NewExecutor(dispatcher, logger, options...)

	return workflow.NewEngine(ctx, config.Persistence, executor, logger,
		workflow.WithConcurrency(config.Concurrency),
		workflow.WithEngineTracer(tracer),
		workflow.WithEngineMetrics(config.Metrics),
	)
}

// NewTracer returns an OTLP tracer when enabled, otherwise a no-op tracer.
// The returned shutdown function is never nil.
//
//nolint:ireturn // OpenTelemetry tracer
func NewTracer(ctx context.Context, enabled bool, serviceName string) (trace.Tracer, func(context.Context) error, error) {
	if !enabled {
		return otelhelper.NoopTracer(), func(context.Context) error { return nil }, nil
	}

	return otelhelper.NewTracer(ctx, serviceName)
}
