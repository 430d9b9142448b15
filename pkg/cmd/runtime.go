package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/launchflow/launchflow/pkg/eventbus"
	"github.com/launchflow/launchflow/pkg/metrics"
	"github.com/launchflow/launchflow/pkg/persistence"
	"github.com/launchflow/launchflow/pkg/registry"
	"github.com/launchflow/launchflow/pkg/workflow"
	cli "github.com/urfave/cli/v3"
)

// DrainTimeout bounds how long Close waits for in-flight workflow runs.
const DrainTimeout = 30 * time.Second

// CommonFlags are shared by every launchflow binary.
func CommonFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:     "database-url",
			Usage:    "Database connection URL for persistence (postgres:// or a directory)",
			Required: true,
			Sources:  cli.EnvVars("DATABASE_URL"),
		},
		&cli.StringFlag{
			Name:    "event-bus",
			Usage:   "Event bus type (kafka, memory)",
			Value:   "memory",
			Sources: cli.EnvVars("EVENT_BUS_TYPE"),
		},
		&cli.StringSliceFlag{
			Name:    "kafka-brokers",
			Usage:   "Kafka broker addresses",
			Value:   []string{"localhost:9092"},
			Sources: cli.EnvVars("KAFKA_BROKERS"),
		},
		&cli.IntFlag{
			Name:    "concurrency",
			Usage:   "Maximum workflows run in parallel for one event (0 = unbounded)",
			Value:   0,
			Sources: cli.EnvVars("WORKFLOW_CONCURRENCY"),
		},
		&cli.BoolFlag{
			Name:    "otel-enabled",
			Usage:   "Export traces with OTLP/HTTP (configured by OTEL_EXPORTER_OTLP_* variables)",
			Sources: cli.EnvVars("OTEL_ENABLED"),
		},
		&cli.StringFlag{
			Name:    "log-level",
			Usage:   "Log level (debug, info, warn, error)",
			Value:   "info",
			Sources: cli.EnvVars("LOG_LEVEL"),
		},
		&cli.StringFlag{
			Name:    "log-format",
			Usage:   "Log format (text, json)",
			Value:   "text",
			Sources: cli.EnvVars("LOG_FORMAT"),
		},
	}
}

// Runtime holds the components shared by the binaries.
type Runtime struct {
	Persistence persistence.Persistence
	EventBus    eventbus.EventBus
	Registry    *registry.Registry
	Engine      *workflow.Engine

	logger         *slog.Logger
	cancelEngine   context.CancelFunc
	shutdownTracer func(context.Context) error
}

// NewRuntime builds persistence, bus, registry and engine from the common
// flags. Engine runs are not cancelled by ctx; Close drains them.
func NewRuntime(
	ctx context.Context,
	command *cli.Command,
	logger *slog.Logger,
	serviceName string,
	m *metrics.Metrics,
) (*Runtime, error) {
	tracer, shutdownTracer, err := NewTracer(ctx, command.Bool("otel-enabled"), serviceName)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize tracer: %w", err)
	}

	store, err := NewPersistence(ctx, logger, command.String("database-url"))
	if err != nil {
		_ = shutdownTracer(ctx)

		return nil, err
	}

	bus, err := NewEventBus(command.String("event-bus"), command.StringSlice("kafka-brokers"), serviceName, logger)
	if err != nil {
		_ = store.Close(ctx)
		_ = shutdownTracer(ctx)

		return nil, err
	}

	reg := NewRegistry(logger, store, bus)

	engineCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))

	engine := NewEngine(engineCtx, logger, EngineConfig{
		Persistence: store,
		Registry:    reg,
		Publisher:   bus,
		Tracer:      tracer,
		Metrics:     m,
		Concurrency: command.Int("concurrency"),
	})

	return &Runtime{
		Persistence:    store,
		EventBus:       bus,
		Registry:       reg,
		Engine:         engine,
		logger:         logger,
		cancelEngine:   cancel,
		shutdownTracer: shutdownTracer,
	}, nil
}

// Close waits up to DrainTimeout for background runs, then releases the bus,
// the store and the tracer.
func (r *Runtime) Close(ctx context.Context) {
	drainCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), DrainTimeout)
	defer cancel()

	if err := r.Engine.Shutdown(drainCtx); err != nil {
		r.logger.ErrorContext(ctx, "Workflow runs did not drain", "error", err)
	}

	r.cancelEngine()

	if err := r.EventBus.Close(); err != nil {
		r.logger.ErrorContext(ctx, "Failed to close event bus", "error", err)
	}

	if err := r.Persistence.Close(drainCtx); err != nil {
		r.logger.ErrorContext(ctx, "Failed to close persistence", "error", err)
	}

	if err := r.shutdownTracer(drainCtx); err != nil {
		r.logger.ErrorContext(ctx, "Failed to shut down tracer", "error", err)
	}
}
