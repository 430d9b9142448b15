// Package scheduler fires SCHEDULE workflows on their cron schedule.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/launchflow/launchflow/pkg/lock"
	"github.com/launchflow/launchflow/pkg/models"
	"github.com/launchflow/launchflow/pkg/protocol"
	"github.com/robfig/cron/v3"
	"k8s.io/utils/clock"
)

const (
	// DefaultRefreshInterval is how often definitions are reloaded.
	DefaultRefreshInterval = time.Minute

	// tickLockTTL outlives clock skew between replicas firing the same tick.
	tickLockTTL = 5 * time.Minute
)

// Runner executes a single definition. *workflow.Executor implements it.
type Runner interface {
	ExecuteWorkflow(
		ctx context.Context,
		definition *models.WorkflowDefinition,
		triggerData map[string]any,
		triggeredBy string,
	) *models.WorkflowExecutionLog
}

type entry struct {
	spec string
	id   cron.EntryID
}

// Scheduler keeps one cron entry per enabled SCHEDULE workflow. Each firing is
// guarded by a lock keyed on workflow and minute so that only one replica runs it.
type Scheduler struct {
	lookup  protocol.WorkflowLookup
	runner  Runner
	locker  lock.Locker
	logger  *slog.Logger
	clock   clock.PassiveClock
	refresh time.Duration

	cron    *cron.Cron
	mu      sync.Mutex
	entries map[string]entry
	ctx     context.Context
	cancel  context.CancelFunc
}

type Option func(*Scheduler)

func WithClock(clk clock.PassiveClock) Option {
	return func(s *Scheduler) { s.clock = clk }
}

func WithRefreshInterval(interval time.Duration) Option {
	return func(s *Scheduler) { s.refresh = interval }
}

func New(lookup protocol.WorkflowLookup, runner Runner, locker lock.Locker, logger *slog.Logger, opts ...Option) *Scheduler {
	logger = logger.With("module", "scheduler")

	s := &Scheduler{
		lookup:  lookup,
		runner:  runner,
		locker:  locker,
		logger:  logger,
		clock:   clock.RealClock{},
		refresh: DefaultRefreshInterval,
		entries: make(map[string]entry),
	}

	for _, opt := range opts {
		opt(s)
	}

	cronLogger := cron.PrintfLogger(slog.NewLogLogger(logger.Handler(), slog.LevelWarn))
	s.cron = cron.New(cron.WithChain(
		cron.SkipIfStillRunning(cronLogger),
		cron.Recover(cronLogger),
	))

	return s
}

// Start loads the schedules and starts firing them. Runs stop when ctx is
// cancelled or Stop is called.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	s.ctx, s.cancel = context.WithCancel(ctx)
	s.mu.Unlock()

	if err := s.Sync(ctx); err != nil {
		return err
	}

	_, err := s.cron.AddFunc(fmt.Sprintf("@every %s", s.refresh), func() {
		if err := s.Sync(s.runContext()); err != nil {
			s.logger.Error("Failed to refresh schedules", "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("failed to add refresh job: %w", err)
	}

	s.cron.Start()
	s.logger.InfoContext(ctx, "Scheduler started", "refresh_interval", s.refresh)

	return nil
}

// Stop stops firing and waits for running jobs until ctx is done.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	s.mu.Unlock()

	select {
	case <-s.cron.Stop().Done():
		s.logger.InfoContext(ctx, "Scheduler stopped")

		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Scheduler) runContext() context.Context {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ctx == nil {
		return context.Background()
	}

	return s.ctx
}

// Sync reconciles cron entries with the enabled SCHEDULE workflows. Invalid
// schedules are logged and skipped.
func (s *Scheduler) Sync(ctx context.Context) error {
	definitions, err := s.lookup.EnabledWorkflows(ctx)
	if err != nil {
		return fmt.Errorf("failed to load workflows: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	seen := make(map[string]bool)

	for _, definition := range definitions {
		if definition == nil || !definition.Enabled ||
			definition.Trigger.Type != models.TriggerSchedule || definition.Trigger.Schedule == nil {
			continue
		}

		spec, err := definition.Trigger.Schedule.CronExpression()
		if err != nil {
			s.logger.WarnContext(ctx, "Skipping invalid schedule", "workflow_id", definition.ID, "error", err)

			continue
		}

		seen[definition.ID] = true

		if current, ok := s.entries[definition.ID]; ok {
			if current.spec == spec {
				continue
			}

			s.cron.Remove(current.id)
		}

		id, err := s.cron.AddFunc(spec, s.job(definition.ID))
		if err != nil {
			delete(s.entries, definition.ID)
			s.logger.WarnContext(ctx, "Failed to schedule workflow", "workflow_id", definition.ID, "error", err)

			continue
		}

		s.entries[definition.ID] = entry{spec: spec, id: id}
		s.logger.InfoContext(ctx, "Scheduled workflow", "workflow_id", definition.ID, "cron", spec)
	}

	for workflowID, current := range s.entries {
		if !seen[workflowID] {
			s.cron.Remove(current.id)
			delete(s.entries, workflowID)
			s.logger.InfoContext(ctx, "Unscheduled workflow", "workflow_id", workflowID)
		}
	}

	return nil
}

// Scheduled returns the cron spec of every scheduled workflow.
func (s *Scheduler) Scheduled() map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()

	specs := make(map[string]string, len(s.entries))
	for workflowID, current := range s.entries {
		specs[workflowID] = current.spec
	}

	return specs
}

func (s *Scheduler) job(workflowID string) func() {
	return func() {
		s.FireWorkflow(s.runContext(), workflowID)
	}
}

// FireWorkflow reloads the definition at fire time so edits made between
// syncs apply. Only an enabled definition that still has a SCHEDULE trigger
// runs.
func (s *Scheduler) FireWorkflow(ctx context.Context, workflowID string) *models.WorkflowExecutionLog {
	definitions, err := s.lookup.EnabledWorkflows(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to load scheduled workflow", "workflow_id", workflowID, "error", err)

		return nil
	}

	for _, definition := range definitions {
		if definition != nil && definition.ID == workflowID && definition.Trigger.Type == models.TriggerSchedule {
			return s.Fire(ctx, definition, s.clock.Now())
		}
	}

	s.logger.DebugContext(ctx, "Scheduled workflow no longer due", "workflow_id", workflowID)

	return nil
}

// Fire runs definition for the tick at scheduledAt unless another replica
// already took that tick. It returns nil when the tick was skipped.
func (s *Scheduler) Fire(
	ctx context.Context,
	definition *models.WorkflowDefinition,
	scheduledAt time.Time,
) *models.WorkflowExecutionLog {
	tick := scheduledAt.UTC().Truncate(time.Minute)
	key := fmt.Sprintf("schedule:%s:%d", definition.ID, tick.Unix())
	logger := s.logger.With("workflow_id", definition.ID, "scheduled_at", tick)

	acquired, err := s.locker.TryLock(ctx, key, tickLockTTL)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to acquire schedule lock", "error", err)

		return nil
	}

	if !acquired {
		logger.DebugContext(ctx, "Schedule tick taken by another replica")

		return nil
	}

	logger.InfoContext(ctx, "Firing scheduled workflow")

	return s.runner.ExecuteWorkflow(ctx, definition, map[string]any{
		"eventType":   string(models.TriggerSchedule),
		"workflowId":  definition.ID,
		"scheduledAt": tick.Format(time.RFC3339),
	}, "")
}
