// Package main provides the launchflow scheduler, which fires SCHEDULE
// workflows on their cron schedule.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/launchflow/launchflow/pkg/cmd"
	"github.com/launchflow/launchflow/pkg/lock"
	redislock "github.com/launchflow/launchflow/pkg/lock/redis"
	"github.com/launchflow/launchflow/pkg/log"
	"github.com/launchflow/launchflow/pkg/metrics"
	"github.com/launchflow/launchflow/pkg/scheduler"
	"github.com/prometheus/client_golang/prometheus"
	cli "github.com/urfave/cli/v3"
)

func main() {
	command := &cli.Command{
		Name:  "launchflow-scheduler",
		Usage: "Fire scheduled workflows",
		Flags: append([]cli.Flag{
			&cli.StringFlag{
				Name:    "redis-url",
				Usage:   "Redis URL for the tick lock shared by scheduler replicas; a process-local lock is used when empty",
				Sources: cli.EnvVars("REDIS_URL"),
			},
			&cli.DurationFlag{
				Name:    "refresh-interval",
				Usage:   "How often workflow definitions are reloaded",
				Value:   scheduler.DefaultRefreshInterval,
				Sources: cli.EnvVars("SCHEDULE_REFRESH_INTERVAL"),
			},
		}, cmd.CommonFlags()...),
		Action: run,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := command.Run(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, command *cli.Command) error {
	log.Setup(command.String("log-level"), command.String("log-format"))

	logger := log.WithModule("scheduler")
	logger.InfoContext(ctx, "Initializing launchflow scheduler")

	locker, closeLocker, err := newLocker(ctx, command.String("redis-url"), logger)
	if err != nil {
		return err
	}
	defer closeLocker()

	runtime, err := cmd.NewRuntime(ctx, command, logger, "launchflow-scheduler", metrics.New(prometheus.DefaultRegisterer))
	if err != nil {
		return err
	}
	defer runtime.Close(ctx)

	s := scheduler.New(runtime.Persistence, runtime.Engine, locker, logger,
		scheduler.WithRefreshInterval(command.Duration("refresh-interval")))

	if err := s.Start(ctx); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}

	<-ctx.Done()
	logger.InfoContext(ctx, "Shutting down scheduler")

	stopCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cmd.DrainTimeout)
	defer cancel()

	return s.Stop(stopCtx)
}

//nolint:ireturn // Redis or local locker
func newLocker(ctx context.Context, redisURL string, logger *slog.Logger) (lock.Locker, func(), error) {
	if redisURL == "" {
		logger.WarnContext(ctx, "REDIS_URL is not set, run a single scheduler replica")

		return lock.NewLocal(nil), func() {}, nil
	}

	client, err := redislock.NewClient(redisURL)
	if err != nil {
		return nil, nil, err
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()

		return nil, nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	locker := redislock.NewLocker(client, "")
	logger.InfoContext(ctx, "Using redis tick lock", "owner", locker.Owner())

	return locker, func() { _ = client.Close() }, nil
}
