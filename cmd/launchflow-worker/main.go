package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/launchflow/launchflow/pkg/cmd"
	"github.com/launchflow/launchflow/pkg/log"
	"github.com/launchflow/launchflow/pkg/mailer"
	"github.com/launchflow/launchflow/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	cli "github.com/urfave/cli/v3"
)

func main() {
	command := &cli.Command{
		Name:  "launchflow-worker",
		Usage: "Run workflows for domain events and deliver workflow emails",
		Flags: append([]cli.Flag{
			&cli.StringFlag{
				Name:    "smtp-host",
				Usage:   "SMTP server host; email delivery is disabled when empty",
				Sources: cli.EnvVars("SMTP_HOST"),
			},
			&cli.IntFlag{
				Name:    "smtp-port",
				Usage:   "SMTP server port",
				Value:   587,
				Sources: cli.EnvVars("SMTP_PORT"),
			},
			&cli.StringFlag{
				Name:    "smtp-username",
				Usage:   "SMTP username",
				Sources: cli.EnvVars("SMTP_USERNAME"),
			},
			&cli.StringFlag{
				Name:    "smtp-password",
				Usage:   "SMTP password",
				Sources: cli.EnvVars("SMTP_PASSWORD"),
			},
			&cli.StringFlag{
				Name:    "smtp-from",
				Usage:   "Sender address of workflow emails",
				Value:   "launchflow@localhost",
				Sources: cli.EnvVars("SMTP_FROM"),
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

	logger := log.WithModule("worker")
	logger.InfoContext(ctx, "Initializing launchflow worker")

	runtime, err := cmd.NewRuntime(ctx, command, logger, "launchflow-worker", metrics.New(prometheus.DefaultRegisterer))
	if err != nil {
		return err
	}
	defer runtime.Close(ctx)

	if host := command.String("smtp-host"); host != "" {
		deliverer := mailer.NewSMTPDeliverer(mailer.SMTPConfig{
			Host:     host,
			Port:     command.Int("smtp-port"),
			Username: command.String("smtp-username"),
			Password: command.String("smtp-password"),
			From:     command.String("smtp-from"),
		}, logger)

		if err := deliverer.Register(runtime.EventBus); err != nil {
			return fmt.Errorf("failed to register email delivery: %w", err)
		}
	} else {
		logger.WarnContext(ctx, "SMTP_HOST is not set, queued emails will not be delivered")
	}

	worker := NewWorker(runtime.EventBus, runtime.Engine, logger)
	if err := worker.Start(ctx); err != nil {
		return err
	}

	<-ctx.Done()
	logger.InfoContext(ctx, "Shutting down worker")

	return nil
}
