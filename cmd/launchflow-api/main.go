package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/launchflow/launchflow/pkg/cmd"
	"github.com/launchflow/launchflow/pkg/log"
	"github.com/launchflow/launchflow/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	cli "github.com/urfave/cli/v3"
)

const defaultPort = 9091

func main() {
	command := &cli.Command{
		Name:                  "launchflow-api",
		Usage:                 "Manage workflow definitions and dispatch events over HTTP",
		EnableShellCompletion: true,
		Flags: append([]cli.Flag{
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Port to run the API server on",
				Value:   defaultPort,
				Sources: cli.EnvVars("PORT"),
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

	logger := log.WithModule("api")
	logger.InfoContext(ctx, "Initializing launchflow API")

	runtime, err := cmd.NewRuntime(ctx, command, logger, "launchflow-api", metrics.New(prometheus.DefaultRegisterer))
	if err != nil {
		return err
	}
	defer runtime.Close(ctx)

	api := NewAPI(logger, runtime.Persistence, runtime.Registry, runtime.Engine, prometheus.DefaultGatherer)

	err = api.Start(ctx, command.Int("port"))
	if err != nil {
		return fmt.Errorf("failed to start API server: %w", err)
	}

	return nil
}
