// Package cmd provides common initialization functions for command-line applications.
package cmd

import (
	"log/slog"

	"github.com/launchflow/launchflow/pkg/eventbus"
	"github.com/launchflow/launchflow/pkg/mailer"
	"github.com/launchflow/launchflow/pkg/persistence"
	"github.com/launchflow/launchflow/pkg/registry"
)

// NewRegistry registers the built-in actions against store. Emails go through
// the bus outbox and are delivered by the worker.
func NewRegistry(logger *slog.Logger, store persistence.Persistence, bus eventbus.EventPublisher) *registry.Registry {
	reg := registry.NewRegistry(logger)

	reg.RegisterDefaultActions(registry.Collaborators{
		Emails:        mailer.NewOutboxSender(bus, logger),
		Notifications: store,
		Projects:      store,
		Comments:      store,
	})

	return reg
}
