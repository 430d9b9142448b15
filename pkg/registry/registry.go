// Package registry keeps the action factories known to the engine, keyed by
// action type.
package registry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"github.com/launchflow/launchflow/pkg/protocol"
	"github.com/xeipuuv/gojsonschema"
)

var (
	// ErrUnknownActionType is returned when no factory is registered for an action type.
	ErrUnknownActionType = errors.New("Unknown action type") //nolint:stylecheck // surfaced verbatim in execution logs
	// ErrInvalidActionConfig is returned when a config does not match the factory schema.
	ErrInvalidActionConfig = errors.New("invalid action config")
)

type Registry struct {
	logger          *slog.Logger
	mu              sync.RWMutex
	actionFactories map[string]protocol.ActionFactory
}

func NewRegistry(log *slog.Logger) *Registry {
	return &Registry{
		logger:          log.With("module", "registry"),
		actionFactories: make(map[string]protocol.ActionFactory),
	}
}

// RegisterAction adds a factory, replacing any factory with the same ID.
func (r *Registry) RegisterAction(actionFactory protocol.ActionFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.actionFactories[actionFactory.ID()]; exists {
		r.logger.Warn("Replacing registered action factory", "type", actionFactory.ID())
	}

	r.actionFactories[actionFactory.ID()] = actionFactory
}

// Factory returns the factory registered for actionType.
func (r *Registry) Factory(actionType string) (protocol.ActionFactory, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	factory, ok := r.actionFactories[actionType]

	return factory, ok
}

// CreateAction builds an action of actionType from config.
func (r *Registry) CreateAction(
	ctx context.Context,
	actionType string,
	config map[string]any,
) (protocol.Action, error) {
	factory, ok := r.Factory(actionType)
	if !ok {
		return nil, ErrUnknownActionType
	}

	return factory.Create(ctx, config)
}

// ValidateConfig checks config against the schema of the factory for actionType.
func (r *Registry) ValidateConfig(actionType string, config map[string]any) error {
	factory, ok := r.Factory(actionType)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownActionType, actionType)
	}

	if config == nil {
		config = map[string]any{}
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewGoLoader(factory.Schema()),
		gojsonschema.NewGoLoader(config),
	)
	if err != nil {
		return fmt.Errorf("failed to validate %s config: %w", actionType, err)
	}

	if !result.Valid() {
		messages := make([]string, 0, len(result.Errors()))
		for _, resultError := range result.Errors() {
			messages = append(messages, resultError.String())
		}

		return fmt.Errorf("%w: %s: %s", ErrInvalidActionConfig, actionType, strings.Join(messages, "; "))
	}

	return nil
}

// GetAvailableActions returns the registered factories sorted by ID.
func (r *Registry) GetAvailableActions() []protocol.ActionFactory {
	r.mu.RLock()
	defer r.mu.RUnlock()

	factories := make([]protocol.ActionFactory, 0, len(r.actionFactories))
	for _, factory := range r.actionFactories {
		factories = append(factories, factory)
	}

	slices.SortFunc(factories, func(a, b protocol.ActionFactory) int {
		return strings.Compare(a.ID(), b.ID())
	})

	return factories
}
