package cmd

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/launchflow/launchflow/pkg/channels/gochannel"
	"github.com/launchflow/launchflow/pkg/channels/kafka"
	"github.com/launchflow/launchflow/pkg/eventbus"
)

// ErrUnsupportedEventBus is returned for an unknown EVENT_BUS_TYPE.
var ErrUnsupportedEventBus = errors.New("unsupported event bus provider")

// NewEventBus creates the bus named by provider. Kafka consumers join the
// consumer group of serviceName; "memory" keeps events inside the process.
func NewEventBus(provider string, brokers []string, serviceName string, logger *slog.Logger) (eventbus.EventBus, error) {
	watermillLogger := watermill.NewSlogLogger(logger)

	switch provider {
	case "kafka":
		pub, sub, err := kafka.CreateChannel(watermillLogger, serviceName, brokers)
		if err != nil {
			return nil, fmt.Errorf("failed to create Kafka pub/sub: %w", err)
		}

		return eventbus.NewWatermillEventBus(logger, pub, sub), nil
	case "memory", "gochannel", "":
		pub, sub, err := gochannel.CreateChannel(watermillLogger)
		if err != nil {
			return nil, fmt.Errorf("failed to create in-memory pub/sub: %w", err)
		}

		return eventbus.NewWatermillEventBus(logger, pub, sub), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedEventBus, provider)
	}
}
