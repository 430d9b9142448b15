package kafka_test

import (
	"context"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/launchflow/launchflow/pkg/channels/kafka"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	kafkaTc "github.com/testcontainers/testcontainers-go/modules/kafka"
)

func TestCreateChannel_NoBrokers(t *testing.T) {
	t.Parallel()

	_, _, err := kafka.CreateChannel(watermill.NopLogger{}, "test", nil)
	require.ErrorIs(t, err, kafka.ErrNoBrokers)

	_, _, err = kafka.CreateChannel(watermill.NopLogger{}, "test", []string{""})
	require.ErrorIs(t, err, kafka.ErrNoBrokers)
}

func TestCreateChannel_RoundTrip(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping kafka integration test in short mode")
	}

	ctx := context.Background()

	container, err := kafkaTc.Run(ctx, "confluentinc/confluent-local:7.7.0")
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = container.Terminate(ctx)
	})

	brokers, err := container.Brokers(ctx)
	require.NoError(t, err)

	publisher, subscriber, err := kafka.CreateChannel(watermill.NopLogger{}, "test", brokers)
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = publisher.Close()
		_ = subscriber.Close()
	})

	subCtx, cancel := context.WithTimeout(ctx, time.Minute)
	defer cancel()

	messages, err := subscriber.Subscribe(subCtx, "launchflow.test")
	require.NoError(t, err)

	require.NoError(t, publisher.Publish("launchflow.test", message.NewMessage("m-1", []byte(`{"ok":true}`))))

	select {
	case msg := <-messages:
		assert.JSONEq(t, `{"ok":true}`, string(msg.Payload))
		msg.Ack()
	case <-subCtx.Done():
		t.Fatal("message was not consumed")
	}
}
