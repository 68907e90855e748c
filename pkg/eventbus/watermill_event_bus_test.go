package eventbus_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/dukex/n8ngen/pkg/channels/gochannel"
	"github.com/dukex/n8ngen/pkg/eventbus"
	"github.com/dukex/n8ngen/pkg/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBus(t *testing.T) *eventbus.WatermillEventBus {
	t.Helper()

	pub, sub, err := gochannel.CreateChannel(watermill.NopLogger{})
	require.NoError(t, err)

	bus := eventbus.NewWatermillEventBus(pub, sub)
	t.Cleanup(func() {
		_ = bus.Close()
	})

	return bus
}

func TestWatermillEventBus_PublishSubscribe(t *testing.T) {
	bus := newTestBus(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	received := make(chan *events.WorkflowGenerated, 1)

	require.NoError(t, bus.Handle(events.WorkflowGeneratedEvent, func(_ context.Context, event any) error {
		received <- event.(*events.WorkflowGenerated)

		return nil
	}))
	require.NoError(t, bus.Subscribe(ctx))

	published := events.NewWorkflowGenerated("record-1", "openai", "prompt", "Webhook to Slack", 2, 0)
	require.NoError(t, bus.Publish(ctx, published.RecordID, published))

	select {
	case event := <-received:
		assert.Equal(t, published.ID, event.ID)
		assert.Equal(t, "Webhook to Slack", event.WorkflowName)
		assert.Equal(t, 2, event.NodeCount)
	case <-time.After(5 * time.Second):
		t.Fatal("event not received")
	}
}

func TestWatermillEventBus_UnhandledEventsAreAcked(t *testing.T) {
	pub, sub, err := gochannel.CreateTestChannel(watermill.NopLogger{})
	require.NoError(t, err)

	bus := eventbus.NewWatermillEventBus(pub, sub)
	defer bus.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, bus.Subscribe(ctx))

	done := make(chan error, 1)

	go func() {
		done <- bus.Publish(ctx, "k", events.NewWorkflowGenerationFailed("", "openai", "p", "decode", "boom"))
	}()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("publish blocked, message was not acked")
	}
}

func TestWatermillEventBus_Metadata(t *testing.T) {
	pub, sub, err := gochannel.CreateChannel(watermill.NopLogger{})
	require.NoError(t, err)

	bus := eventbus.NewWatermillEventBus(pub, sub)
	defer bus.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	messages, err := sub.Subscribe(ctx, events.Topic)
	require.NoError(t, err)

	require.NoError(t, bus.Publish(ctx, "record-7", events.NewWorkflowGenerated("record-7", "gemini", "p", "W", 1, 0)))

	var msg *message.Message
	select {
	case msg = <-messages:
	case <-time.After(5 * time.Second):
		t.Fatal("message not received")
	}

	msg.Ack()

	assert.Equal(t, "record-7", msg.Metadata.Get(events.EventMetadataKey))
	assert.Equal(t, string(events.WorkflowGeneratedEvent), msg.Metadata.Get(events.EventTypeMetadataKey))
}

func TestWatermillEventBus_HandlerErrorNacks(t *testing.T) {
	bus := newTestBus(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	calls := make(chan struct{}, 4)

	require.NoError(t, bus.Handle(events.WorkflowGenerationFailedEvent, func(context.Context, any) error {
		select {
		case calls <- struct{}{}:
		default:
		}

		return errors.New("handler failed")
	}))
	require.NoError(t, bus.Subscribe(ctx))

	require.NoError(t, bus.Publish(ctx, "k", events.NewWorkflowGenerationFailed("", "openai", "p", "provider", "boom")))

	select {
	case <-calls:
	case <-time.After(5 * time.Second):
		t.Fatal("handler not called")
	}
}
