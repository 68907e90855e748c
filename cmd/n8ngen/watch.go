package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dukex/n8ngen/pkg/cmd"
	"github.com/dukex/n8ngen/pkg/events"
	"github.com/dukex/n8ngen/pkg/log"
	"github.com/urfave/cli/v3"
)

var ErrEventBusRequired = errors.New("--event-bus is required")

func NewWatchCommand() *cli.Command {
	return &cli.Command{
		Name:  "watch",
		Usage: "Print generation events as JSON lines until interrupted",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "event-bus",
				Usage:   "Event bus to consume (kafka)",
				Value:   "kafka",
				Sources: cli.EnvVars("EVENT_BUS_TYPE"),
			},
			&cli.StringFlag{
				Name:    "kafka-brokers",
				Usage:   "Comma separated Kafka brokers",
				Sources: cli.EnvVars("KAFKA_BROKERS"),
			},
			&cli.StringFlag{
				Name:  "consumer-group",
				Usage: "Kafka consumer group",
				Value: "n8ngen-watch",
			},
		},
		Action: runWatch,
	}
}

func runWatch(ctx context.Context, command *cli.Command) error {
	log.Setup(command.String("log-level"), command.String("log-format"))

	logger := log.WithModule("n8ngen")

	bus, err := cmd.NewEventBus(command.String("event-bus"), command.String("kafka-brokers"), command.String("consumer-group"), logger)
	if err != nil {
		return err
	}

	if bus == nil {
		return ErrEventBusRequired
	}

	defer func() {
		if err := bus.Close(); err != nil {
			logger.ErrorContext(ctx, "Failed to close event bus", "error", err)
		}
	}()

	out := json.NewEncoder(stdout(command))

	printEvent := func(_ context.Context, event any) error {
		return out.Encode(event)
	}

	for _, eventType := range []events.EventType{events.WorkflowGeneratedEvent, events.WorkflowGenerationFailedEvent} {
		if err := bus.Handle(eventType, printEvent); err != nil {
			return fmt.Errorf("failed to register handler for %s: %w", eventType, err)
		}
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := bus.Subscribe(ctx); err != nil {
		return fmt.Errorf("failed to subscribe: %w", err)
	}

	logger.InfoContext(ctx, "Watching generation events", "topic", events.Topic)

	<-ctx.Done()

	return nil
}
