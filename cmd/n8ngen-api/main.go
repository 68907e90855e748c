package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/dukex/n8ngen/pkg/cmd"
	"github.com/dukex/n8ngen/pkg/export"
	"github.com/dukex/n8ngen/pkg/generator"
	"github.com/dukex/n8ngen/pkg/log"
	"github.com/dukex/n8ngen/pkg/retention"
	"github.com/dukex/n8ngen/pkg/services"
	cli "github.com/urfave/cli/v3"
)

const defaultPort = 5000

func main() {
	command := &cli.Command{
		Name:                  "n8ngen-api",
		Usage:                 "Serve n8n workflow generation over HTTP",
		EnableShellCompletion: true,
		Flags: append([]cli.Flag{
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Port to run the API server on",
				Value:   defaultPort,
				Sources: cli.EnvVars("PORT"),
			},
			&cli.StringFlag{
				Name:    "archive-url",
				Usage:   "Generation archive URL (file://, postgres://, redis://); empty disables the archive",
				Sources: cli.EnvVars("ARCHIVE_URL"),
			},
			&cli.DurationFlag{
				Name:    "archive-ttl",
				Usage:   "Expiry of archived generations (redis only, 0 keeps them forever)",
				Sources: cli.EnvVars("ARCHIVE_TTL"),
			},
			&cli.DurationFlag{
				Name:    "archive-retention",
				Usage:   "Prune archived generations older than this (0 disables pruning)",
				Sources: cli.EnvVars("ARCHIVE_RETENTION"),
			},
			&cli.StringFlag{
				Name:    "retention-schedule",
				Usage:   "Cron schedule of the archive pruning job",
				Value:   retention.DefaultSchedule,
				Sources: cli.EnvVars("ARCHIVE_RETENTION_SCHEDULE"),
			},
			&cli.StringFlag{
				Name:    "event-bus",
				Usage:   "Publish generation events on this bus (gochannel, kafka); empty disables events",
				Sources: cli.EnvVars("EVENT_BUS_TYPE"),
			},
			&cli.StringFlag{
				Name:    "kafka-brokers",
				Usage:   "Comma separated Kafka brokers for the kafka event bus",
				Sources: cli.EnvVars("KAFKA_BROKERS"),
			},
			&cli.StringFlag{
				Name:    "export-dir",
				Usage:   "Directory for exported workflow files; empty disables export",
				Sources: cli.EnvVars("EXPORT_DIR"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Value:   "info",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
			&cli.StringFlag{
				Name:    "log-format",
				Usage:   "Log format (text, json)",
				Value:   "text",
				Sources: cli.EnvVars("LOG_FORMAT"),
			},
			&cli.BoolFlag{
				Name:    "otel-enabled",
				Usage:   "Export traces over OTLP/HTTP",
				Sources: cli.EnvVars("OTEL_ENABLED"),
			},
		}, cmd.GeneratorFlags()...),
		Action: run,
	}

	err := command.Run(context.Background(), os.Args)
	if err != nil {
		panic(err)
	}
}

func run(ctx context.Context, command *cli.Command) error {
	log.Setup(command.String("log-level"), command.String("log-format"))

	logger := log.WithModule("api")

	logger.InfoContext(ctx, "Initializing N8N Workflow Generator API")

	cfg, err := cmd.GeneratorConfigFromCommand(command)
	if err != nil {
		return err
	}

	if !generator.HasCredential(cfg.APIKey) {
		logger.WarnContext(ctx, "API key is not set or is using a placeholder; /generate-workflow will return an error",
			"provider", cfg.Provider)
	}

	tracer, shutdown := cmd.NewTracer(ctx, logger, command.Bool("otel-enabled"), "n8ngen-api")
	defer func() {
		if err := shutdown(ctx); err != nil {
			logger.ErrorContext(ctx, "Failed to shutdown tracer provider", "error", err)
		}
	}()

	gen, err := cmd.NewGenerator(ctx, cfg, logger, tracer)
	if err != nil {
		return fmt.Errorf("failed to create generator: %w", err)
	}

	opts := []services.Option{services.WithProviderName(cfg.Provider)}

	archive, err := cmd.NewArchive(ctx, logger, command.String("archive-url"), command.Duration("archive-ttl"))
	if err != nil {
		return err
	}

	if archive != nil {
		opts = append(opts, services.WithArchive(archive))

		defer func() {
			closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			if err := archive.Close(closeCtx); err != nil {
				logger.ErrorContext(ctx, "Failed to close archive", "error", err)
			}
		}()

		if maxAge := command.Duration("archive-retention"); maxAge > 0 {
			job, err := retention.New(archive, command.String("retention-schedule"), maxAge, logger)
			if err != nil {
				return err
			}

			if err := job.Start(ctx); err != nil {
				return err
			}

			defer func() {
				stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()

				if err := job.Stop(stopCtx); err != nil {
					logger.ErrorContext(ctx, "Failed to stop retention job", "error", err)
				}
			}()
		}
	}

	bus, err := cmd.NewEventBus(command.String("event-bus"), command.String("kafka-brokers"), "n8ngen-api", logger)
	if err != nil {
		return err
	}

	if bus != nil {
		opts = append(opts, services.WithEventPublisher(bus))

		defer func() {
			if err := bus.Close(); err != nil {
				logger.ErrorContext(ctx, "Failed to close event bus", "error", err)
			}
		}()
	}

	if dir := command.String("export-dir"); dir != "" {
		opts = append(opts, services.WithExporter(export.New(dir, log.WithModule("export"))))
	}

	api := NewAPI(logger, services.NewWorkflow(gen, logger, opts...), cfg.APIKey)

	if err := api.Start(command.Int("port")); err != nil {
		logger.ErrorContext(ctx, "Failed to start API server", "error", err)

		return err
	}

	return nil
}
