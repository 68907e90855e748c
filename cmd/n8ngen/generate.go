package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dukex/n8ngen/pkg/cmd"
	"github.com/dukex/n8ngen/pkg/export"
	"github.com/dukex/n8ngen/pkg/generator"
	"github.com/dukex/n8ngen/pkg/log"
	"github.com/dukex/n8ngen/pkg/services"
	"github.com/urfave/cli/v3"
)

func NewGenerateCommand() *cli.Command {
	return &cli.Command{
		Name:      "generate",
		Aliases:   []string{"g"},
		Usage:     "Generate a workflow from a request text",
		ArgsUsage: "<request text | - for stdin>",
		Flags: append([]cli.Flag{
			&cli.BoolFlag{
				Name:    "export",
				Aliases: []string{"e"},
				Usage:   "Write the workflow to <workflow name>.json",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Write the workflow to this file name (implies --export)",
			},
			&cli.StringFlag{
				Name:  "export-dir",
				Usage: "Directory for exported files",
				Value: ".",
			},
			&cli.StringFlag{
				Name:    "archive-url",
				Usage:   "Record the generation in this archive (file://, postgres://, redis://)",
				Sources: cli.EnvVars("ARCHIVE_URL"),
			},
			&cli.StringFlag{
				Name:    "event-bus",
				Usage:   "Publish the generation event on this bus (kafka)",
				Sources: cli.EnvVars("EVENT_BUS_TYPE"),
			},
			&cli.StringFlag{
				Name:    "kafka-brokers",
				Usage:   "Comma separated Kafka brokers",
				Sources: cli.EnvVars("KAFKA_BROKERS"),
			},
			&cli.BoolFlag{
				Name:    "otel-enabled",
				Usage:   "Export traces over OTLP/HTTP",
				Sources: cli.EnvVars("OTEL_ENABLED"),
			},
		}, cmd.GeneratorFlags()...),
		Action: runGenerate,
	}
}

func runGenerate(ctx context.Context, command *cli.Command) error {
	log.Setup(command.String("log-level"), command.String("log-format"))

	logger := log.WithModule("n8ngen")

	prompt := strings.Join(command.Args().Slice(), " ")
	if prompt == "" || prompt == "-" {
		data, err := readInput(command, "-")
		if err != nil {
			return err
		}

		prompt = string(data)
	}

	cfg, err := cmd.GeneratorConfigFromCommand(command)
	if err != nil {
		return err
	}

	tracer, shutdown := cmd.NewTracer(ctx, logger, command.Bool("otel-enabled"), "n8ngen")
	defer func() {
		if err := shutdown(ctx); err != nil {
			logger.ErrorContext(ctx, "Failed to shutdown tracer provider", "error", err)
		}
	}()

	gen, err := cmd.NewGenerator(ctx, cfg, logger, tracer)
	if err != nil {
		return fmt.Errorf("failed to create generator: %w", err)
	}

	opts := []services.Option{
		services.WithProviderName(cfg.Provider),
		services.WithExporter(export.New(command.String("export-dir"), log.WithModule("export"))),
	}

	archive, err := cmd.NewArchive(ctx, logger, command.String("archive-url"), 0)
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
	}

	bus, err := cmd.NewEventBus(command.String("event-bus"), command.String("kafka-brokers"), "n8ngen", logger)
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

	result, err := services.NewWorkflow(gen, logger, opts...).Create(ctx, services.CreateRequest{
		Prompt:         prompt,
		Export:         command.Bool("export"),
		ExportFilename: command.String("output"),
	})
	if err != nil {
		return err
	}

	if err := printWorkflow(command, result.Workflow); err != nil {
		return err
	}

	errOut := stderr(command)

	for _, issue := range result.Issues {
		fmt.Fprintf(errOut, "repaired: %s\n", issue)
	}

	if result.ExportPath != "" {
		fmt.Fprintf(errOut, "exported: %s\n", result.ExportPath)
	}

	if result.RecordID != "" {
		fmt.Fprintf(errOut, "recorded: %s\n", result.RecordID)
	}

	if result.Error != nil {
		if generator.IsKind(result.Error, generator.KindCredentialMissing) {
			fmt.Fprintln(errOut, "hint: set OPENAI_API_KEY (or GEMINI_API_KEY) or pass --api-key")
		}

		return fmt.Errorf("%w: %s", ErrGenerationFailed, result.Error.Message)
	}

	return nil
}
