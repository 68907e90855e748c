// Package cmd provides common initialization functions for command-line applications.
package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dukex/n8ngen/pkg/generator"
	"github.com/dukex/n8ngen/pkg/llm/providers"
	"github.com/dukex/n8ngen/pkg/repair"
	"github.com/go-playground/validator/v10"
	"github.com/urfave/cli/v3"
	"go.opentelemetry.io/otel/trace"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// GeneratorConfig holds the settings shared by every binary that talks to the model.
type GeneratorConfig struct {
	Provider string        `validate:"oneof=openai gemini"`
	APIKey   string        `validate:"-"`
	Model    string        `validate:"omitempty,max=128"`
	BaseURL  string        `validate:"omitempty,url"`
	Timeout  time.Duration `validate:"gte=0"`
}

// GeneratorFlags returns the CLI flags read by GeneratorConfigFromCommand.
func GeneratorFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "provider",
			Usage:   "LLM provider (openai or gemini)",
			Value:   providers.OpenAIName,
			Sources: cli.EnvVars("N8NGEN_PROVIDER"),
		},
		&cli.StringFlag{
			Name:    "api-key",
			Usage:   "API key of the LLM provider",
			Sources: cli.EnvVars("OPENAI_API_KEY", "GEMINI_API_KEY"),
		},
		&cli.StringFlag{
			Name:    "model",
			Usage:   "Model name, defaults to the provider's default model",
			Sources: cli.EnvVars("N8NGEN_MODEL"),
		},
		&cli.StringFlag{
			Name:    "llm-base-url",
			Usage:   "Override the provider API base URL",
			Sources: cli.EnvVars("N8NGEN_LLM_BASE_URL"),
		},
		&cli.DurationFlag{
			Name:    "llm-timeout",
			Usage:   "Timeout of a single LLM call",
			Value:   generator.DefaultTimeout,
			Sources: cli.EnvVars("N8NGEN_LLM_TIMEOUT"),
		},
	}
}

// GeneratorConfigFromCommand reads and validates the generator flags.
func GeneratorConfigFromCommand(command *cli.Command) (GeneratorConfig, error) {
	cfg := GeneratorConfig{
		Provider: command.String("provider"),
		APIKey:   command.String("api-key"),
		Model:    command.String("model"),
		BaseURL:  command.String("llm-base-url"),
		Timeout:  command.Duration("llm-timeout"),
	}

	if err := validate.Struct(cfg); err != nil {
		return cfg, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// NewGenerator builds the provider and the generator on top of it.
func NewGenerator(ctx context.Context, cfg GeneratorConfig, logger *slog.Logger, tracer trace.Tracer) (*generator.Generator, error) {
	provider, err := providers.New(ctx, cfg.Provider, cfg.APIKey, providers.Config{
		Model:   cfg.Model,
		BaseURL: cfg.BaseURL,
		Timeout: cfg.Timeout,
	}, logger)
	if err != nil {
		return nil, err
	}

	return generator.New(provider, cfg.APIKey,
		generator.WithModel(cfg.Model),
		generator.WithTimeout(cfg.Timeout),
		generator.WithRepairEngine(repair.New(repair.WithLogger(logger.With("module", "repair")))),
		generator.WithTracer(tracer),
		generator.WithLogger(logger.With("module", "generator")),
	), nil
}
