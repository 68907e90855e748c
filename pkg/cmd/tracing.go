package cmd

import (
	"context"
	"log/slog"

	"github.com/dukex/n8ngen/pkg/otelhelper"
	"go.opentelemetry.io/otel/trace"
)

// NewTracer returns an OTLP tracer when enabled and a noop tracer otherwise.
// An exporter that cannot be configured degrades to the noop tracer.
//
// nolint:ireturn // Returning interface is intentional for OpenTelemetry tracing
func NewTracer(ctx context.Context, logger *slog.Logger, enabled bool, serviceName string) (trace.Tracer, func(context.Context) error) {
	noopShutdown := func(context.Context) error { return nil }

	if !enabled {
		return otelhelper.NoopTracer(), noopShutdown
	}

	tracer, shutdown, err := otelhelper.NewTracer(ctx, serviceName)
	if err != nil {
		logger.WarnContext(ctx, "Tracing disabled", "error", err)

		return otelhelper.NoopTracer(), noopShutdown
	}

	logger.InfoContext(ctx, "Tracing enabled", "service", serviceName)

	return tracer, shutdown
}
