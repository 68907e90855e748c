// Package providers implements llm.Provider for the supported model services.
package providers

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dukex/n8ngen/pkg/llm"
)

// DefaultTimeout bounds a single completion call.
const DefaultTimeout = 60 * time.Second

// Config holds provider settings shared by every backend.
type Config struct {
	Model   string
	BaseURL string
	Timeout time.Duration
}

// Names lists the provider identifiers accepted by New.
func Names() []string {
	return []string{OpenAIName, GeminiName}
}

// New creates the provider registered under name.
func New(ctx context.Context, name, apiKey string, cfg Config, logger *slog.Logger) (llm.Provider, error) {
	switch name {
	case OpenAIName, "":
		return NewOpenAI(apiKey, cfg, logger), nil
	case GeminiName:
		return NewGemini(ctx, apiKey, cfg, logger)
	default:
		return nil, fmt.Errorf("%w: %s", llm.ErrUnknownProvider, name)
	}
}
