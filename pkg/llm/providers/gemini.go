package providers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/dukex/n8ngen/pkg/llm"
	"google.golang.org/genai"
)

const (
	GeminiName         = "gemini"
	GeminiDefaultModel = "gemini-2.0-flash"
)

// Gemini uses the Google Gen AI SDK against the Gemini API.
type Gemini struct {
	client  *genai.Client
	model   string
	timeout time.Duration
	logger  *slog.Logger
}

// NewGemini creates a Gemini provider. Without an API key no client is created
// and every completion fails with llm.ErrMissingAPIKey.
func NewGemini(ctx context.Context, apiKey string, cfg Config, logger *slog.Logger) (*Gemini, error) {
	p := &Gemini{
		model:   cfg.Model,
		timeout: cfg.Timeout,
		logger:  logger.With("provider", GeminiName),
	}

	if p.model == "" {
		p.model = GeminiDefaultModel
	}

	if p.timeout <= 0 {
		p.timeout = DefaultTimeout
	}

	if apiKey == "" {
		return p, nil
	}

	clientConfig := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}

	if cfg.BaseURL != "" {
		clientConfig.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}

	client, err := genai.NewClient(ctx, clientConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	p.client = client

	return p, nil
}

func (p *Gemini) Name() string {
	return GeminiName
}

func (p *Gemini) Complete(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	if p.client == nil {
		return nil, &llm.ProviderError{Provider: GeminiName, Err: llm.ErrMissingAPIKey}
	}

	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	model := req.Model
	if model == "" {
		model = p.model
	}

	config := &genai.GenerateContentConfig{}

	if system := req.System(); system != "" {
		config.SystemInstruction = genai.NewContentFromText(system, genai.RoleUser)
	}

	if req.JSONResponse {
		config.ResponseMIMEType = "application/json"
	}

	if req.Temperature != nil {
		temperature := float32(*req.Temperature)
		config.Temperature = &temperature
	}

	var contents []*genai.Content

	for _, m := range req.Messages {
		switch m.Role {
		case llm.MessageRoleSystem:
			continue
		case llm.MessageRoleAssistant:
			contents = append(contents, genai.NewContentFromText(m.Content, genai.RoleModel))
		default:
			contents = append(contents, genai.NewContentFromText(m.Content, genai.RoleUser))
		}
	}

	resp, err := p.client.Models.GenerateContent(ctx, model, contents, config)
	if err != nil {
		providerErr := &llm.ProviderError{Provider: GeminiName, Err: err}

		var apiErr genai.APIError
		if errors.As(err, &apiErr) {
			providerErr.StatusCode = apiErr.Code
			providerErr.Message = apiErr.Message
		}

		return nil, providerErr
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return nil, &llm.ProviderError{Provider: GeminiName, Err: llm.ErrEmptyResponse}
	}

	out := &llm.CompletionResponse{Content: text, Model: model}

	if resp.UsageMetadata != nil {
		out.Usage = llm.TokenUsage{
			PromptTokens:     int(resp.UsageMetadata.PromptTokenCount),
			CompletionTokens: int(resp.UsageMetadata.CandidatesTokenCount),
			TotalTokens:      int(resp.UsageMetadata.TotalTokenCount),
		}
	}

	p.logger.Debug("Completion received", "model", model, "total_tokens", out.Usage.TotalTokens)

	return out, nil
}
