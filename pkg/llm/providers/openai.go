package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/dukex/n8ngen/pkg/llm"
)

const (
	OpenAIName         = "openai"
	OpenAIBaseURL      = "https://api.openai.com/v1"
	OpenAIDefaultModel = "gpt-3.5-turbo-0125"

	// maxErrorBody bounds how much of a failed response body is kept in errors.
	maxErrorBody = 1024
)

// OpenAI talks to an OpenAI-compatible chat completions endpoint.
type OpenAI struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
	logger     *slog.Logger
}

type openAIRequest struct {
	Model          string                `json:"model"`
	Messages       []openAIMessage       `json:"messages"`
	Temperature    *float64              `json:"temperature,omitempty"`
	ResponseFormat *openAIResponseFormat `json:"response_format,omitempty"`
}

type openAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIResponseFormat struct {
	Type string `json:"type"`
}

type openAIResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message openAIMessage `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
	Error *openAIError `json:"error,omitempty"`
}

type openAIError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

// NewOpenAI creates an OpenAI provider. Empty baseURL and model fall back to the defaults.
func NewOpenAI(apiKey string, cfg Config, logger *slog.Logger) *OpenAI {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = OpenAIBaseURL
	}

	model := cfg.Model
	if model == "" {
		model = OpenAIDefaultModel
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &OpenAI{
		apiKey:     apiKey,
		baseURL:    baseURL,
		model:      model,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger.With("provider", OpenAIName),
	}
}

func (p *OpenAI) Name() string {
	return OpenAIName
}

func (p *OpenAI) Complete(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.httpClient.Timeout)
		defer cancel()
	}

	model := req.Model
	if model == "" {
		model = p.model
	}

	body := openAIRequest{
		Model:       model,
		Messages:    make([]openAIMessage, 0, len(req.Messages)),
		Temperature: req.Temperature,
	}

	for _, m := range req.Messages {
		body.Messages = append(body.Messages, openAIMessage{Role: string(m.Role), Content: m.Content})
	}

	if req.JSONResponse {
		body.ResponseFormat = &openAIResponseFormat{Type: "json_object"}
	}

	jsonData, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/chat/completions", bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+p.apiKey)

	started := time.Now()

	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return nil, &llm.ProviderError{Provider: OpenAIName, Message: "request failed", Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &llm.ProviderError{Provider: OpenAIName, StatusCode: resp.StatusCode, Message: "failed to read response", Err: err}
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &llm.ProviderError{
			Provider:   OpenAIName,
			StatusCode: resp.StatusCode,
			Message:    errorMessage(respBody),
		}
	}

	var parsed openAIResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, &llm.ProviderError{Provider: OpenAIName, StatusCode: resp.StatusCode, Message: "failed to parse response", Err: err}
	}

	if parsed.Error != nil {
		return nil, &llm.ProviderError{Provider: OpenAIName, StatusCode: resp.StatusCode, Message: parsed.Error.Message}
	}

	if len(parsed.Choices) == 0 {
		return nil, &llm.ProviderError{Provider: OpenAIName, StatusCode: resp.StatusCode, Err: llm.ErrEmptyResponse}
	}

	p.logger.Debug("Completion received",
		"model", parsed.Model,
		"duration", time.Since(started),
		"total_tokens", parsed.Usage.TotalTokens)

	return &llm.CompletionResponse{
		Content: parsed.Choices[0].Message.Content,
		Model:   parsed.Model,
		Usage: llm.TokenUsage{
			PromptTokens:     parsed.Usage.PromptTokens,
			CompletionTokens: parsed.Usage.CompletionTokens,
			TotalTokens:      parsed.Usage.TotalTokens,
		},
	}, nil
}

// errorMessage extracts error.message from an OpenAI error body, falling back to the raw body.
func errorMessage(body []byte) string {
	var parsed openAIResponse
	if err := json.Unmarshal(body, &parsed); err == nil && parsed.Error != nil && parsed.Error.Message != "" {
		return parsed.Error.Message
	}

	msg := strings.TrimSpace(string(body))
	if len(msg) > maxErrorBody {
		msg = msg[:maxErrorBody]
	}

	return msg
}
