// Package llm defines the provider-agnostic interface used to ask a language
// model for a workflow document.
package llm

import "context"

// Provider is a language model backend.
type Provider interface {
	// Name returns the provider identifier ("openai", "gemini").
	Name() string

	// Complete sends the conversation and returns the model's text reply.
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)
}

// CompletionRequest is one non-streaming completion call.
type CompletionRequest struct {
	Messages []Message

	// Model overrides the provider default when set.
	Model string

	// JSONResponse asks the provider to constrain output to a JSON object.
	JSONResponse bool

	Temperature *float64
}

// Message is a single conversation turn.
type Message struct {
	Role    MessageRole
	Content string
}

// MessageRole identifies the sender of a message.
type MessageRole string

const (
	MessageRoleSystem    MessageRole = "system"
	MessageRoleUser      MessageRole = "user"
	MessageRoleAssistant MessageRole = "assistant"
)

// CompletionResponse is the model's reply.
type CompletionResponse struct {
	Content string

	// Model is the model that served the request, as reported by the provider.
	Model string

	Usage TokenUsage
}

// TokenUsage reports token consumption when the provider returns it.
type TokenUsage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// System returns the content of the first system message.
func (r CompletionRequest) System() string {
	for _, m := range r.Messages {
		if m.Role == MessageRoleSystem {
			return m.Content
		}
	}

	return ""
}
