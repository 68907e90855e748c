package generator

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/dukex/n8ngen/pkg/ids"
	"github.com/dukex/n8ngen/pkg/llm"
	"github.com/dukex/n8ngen/pkg/mocks"
	"github.com/dukex/n8ngen/pkg/models"
	"github.com/dukex/n8ngen/pkg/repair"
	"github.com/dukex/n8ngen/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestGenerator(provider llm.Provider, apiKey string, opts ...Option) *Generator {
	opts = append([]Option{WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))}, opts...)

	return New(provider, apiKey, opts...)
}

func noteMessage(t *testing.T, w *models.Workflow) string {
	t.Helper()

	require.Len(t, w.Nodes, 1)
	assert.Equal(t, models.NodeTypeStickyNote, w.Nodes[0].Type)

	msg, ok := w.Nodes[0].Parameters["message"].(string)
	require.True(t, ok)

	return msg
}

func assertIdentifiers(t *testing.T, w *models.Workflow) {
	t.Helper()

	require.NoError(t, w.Check())
	assert.True(t, ids.IsID(w.VersionID))
	assert.True(t, ids.IsTimestamp(w.CreatedAt))
	assert.True(t, ids.IsID(w.Nodes[0].ID))
}

func TestGenerate_Success(t *testing.T) {
	expected := testutil.CreateTestWorkflowWithNodes()
	provider := mocks.NewMockProvider("openai", testutil.ToJSON(expected))

	result := newTestGenerator(provider, "sk-test").Generate(context.Background(), "post webhook body to slack")

	require.Nil(t, result.Err)
	assert.Equal(t, StatusSuccess, result.Status())
	assert.Empty(t, result.Issues)
	assert.Equal(t, expected.Name, result.Workflow.Name)
	assert.Equal(t, expected.Connections, result.Workflow.Connections)
	assert.Equal(t, expected.VersionID, result.Workflow.VersionID)
}

func TestGenerate_SendsPrompt(t *testing.T) {
	provider := &mocks.MockProvider{}
	provider.On("Name").Return("openai")
	provider.On("Complete", mock.Anything, mock.MatchedBy(func(req llm.CompletionRequest) bool {
		return req.JSONResponse &&
			req.Model == "gpt-4o" &&
			len(req.Messages) == 2 &&
			req.Messages[0].Role == llm.MessageRoleSystem &&
			req.Messages[0].Content == SystemPrompt &&
			req.Messages[1].Role == llm.MessageRoleUser &&
			req.Messages[1].Content == "every monday send a report"
	})).Return(&llm.CompletionResponse{Content: `{"name": "Weekly report"}`}, nil).Once()

	result := newTestGenerator(provider, "sk-test", WithModel("gpt-4o")).Generate(context.Background(), "every monday send a report")

	require.Nil(t, result.Err)
	assert.Equal(t, "Weekly report", result.Workflow.Name)
	assert.NotEmpty(t, result.Issues)
	provider.AssertExpectations(t)
}

func TestGenerate_AppliesTimeout(t *testing.T) {
	provider := &mocks.MockProvider{}
	provider.On("Name").Return("openai")
	provider.On("Complete", mock.MatchedBy(func(ctx context.Context) bool {
		deadline, ok := ctx.Deadline()

		return ok && time.Until(deadline) <= 5*time.Second
	}), mock.Anything).Return(&llm.CompletionResponse{Content: `{}`}, nil).Once()

	result := newTestGenerator(provider, "sk-test", WithTimeout(5*time.Second)).Generate(context.Background(), "x")

	require.Nil(t, result.Err)
	provider.AssertExpectations(t)
}

func TestGenerate_MissingCredential(t *testing.T) {
	for _, key := range []string{"", "   ", PlaceholderAPIKey} {
		t.Run(key, func(t *testing.T) {
			provider := &mocks.MockProvider{}
			provider.On("Name").Return("openai")

			result := newTestGenerator(provider, key).Generate(context.Background(), "anything")

			require.NotNil(t, result.Err)
			assert.Equal(t, KindCredentialMissing, result.Err.Kind)
			assert.ErrorIs(t, result.Err, ErrCredentialMissing)
			assert.Equal(t, StatusError, result.Status())
			assert.Equal(t, models.MissingKeyWorkflowName, result.Workflow.Name)
			assert.Equal(t, models.MissingKeyNodeName, result.Workflow.Nodes[0].Name)
			assert.Equal(t, "OpenAI API Key is missing. Please configure it.", noteMessage(t, result.Workflow))
			assertIdentifiers(t, result.Workflow)

			provider.AssertNotCalled(t, "Complete", mock.Anything, mock.Anything)
		})
	}
}

func TestGenerate_FailureDocumentIsNotRepaired(t *testing.T) {
	var logs bytes.Buffer

	engine := repair.New(repair.WithLogger(slog.New(slog.NewTextHandler(&logs, nil))))
	provider := mocks.NewFailingProvider("openai", errors.New("connection reset"))

	result := newTestGenerator(provider, "sk-test", WithRepairEngine(engine)).Generate(context.Background(), "x")

	require.NotNil(t, result.Err)
	assertIdentifiers(t, result.Workflow)
	assert.Empty(t, result.Issues)
	assert.NotContains(t, logs.String(), "level=WARN")
}

func TestGenerate_ProviderError(t *testing.T) {
	providerErr := &llm.ProviderError{Provider: "openai", StatusCode: 401, Message: "Incorrect API key provided: sk-secret"}
	provider := mocks.NewFailingProvider("openai", providerErr)

	result := newTestGenerator(provider, "sk-secret").Generate(context.Background(), "x")

	require.NotNil(t, result.Err)
	assert.Equal(t, KindProvider, result.Err.Kind)

	var wrapped *llm.ProviderError
	assert.ErrorAs(t, result.Err, &wrapped)
	assert.Equal(t, models.ErrorWorkflowName, result.Workflow.Name)
	assert.Equal(t, models.ErrorNodeName, result.Workflow.Nodes[0].Name)

	msg := noteMessage(t, result.Workflow)
	assert.True(t, strings.HasPrefix(msg, "OpenAI API Error: "), msg)
	assert.NotContains(t, msg, "sk-secret")
	assert.NotContains(t, result.Err.Message, "sk-secret")
	assertIdentifiers(t, result.Workflow)
}

func TestGenerate_DecodeErrors(t *testing.T) {
	long := `{"name": "` + strings.Repeat("x", 1000)

	tests := []struct {
		name      string
		content   string
		wantInMsg string
	}{
		{name: "empty", content: "  ", wantInMsg: ErrEmptyResponse.Error()},
		{name: "not json", content: "Sure! Here is your workflow", wantInMsg: "Raw response: Sure! Here is your workflow..."},
		{name: "array", content: `[{"name": "A"}]`, wantInMsg: ErrNotObject.Error()},
		{name: "string", content: `"hello"`, wantInMsg: ErrNotObject.Error()},
		{name: "truncated", content: long, wantInMsg: "Raw response: " + long[:500] + "..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider := mocks.NewMockProvider("openai", tt.content)

			result := newTestGenerator(provider, "sk-test").Generate(context.Background(), "x")

			require.NotNil(t, result.Err)
			assert.Equal(t, KindDecode, result.Err.Kind)
			assert.True(t, result.Err.Kind.IsClientFault())
			assert.Equal(t, models.ErrorWorkflowName, result.Workflow.Name)

			msg := noteMessage(t, result.Workflow)
			assert.True(t, strings.HasPrefix(msg, "JSON Parsing Error: "), msg)
			assert.Contains(t, msg, tt.wantInMsg)
			assertIdentifiers(t, result.Workflow)
		})
	}
}

func TestGenerate_ValidationError(t *testing.T) {
	provider := mocks.NewMockProvider("gemini", `{"name": "W", "nodes": ["not a node"]}`)

	result := newTestGenerator(provider, "key").Generate(context.Background(), "x")

	require.NotNil(t, result.Err)
	assert.Equal(t, KindValidation, result.Err.Kind)
	assert.True(t, IsKind(result.Err, KindValidation))
	assert.True(t, strings.HasPrefix(noteMessage(t, result.Workflow), "LLM Response/Validation Error: "))
	assertIdentifiers(t, result.Workflow)
}

func TestGenerate_RecoversPanic(t *testing.T) {
	provider := &mocks.MockProvider{}
	provider.On("Name").Return("openai")
	provider.On("Complete", mock.Anything, mock.Anything).Run(func(mock.Arguments) {
		panic("provider exploded")
	})

	result := newTestGenerator(provider, "sk-test").Generate(context.Background(), "x")

	require.NotNil(t, result.Err)
	assert.Equal(t, KindUnexpected, result.Err.Kind)
	assert.Equal(t, "Unexpected Error: panic: provider exploded", noteMessage(t, result.Workflow))
	assertIdentifiers(t, result.Workflow)
}

func TestGenerate_NoProvider(t *testing.T) {
	result := newTestGenerator(nil, "sk-test").Generate(context.Background(), "x")

	require.NotNil(t, result.Err)
	assert.Equal(t, KindUnexpected, result.Err.Kind)
}

func TestGenerate_RepairsModelOutput(t *testing.T) {
	provider := mocks.NewMockProvider("openai", `{
		"name": "Alerts",
		"nodes": [{"name": "Hook", "type": "n8n-nodes-base.webhook"}, {"name": "Hook"}],
		"connections": {"Hook": {"main": [[{"node": "Missing", "type": "main", "index": 0}]]}}
	}`)

	result := newTestGenerator(provider, "sk-test").Generate(context.Background(), "x")

	require.Nil(t, result.Err)
	require.NoError(t, result.Workflow.Check())
	assert.Equal(t, "Hook_1", result.Workflow.Nodes[1].Name)
	assert.Empty(t, result.Workflow.Connections)
	assert.NotEmpty(t, result.Issues)
}

func TestGenerationError(t *testing.T) {
	err := &GenerationError{Kind: KindProvider, Message: "OpenAI API Error: boom", Err: context.DeadlineExceeded}

	assert.Equal(t, "provider: OpenAI API Error: boom", err.Error())
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.ErrorIs(t, err, &GenerationError{Kind: KindProvider})
	assert.NotErrorIs(t, err, &GenerationError{Kind: KindDecode})
	assert.False(t, IsKind(errors.New("plain"), KindProvider))
	assert.False(t, KindProvider.IsClientFault())
}

func TestHasCredential(t *testing.T) {
	assert.True(t, HasCredential("sk-abc"))
	assert.False(t, HasCredential(""))
	assert.False(t, HasCredential(PlaceholderAPIKey))
}

func TestSystemPromptListsNodeTypes(t *testing.T) {
	assert.Contains(t, SystemPrompt, models.TriggerTypeWebhook)
	assert.Contains(t, SystemPrompt, models.NodeTypeSlack)
	assert.Contains(t, SystemPrompt, `"connections"`)
}
