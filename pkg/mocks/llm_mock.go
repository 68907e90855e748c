package mocks

import (
	"context"

	"github.com/dukex/n8ngen/pkg/llm"
	"github.com/stretchr/testify/mock"
)

// MockProvider is a mock implementation of llm.Provider interface.
type MockProvider struct {
	mock.Mock
}

func (m *MockProvider) Name() string {
	args := m.Called()

	return args.String(0)
}

func (m *MockProvider) Complete(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*llm.CompletionResponse), args.Error(1)
}

// NewMockProvider returns a provider named name that answers every completion with content.
func NewMockProvider(name, content string) *MockProvider {
	provider := &MockProvider{}
	provider.On("Name").Return(name).Maybe()
	provider.On("Complete", mock.Anything, mock.Anything).Return(&llm.CompletionResponse{Content: content}, nil).Maybe()

	return provider
}

// NewFailingProvider returns a provider named name whose completions fail with err.
func NewFailingProvider(name string, err error) *MockProvider {
	provider := &MockProvider{}
	provider.On("Name").Return(name).Maybe()
	provider.On("Complete", mock.Anything, mock.Anything).Return(nil, err).Maybe()

	return provider
}
