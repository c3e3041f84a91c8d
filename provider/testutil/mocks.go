package testutil

import (
	"context"
	"iter"
	"sync"

	mcptypes "github.com/mark3labs/mcp-go/mcp"

	"mic/model"
	"mic/ollama"
)

// MockProvider implements model.Provider for testing. Every method delegates
// to an overridable Func field; Calls records the messages of each request.
type MockProvider struct {
	GetResponseFunc    func(ctx context.Context, messages []model.Message) (string, error)
	StreamResponseFunc func(ctx context.Context, messages []model.Message, tools []mcptypes.Tool) iter.Seq[model.Event]
	ChatWithToolsFunc  func(ctx context.Context, messages []model.Message, tools []mcptypes.Tool, callback model.StreamCallback) error
	ListModelsFunc     func(ctx context.Context) ([]ollama.ModelInfo, error)
	PingFunc           func(ctx context.Context) error

	mu           sync.Mutex
	currentModel string
	calls        [][]model.Message
}

// NewMockProvider creates a mock provider with default implementations
func NewMockProvider(modelName string) *MockProvider {
	mock := &MockProvider{currentModel: modelName}
	mock.GetResponseFunc = mock.defaultGetResponse
	mock.StreamResponseFunc = mock.defaultStreamResponse
	mock.ChatWithToolsFunc = mock.defaultChatWithTools
	mock.ListModelsFunc = mock.defaultListModels
	mock.PingFunc = mock.defaultPing
	return mock
}

// NewStaticLLM returns a mock whose GetResponse always answers response.
func NewStaticLLM(response string) *MockProvider {
	mock := NewMockProvider("mock-model")
	mock.GetResponseFunc = func(context.Context, []model.Message) (string, error) {
		return response, nil
	}
	return mock
}

// TokenStream yields each chunk as a token event.
func TokenStream(chunks ...string) iter.Seq[model.Event] {
	events := make([]model.Event, len(chunks))
	for i, c := range chunks {
		events[i] = model.TokenEvent(c)
	}
	return EventStream(events...)
}

// EventStream yields events in order and honors early break.
func EventStream(events ...model.Event) iter.Seq[model.Event] {
	return func(yield func(model.Event) bool) {
		for _, e := range events {
			if !yield(e) {
				return
			}
		}
	}
}

func (m *MockProvider) record(messages []model.Message) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, append([]model.Message(nil), messages...))
}

// Calls returns the message lists passed to GetResponse and StreamResponse.
func (m *MockProvider) Calls() [][]model.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([][]model.Message(nil), m.calls...)
}

func (m *MockProvider) defaultGetResponse(ctx context.Context, messages []model.Message) (string, error) {
	return "Mock response", nil
}

func (m *MockProvider) defaultStreamResponse(ctx context.Context, messages []model.Message, tools []mcptypes.Tool) iter.Seq[model.Event] {
	return TokenStream("Mock ", "response")
}

func (m *MockProvider) defaultChatWithTools(ctx context.Context, messages []model.Message, tools []mcptypes.Tool, callback model.StreamCallback) error {
	return callback("Mock response with tools", nil)
}

func (m *MockProvider) defaultListModels(ctx context.Context) ([]ollama.ModelInfo, error) {
	return []ollama.ModelInfo{
		{Name: "mock-model-1", Size: 1000, Provider: "mock"},
		{Name: "mock-model-2", Size: 2000, Provider: "mock"},
	}, nil
}

func (m *MockProvider) defaultPing(ctx context.Context) error {
	return nil
}

func (m *MockProvider) GetResponse(ctx context.Context, messages []model.Message) (string, error) {
	m.record(messages)
	return m.GetResponseFunc(ctx, messages)
}

func (m *MockProvider) StreamResponse(ctx context.Context, messages []model.Message, tools []mcptypes.Tool) iter.Seq[model.Event] {
	m.record(messages)
	return m.StreamResponseFunc(ctx, messages, tools)
}

func (m *MockProvider) ChatWithTools(ctx context.Context, messages []model.Message, tools []mcptypes.Tool, callback model.StreamCallback) error {
	return m.ChatWithToolsFunc(ctx, messages, tools, callback)
}

func (m *MockProvider) ListModels(ctx context.Context) ([]ollama.ModelInfo, error) {
	return m.ListModelsFunc(ctx)
}

func (m *MockProvider) GetModel() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.currentModel
}

func (m *MockProvider) SetModel(model string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.currentModel = model
}

func (m *MockProvider) Ping(ctx context.Context) error {
	return m.PingFunc(ctx)
}
