package model

import (
	"context"
	"iter"

	mcptypes "github.com/mark3labs/mcp-go/mcp"

	"mic/ollama"
)

// LLM is the capability the dispatch core needs from a language model.
//
// GetResponse returns the complete answer. StreamResponse yields token and
// tool_call events; a backend failure ends the sequence with one error
// event. Callers stop early by breaking out of the range loop, which also
// cancels the underlying request.
type LLM interface {
	GetResponse(ctx context.Context, messages []Message) (string, error)
	StreamResponse(ctx context.Context, messages []Message, tools []mcptypes.Tool) iter.Seq[Event]
}

// Provider abstracts LLM provider implementations (Ollama, OpenAI, Anthropic,
// OpenRouter) using provider-agnostic types from the model layer.
//
// This interface is defined in the model package (not provider package) to avoid
// import cycles: provider implementations can import model, and model can use the
// Provider interface without importing the provider package.
type Provider interface {
	LLM

	// ChatWithTools sends messages with available tools and streams responses
	// back via callback. Returning an error from the callback stops the stream.
	ChatWithTools(ctx context.Context, messages []Message, tools []mcptypes.Tool, callback StreamCallback) error

	// ListModels returns available models for this provider.
	ListModels(ctx context.Context) ([]ollama.ModelInfo, error)

	// GetModel returns the currently selected model name used for API calls.
	GetModel() string

	// SetModel changes the active model.
	SetModel(model string)

	// Ping checks if the provider is reachable.
	Ping(ctx context.Context) error
}

// StreamCallback is called for each chunk of streamed response.
type StreamCallback func(chunk string, toolCalls []ToolCall) error
