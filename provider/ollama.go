package provider

import (
	"context"
	"fmt"
	"iter"
	"time"

	mcptypes "github.com/mark3labs/mcp-go/mcp"
	"github.com/ollama/ollama/api"

	"mic/config"
	"mic/model"
	"mic/ollama"
)

// OllamaProvider wraps ollama.Client to implement the Provider interface.
//
// This provider handles all type conversions between mic's provider-agnostic
// types and Ollama's API types. It converts model.Message to api.Message,
// mcptypes.Tool to api.Tool, and api.ToolCall to model.ToolCall.
type OllamaProvider struct {
	client *ollama.Client
}

// NewOllamaProvider creates a new Ollama provider instance.
//
// Parameters:
//   - baseURL: The Ollama server URL (e.g., "http://localhost:11434").
//     If empty, defaults to "http://localhost:11434".
//   - model: The model name to use (e.g., "llama3.1:latest").
//     If empty, defaults to "llama3.1:latest".
//
// Returns an error if the baseURL is invalid.
//
// Example:
//
//	p, err := NewOllamaProvider("http://localhost:11434", "llama3.1")
//	if err != nil {
//	    log.Fatal(err)
//	}
func NewOllamaProvider(baseURL, model string) (*OllamaProvider, error) {
	client, err := ollama.NewClient(baseURL, model)
	if err != nil {
		return nil, fmt.Errorf("failed to create Ollama client: %w", err)
	}

	return &OllamaProvider{client: client}, nil
}

// ChatWithTools implements Provider.ChatWithTools with type conversions.
//
// Tool definitions are only attached when the current model family is known
// to support Ollama's tool API; other models would reject the request.
func (p *OllamaProvider) ChatWithTools(ctx context.Context, messages []model.Message, tools []mcptypes.Tool, callback model.StreamCallback) error {
	var ollamaTools []api.Tool
	if len(tools) > 0 {
		if ollama.ModelSupportsToolCalling(p.client.GetModel()) {
			ollamaTools = ToolsToOllama(tools)
		} else {
			config.DebugLog.Debugf("[Ollama] model %s has no tool support, dropping %d tool definitions", p.client.GetModel(), len(tools))
		}
	}

	ollamaCallback := func(chunk string, ollamaCalls []api.ToolCall) error {
		if callback == nil {
			return nil
		}
		return callback(chunk, ConvertToProviderToolCalls(ollamaCalls))
	}

	return p.client.ChatWithTools(ctx, ConvertToOllamaMessages(messages), ollamaTools, ollamaCallback)
}

// GetResponse implements model.LLM with a non-streaming chat request.
//
// Example:
//
//	answer, err := p.GetResponse(ctx, []model.Message{{Role: "user", Content: "2+2?"}})
func (p *OllamaProvider) GetResponse(ctx context.Context, messages []model.Message) (string, error) {
	text, err := p.client.Complete(ctx, ConvertToOllamaMessages(messages))
	if err != nil {
		return "", wrapLLMError("ollama", p.GetModel(), err)
	}
	return text, nil
}

// StreamResponse implements model.LLM over ChatWithTools.
func (p *OllamaProvider) StreamResponse(ctx context.Context, messages []model.Message, tools []mcptypes.Tool) iter.Seq[model.Event] {
	return streamEvents(ctx, p, "ollama", messages, tools)
}

// ListModels returns the models installed on the Ollama server.
func (p *OllamaProvider) ListModels(ctx context.Context) ([]ollama.ModelInfo, error) {
	return p.client.ListModels(ctx)
}

func (p *OllamaProvider) GetModel() string {
	return p.client.GetModel()
}

func (p *OllamaProvider) SetModel(model string) {
	p.client.SetModel(model)
}

// Ping checks if the Ollama server is reachable within five seconds.
func (p *OllamaProvider) Ping(ctx context.Context) error {
	return p.client.Ping(ctx)
}

// Preload loads modelName into server memory so the first request does not
// pay the load cost.
func (p *OllamaProvider) Preload(ctx context.Context, modelName string, keepAlive time.Duration) error {
	return p.client.Preload(ctx, modelName, keepAlive)
}
