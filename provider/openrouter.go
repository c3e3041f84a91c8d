package provider

import (
	"context"
	"fmt"
	"iter"
	"strings"

	mcptypes "github.com/mark3labs/mcp-go/mcp"

	"mic/model"
	"mic/ollama"
)

// OpenRouterProvider implements the Provider interface using OpenAI's official Go SDK.
// It connects to OpenRouter's API which is OpenAI-compatible.
type OpenRouterProvider struct {
	core chatCompletions
}

// NewOpenRouterProvider creates a new OpenRouter provider instance.
//
// Parameters:
//   - baseURL: OpenRouter API base URL ("https://openrouter.ai/api/v1")
//   - apiKey: OpenRouter API key (required)
//   - model: Initial model to use, with vendor prefix
func NewOpenRouterProvider(baseURL, apiKey, model string) (*OpenRouterProvider, error) {
	if baseURL == "" {
		baseURL = "https://openrouter.ai/api/v1"
	}
	if apiKey == "" {
		return nil, fmt.Errorf("OpenRouter API key is required")
	}
	if model == "" {
		model = "meta-llama/llama-3.2-90b-instruct"
	}

	core := newChatCompletions("openrouter", baseURL, apiKey, model)
	core.mapName = toolNameForOpenRouter
	core.unmapName = toolNameFromOpenRouter
	return &OpenRouterProvider{core: core}, nil
}

// toolNameForOpenRouter converts dotted tool names to underscore notation.
// OpenRouter requires tool names matching ^[a-zA-Z0-9_-]{1,64}$.
// Example: "filesystem.read_file" → "filesystem__read_file"
func toolNameForOpenRouter(name string) string {
	return strings.ReplaceAll(name, ".", "__")
}

// toolNameFromOpenRouter reverses toolNameForOpenRouter.
func toolNameFromOpenRouter(name string) string {
	return strings.ReplaceAll(name, "__", ".")
}

func (p *OpenRouterProvider) ChatWithTools(ctx context.Context, messages []model.Message, tools []mcptypes.Tool, callback model.StreamCallback) error {
	return p.core.chatWithTools(ctx, messages, tools, callback)
}

func (p *OpenRouterProvider) GetResponse(ctx context.Context, messages []model.Message) (string, error) {
	return p.core.getResponse(ctx, messages)
}

func (p *OpenRouterProvider) StreamResponse(ctx context.Context, messages []model.Message, tools []mcptypes.Tool) iter.Seq[model.Event] {
	return streamEvents(ctx, p, "openrouter", messages, tools)
}

func (p *OpenRouterProvider) ListModels(ctx context.Context) ([]ollama.ModelInfo, error) {
	return p.core.listModels(ctx)
}

// GetModel returns the full model name with vendor prefix for API calls.
// Example: "qwen/qwen3-coder:free"
func (p *OpenRouterProvider) GetModel() string {
	return p.core.model
}

func (p *OpenRouterProvider) SetModel(model string) {
	p.core.model = model
}

func (p *OpenRouterProvider) Ping(ctx context.Context) error {
	return p.core.ping(ctx)
}
