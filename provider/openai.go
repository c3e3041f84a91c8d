package provider

import (
	"context"
	"fmt"
	"iter"

	mcptypes "github.com/mark3labs/mcp-go/mcp"
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"mic/model"
	"mic/ollama"
)

// chatCompletions is the OpenAI-compatible core shared by OpenAIProvider and
// OpenRouterProvider. mapName and unmapName translate tool names for APIs
// with stricter naming rules.
type chatCompletions struct {
	id        string
	client    openai.Client
	model     string
	mapName   func(string) string
	unmapName func(string) string
}

func newChatCompletions(id, baseURL, apiKey, model string) chatCompletions {
	identity := func(s string) string { return s }
	return chatCompletions{
		id: id,
		client: openai.NewClient(
			option.WithBaseURL(baseURL),
			option.WithAPIKey(apiKey),
		),
		model:     model,
		mapName:   identity,
		unmapName: identity,
	}
}

func (c *chatCompletions) params(messages []model.Message, tools []mcptypes.Tool) openai.ChatCompletionNewParams {
	if len(tools) > 0 {
		instruction := model.Message{Role: model.RoleSystem, Content: buildToolInstructions(tools)}
		messages = append([]model.Message{instruction}, messages...)
	}

	params := openai.ChatCompletionNewParams{
		Messages: ConvertToOpenAIMessages(messages),
		Model:    openai.ChatModel(c.model),
	}

	if len(tools) > 0 {
		renamed := make([]mcptypes.Tool, len(tools))
		for i, tool := range tools {
			renamed[i] = tool
			renamed[i].Name = c.mapName(tool.Name)
		}
		params.Tools = ToolsToOpenAI(renamed)
	}
	return params
}

func (c *chatCompletions) chatWithTools(ctx context.Context, messages []model.Message, tools []mcptypes.Tool, callback model.StreamCallback) error {
	stream := c.client.Chat.Completions.NewStreaming(ctx, c.params(messages, tools))
	defer stream.Close()
	acc := openai.ChatCompletionAccumulator{}

	for stream.Next() {
		chunk := stream.Current()
		acc.AddChunk(chunk)

		if tool, ok := acc.JustFinishedToolCall(); ok && callback != nil {
			call := model.ToolCall{
				Name:      c.unmapName(tool.Name),
				Arguments: ParseToolArguments(tool.Arguments),
			}
			if err := callback("", []model.ToolCall{call}); err != nil {
				return err
			}
		}

		if len(chunk.Choices) > 0 && chunk.Choices[0].Delta.Content != "" && callback != nil {
			if err := callback(chunk.Choices[0].Delta.Content, nil); err != nil {
				return err
			}
		}
	}

	if err := stream.Err(); err != nil {
		return fmt.Errorf("%s streaming error: %w", c.id, err)
	}
	return nil
}

func (c *chatCompletions) getResponse(ctx context.Context, messages []model.Message) (string, error) {
	resp, err := c.client.Chat.Completions.New(ctx, c.params(messages, nil))
	if err != nil {
		return "", wrapLLMError(c.id, c.model, err)
	}
	if len(resp.Choices) == 0 {
		return "", wrapLLMError(c.id, c.model, model.ErrEmptyResponse)
	}
	return resp.Choices[0].Message.Content, nil
}

func (c *chatCompletions) listModels(ctx context.Context) ([]ollama.ModelInfo, error) {
	page, err := c.client.Models.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s models: %w", c.id, err)
	}

	result := make([]ollama.ModelInfo, 0, len(page.Data))
	for _, m := range page.Data {
		result = append(result, ollama.ModelInfo{Name: m.ID, Provider: c.id})
	}
	return result, nil
}

func (c *chatCompletions) ping(ctx context.Context) error {
	if _, err := c.client.Models.List(ctx); err != nil {
		return fmt.Errorf("%s ping failed: %w", c.id, err)
	}
	return nil
}

// OpenAIProvider implements the Provider interface using OpenAI's official Go SDK.
type OpenAIProvider struct {
	core chatCompletions
}

// NewOpenAIProvider creates a new OpenAI provider instance.
//
// Parameters:
//   - baseURL: OpenAI API base URL (default: "https://api.openai.com/v1")
//   - apiKey: OpenAI API key (required)
//   - model: Initial model to use (default: "gpt-4o-mini")
//
// Returns an error if the API key is missing.
func NewOpenAIProvider(baseURL, apiKey, model string) (*OpenAIProvider, error) {
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	if apiKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}
	if model == "" {
		model = "gpt-4o-mini"
	}

	return &OpenAIProvider{core: newChatCompletions("openai", baseURL, apiKey, model)}, nil
}

func (p *OpenAIProvider) ChatWithTools(ctx context.Context, messages []model.Message, tools []mcptypes.Tool, callback model.StreamCallback) error {
	return p.core.chatWithTools(ctx, messages, tools, callback)
}

func (p *OpenAIProvider) GetResponse(ctx context.Context, messages []model.Message) (string, error) {
	return p.core.getResponse(ctx, messages)
}

func (p *OpenAIProvider) StreamResponse(ctx context.Context, messages []model.Message, tools []mcptypes.Tool) iter.Seq[model.Event] {
	return streamEvents(ctx, p, "openai", messages, tools)
}

func (p *OpenAIProvider) ListModels(ctx context.Context) ([]ollama.ModelInfo, error) {
	return p.core.listModels(ctx)
}

func (p *OpenAIProvider) GetModel() string {
	return p.core.model
}

func (p *OpenAIProvider) SetModel(model string) {
	p.core.model = model
}

// Ping implements Provider.Ping by attempting to list models.
func (p *OpenAIProvider) Ping(ctx context.Context) error {
	return p.core.ping(ctx)
}
