// Package provider implements model.Provider for each supported LLM backend.
//
// mic supports local Ollama models and cloud APIs (OpenAI, OpenRouter,
// Anthropic) through the common model.Provider interface, so the dispatch
// core, the HRM planner and the tools never see provider-specific types.
//
// # Type Conversions
//
// The provider layer handles all type conversions between mic's
// provider-agnostic types and provider-specific types:
//   - ConvertToOllamaMessages / ConvertToOpenAIMessages / convertToAnthropicMessages
//   - ConvertToProviderToolCalls
//   - ToolsToOllama / ToolsToOpenAI / ToolsToAnthropic (tool definitions)
//
// # Streaming
//
// Every provider implements the callback-style ChatWithTools against its SDK
// and derives model.LLM from it: StreamResponse re-yields callback chunks as
// model.Event values and GetResponse performs a non-streaming request.
//
// # Usage
//
//	p, err := provider.NewProvider(provider.Config{
//	    Type:    provider.ProviderTypeOllama,
//	    BaseURL: "http://localhost:11434",
//	    Model:   "llama3.1",
//	})
//	if err != nil {
//	    // handle error
//	}
//	for ev := range p.StreamResponse(ctx, messages, nil) {
//	    fmt.Print(ev.Content)
//	}
package provider

// ProviderType identifies the provider implementation.
type ProviderType string

const (
	ProviderTypeOllama     ProviderType = "ollama"
	ProviderTypeOpenRouter ProviderType = "openrouter"
	ProviderTypeOpenAI     ProviderType = "openai"
	ProviderTypeAnthropic  ProviderType = "anthropic"
)

// Config holds provider-specific configuration.
type Config struct {
	Type    ProviderType
	BaseURL string
	Model   string
	APIKey  string // unused for Ollama
}
