package provider

import (
	"errors"
	"fmt"

	"mic/config"
	"mic/model"
)

var ErrProviderUnavailable = errors.New("provider not available")

// InitializeProviders creates every configured provider instance.
//
// Ollama is always attempted with the [ollama] host and default model. Cloud
// providers are created when enabled, with API keys from the credential
// store. Failures are logged and skipped so the CLI still starts offline.
//
// Example:
//
//	providers := provider.InitializeProviders(cfg)
//	// providers = {"ollama": ..., "anthropic": ...}
func InitializeProviders(cfg *config.Config) map[string]model.Provider {
	providers := make(map[string]model.Provider)

	if p, err := NewProvider(Config{Type: ProviderTypeOllama, BaseURL: cfg.OllamaURL(), Model: cfg.Model()}); err == nil {
		providers["ollama"] = p
		config.DebugLog.Debugf("[Provider] Initialized Ollama provider (%s)", cfg.OllamaURL())
	} else {
		config.DebugLog.Warnf("[Provider] Ollama provider creation failed: %v", err)
	}

	for _, providerCfg := range cfg.Providers {
		if !providerCfg.Enabled || providerCfg.ID == "ollama" {
			continue
		}

		p, err := newConfigured(cfg, providerCfg, "")
		if err != nil {
			config.DebugLog.Warnf("[Provider] failed to initialize provider %s: %v", providerCfg.ID, err)
			continue
		}

		providers[providerCfg.ID] = p
		config.DebugLog.Debugf("[Provider] Initialized provider: %s", providerCfg.ID)
	}

	return providers
}

func newConfigured(cfg *config.Config, providerCfg config.ProviderConfig, modelName string) (model.Provider, error) {
	apiKey := ""
	if cfg.CredentialStore != nil {
		apiKey = cfg.CredentialStore.Get(providerCfg.ID)
	}
	baseURL := providerCfg.BaseURL
	if providerCfg.ID == "ollama" {
		baseURL = cfg.OllamaURL()
	}
	return NewProvider(Config{
		Type:    MapProviderIDToType(providerCfg.ID),
		BaseURL: baseURL,
		APIKey:  apiKey,
		Model:   modelName,
	})
}

// Default returns the provider named by default_provider.
func Default(cfg *config.Config, providers map[string]model.Provider) (model.Provider, error) {
	p, ok := providers[cfg.DefaultProvider]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrProviderUnavailable, cfg.DefaultProvider)
	}
	return p, nil
}

// NewPlannerLLM builds the LLM used for HRM planning. With no [planner]
// overrides it is the default provider; otherwise a dedicated instance is
// created so switching the chat model does not move the planner.
func NewPlannerLLM(cfg *config.Config, providers map[string]model.Provider) (model.LLM, error) {
	providerID := cfg.Planner.Provider
	if providerID == "" {
		providerID = cfg.DefaultProvider
	}

	if cfg.Planner.Model == "" {
		p, ok := providers[providerID]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrProviderUnavailable, providerID)
		}
		return p, nil
	}

	providerCfg, ok := cfg.Provider(providerID)
	if !ok {
		providerCfg = config.ProviderConfig{ID: providerID, BaseURL: config.ProviderDefaultBaseURL(providerID)}
	}
	p, err := newConfigured(cfg, providerCfg, cfg.Planner.Model)
	if err != nil {
		return nil, fmt.Errorf("failed to create planner provider %s: %w", providerID, err)
	}
	return p, nil
}
