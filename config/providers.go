package config

import (
	"errors"
	"fmt"
	"strconv"
)

var ErrUnknownProvider = errors.New("unknown provider")

// KnownProviders lists the backends the provider factory can build.
var KnownProviders = []string{"ollama", "openai", "anthropic", "openrouter"}

// UpdateProviderField changes one provider setting and persists it.
//
// Fields:
//   - all providers: "enabled", "base_url"
//   - ollama: "host" (alias of base_url, kept in sync with [ollama])
//   - cloud providers: "apikey" (stored in the credential store, not config.toml)
func (c *Config) UpdateProviderField(providerID, fieldName, value string) error {
	if !isKnownProvider(providerID) {
		return fmt.Errorf("%w: %s", ErrUnknownProvider, providerID)
	}
	dataDir := c.DataDir()

	if fieldName == "apikey" {
		if providerID == "ollama" {
			return fmt.Errorf("ollama does not use an API key")
		}
		if c.CredentialStore == nil {
			return fmt.Errorf("credential store not loaded")
		}
		if err := c.CredentialStore.Set(providerID, value); err != nil {
			return fmt.Errorf("failed to set API key: %w", err)
		}
		if err := c.CredentialStore.Save(dataDir); err != nil {
			return fmt.Errorf("failed to persist credentials: %w", err)
		}
		return nil
	}

	userCfg, err := LoadUserConfig(dataDir)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	entry := providerEntry(userCfg, providerID)

	switch fieldName {
	case "enabled":
		enabled, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid value for enabled: %q", value)
		}
		entry.Enabled = enabled
	case "host", "base_url":
		if fieldName == "host" && providerID != "ollama" {
			return fmt.Errorf("unknown field for %s: %s", providerID, fieldName)
		}
		entry.BaseURL = value
		if providerID == "ollama" {
			userCfg.Ollama.Host = value
		}
	default:
		return fmt.Errorf("unknown field for %s: %s", providerID, fieldName)
	}

	if err := SaveUserConfig(userCfg, dataDir); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}
	c.applyUserConfig(userCfg)
	c.applyEnvOverrides()
	return nil
}

// providerEntry returns the [[providers]] entry for id, appending one with
// display defaults when the file has none.
func providerEntry(cfg *UserConfig, providerID string) *ProviderConfig {
	for i := range cfg.Providers {
		if cfg.Providers[i].ID == providerID {
			return &cfg.Providers[i]
		}
	}
	cfg.Providers = append(cfg.Providers, ProviderConfig{
		ID:      providerID,
		Name:    ProviderDisplayName(providerID),
		BaseURL: ProviderDefaultBaseURL(providerID),
	})
	return &cfg.Providers[len(cfg.Providers)-1]
}

func isKnownProvider(id string) bool {
	for _, p := range KnownProviders {
		if p == id {
			return true
		}
	}
	return false
}

// ProviderDisplayName returns the display name for a provider
func ProviderDisplayName(providerID string) string {
	switch providerID {
	case "ollama":
		return "Ollama"
	case "openrouter":
		return "OpenRouter"
	case "anthropic":
		return "Anthropic"
	case "openai":
		return "OpenAI"
	default:
		return providerID
	}
}

// ProviderDefaultBaseURL returns the default base URL for a provider
func ProviderDefaultBaseURL(providerID string) string {
	switch providerID {
	case "ollama":
		return "http://localhost:11434"
	case "openrouter":
		return "https://openrouter.ai/api/v1"
	case "anthropic":
		return "https://api.anthropic.com"
	case "openai":
		return "https://api.openai.com/v1"
	default:
		return ""
	}
}
