package provider

import (
	"context"
	"fmt"

	"mic/config"
	"mic/model"
	"mic/ollama"
)

// PingProvider validates a provider's credentials by creating a throwaway
// instance and calling Ping.
func PingProvider(ctx context.Context, providerID, baseURL, apiKey string) error {
	p, err := NewProvider(Config{
		Type:    MapProviderIDToType(providerID),
		BaseURL: baseURL,
		APIKey:  apiKey,
	})
	if err != nil {
		return fmt.Errorf("failed to create provider: %w", err)
	}

	if err := p.Ping(ctx); err != nil {
		return fmt.Errorf("connection failed: %w", err)
	}

	config.DebugLog.Debugf("[Provider] Provider %s ping successful", providerID)
	return nil
}

// FetchModels lists the models each reachable provider offers. Providers
// that fail are reported in the error map and omitted from the result.
func FetchModels(ctx context.Context, providers map[string]model.Provider) (map[string][]ollama.ModelInfo, map[string]error) {
	models := make(map[string][]ollama.ModelInfo, len(providers))
	failures := make(map[string]error)

	for id, p := range providers {
		list, err := p.ListModels(ctx)
		if err != nil {
			failures[id] = err
			continue
		}
		models[id] = list
		config.DebugLog.Debugf("[Provider] Fetched %d models from provider %s", len(list), id)
	}

	return models, failures
}
