package provider

import (
	"context"
	"errors"
	"fmt"
	"time"

	"mic/config"
	"mic/model"
	"mic/ollama"
)

var ErrUnknownModel = errors.New("model not supported")

// ModelEntry is one supported model and the provider serving it.
type ModelEntry struct {
	ID       string
	Provider string
}

// preloader is implemented by providers that can warm a model ahead of the
// first request.
type preloader interface {
	Preload(ctx context.Context, modelName string, keepAlive time.Duration) error
}

// ModelRegistry is an immutable snapshot of the supported models. It is safe
// to share between conversations; loading touches only the providers.
type ModelRegistry struct {
	entries   []ModelEntry
	index     map[string]int
	providers map[string]model.Provider
	keepAlive time.Duration
}

// NewModelRegistry builds the snapshot from config. Later duplicates of an
// id are ignored.
func NewModelRegistry(supported []config.SupportedModel, providers map[string]model.Provider) *ModelRegistry {
	r := &ModelRegistry{
		index:     make(map[string]int, len(supported)),
		providers: providers,
		keepAlive: ollama.DefaultKeepAlive,
	}
	for _, m := range supported {
		if _, dup := r.index[m.ID]; dup || m.ID == "" {
			continue
		}
		providerID := m.Provider
		if providerID == "" {
			providerID = "ollama"
		}
		r.index[m.ID] = len(r.entries)
		r.entries = append(r.entries, ModelEntry{ID: m.ID, Provider: providerID})
	}
	return r
}

// Supports reports whether id is in the snapshot.
func (r *ModelRegistry) Supports(id string) bool {
	_, ok := r.index[id]
	return ok
}

// Models returns the entries in declaration order.
func (r *ModelRegistry) Models() []ModelEntry {
	return append([]ModelEntry(nil), r.entries...)
}

// Lookup returns the entry for id.
func (r *ModelRegistry) Lookup(id string) (ModelEntry, bool) {
	i, ok := r.index[id]
	if !ok {
		return ModelEntry{}, false
	}
	return r.entries[i], true
}

func (r *ModelRegistry) providerFor(id string) (model.Provider, error) {
	entry, ok := r.Lookup(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownModel, id)
	}
	p, ok := r.providers[entry.Provider]
	if !ok || p == nil {
		return nil, fmt.Errorf("%w: %s (for model %s)", ErrProviderUnavailable, entry.Provider, id)
	}
	return p, nil
}

// EnsureLoaded makes id ready to serve. Ollama models are preloaded into
// memory; cloud models only need their provider to answer a ping.
func (r *ModelRegistry) EnsureLoaded(ctx context.Context, id string) error {
	p, err := r.providerFor(id)
	if err != nil {
		return err
	}

	if pl, ok := p.(preloader); ok {
		config.DebugLog.Debugf("[ModelRegistry] preloading %s", id)
		return pl.Preload(ctx, id, r.keepAlive)
	}

	if err := p.Ping(ctx); err != nil {
		return fmt.Errorf("failed to reach provider for %s: %w", id, err)
	}
	return nil
}

// Use points the serving provider at id and returns it.
func (r *ModelRegistry) Use(id string) (model.Provider, error) {
	p, err := r.providerFor(id)
	if err != nil {
		return nil, err
	}
	p.SetModel(id)
	return p, nil
}
