package config

import (
	"fmt"
	"os"
	"time"
)

type SystemConfig struct {
	DataDirectory string `toml:"data_directory"`
}

type OllamaConfig struct {
	Host         string `toml:"host"`
	DefaultModel string `toml:"default_model"`
}

// ProviderConfig describes one LLM backend entry in [[providers]].
type ProviderConfig struct {
	ID      string `toml:"id"`
	Name    string `toml:"name"`
	BaseURL string `toml:"base_url"`
	Enabled bool   `toml:"enabled"`
}

// PlannerConfig configures the HRM planner call.
type PlannerConfig struct {
	Provider           string   `toml:"provider"`
	Model              string   `toml:"model"`
	TimeoutSeconds     int      `toml:"timeout_seconds"`
	ComputationalTools []string `toml:"computational_tools"`
}

// SupportedModel is one entry of the model registry snapshot.
type SupportedModel struct {
	ID       string `toml:"id"`
	Provider string `toml:"provider"`
}

type ModelsConfig struct {
	Supported []SupportedModel `toml:"supported"`
}

// KeywordConfig is an operator-supplied trigger phrase appended after the
// built-in intent table.
type KeywordConfig struct {
	Phrase string `toml:"phrase"`
	Intent string `toml:"intent"`
}

type IntentsConfig struct {
	Keywords []KeywordConfig `toml:"keywords"`
}

// TaskTemplateConfig declares the slots an intent needs before it can be
// dispatched. Prompts maps slot name to the clarification question.
type TaskTemplateConfig struct {
	Intent   string            `toml:"intent"`
	Required []string          `toml:"required"`
	Optional []string          `toml:"optional"`
	Prompts  map[string]string `toml:"prompts,omitempty"`
}

// MCPServerConfig describes a local MCP server started over stdio.
type MCPServerConfig struct {
	ID      string            `toml:"id"`
	Command string            `toml:"command"`
	Args    []string          `toml:"args"`
	Env     map[string]string `toml:"env,omitempty"`
	Enabled bool              `toml:"enabled"`
}

type MCPConfig struct {
	Servers []MCPServerConfig `toml:"servers"`
}

type UserConfig struct {
	Ollama          OllamaConfig         `toml:"ollama"`
	DefaultProvider string               `toml:"default_provider"`
	SecurityMethod  string               `toml:"security_method"`
	SSHKeyPath      string               `toml:"ssh_key_path,omitempty"`
	Providers       []ProviderConfig     `toml:"providers"`
	Planner         PlannerConfig        `toml:"planner"`
	Models          ModelsConfig         `toml:"models"`
	Intents         IntentsConfig        `toml:"intents"`
	Tasks           []TaskTemplateConfig `toml:"tasks"`
	MCP             MCPConfig            `toml:"mcp"`
}

type Config struct {
	DataDirectory   string
	OllamaHost      string
	DefaultModel    string
	DefaultProvider string
	Providers       []ProviderConfig
	Planner         PlannerConfig
	Models          []SupportedModel
	Keywords        []KeywordConfig
	Tasks           []TaskTemplateConfig
	MCPServers      []MCPServerConfig

	SecurityMethod  SecurityMethod
	SSHKeyPath      string
	CredentialStore *CredentialStore
}

const defaultPlannerTimeout = 60 * time.Second

func (c *Config) OllamaURL() string {
	return c.OllamaHost
}

func (c *Config) Model() string {
	return c.DefaultModel
}

func (c *Config) DataDir() string {
	return ExpandPath(c.DataDirectory)
}

// PlannerTimeout returns the bound placed around a single planner request.
func (c *Config) PlannerTimeout() time.Duration {
	if c.Planner.TimeoutSeconds <= 0 {
		return defaultPlannerTimeout
	}
	return time.Duration(c.Planner.TimeoutSeconds) * time.Second
}

// Provider returns the [[providers]] entry with the given id.
func (c *Config) Provider(id string) (ProviderConfig, bool) {
	for _, p := range c.Providers {
		if p.ID == id {
			return p, true
		}
	}
	return ProviderConfig{}, false
}

func (c *Config) applyUserConfig(u *UserConfig) {
	c.OllamaHost = u.Ollama.Host
	c.DefaultModel = u.Ollama.DefaultModel
	c.DefaultProvider = u.DefaultProvider
	c.Providers = u.Providers
	c.Planner = u.Planner
	c.Models = u.Models.Supported
	c.Keywords = u.Intents.Keywords
	c.Tasks = u.Tasks
	c.MCPServers = u.MCP.Servers
	c.SSHKeyPath = u.SSHKeyPath

	c.SecurityMethod = SecurityMethod(u.SecurityMethod)
	if c.SecurityMethod == "" {
		c.SecurityMethod = SecurityPlainText
	}
	if c.DefaultProvider == "" {
		c.DefaultProvider = "ollama"
	}
}

func (c *Config) applyEnvOverrides() {
	if host := os.Getenv("MIC_OLLAMA_HOST"); host != "" {
		c.OllamaHost = host
	}
	if model := os.Getenv("MIC_OLLAMA_MODEL"); model != "" {
		c.DefaultModel = model
	}
}

// Load reads settings.toml, then <data_dir>/config.toml, then applies
// MIC_* environment overrides. Missing files are created from templates.
func Load() (*Config, error) {
	cfg := &Config{
		DataDirectory: DefaultSystemConfig().DataDirectory,
	}

	if dataDir := os.Getenv("MIC_DATA_DIR"); dataDir != "" {
		cfg.DataDirectory = dataDir
	} else {
		systemCfg, err := LoadSystemConfig()
		if err != nil {
			return nil, fmt.Errorf("failed to load system config: %w", err)
		}
		cfg.DataDirectory = systemCfg.DataDirectory
	}

	dataDir := cfg.DataDir()
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	// Ensure data directory has correct permissions (fix if needed)
	if err := EnsureDataDirPermissions(dataDir); err != nil {
		return nil, fmt.Errorf("failed to set data directory permissions: %w", err)
	}

	userCfg, err := LoadUserConfig(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load user config: %w", err)
	}
	cfg.applyUserConfig(userCfg)
	cfg.applyEnvOverrides()

	store := NewCredentialStore(cfg.SecurityMethod, ExpandPath(cfg.SSHKeyPath))
	if err := store.Load(dataDir); err != nil {
		return nil, fmt.Errorf("failed to load credentials: %w", err)
	}
	cfg.CredentialStore = store

	return cfg, nil
}
