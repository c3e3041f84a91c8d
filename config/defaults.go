package config

// DefaultComputationalTools is the planner whitelist used when [planner]
// does not name one.
var DefaultComputationalTools = []string{
	"math_problem_solver",
	"unit_converter",
	"convert_timezone",
	"generate_password",
}

func DefaultSystemConfig() *SystemConfig {
	return &SystemConfig{
		DataDirectory: "~/.local/share/mic",
	}
}

func DefaultUserConfig() *UserConfig {
	return &UserConfig{
		Ollama: OllamaConfig{
			Host:         "http://localhost:11434",
			DefaultModel: "llama3.1:latest",
		},
		DefaultProvider: "ollama",
		SecurityMethod:  string(SecurityPlainText),
		Providers: []ProviderConfig{
			{ID: "ollama", Name: "Ollama", BaseURL: "http://localhost:11434", Enabled: true},
			{ID: "openai", Name: "OpenAI", BaseURL: "https://api.openai.com/v1", Enabled: false},
			{ID: "anthropic", Name: "Anthropic", BaseURL: "https://api.anthropic.com", Enabled: false},
			{ID: "openrouter", Name: "OpenRouter", BaseURL: "https://openrouter.ai/api/v1", Enabled: false},
		},
		Planner: PlannerConfig{
			TimeoutSeconds:     60,
			ComputationalTools: append([]string(nil), DefaultComputationalTools...),
		},
		Models: ModelsConfig{
			Supported: []SupportedModel{
				{ID: "llama3.1:latest", Provider: "ollama"},
				{ID: "qwen2.5:0.5b", Provider: "ollama"},
				{ID: "deepseek-coder:1.3b", Provider: "ollama"},
				{ID: "gpt-4o-mini", Provider: "openai"},
				{ID: "claude-sonnet-4-5", Provider: "anthropic"},
			},
		},
		Tasks: []TaskTemplateConfig{
			{
				Intent:   "schedule_meeting",
				Required: []string{"date", "time"},
				Optional: []string{"title", "attendees"},
				Prompts: map[string]string{
					"date": "What date should the meeting be on?",
					"time": "What time should the meeting start?",
				},
			},
			{
				Intent:   "plan_travel",
				Required: []string{"destination", "date"},
				Optional: []string{"budget"},
				Prompts: map[string]string{
					"destination": "Where would you like to travel?",
					"date":        "When are you planning to leave?",
				},
			},
		},
	}
}

func GenerateSystemConfigTemplate() string {
	return `# mic System Configuration
# Location: ~/.config/mic/settings.toml
# This file uses TOML format: https://toml.io

# Directory where sessions, records and user config are stored
data_directory = "~/.local/share/mic"
`
}

func GenerateUserConfigTemplate() string {
	return `# mic User Configuration
# Location: <data_directory>/config.toml
# This file uses TOML format: https://toml.io

# Provider used for chat and code tools: ollama, openai, anthropic, openrouter
default_provider = "ollama"

# How API keys are stored: "plaintext" or "ssh_key"
security_method = "plaintext"
# ssh_key_path = "~/.ssh/id_ed25519"

[ollama]
host = "http://localhost:11434"
default_model = "llama3.1:latest"

[[providers]]
id = "ollama"
name = "Ollama"
base_url = "http://localhost:11434"
enabled = true

[[providers]]
id = "openai"
name = "OpenAI"
base_url = "https://api.openai.com/v1"
enabled = false

[[providers]]
id = "anthropic"
name = "Anthropic"
base_url = "https://api.anthropic.com"
enabled = false

[[providers]]
id = "openrouter"
name = "OpenRouter"
base_url = "https://openrouter.ai/api/v1"
enabled = false

[planner]
# Provider and model for the HRM planner (empty = default provider/model)
provider = ""
model = ""
timeout_seconds = 60
computational_tools = ["math_problem_solver", "unit_converter", "convert_timezone", "generate_password"]

[models]
supported = [
  { id = "llama3.1:latest", provider = "ollama" },
  { id = "qwen2.5:0.5b", provider = "ollama" },
  { id = "deepseek-coder:1.3b", provider = "ollama" },
  { id = "gpt-4o-mini", provider = "openai" },
  { id = "claude-sonnet-4-5", provider = "anthropic" },
]

# Extra trigger phrases, matched after the built-in table
# [[intents.keywords]]
# phrase = "remind me"
# intent = "set_reminder"

[[tasks]]
intent = "schedule_meeting"
required = ["date", "time"]
optional = ["title", "attendees"]
prompts = { date = "What date should the meeting be on?", time = "What time should the meeting start?" }

[[tasks]]
intent = "plan_travel"
required = ["destination", "date"]
optional = ["budget"]
prompts = { destination = "Where would you like to travel?", date = "When are you planning to leave?" }

# Local MCP servers exposed as tools
# [[mcp.servers]]
# id = "filesystem"
# command = "npx"
# args = ["-y", "@modelcontextprotocol/server-filesystem", "/tmp"]
# enabled = true
`
}
