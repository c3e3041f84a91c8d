package testutil

import (
	"time"

	mcptypes "github.com/mark3labs/mcp-go/mcp"

	"mic/model"
)

// TestMessages returns a sample conversation for testing
func TestMessages() []model.Message {
	return []model.Message{
		{Role: model.RoleUser, Content: "Hello, how are you?", Timestamp: time.Now()},
		{Role: model.RoleAssistant, Content: "I'm doing well, thank you!", Timestamp: time.Now()},
		{Role: model.RoleUser, Content: "What is 12 * 7?", Timestamp: time.Now()},
	}
}

// SingleUserMessage returns a single user message for simple tests
func SingleUserMessage(content string) []model.Message {
	return []model.Message{
		{Role: model.RoleUser, Content: content, Timestamp: time.Now()},
	}
}

func queryTool(name, description string) mcptypes.Tool {
	return mcptypes.Tool{
		Name:        name,
		Description: description,
		InputSchema: mcptypes.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"query": map[string]any{
					"type":        "string",
					"description": "Free-text input for the tool",
				},
			},
			Required: []string{"query"},
		},
	}
}

// TestMCPTools returns sample tool definitions for testing
func TestMCPTools() []mcptypes.Tool {
	return []mcptypes.Tool{
		queryTool("unit_converter", "Convert a value between units, e.g. '5 km to mi'"),
		queryTool("math_problem_solver", "Evaluate an arithmetic expression"),
	}
}
