package provider

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/ollama/ollama/api"

	"mic/model"
)

func TestConvertToOllamaMessages(t *testing.T) {
	tests := []struct {
		name     string
		input    []model.Message
		expected []api.Message
	}{
		{
			name:     "empty slice",
			input:    []model.Message{},
			expected: []api.Message{},
		},
		{
			name: "timestamps dropped",
			input: []model.Message{
				{Role: "user", Content: "Hello", Timestamp: time.Now()},
				{Role: "assistant", Content: "Hi there", Timestamp: time.Now()},
			},
			expected: []api.Message{
				{Role: "user", Content: "Hello"},
				{Role: "assistant", Content: "Hi there"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ConvertToOllamaMessages(tt.input)

			if len(result) != len(tt.expected) {
				t.Fatalf("length mismatch: got %d, want %d", len(result), len(tt.expected))
			}
			for i, msg := range result {
				if msg.Role != tt.expected[i].Role {
					t.Errorf("message %d role: got %q, want %q", i, msg.Role, tt.expected[i].Role)
				}
				if msg.Content != tt.expected[i].Content {
					t.Errorf("message %d content: got %q, want %q", i, msg.Content, tt.expected[i].Content)
				}
			}
		})
	}
}

func TestConvertToProviderToolCalls(t *testing.T) {
	if got := ConvertToProviderToolCalls(nil); got != nil {
		t.Errorf("ConvertToProviderToolCalls(nil) = %v, want nil", got)
	}

	got := ConvertToProviderToolCalls([]api.ToolCall{
		{Function: api.ToolCallFunction{
			Name:      "unit_converter",
			Arguments: map[string]any{"query": "5 km to mi"},
		}},
	})
	want := []model.ToolCall{{Name: "unit_converter", Arguments: map[string]any{"query": "5 km to mi"}}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("tool calls mismatch (-want +got):\n%s", diff)
	}
}

func TestParseToolArguments(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  map[string]any
	}{
		{"object", `{"query":"2+2","precision":2}`, map[string]any{"query": "2+2", "precision": float64(2)}},
		{"malformed", `{"query":`, map[string]any{}},
		{"null", `null`, map[string]any{}},
		{"empty", ``, map[string]any{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, ParseToolArguments(tt.input)); diff != "" {
				t.Errorf("ParseToolArguments() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestConvertToOpenAIMessages(t *testing.T) {
	result := ConvertToOpenAIMessages([]model.Message{
		{Role: model.RoleSystem, Content: "plan"},
		{Role: model.RoleUser, Content: "hi"},
		{Role: model.RoleAssistant, Content: "hello"},
		{Role: model.RoleTool, Content: "42"},
	})

	if len(result) != 4 {
		t.Fatalf("len = %d, want 4", len(result))
	}
	if result[0].OfSystem == nil {
		t.Error("message 0 should be a system message")
	}
	if result[2].OfAssistant == nil {
		t.Error("message 2 should be an assistant message")
	}
	if result[3].OfUser == nil {
		t.Error("tool output should be sent as a user message")
	}
}

func TestConvertToAnthropicMessages(t *testing.T) {
	msgs, system := convertToAnthropicMessages([]model.Message{
		{Role: model.RoleSystem, Content: "plan"},
		{Role: model.RoleUser, Content: "hi"},
		{Role: model.RoleAssistant, Content: "hello"},
	})

	if len(system) != 1 || system[0].Text != "plan" {
		t.Errorf("system = %+v", system)
	}
	if len(msgs) != 2 {
		t.Fatalf("len(msgs) = %d, want 2", len(msgs))
	}
	if msgs[1].Role != "assistant" {
		t.Errorf("msgs[1].Role = %q, want assistant", msgs[1].Role)
	}
}
