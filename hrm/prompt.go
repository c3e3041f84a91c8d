package hrm

import (
	"encoding/json"
	"fmt"
	"strings"

	"mic/tools"
)

// buildSystemPrompt lists the whitelisted tools and the reply format the
// planner must follow to request one.
func buildSystemPrompt(registry *tools.Registry, whitelist []string) string {
	var sb strings.Builder
	sb.WriteString("You are a planner that decides whether a computational tool is needed to answer the user.\n")
	if len(whitelist) == 0 {
		sb.WriteString("No tools are available. Answer the user directly.\n")
		return sb.String()
	}

	sb.WriteString("Available tools:\n")
	for _, name := range whitelist {
		t, _ := registry.Lookup(name)
		fmt.Fprintf(&sb, "- %s: %s\n", name, t.Description())
	}
	sb.WriteString("\nIf one of these tools is needed, reply with only a JSON object of the form ")
	sb.WriteString(`{"tool": "<tool name>", "input": "<input for the tool>"}`)
	sb.WriteString(" and nothing else. Otherwise answer the user directly in plain text.\n")
	return sb.String()
}

// toolRequest is the JSON shape of a planner tool selection.
type toolRequest struct {
	Tool  string          `json:"tool"`
	Input json.RawMessage `json:"input"`
}

// parseToolRequest reports whether response is a well-formed tool request.
// Only a trimmed response delimited by braces is considered.
func parseToolRequest(response string) (toolRequest, bool) {
	s := strings.TrimSpace(response)
	if !strings.HasPrefix(s, "{") || !strings.HasSuffix(s, "}") {
		return toolRequest{}, false
	}
	var req toolRequest
	if err := json.Unmarshal([]byte(s), &req); err != nil {
		return toolRequest{}, false
	}
	req.Tool = strings.TrimSpace(req.Tool)
	if req.Tool == "" {
		return toolRequest{}, false
	}
	return req, true
}

// inputText renders the tool input as the query string. Strings are passed
// through unquoted; any other JSON value is passed as its JSON text.
func (r toolRequest) inputText() string {
	if len(r.Input) == 0 || string(r.Input) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(r.Input, &s); err == nil {
		return s
	}
	return string(r.Input)
}
