package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"strings"

	mcptypes "github.com/mark3labs/mcp-go/mcp"

	"mic/config"
	"mic/tools"
)

var ErrToolFailed = errors.New("mcp tool reported an error")

// ToolSource exposes the tools of running MCP servers to the registry.
type ToolSource struct {
	pm *ProcessManager
}

func NewToolSource(pm *ProcessManager) *ToolSource {
	return &ToolSource{pm: pm}
}

// Tools returns every listed tool under its MCP name. When two servers list
// the same name the server that sorts first keeps it.
func (s *ToolSource) Tools() map[string]tools.Tool {
	out := map[string]tools.Tool{}
	for _, id := range s.pm.ServerIDs() {
		proc, err := s.pm.server(id)
		if err != nil {
			continue
		}
		for _, def := range proc.Tools {
			if _, taken := out[def.Name]; taken {
				config.DebugLog.Warnf("[MCP] %s: tool %s already provided by another server", id, def.Name)
				continue
			}
			out[def.Name] = &remoteTool{server: id, def: def, client: proc.Client}
		}
	}
	return out
}

// Extend returns registry plus the MCP tools whose names it does not
// already hold. Built-in tools win name collisions.
func (s *ToolSource) Extend(registry *tools.Registry) *tools.Registry {
	extra := s.Tools()
	maps.DeleteFunc(extra, func(name string, _ tools.Tool) bool {
		if registry.Has(name) {
			config.DebugLog.Warnf("[MCP] tool %s shadowed by a built-in tool", name)
			return true
		}
		return false
	})
	return registry.With(extra)
}

// remoteTool forwards execution to an MCP server.
type remoteTool struct {
	server string
	def    mcptypes.Tool
	client caller
}

func (t *remoteTool) Description() string {
	if t.def.Description == "" {
		return fmt.Sprintf("%s (from %s)", t.def.Name, t.server)
	}
	return t.def.Description
}

func (t *remoteTool) InputSchema() mcptypes.ToolInputSchema {
	return t.def.InputSchema
}

func (t *remoteTool) Execute(ctx context.Context, args tools.Args) tools.Result {
	result, err := t.client.CallTool(ctx, mcptypes.CallToolRequest{
		Params: mcptypes.CallToolParams{
			Name:      t.def.Name,
			Arguments: t.arguments(args),
		},
	})
	if err != nil {
		return tools.Fail(t.def.Name, fmt.Errorf("calling %s on %s: %w", t.def.Name, t.server, err))
	}

	text := resultText(result)
	if result.IsError {
		if text == "" {
			return tools.Fail(t.def.Name, ErrToolFailed)
		}
		return tools.Fail(t.def.Name, fmt.Errorf("%w: %s", ErrToolFailed, text))
	}
	if text == "" {
		text = "Tool executed successfully (no output)"
	}
	return tools.OK(text)
}

// arguments maps registry arguments onto the tool's schema. A bare query is
// sent under the schema's only required property when the schema does not
// declare "query" itself.
func (t *remoteTool) arguments(args tools.Args) map[string]any {
	out := maps.Clone(args.Keyword)
	if out == nil {
		out = map[string]any{}
	}
	query, hasQuery := out["query"]
	if !hasQuery {
		return out
	}
	if _, declared := t.def.InputSchema.Properties["query"]; declared {
		return out
	}
	if req := t.def.InputSchema.Required; len(req) == 1 {
		if _, set := out[req[0]]; !set {
			delete(out, "query")
			out[req[0]] = query
		}
	}
	return out
}

func resultText(result *mcptypes.CallToolResult) string {
	if result == nil || len(result.Content) == 0 {
		return ""
	}
	var parts []string
	for _, c := range result.Content {
		switch v := c.(type) {
		case mcptypes.TextContent:
			parts = append(parts, v.Text)
		case *mcptypes.TextContent:
			parts = append(parts, v.Text)
		default:
			if raw, err := json.Marshal(v); err == nil {
				parts = append(parts, string(raw))
			}
		}
	}
	return strings.TrimSpace(strings.Join(parts, "\n"))
}
