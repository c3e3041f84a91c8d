// Package mcp starts configured MCP servers over stdio and exposes their
// tools as registry tools.
package mcp

import (
	"context"
	"os/exec"

	mcptypes "github.com/mark3labs/mcp-go/mcp"
)

// caller is the part of an MCP client a remote tool needs.
type caller interface {
	CallTool(ctx context.Context, request mcptypes.CallToolRequest) (*mcptypes.CallToolResult, error)
}

// ServerProcess is a running MCP server and the tools it listed at startup.
type ServerProcess struct {
	ID      string
	Command string
	Args    []string
	Process *exec.Cmd
	Client  closingCaller
	Tools   []mcptypes.Tool
	Running bool
}

type closingCaller interface {
	caller
	Close() error
}
