package mcp

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"sort"
	"sync"
	"time"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/client/transport"
	mcptypes "github.com/mark3labs/mcp-go/mcp"
	"golang.org/x/sync/errgroup"

	"mic/config"
)

const (
	protocolVersion = "2025-06-18"
	clientName      = "mic"
	clientVersion   = "1.0.0"
	stopTimeout     = time.Second
)

var ErrServerNotRunning = errors.New("mcp server not running")

type ProcessManager struct {
	processes map[string]*ServerProcess
	mu        sync.RWMutex
}

func NewProcessManager() *ProcessManager {
	return &ProcessManager{processes: make(map[string]*ServerProcess)}
}

// StartServer launches the server, performs the MCP handshake and caches
// its tool list.
func (pm *ProcessManager) StartServer(ctx context.Context, cfg config.MCPServerConfig) error {
	if cfg.ID == "" || cfg.Command == "" {
		return fmt.Errorf("mcp server needs an id and a command")
	}

	pm.mu.RLock()
	proc := pm.processes[cfg.ID]
	pm.mu.RUnlock()
	if proc != nil && proc.Running {
		return fmt.Errorf("mcp server %s already running", cfg.ID)
	}

	mcpClient, cmd, err := createLocalClient(cfg)
	if err != nil {
		return fmt.Errorf("failed to start mcp server %s: %w", cfg.ID, err)
	}

	initReq := mcptypes.InitializeRequest{
		Params: mcptypes.InitializeParams{
			ProtocolVersion: protocolVersion,
			Capabilities:    mcptypes.ClientCapabilities{},
			ClientInfo: mcptypes.Implementation{
				Name:    clientName,
				Version: clientVersion,
			},
		},
	}
	if _, err := mcpClient.Initialize(ctx, initReq); err != nil {
		_ = mcpClient.Close()
		return fmt.Errorf("failed to initialize mcp server %s: %w", cfg.ID, err)
	}

	toolsResult, err := mcpClient.ListTools(ctx, mcptypes.ListToolsRequest{})
	if err != nil {
		_ = mcpClient.Close()
		return fmt.Errorf("failed to list tools for %s: %w", cfg.ID, err)
	}

	pm.register(&ServerProcess{
		ID:      cfg.ID,
		Command: cfg.Command,
		Args:    cfg.Args,
		Process: cmd,
		Client:  mcpClient,
		Tools:   toolsResult.Tools,
		Running: true,
	})
	config.DebugLog.Debugf("[MCP] started %s with %d tools", cfg.ID, len(toolsResult.Tools))
	return nil
}

func (pm *ProcessManager) register(proc *ServerProcess) {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	pm.processes[proc.ID] = proc
}

// StartAll starts every enabled server concurrently. A server that fails to
// start is logged and skipped; the joined failures are returned alongside
// whatever did start.
func (pm *ProcessManager) StartAll(ctx context.Context, servers []config.MCPServerConfig) error {
	var (
		g    errgroup.Group
		mu   sync.Mutex
		errs []error
	)
	for _, srv := range servers {
		if !srv.Enabled {
			continue
		}
		g.Go(func() error {
			if err := pm.StartServer(ctx, srv); err != nil {
				config.DebugLog.Warnf("[MCP] %v", err)
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()
	return errors.Join(errs...)
}

func (pm *ProcessManager) StopServer(ctx context.Context, id string) error {
	pm.mu.Lock()
	proc, exists := pm.processes[id]
	if !exists {
		pm.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrServerNotRunning, id)
	}
	proc.Running = false
	delete(pm.processes, id)
	pm.mu.Unlock()

	if proc.Client != nil {
		closeCtx, cancel := context.WithTimeout(ctx, stopTimeout)
		defer cancel()

		closeDone := make(chan error, 1)
		go func() {
			closeDone <- proc.Client.Close()
		}()
		select {
		case <-closeDone:
		case <-closeCtx.Done():
			config.DebugLog.Warnf("[MCP] closing %s timed out", id)
		}
	}

	if proc.Process != nil && proc.Process.Process != nil {
		if err := proc.Process.Process.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
			config.DebugLog.Warnf("[MCP] killing %s (pid %d): %v", id, proc.Process.Process.Pid, err)
		}
	}

	config.DebugLog.Debugf("[MCP] stopped %s", id)
	return nil
}

// Shutdown stops every running server in parallel.
func (pm *ProcessManager) Shutdown(ctx context.Context) error {
	var g errgroup.Group
	for _, id := range pm.ServerIDs() {
		g.Go(func() error {
			return pm.StopServer(ctx, id)
		})
	}
	return g.Wait()
}

// ServerIDs returns the running servers in sorted order.
func (pm *ProcessManager) ServerIDs() []string {
	pm.mu.RLock()
	defer pm.mu.RUnlock()

	ids := make([]string, 0, len(pm.processes))
	for id, proc := range pm.processes {
		if proc.Running {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}

func (pm *ProcessManager) server(id string) (*ServerProcess, error) {
	pm.mu.RLock()
	defer pm.mu.RUnlock()

	proc, exists := pm.processes[id]
	if !exists || !proc.Running {
		return nil, fmt.Errorf("%w: %s", ErrServerNotRunning, id)
	}
	return proc, nil
}

func createLocalClient(cfg config.MCPServerConfig) (*client.Client, *exec.Cmd, error) {
	env := serverEnv(cfg.Env)
	var capturedCmd *exec.Cmd

	cmdFunc := func(ctx context.Context, command string, env []string, args []string) (*exec.Cmd, error) {
		cmd := exec.CommandContext(ctx, command, args...)
		cmd.Env = env
		capturedCmd = cmd
		return cmd, nil
	}

	mcpClient, err := client.NewStdioMCPClientWithOptions(
		cfg.Command,
		env,
		cfg.Args,
		transport.WithCommandFunc(cmdFunc),
	)
	if err != nil {
		return nil, nil, err
	}

	if capturedCmd != nil && capturedCmd.Process != nil {
		config.DebugLog.Debugf("[MCP] %s running with pid %d", cfg.ID, capturedCmd.Process.Pid)
	}
	return mcpClient, capturedCmd, nil
}

// serverEnv starts from the current environment so PATH survives, then
// applies the configured overrides in sorted key order.
func serverEnv(overrides map[string]string) []string {
	env := os.Environ()
	keys := make([]string, 0, len(overrides))
	for k := range overrides {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		env = append(env, k+"="+overrides[k])
	}
	return env
}
