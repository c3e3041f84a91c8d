package cli

import (
	"context"
	"fmt"
	"iter"
	"os"
	"sync"

	mcptypes "github.com/mark3labs/mcp-go/mcp"

	"mic/assistant"
	"mic/config"
	"mic/hrm"
	"mic/intent"
	"mic/mcp"
	"mic/model"
	"mic/provider"
	"mic/storage"
	"mic/tools"
)

// app is the wired object graph shared by the subcommands.
type app struct {
	cfg        *config.Config
	providers  map[string]model.Provider
	models     *provider.ModelRegistry
	chat       *switchLLM
	records    *storage.RecordStore
	sessions   *storage.SessionStorage
	servers    *mcp.ProcessManager
	registry   *tools.Registry
	dispatcher *intent.Dispatcher
	assistant  *assistant.Assistant
}

type appOptions struct {
	// startMCP launches the configured MCP servers.
	startMCP bool
}

func newApp(ctx context.Context, cfg *config.Config, opts appOptions) (*app, error) {
	a := &app{
		cfg:       cfg,
		providers: provider.InitializeProviders(cfg),
		servers:   mcp.NewProcessManager(),
	}
	a.models = provider.NewModelRegistry(cfg.Models, a.providers)

	var err error
	if a.records, err = storage.NewRecordStore(cfg.DataDir()); err != nil {
		return nil, fmt.Errorf("failed to open record store: %w", err)
	}
	if a.sessions, err = storage.NewSessionStorage(cfg.DataDir()); err != nil {
		a.records.Close()
		return nil, err
	}

	var chatLLM model.LLM
	if p, err := provider.Default(cfg, a.providers); err == nil {
		a.chat = &switchLLM{current: p}
		chatLLM = a.chat
	} else {
		config.DebugLog.Warnf("[CLI] no chat provider: %v", err)
	}

	planner, err := provider.NewPlannerLLM(cfg, a.providers)
	if err != nil {
		config.DebugLog.Warnf("[CLI] no planner: %v", err)
	}

	a.registry = tools.Builtins(chatLLM, a.records, cfg.Planner.ComputationalTools)
	if opts.startMCP {
		if err := a.servers.StartAll(ctx, cfg.MCPServers); err != nil {
			fmt.Fprintf(os.Stderr, "warning: %v\n", err)
		}
		a.registry = mcp.NewToolSource(a.servers).Extend(a.registry)
	}

	a.dispatcher = intent.NewDispatcher(intent.TableFromConfig(cfg.Keywords), a.registry)
	core := hrm.NewCoreFromConfig(cfg, planner, a.registry)
	a.assistant = assistant.New(a.dispatcher, core, assistant.TemplatesFromConfig(cfg.Tasks))
	return a, nil
}

func (a *app) Close(ctx context.Context) {
	if err := a.servers.Shutdown(ctx); err != nil {
		config.DebugLog.Warnf("[CLI] mcp shutdown: %v", err)
	}
	if err := a.records.Close(); err != nil {
		config.DebugLog.Warnf("[CLI] closing records: %v", err)
	}
}

// useModel points the chat LLM at the provider serving id.
func (a *app) useModel(id string) error {
	p, err := a.models.Use(id)
	if err != nil {
		return err
	}
	if a.chat != nil {
		a.chat.set(p)
	}
	return nil
}

// switchLLM forwards to the provider of the selected chat model, so tools
// built once follow model switches.
type switchLLM struct {
	mu      sync.RWMutex
	current model.Provider
}

func (s *switchLLM) set(p model.Provider) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = p
}

func (s *switchLLM) get() model.Provider {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

func (s *switchLLM) GetResponse(ctx context.Context, messages []model.Message) (string, error) {
	return s.get().GetResponse(ctx, messages)
}

func (s *switchLLM) StreamResponse(ctx context.Context, messages []model.Message, defs []mcptypes.Tool) iter.Seq[model.Event] {
	return s.get().StreamResponse(ctx, messages, defs)
}
