// Package hrm implements the planner loop for conversational turns: a
// planner model either answers directly or selects one whitelisted
// computational tool, whose output becomes the answer.
package hrm

import (
	"context"
	"fmt"
	"iter"
	"slices"
	"strings"
	"time"

	"mic/config"
	"mic/model"
	"mic/tools"
)

// Core routes a conversational turn through the planner. It holds no
// per-conversation state and may be shared.
type Core struct {
	planner   model.LLM
	registry  *tools.Registry
	whitelist []string
	timeout   time.Duration
	prompt    string
}

// NewCore builds a core whose planner may choose among the whitelisted tools
// that the registry holds, in whitelist order. A non-positive timeout leaves
// the planner call bounded only by the caller's context.
func NewCore(planner model.LLM, registry *tools.Registry, whitelist []string, timeout time.Duration) *Core {
	if registry == nil {
		registry = tools.NewRegistry(nil)
	}
	var available []string
	for _, name := range whitelist {
		if registry.Has(name) && !slices.Contains(available, name) {
			available = append(available, name)
		}
	}
	return &Core{
		planner:   planner,
		registry:  registry,
		whitelist: available,
		timeout:   timeout,
		prompt:    buildSystemPrompt(registry, available),
	}
}

// NewCoreFromConfig builds a core with the configured whitelist and timeout.
func NewCoreFromConfig(cfg *config.Config, planner model.LLM, registry *tools.Registry) *Core {
	return NewCore(planner, registry, cfg.Planner.ComputationalTools, cfg.PlannerTimeout())
}

// Whitelist returns the tools the planner may select.
func (c *Core) Whitelist() []string {
	return slices.Clone(c.whitelist)
}

func (c *Core) SystemPrompt() string {
	return c.prompt
}

// ProcessTurn handles the latest user message of history. The returned
// sequence yields exactly one event: a token with the planner's direct
// answer, a tool_result with the selected tool's output, or an error.
// History is read, never modified.
func (c *Core) ProcessTurn(ctx context.Context, history []model.Message) iter.Seq[model.Event] {
	return func(yield func(model.Event) bool) {
		last, err := latestInput(history)
		if err != nil {
			yield(model.ErrorEvent("Please enter a message."))
			return
		}
		if c.planner == nil {
			config.DebugLog.Errorf("[HRM] %v", ErrNoPlanner)
			yield(model.ErrorEvent(model.GenericLLMFailure))
			return
		}

		response, err := c.plan(ctx, last)
		if err != nil {
			config.DebugLog.Errorf("[HRM] planner request failed: %v", err)
			yield(model.ErrorEvent(model.GenericLLMFailure))
			return
		}

		req, ok := parseToolRequest(response)
		if !ok || !slices.Contains(c.whitelist, req.Tool) {
			if ok {
				config.DebugLog.Warnf("[HRM] planner selected unavailable tool %q, answering directly", req.Tool)
			}
			yield(model.TokenEvent(response))
			return
		}

		config.DebugLog.Debugf("[HRM] running %s", req.Tool)
		res := c.registry.Invoke(ctx, req.Tool, tools.Args{
			Keyword: map[string]any{"query": req.inputText()},
		})
		if res.Err != nil {
			config.DebugLog.Errorf("[HRM] tool %s failed: %v", req.Tool, res.Err)
			yield(model.ToolResultEvent(req.Tool, fmt.Sprintf("Sorry, there was an error running the tool %s.", req.Tool)))
			return
		}
		yield(model.ToolResultEvent(req.Tool, res.Output))
	}
}

func latestInput(history []model.Message) (model.Message, error) {
	if len(history) == 0 {
		return model.Message{}, ErrEmptyInput
	}
	last := history[len(history)-1]
	if strings.TrimSpace(last.Content) == "" {
		return model.Message{}, ErrEmptyInput
	}
	return last, nil
}

func (c *Core) plan(ctx context.Context, last model.Message) (string, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	response, err := c.planner.GetResponse(ctx, []model.Message{
		{Role: model.RoleSystem, Content: c.prompt},
		{Role: model.RoleUser, Content: last.Content},
	})
	if err != nil {
		return "", err
	}
	if ctx.Err() != nil {
		return "", ctx.Err()
	}
	if strings.TrimSpace(response) == "" {
		return "", model.ErrEmptyResponse
	}
	return response, nil
}
