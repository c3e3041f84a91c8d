package tools

import (
	"context"
	"errors"
	"fmt"
	"strings"

	mcptypes "github.com/mark3labs/mcp-go/mcp"

	"mic/config"
	"mic/model"
)

const ConversationalName = "conversational_ai"

const conversationalPrompt = "You are mic, a concise and friendly assistant. " +
	"Call one of the provided tools when the user asks for a calculation or conversion."

// Conversational answers from the conversation history by streaming the
// model's reply. Tool calls the model makes are executed against Tools,
// which should hold only the computational subset.
type Conversational struct {
	LLM   model.LLM
	Tools *Registry
}

func (Conversational) Description() string {
	return "Answers free-form questions using the conversation so far."
}

func (c Conversational) Execute(ctx context.Context, args Args) Result {
	if c.LLM == nil {
		return Fail(ConversationalName, ErrNoLLM)
	}
	if len(args.History) == 0 {
		if q := args.Query(); q != "" {
			args.History = []model.Message{{Role: model.RoleUser, Content: q}}
		} else {
			return Fail(ConversationalName, ErrMissingQuery)
		}
	}

	messages := make([]model.Message, 0, len(args.History)+1)
	messages = append(messages, model.Message{Role: model.RoleSystem, Content: conversationalPrompt})
	messages = append(messages, args.History...)

	var sb strings.Builder
	for ev := range c.LLM.StreamResponse(ctx, messages, c.definitions()) {
		switch ev.Type {
		case model.EventToken:
			sb.WriteString(ev.Content)
		case model.EventToolCall:
			sb.WriteString(c.runToolCall(ctx, ev.ToolCall))
		case model.EventError:
			return Fail(ConversationalName, errors.New(ev.Content))
		}
	}
	return OK(strings.TrimSpace(sb.String()))
}

func (c Conversational) definitions() []mcptypes.Tool {
	if c.Tools == nil {
		return nil
	}
	return c.Tools.Definitions(c.Tools.Names())
}

func (c Conversational) runToolCall(ctx context.Context, call *model.ToolCall) string {
	if call == nil || c.Tools == nil || !c.Tools.Has(call.Name) {
		if call != nil {
			config.DebugLog.Warnf("[Conversational] ignoring call to unavailable tool %s", call.Name)
		}
		return ""
	}

	args := Args{Keyword: call.Arguments}
	res := c.Tools.Invoke(ctx, call.Name, args)
	if res.Err != nil {
		return fmt.Sprintf("\n(%s failed: %v)\n", call.Name, res.Err)
	}
	return fmt.Sprintf("\n%s\n", res.Output)
}
