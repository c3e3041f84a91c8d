package provider

import (
	"context"
	"errors"
	"iter"

	mcptypes "github.com/mark3labs/mcp-go/mcp"

	"mic/config"
	"mic/model"
)

// errStopStream is returned from a stream callback when the consumer stopped
// ranging; it never escapes streamEvents.
var errStopStream = errors.New("stream consumer stopped")

// streamEvents adapts p.ChatWithTools to an event sequence. Breaking out of
// the range cancels the request. A backend failure yields one error event
// carrying model.GenericLLMFailure; the cause is logged.
func streamEvents(ctx context.Context, p model.Provider, providerID string, messages []model.Message, tools []mcptypes.Tool) iter.Seq[model.Event] {
	return func(yield func(model.Event) bool) {
		ctx, cancel := context.WithCancel(ctx)
		defer cancel()

		stopped := false
		err := p.ChatWithTools(ctx, messages, tools, func(chunk string, calls []model.ToolCall) error {
			if chunk != "" && !yield(model.TokenEvent(chunk)) {
				stopped = true
				return errStopStream
			}
			for _, call := range calls {
				if !yield(model.ToolCallEvent(call)) {
					stopped = true
					return errStopStream
				}
			}
			return nil
		})
		if stopped {
			return
		}
		if err != nil {
			llmErr := &model.LLMError{Provider: providerID, Model: p.GetModel(), Err: err}
			config.DebugLog.Errorf("[Provider] stream failed: %v", llmErr)
			yield(model.ErrorEvent(model.GenericLLMFailure))
		}
	}
}

func wrapLLMError(providerID, modelName string, err error) error {
	if err == nil {
		return nil
	}
	var llmErr *model.LLMError
	if errors.As(err, &llmErr) {
		return err
	}
	return &model.LLMError{Provider: providerID, Model: modelName, Err: err}
}
