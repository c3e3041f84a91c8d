package provider

import (
	"context"
	"errors"
	"testing"

	mcptypes "github.com/mark3labs/mcp-go/mcp"

	"mic/model"
	"mic/provider/testutil"
)

func TestStreamEvents(t *testing.T) {
	mock := testutil.NewMockProvider("llama3.1")
	mock.ChatWithToolsFunc = func(ctx context.Context, _ []model.Message, _ []mcptypes.Tool, cb model.StreamCallback) error {
		if err := cb("The answer", nil); err != nil {
			return err
		}
		return cb("", []model.ToolCall{{Name: "math_problem_solver", Arguments: map[string]any{"query": "6*7"}}})
	}

	var got []model.Event
	for ev := range streamEvents(context.Background(), mock, "ollama", nil, nil) {
		got = append(got, ev)
	}

	if len(got) != 2 {
		t.Fatalf("got %d events, want 2", len(got))
	}
	if got[0].Type != model.EventToken || got[0].Content != "The answer" {
		t.Errorf("event 0 = %+v", got[0])
	}
	if got[1].Type != model.EventToolCall || got[1].ToolCall.Name != "math_problem_solver" {
		t.Errorf("event 1 = %+v", got[1])
	}
}

func TestStreamEventsFailure(t *testing.T) {
	mock := testutil.NewMockProvider("llama3.1")
	mock.ChatWithToolsFunc = func(ctx context.Context, _ []model.Message, _ []mcptypes.Tool, cb model.StreamCallback) error {
		_ = cb("partial", nil)
		return errors.New("connection reset")
	}

	var got []model.Event
	for ev := range streamEvents(context.Background(), mock, "ollama", nil, nil) {
		got = append(got, ev)
	}

	if len(got) != 2 {
		t.Fatalf("got %d events, want 2", len(got))
	}
	if got[1].Type != model.EventError || got[1].Content != model.GenericLLMFailure {
		t.Errorf("final event = %+v, want generic error event", got[1])
	}
}

func TestStreamEventsEarlyBreakCancels(t *testing.T) {
	mock := testutil.NewMockProvider("llama3.1")
	var sawCancel bool
	mock.ChatWithToolsFunc = func(ctx context.Context, _ []model.Message, _ []mcptypes.Tool, cb model.StreamCallback) error {
		for _, chunk := range []string{"a", "b", "c"} {
			if err := cb(chunk, nil); err != nil {
				sawCancel = errors.Is(err, errStopStream)
				return err
			}
		}
		return nil
	}

	n := 0
	for range streamEvents(context.Background(), mock, "ollama", nil, nil) {
		n++
		break
	}

	if n != 1 {
		t.Errorf("consumed %d events, want 1", n)
	}
	if !sawCancel {
		t.Error("callback did not observe the stop signal")
	}
}

func TestWrapLLMError(t *testing.T) {
	if wrapLLMError("openai", "gpt-4o-mini", nil) != nil {
		t.Error("wrapLLMError(nil) should be nil")
	}

	err := wrapLLMError("openai", "gpt-4o-mini", context.DeadlineExceeded)
	var llmErr *model.LLMError
	if !errors.As(err, &llmErr) {
		t.Fatalf("error %T is not *model.LLMError", err)
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Error("cause lost")
	}
	if wrapLLMError("anthropic", "x", err) != err {
		t.Error("already-wrapped error was wrapped again")
	}
}
