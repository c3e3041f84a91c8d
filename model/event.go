package model

import (
	"iter"
	"strings"
)

// EventType tags one item of a streamed turn.
type EventType string

const (
	EventToken      EventType = "token"
	EventToolCall   EventType = "tool_call"
	EventToolResult EventType = "tool_result"
	EventError      EventType = "error"
)

// Event is one item of a streamed response. Tool is set for tool_result
// events and ToolCall for tool_call events.
type Event struct {
	Type     EventType `json:"type"`
	Content  string    `json:"content"`
	Tool     string    `json:"tool,omitempty"`
	ToolCall *ToolCall `json:"tool_call,omitempty"`
}

func TokenEvent(content string) Event {
	return Event{Type: EventToken, Content: content}
}

func ErrorEvent(content string) Event {
	return Event{Type: EventError, Content: content}
}

func ToolResultEvent(tool, content string) Event {
	return Event{Type: EventToolResult, Tool: tool, Content: content}
}

func ToolCallEvent(call ToolCall) Event {
	return Event{Type: EventToolCall, Tool: call.Name, ToolCall: &call}
}

// Single returns a sequence yielding exactly one event.
func Single(e Event) iter.Seq[Event] {
	return func(yield func(Event) bool) {
		yield(e)
	}
}

// Collect drains seq and returns the concatenated token and tool_result
// content along with the first error event, if any.
func Collect(seq iter.Seq[Event]) (string, *Event) {
	var sb strings.Builder
	var firstErr *Event
	for e := range seq {
		switch e.Type {
		case EventToken, EventToolResult:
			sb.WriteString(e.Content)
		case EventError:
			if firstErr == nil {
				ev := e
				firstErr = &ev
			}
		}
	}
	return sb.String(), firstErr
}
