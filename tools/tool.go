// Package tools holds the callable tool catalogue: the Tool interface, the
// immutable Registry the dispatch core reads from, and the built-in tools.
package tools

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	mcptypes "github.com/mark3labs/mcp-go/mcp"

	"mic/model"
)

// Args carries the arguments of one invocation. Keyword-dispatched calls
// fill Positional and Keyword; the conversational tool receives History.
type Args struct {
	Positional []string
	Keyword    map[string]any
	History    []model.Message
}

// Query returns the "query" keyword as text, falling back to the positional
// arguments joined by spaces.
func (a Args) Query() string {
	if v, ok := a.Keyword["query"]; ok && v != nil {
		return strings.TrimSpace(fmt.Sprint(v))
	}
	return strings.Join(a.Positional, " ")
}

// String returns the keyword argument key formatted as text.
func (a Args) String(key string) (string, bool) {
	v, ok := a.Keyword[key]
	if !ok || v == nil {
		return "", false
	}
	return fmt.Sprint(v), true
}

// Int returns the keyword argument key as an int, or def when absent.
func (a Args) Int(key string, def int) (int, error) {
	switch v := a.Keyword[key].(type) {
	case nil:
		return def, nil
	case int:
		return v, nil
	case float64:
		if v != float64(int(v)) {
			return 0, fmt.Errorf("%s must be a whole number, got %v", key, v)
		}
		return int(v), nil
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return 0, fmt.Errorf("%s must be an integer, got %q", key, v)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("%s must be an integer, got %T", key, v)
	}
}

// Float returns the keyword argument key as a float64.
func (a Args) Float(key string) (float64, bool, error) {
	switch v := a.Keyword[key].(type) {
	case nil:
		return 0, false, nil
	case int:
		return float64(v), true, nil
	case float64:
		return v, true, nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, true, fmt.Errorf("%s must be a number, got %q", key, v)
		}
		return f, true, nil
	default:
		return 0, true, fmt.Errorf("%s must be a number, got %T", key, v)
	}
}

// Bool returns the keyword argument key as a bool, or def when absent.
func (a Args) Bool(key string, def bool) (bool, error) {
	switch v := a.Keyword[key].(type) {
	case nil:
		return def, nil
	case bool:
		return v, nil
	case int:
		return v != 0, nil
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return false, fmt.Errorf("%s must be true or false, got %q", key, v)
		}
		return b, nil
	default:
		return false, fmt.Errorf("%s must be true or false, got %T", key, v)
	}
}

// Tool is one callable entry of the registry.
type Tool interface {
	Description() string
	Execute(ctx context.Context, args Args) Result
}

// SchemaTool is implemented by tools that declare their own input schema.
// Tools without one are advertised to models as taking a single "query".
type SchemaTool interface {
	Tool
	InputSchema() mcptypes.ToolInputSchema
}

// Result is the outcome of one invocation. Err is nil on success.
type Result struct {
	Output string
	Err    *ToolError
}

func OK(output string) Result {
	return Result{Output: output}
}

func Fail(tool string, err error) Result {
	return Result{Err: &ToolError{Tool: tool, Err: err}}
}

// ToolError reports a failed invocation. Error returns the cause's message
// only; callers add the tool name when presenting it.
type ToolError struct {
	Tool string
	Err  error
}

func (e *ToolError) Error() string {
	return e.Err.Error()
}

func (e *ToolError) Unwrap() error {
	return e.Err
}

// Func adapts a plain function to the Tool interface.
type Func struct {
	Desc string
	Fn   func(ctx context.Context, args Args) (string, error)
}

func (f Func) Description() string {
	return f.Desc
}

func (f Func) Execute(ctx context.Context, args Args) Result {
	out, err := f.Fn(ctx, args)
	if err != nil {
		return Result{Err: &ToolError{Err: err}}
	}
	return OK(out)
}

func queryRequired(args Args) (string, error) {
	q := args.Query()
	if q == "" {
		return "", ErrMissingQuery
	}
	return q, nil
}

func querySchema(description string) mcptypes.ToolInputSchema {
	return mcptypes.ToolInputSchema{
		Type: "object",
		Properties: map[string]any{
			"query": map[string]any{
				"type":        "string",
				"description": description,
			},
		},
		Required: []string{"query"},
	}
}
