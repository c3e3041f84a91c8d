package tools

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func echoTool(desc string) Tool {
	return Func{Desc: desc, Fn: func(_ context.Context, args Args) (string, error) {
		return args.Query(), nil
	}}
}

type panicTool struct{}

func (panicTool) Description() string { return "always panics" }

func (panicTool) Execute(context.Context, Args) Result { panic("boom") }

func TestRegistrySnapshot(t *testing.T) {
	source := map[string]Tool{
		"web_search": echoTool("Search the web"),
		"summarize":  echoTool("Summarize text"),
		"":           echoTool("nameless"),
		"nil_tool":   nil,
	}
	r := NewRegistry(source)

	source["late"] = echoTool("added after construction")

	if diff := cmp.Diff([]string{"summarize", "web_search"}, r.Names()); diff != "" {
		t.Errorf("Names() mismatch (-want +got):\n%s", diff)
	}
	if r.Has("late") {
		t.Error("registry changed after its source map was modified")
	}

	extended := r.With(map[string]Tool{"late": echoTool("late")})
	if !extended.Has("late") || r.Has("late") {
		t.Error("With must return a new registry and leave the receiver untouched")
	}

	sub := extended.Subset([]string{"late", "missing"})
	if diff := cmp.Diff([]string{"late"}, sub.Names()); diff != "" {
		t.Errorf("Subset() mismatch (-want +got):\n%s", diff)
	}
}

func TestRegistryInvoke(t *testing.T) {
	r := NewRegistry(map[string]Tool{
		"echo": echoTool("echo"),
		"fail": Func{Desc: "fails", Fn: func(context.Context, Args) (string, error) {
			return "", errors.New("backend offline")
		}},
		"panic": panicTool{},
	})
	ctx := context.Background()

	if res := r.Invoke(ctx, "echo", query("hello")); res.Err != nil || res.Output != "hello" {
		t.Errorf("echo = %+v", res)
	}

	res := r.Invoke(ctx, "fail", Args{})
	if res.Err == nil || res.Err.Tool != "fail" || res.Err.Error() != "backend offline" {
		t.Errorf("fail = %+v", res.Err)
	}

	res = r.Invoke(ctx, "panic", Args{})
	if res.Err == nil || !errors.Is(res.Err, ErrToolPanic) {
		t.Errorf("panic = %+v, want ErrToolPanic", res.Err)
	}

	res = r.Invoke(ctx, "missing", Args{})
	if res.Err == nil || !errors.Is(res.Err, ErrUnknownTool) {
		t.Errorf("missing = %+v, want ErrUnknownTool", res.Err)
	}
}

func TestRegistrySearch(t *testing.T) {
	r := NewRegistry(map[string]Tool{
		"unit_converter":      echoTool("Converts units"),
		"convert_timezone":    echoTool("Converts time zones"),
		"math_problem_solver": echoTool("Evaluates arithmetic"),
	})

	if got := r.Search(""); len(got) != 3 {
		t.Errorf("Search(\"\") returned %d tools, want 3", len(got))
	}

	got := r.Search("math")
	if len(got) == 0 || got[0].Name != "math_problem_solver" {
		t.Errorf("Search(math) = %+v", got)
	}

	got = r.Search("arithmetic")
	if len(got) != 1 || got[0].Name != "math_problem_solver" {
		t.Errorf("Search(arithmetic) should match by description, got %+v", got)
	}
}

func TestRegistryDefinitions(t *testing.T) {
	r := NewRegistry(Computational())
	defs := r.Definitions([]string{MathSolverName, "missing"})

	if len(defs) != 1 {
		t.Fatalf("len(defs) = %d, want 1", len(defs))
	}
	if defs[0].Name != MathSolverName || defs[0].Description == "" {
		t.Errorf("definition = %+v", defs[0])
	}
	if diff := cmp.Diff([]string{"query"}, defs[0].InputSchema.Required); diff != "" {
		t.Errorf("Required mismatch (-want +got):\n%s", diff)
	}
}

func TestArgsAccessors(t *testing.T) {
	args := Args{
		Positional: []string{"quick", "brown"},
		Keyword:    map[string]any{"n": 3, "ratio": 0.5, "flag": "yes", "text": "7"},
	}

	if got := args.Query(); got != "quick brown" {
		t.Errorf("Query() = %q", got)
	}
	if n, err := args.Int("n", 0); err != nil || n != 3 {
		t.Errorf("Int(n) = %d, %v", n, err)
	}
	if n, err := args.Int("text", 0); err != nil || n != 7 {
		t.Errorf("Int(text) = %d, %v", n, err)
	}
	if _, err := args.Int("ratio", 0); err == nil {
		t.Error("Int(ratio) should reject a fractional value")
	}
	if n, err := args.Int("absent", 9); err != nil || n != 9 {
		t.Errorf("Int(absent) = %d, %v", n, err)
	}
	if f, ok, err := args.Float("ratio"); !ok || err != nil || f != 0.5 {
		t.Errorf("Float(ratio) = %v, %v, %v", f, ok, err)
	}
	if _, err := args.Bool("flag", false); err == nil {
		t.Error("Bool(flag) should reject \"yes\"")
	}
}
