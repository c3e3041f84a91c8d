package tools

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"

	mcptypes "github.com/mark3labs/mcp-go/mcp"
	"github.com/sahilm/fuzzy"

	"mic/config"
)

// Registry is an immutable name → Tool snapshot. It is built once and shared
// read-only between conversations, so it needs no locking.
type Registry struct {
	tools map[string]Tool
	names []string
}

// NewRegistry snapshots tools. Entries with an empty name or nil tool are
// skipped.
func NewRegistry(tools map[string]Tool) *Registry {
	r := &Registry{tools: make(map[string]Tool, len(tools))}
	for name, t := range tools {
		if name == "" || t == nil {
			continue
		}
		r.tools[name] = t
		r.names = append(r.names, name)
	}
	slices.Sort(r.names)
	return r
}

// With returns a new registry holding r's tools plus extra. Entries in extra
// replace same-named tools; r is not modified.
func (r *Registry) With(extra map[string]Tool) *Registry {
	merged := maps.Clone(r.tools)
	if merged == nil {
		merged = make(map[string]Tool, len(extra))
	}
	maps.Copy(merged, extra)
	return NewRegistry(merged)
}

// Subset returns a registry restricted to the given names that r holds.
func (r *Registry) Subset(names []string) *Registry {
	sub := make(map[string]Tool, len(names))
	for _, name := range names {
		if t, ok := r.tools[name]; ok {
			sub[name] = t
		}
	}
	return NewRegistry(sub)
}

func (r *Registry) Lookup(name string) (Tool, bool) {
	t, ok := r.tools[name]
	return t, ok
}

func (r *Registry) Has(name string) bool {
	_, ok := r.tools[name]
	return ok
}

// Names returns the registered names in sorted order.
func (r *Registry) Names() []string {
	return slices.Clone(r.names)
}

func (r *Registry) Len() int {
	return len(r.names)
}

// Invoke executes the named tool. Unknown names and panics inside the tool
// are reported as a ToolError in the Result.
func (r *Registry) Invoke(ctx context.Context, name string, args Args) (res Result) {
	t, ok := r.tools[name]
	if !ok {
		return Fail(name, fmt.Errorf("%w: %s", ErrUnknownTool, name))
	}

	defer func() {
		if p := recover(); p != nil {
			config.DebugLog.Errorf("[Tools] %s panicked: %v", name, p)
			res = Fail(name, fmt.Errorf("%w: %v", ErrToolPanic, p))
		}
	}()

	res = t.Execute(ctx, args)
	if res.Err != nil {
		if res.Err.Tool == "" {
			res.Err.Tool = name
		}
		config.DebugLog.Debugf("[Tools] %s failed: %v", name, res.Err)
	}
	return res
}

// Match is one search hit.
type Match struct {
	Name        string
	Description string
}

// Search fuzzy-matches query against tool names, best match first. Tools
// whose description contains query are appended after the name matches.
// An empty query lists every tool.
func (r *Registry) Search(query string) []Match {
	query = strings.TrimSpace(query)
	if query == "" {
		matches := make([]Match, 0, len(r.names))
		for _, name := range r.names {
			matches = append(matches, Match{Name: name, Description: r.tools[name].Description()})
		}
		return matches
	}

	var matches []Match
	seen := make(map[string]bool)
	for _, m := range fuzzy.Find(query, r.names) {
		name := r.names[m.Index]
		seen[name] = true
		matches = append(matches, Match{Name: name, Description: r.tools[name].Description()})
	}

	lower := strings.ToLower(query)
	for _, name := range r.names {
		if seen[name] {
			continue
		}
		desc := r.tools[name].Description()
		if strings.Contains(strings.ToLower(desc), lower) {
			matches = append(matches, Match{Name: name, Description: desc})
		}
	}
	return matches
}

// Definitions renders the named tools as model-facing tool definitions.
// Names r does not hold are skipped.
func (r *Registry) Definitions(names []string) []mcptypes.Tool {
	defs := make([]mcptypes.Tool, 0, len(names))
	for _, name := range names {
		t, ok := r.tools[name]
		if !ok {
			continue
		}
		schema := querySchema("Free-text input for the tool")
		if st, ok := t.(SchemaTool); ok {
			schema = st.InputSchema()
		}
		defs = append(defs, mcptypes.Tool{
			Name:        name,
			Description: t.Description(),
			InputSchema: schema,
		})
	}
	return defs
}
