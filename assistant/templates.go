package assistant

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"mic/config"
)

// Template declares the slots an intent needs before it is dispatched.
type Template struct {
	Intent   string
	Required []string
	Optional []string
	Prompts  map[string]string
}

// Prompt returns the question asked to fill slot.
func (t Template) Prompt(slot string) string {
	if p, ok := t.Prompts[slot]; ok && p != "" {
		return p
	}
	return fmt.Sprintf("What %s should I use for %s?", strings.ReplaceAll(slot, "_", " "), humanize(t.Intent))
}

func (t Template) declares(slot string) bool {
	return slices.Contains(t.Required, slot) || slices.Contains(t.Optional, slot)
}

// Templates is an immutable intent → Template lookup.
type Templates struct {
	byIntent map[string]Template
}

func NewTemplates(list []Template) Templates {
	t := Templates{byIntent: make(map[string]Template, len(list))}
	for _, tmpl := range list {
		if tmpl.Intent == "" {
			continue
		}
		tmpl.Prompts = maps.Clone(tmpl.Prompts)
		t.byIntent[tmpl.Intent] = tmpl
	}
	return t
}

// TemplatesFromConfig builds templates from the [[tasks]] tables. With no
// configured tasks the built-in defaults are used; configured entries
// replace a default for the same intent.
func TemplatesFromConfig(tasks []config.TaskTemplateConfig) Templates {
	merged := map[string]config.TaskTemplateConfig{}
	var order []string
	for _, src := range [][]config.TaskTemplateConfig{config.DefaultUserConfig().Tasks, tasks} {
		for _, tc := range src {
			if _, seen := merged[tc.Intent]; !seen {
				order = append(order, tc.Intent)
			}
			merged[tc.Intent] = tc
		}
	}

	list := make([]Template, 0, len(order))
	for _, intent := range order {
		tc := merged[intent]
		list = append(list, Template{Intent: tc.Intent, Required: tc.Required, Optional: tc.Optional, Prompts: tc.Prompts})
	}
	return NewTemplates(list)
}

func (t Templates) Lookup(intent string) (Template, bool) {
	tmpl, ok := t.byIntent[intent]
	return tmpl, ok
}

func humanize(intent string) string {
	return strings.ReplaceAll(intent, "_", " ")
}
