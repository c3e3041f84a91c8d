package intent

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"mic/config"
	"mic/model"
	"mic/tools"
)

// recorder is a tool that remembers the arguments of its last call.
type recorder struct {
	last  tools.Args
	calls int
	err   error
}

func (r *recorder) Description() string { return "records calls" }

func (r *recorder) Execute(_ context.Context, args tools.Args) tools.Result {
	r.calls++
	r.last = args
	if r.err != nil {
		return tools.Fail("", r.err)
	}
	return tools.OK("ok")
}

type history []model.Message

func (h history) History() []model.Message { return h }

func newTestDispatcher(entries []Keyword, names ...string) (*Dispatcher, map[string]*recorder) {
	recs := map[string]*recorder{}
	registry := map[string]tools.Tool{}
	for _, name := range names {
		recs[name] = &recorder{}
		registry[name] = recs[name]
	}
	return NewDispatcher(NewKeywordTable(entries), tools.NewRegistry(registry)), recs
}

func TestDetectIntent(t *testing.T) {
	d := NewDispatcher(TableFromConfig(nil), tools.NewRegistry(nil))

	tests := []struct {
		utterance  string
		wantIntent string
		wantArgs   string
	}{
		{"web search: Go generics", "web_search", "Go generics"},
		{"Web Search:   MiXeD Case  ", "web_search", "MiXeD Case"},
		{"write story about: a lighthouse", "write_story", "a lighthouse"},
		{"convert unit: 5 km to mi", "convert_unit", "5 km to mi"},
		{"summarize:", "summarize", ""},
		{"generate", AmbiguousGenerate, ""},
		{"  Create ", AmbiguousGenerate, ""},
		{"make", AmbiguousGenerate, ""},
		{"make me a sandwich", Conversational, "make me a sandwich"},
		{"How are you today?", Conversational, "How are you today?"},
		{"", Conversational, ""},
	}

	for _, tt := range tests {
		t.Run(tt.utterance, func(t *testing.T) {
			intent, args := d.DetectIntent(tt.utterance)
			if intent != tt.wantIntent || args != tt.wantArgs {
				t.Errorf("DetectIntent(%q) = (%q, %q), want (%q, %q)",
					tt.utterance, intent, args, tt.wantIntent, tt.wantArgs)
			}
		})
	}
}

func TestDetectIntentLongestKeywordWins(t *testing.T) {
	d, _ := newTestDispatcher([]Keyword{
		{Phrase: "write", Intent: "write_any"},
		{Phrase: "write story about:", Intent: "write_story"},
		{Phrase: "write story", Intent: "write_short"},
	})

	intent, args := d.DetectIntent("Write story about: dragons")
	if intent != "write_story" || args != "dragons" {
		t.Errorf("got (%q, %q), want (write_story, dragons)", intent, args)
	}

	intent, args = d.DetectIntent("write a haiku")
	if intent != "write_any" || args != "a haiku" {
		t.Errorf("got (%q, %q), want (write_any, a haiku)", intent, args)
	}
}

func TestDetectIntentEqualLengthTieUsesDeclarationOrder(t *testing.T) {
	d, _ := newTestDispatcher([]Keyword{
		{Phrase: "plan:", Intent: "first"},
		{Phrase: "PLAN:", Intent: "duplicate"},
		{Phrase: "plan", Intent: "shorter"},
	})
	if intent, _ := d.DetectIntent("plan: a trip"); intent != "first" {
		t.Errorf("intent = %q, want first", intent)
	}
}

func TestDetectChainedIntents(t *testing.T) {
	d := NewDispatcher(TableFromConfig(nil), tools.NewRegistry(nil))

	got := d.DetectChainedIntents("web search: cats and then generate code: a sorter")
	want := []Match{
		{Intent: "web_search", ArgString: "cats"},
		{Intent: "generate_code", ArgString: "a sorter"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("DetectChainedIntents() mismatch (-want +got):\n%s", diff)
	}

	got = d.DetectChainedIntents("summarize: this  AND THEN   tell me a joke")
	want = []Match{
		{Intent: "summarize", ArgString: "this"},
		{Intent: Conversational, ArgString: "tell me a joke"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("case-insensitive split mismatch (-want +got):\n%s", diff)
	}

	// The separator splits even inside an argument.
	got = d.DetectChainedIntents("web search: rock and then roll")
	if len(got) != 2 || got[1].ArgString != "roll" {
		t.Errorf("mid-argument separator = %+v", got)
	}

	got = d.DetectChainedIntents("web search: bread and butter")
	if len(got) != 1 {
		t.Errorf("plain 'and' must not split: %+v", got)
	}
}

func TestTableFromConfigAppendsAfterDefaults(t *testing.T) {
	table := TableFromConfig([]config.KeywordConfig{
		{Phrase: "Web Search:", Intent: "override_attempt"},
		{Phrase: "lookup:", Intent: "web_search"},
	})

	if table.Len() != len(DefaultKeywords())+1 {
		t.Errorf("Len() = %d, want defaults + 1", table.Len())
	}
	kw, ok := table.Match("web search: x")
	if !ok || kw.Intent != "web_search" {
		t.Errorf("default phrase overridden: %+v", kw)
	}
	entries := table.Entries()
	if last := entries[len(entries)-1]; last.Phrase != "lookup:" {
		t.Errorf("last entry = %+v, want lookup:", last)
	}
	if diff := cmp.Diff([]string{"web search:", "lookup:"}, table.Phrases("web_search")); diff != "" {
		t.Errorf("Phrases() mismatch (-want +got):\n%s", diff)
	}
}

func TestDefaultKeywordsUnique(t *testing.T) {
	seen := map[string]bool{}
	for _, kw := range DefaultKeywords() {
		if seen[kw.Phrase] {
			t.Errorf("duplicate default phrase %q", kw.Phrase)
		}
		seen[kw.Phrase] = true
	}
	if !seen["plan travel:"] || !seen["schedule meeting:"] || !seen["generate unit test:"] {
		t.Error("default catalogue is missing task or code phrases")
	}
}

func TestDispatchUnknownIntent(t *testing.T) {
	d, _ := newTestDispatcher(nil, "web_search")

	if got := d.Dispatch(context.Background(), nil, "teleport", "to mars"); got != NotUnderstood {
		t.Errorf("Dispatch() = %q, want %q", got, NotUnderstood)
	}
	if got := d.Dispatch(context.Background(), nil, Conversational, "hi"); got != NotUnderstood {
		t.Errorf("Dispatch(conversational_ai) without tool = %q", got)
	}
}

func TestDispatchConversationalGetsHistory(t *testing.T) {
	d, recs := newTestDispatcher(nil, Conversational)
	conv := history{
		{Role: model.RoleUser, Content: "hello"},
		{Role: model.RoleAssistant, Content: "hi"},
		{Role: model.RoleUser, Content: "name=ignored"},
	}

	d.Dispatch(context.Background(), conv, Conversational, "name=ignored")

	got := recs[Conversational].last
	if diff := cmp.Diff([]model.Message(conv), got.History); diff != "" {
		t.Errorf("History mismatch (-want +got):\n%s", diff)
	}
	if got.Keyword != nil || got.Positional != nil {
		t.Errorf("conversational call should carry no parsed args: %+v", got)
	}
}

func TestDispatchArguments(t *testing.T) {
	tests := []struct {
		name           string
		intent         string
		argString      string
		wantPositional []string
		wantKeyword    map[string]any
	}{
		{
			name:        "positional joined into query",
			intent:      "web_search",
			argString:   "best   pizza  dough",
			wantKeyword: map[string]any{"query": "best pizza dough"},
		},
		{
			name:           "mixed arguments passed through",
			intent:         "web_search",
			argString:      "pizza limit=5",
			wantPositional: []string{"pizza"},
			wantKeyword:    map[string]any{"limit": 5},
		},
		{
			name:           "code intent gets command",
			intent:         "explain_code",
			argString:      "for i := range xs",
			wantPositional: []string{"for", "i", ":=", "range", "xs"},
			wantKeyword:    map[string]any{"command": "explain_code"},
		},
		{
			name:           "empty arguments",
			intent:         "web_search",
			argString:      "",
			wantPositional: []string{},
			wantKeyword:    map[string]any{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, recs := newTestDispatcher(nil, tt.intent)

			if got := d.Dispatch(context.Background(), nil, tt.intent, tt.argString); got != "ok" {
				t.Fatalf("Dispatch() = %q", got)
			}
			last := recs[tt.intent].last
			if diff := cmp.Diff(tt.wantPositional, last.Positional); diff != "" {
				t.Errorf("Positional mismatch (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(tt.wantKeyword, last.Keyword); diff != "" {
				t.Errorf("Keyword mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDispatchToolFailureBecomesText(t *testing.T) {
	d, recs := newTestDispatcher(nil, "web_search")
	recs["web_search"].err = errors.New("rate limited")

	got := d.Dispatch(context.Background(), nil, "web_search", "cats")
	if want := "Error calling tool web_search: rate limited"; got != want {
		t.Errorf("Dispatch() = %q, want %q", got, want)
	}
}

func TestDispatchParsedDoesNotMutateInput(t *testing.T) {
	d, _ := newTestDispatcher(nil, "generate_code")
	parsed := ParseArgs("lang=go")

	d.DispatchParsed(context.Background(), "generate_code", parsed)

	if _, ok := parsed.Keyword["command"]; ok {
		t.Error("DispatchParsed added command to the caller's map")
	}
}
