// Package intent classifies utterances by trigger phrase, parses their
// argument strings and dispatches them to the tool registry.
package intent

import (
	"context"
	"fmt"
	"maps"
	"regexp"
	"slices"
	"strings"

	"mic/config"
	"mic/model"
	"mic/tools"
)

const (
	// Conversational is the fallback intent for utterances no phrase matches.
	Conversational = "conversational_ai"

	// AmbiguousGenerate is returned for a bare "generate", "create" or "make".
	AmbiguousGenerate = "ambiguous_generate"

	// NotUnderstood is the reply for intents with no registered tool.
	NotUnderstood = "I'm sorry, I don't understand that."
)

var ambiguousWords = []string{"generate", "create", "make"}

// codeIntents share one tool and receive their own name as command=.
var codeIntents = []string{"generate_code", "explain_code", "refactor_code", "generate_unit_test"}

var chainSeparator = regexp.MustCompile(`(?i)\s+and then\s+`)

// Match is one classified utterance segment.
type Match struct {
	Intent    string
	ArgString string
}

// Conversation is the view of dialogue state dispatch needs.
type Conversation interface {
	History() []model.Message
}

// Dispatcher classifies utterances against a keyword table and routes them to
// a tool registry. Both are immutable, so one Dispatcher may serve many
// conversations concurrently.
type Dispatcher struct {
	keywords *KeywordTable
	tools    *tools.Registry
}

func NewDispatcher(keywords *KeywordTable, registry *tools.Registry) *Dispatcher {
	return &Dispatcher{keywords: keywords, tools: registry}
}

// IsCodeIntent reports whether intent is one of the code operations that
// share the code assistant.
func IsCodeIntent(intent string) bool {
	return slices.Contains(codeIntents, intent)
}

// DetectIntent classifies one utterance. The longest matching phrase wins;
// its length is cut from the original-case utterance to form the argument
// string. With no match the whole utterance goes to the conversational
// fallback.
func (d *Dispatcher) DetectIntent(utterance string) (string, string) {
	if kw, ok := d.keywords.Match(utterance); ok {
		return kw.Intent, strings.TrimSpace(utterance[len(kw.Phrase):])
	}

	if slices.Contains(ambiguousWords, strings.ToLower(strings.TrimSpace(utterance))) {
		return AmbiguousGenerate, ""
	}
	return Conversational, utterance
}

// DetectChainedIntents splits utterance on "and then" and classifies each
// segment in order. The separator is honoured even inside an argument.
func (d *Dispatcher) DetectChainedIntents(utterance string) []Match {
	parts := chainSeparator.Split(utterance, -1)
	matches := make([]Match, 0, len(parts))
	for _, part := range parts {
		intent, args := d.DetectIntent(strings.TrimSpace(part))
		matches = append(matches, Match{Intent: intent, ArgString: args})
	}
	return matches
}

// Dispatch runs intent with argString and returns the reply text. It never
// fails: unknown intents and tool errors become user-facing strings.
func (d *Dispatcher) Dispatch(ctx context.Context, conv Conversation, intent, argString string) string {
	if !d.tools.Has(intent) {
		config.DebugLog.Debugf("[Dispatcher] no tool for intent %s", intent)
		return NotUnderstood
	}

	if intent == Conversational {
		var history []model.Message
		if conv != nil {
			history = conv.History()
		}
		return d.invoke(ctx, intent, tools.Args{History: history})
	}

	return d.DispatchParsed(ctx, intent, ParseArgs(argString))
}

// DispatchParsed runs intent with already-parsed arguments. Code intents get
// command=<intent>; positional-only arguments are joined into one query.
func (d *Dispatcher) DispatchParsed(ctx context.Context, intent string, parsed ParsedArguments) string {
	if !d.tools.Has(intent) {
		return NotUnderstood
	}

	keyword := maps.Clone(parsed.Keyword)
	if keyword == nil {
		keyword = map[string]any{}
	}
	if IsCodeIntent(intent) {
		keyword["command"] = intent
	}

	var args tools.Args
	if parsed.HasPositional() && len(keyword) == 0 {
		args.Keyword = map[string]any{"query": strings.Join(parsed.Positional, " ")}
	} else {
		args.Positional = slices.Clone(parsed.Positional)
		args.Keyword = keyword
	}
	return d.invoke(ctx, intent, args)
}

func (d *Dispatcher) invoke(ctx context.Context, intent string, args tools.Args) string {
	res := d.tools.Invoke(ctx, intent, args)
	if res.Err != nil {
		return fmt.Sprintf("Error calling tool %s: %s", intent, res.Err.Error())
	}
	return res.Output
}

// Tools returns the registry the dispatcher routes to.
func (d *Dispatcher) Tools() *tools.Registry {
	return d.tools
}

// Keywords returns the dispatcher's keyword table.
func (d *Dispatcher) Keywords() *KeywordTable {
	return d.keywords
}
