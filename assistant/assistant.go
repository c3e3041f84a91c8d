// Package assistant routes one user utterance per turn: it continues an
// active slot-filling task, dispatches detected intents to tools, and hands
// open conversation to the planner core.
package assistant

import (
	"context"
	"fmt"
	"iter"
	"slices"
	"sort"
	"strings"

	"mic/config"
	"mic/conversation"
	"mic/intent"
	"mic/model"
)

const (
	EmptyInputMessage = "Please enter a message."
	generateQuestion  = "What would you like me to generate?"
)

var cancelWords = []string{"cancel", "stop", "never mind", "nevermind"}

// Planner answers conversational turns. *hrm.Core implements it.
type Planner interface {
	ProcessTurn(ctx context.Context, history []model.Message) iter.Seq[model.Event]
}

type Assistant struct {
	dispatcher *intent.Dispatcher
	planner    Planner
	templates  Templates
}

func New(dispatcher *intent.Dispatcher, planner Planner, templates Templates) *Assistant {
	return &Assistant{dispatcher: dispatcher, planner: planner, templates: templates}
}

// turn accumulates the reply of one Respond call.
type turn struct {
	yield  func(model.Event) bool
	steps  []string
	cur    strings.Builder
	failed bool
}

func (t *turn) emit(e model.Event) bool {
	switch e.Type {
	case model.EventToken, model.EventToolResult:
		t.cur.WriteString(e.Content)
	case model.EventError:
		t.failed = true
	}
	return t.yield(e)
}

func (t *turn) endStep() {
	if t.cur.Len() > 0 {
		t.steps = append(t.steps, t.cur.String())
		t.cur.Reset()
	}
}

func (t *turn) reply() string {
	t.endStep()
	return strings.Join(t.steps, "\n\n")
}

// Respond handles utterance against conv and yields the turn's events. The
// utterance and the assistant reply are added to the history only once the
// turn has finished without an error event; a turn abandoned by the caller
// or cancelled through ctx leaves the history untouched.
func (a *Assistant) Respond(ctx context.Context, conv *conversation.Manager, utterance string) iter.Seq[model.Event] {
	return func(yield func(model.Event) bool) {
		utterance = strings.TrimSpace(utterance)
		if utterance == "" {
			yield(model.ErrorEvent(EmptyInputMessage))
			return
		}

		t := &turn{yield: yield}
		if !a.route(ctx, conv, utterance, t) || t.failed || ctx.Err() != nil {
			return
		}

		if err := conv.AddMessage(model.RoleUser, utterance); err != nil {
			config.DebugLog.Errorf("[Assistant] %v", err)
			return
		}
		if err := conv.AddMessage(model.RoleAssistant, t.reply()); err != nil {
			config.DebugLog.Errorf("[Assistant] %v", err)
		}
	}
}

// route reports false when the consumer stopped iteration.
func (a *Assistant) route(ctx context.Context, conv *conversation.Manager, utterance string, t *turn) bool {
	if task := conv.CurrentTask(); task != nil {
		return a.continueTask(ctx, conv, task, utterance, t)
	}

	matches := a.dispatcher.DetectChainedIntents(utterance)
	if allConversational(matches) {
		history := append(conv.History(), model.Message{Role: model.RoleUser, Content: utterance})
		for e := range a.planner.ProcessTurn(ctx, history) {
			if !t.emit(e) {
				return false
			}
		}
		return true
	}

	for i, m := range matches {
		if ctx.Err() != nil {
			return false
		}
		parsed := intent.ParseArgs(m.ArgString)
		if tmpl, ok := a.templates.Lookup(m.Intent); ok && !hasAction(parsed) {
			if missing := missingSlots(tmpl, parsed); len(missing) > 0 {
				return a.startTask(conv, tmpl, parsed, matches[i+1:], t)
			}
			if !a.finishTemplate(ctx, tmpl.Intent, slotValues(tmpl, parsed), t) {
				return false
			}
			t.endStep()
			continue
		}

		if !a.dispatchOne(ctx, conv, m, t) {
			return false
		}
		t.endStep()
	}
	return true
}

func (a *Assistant) dispatchOne(ctx context.Context, conv *conversation.Manager, m intent.Match, t *turn) bool {
	switch m.Intent {
	case intent.AmbiguousGenerate:
		return t.emit(model.TokenEvent(a.clarifyGenerate()))
	case intent.Conversational:
		history := withUtterance{history: conv.History(), utterance: m.ArgString}
		out := a.dispatcher.Dispatch(ctx, history, m.Intent, m.ArgString)
		return t.emit(model.ToolResultEvent(m.Intent, out))
	default:
		out := a.dispatcher.Dispatch(ctx, nil, m.Intent, m.ArgString)
		return t.emit(model.ToolResultEvent(m.Intent, out))
	}
}

// clarifyGenerate lists the generate triggers that reach a registered tool.
func (a *Assistant) clarifyGenerate() string {
	var options []string
	for _, kw := range a.dispatcher.Keywords().Entries() {
		if strings.HasPrefix(kw.Phrase, "generate ") && a.dispatcher.Tools().Has(kw.Intent) {
			options = append(options, kw.Phrase)
		}
	}
	if len(options) == 0 {
		return generateQuestion
	}
	return generateQuestion + " Try one of: " + strings.Join(options, ", ")
}

// startTask opens a task for tmpl, prefilled with the slots the utterance
// carried, and asks for the first missing one. Intents chained after it are
// dropped.
func (a *Assistant) startTask(conv *conversation.Manager, tmpl Template, parsed intent.ParsedArguments, dropped []intent.Match, t *turn) bool {
	task := conv.StartTask(tmpl.Intent, tmpl.Required, tmpl.Optional)
	for slot, value := range slotValues(tmpl, parsed) {
		if err := task.FillSlot(slot, value); err != nil {
			config.DebugLog.Warnf("[Assistant] %v", err)
		}
	}
	config.DebugLog.Debugf("[Assistant] started task %s with slots %v", task.Name, task.Slots())

	slot, _ := task.NextMissingSlot()
	text := tmpl.Prompt(slot)
	if len(dropped) > 0 {
		names := make([]string, len(dropped))
		for i, m := range dropped {
			names[i] = humanize(m.Intent)
		}
		text += fmt.Sprintf("\n\n(I'll set aside the rest of your request until this is done: %s.)", strings.Join(names, ", "))
	}
	return t.emit(model.TokenEvent(text))
}

// continueTask feeds utterance into the active task. Keyword arguments fill
// the slots they name; otherwise the whole utterance fills the next missing
// slot.
func (a *Assistant) continueTask(ctx context.Context, conv *conversation.Manager, task *conversation.Task, utterance string, t *turn) bool {
	if isCancel(utterance) {
		conv.EndTask()
		return t.emit(model.TokenEvent(fmt.Sprintf("Okay, I've cancelled %s.", humanize(task.Name))))
	}

	parsed := intent.ParseArgs(utterance)
	filled := false
	var unknown []string
	for slot, value := range parsed.Keyword {
		if err := task.FillSlot(slot, value); err != nil {
			config.DebugLog.Debugf("[Assistant] ignoring %v", err)
			unknown = append(unknown, slot)
			continue
		}
		filled = true
	}
	if !filled && parsed.HasPositional() {
		if slot, ok := task.NextMissingSlot(); ok {
			_ = task.FillSlot(slot, strings.Join(parsed.Positional, " "))
		}
	}

	if next, ok := task.NextMissingSlot(); ok {
		tmpl, found := a.templates.Lookup(task.Name)
		if !found {
			tmpl = Template{Intent: task.Name}
		}
		text := tmpl.Prompt(next)
		if len(unknown) > 0 {
			sort.Strings(unknown)
			text = fmt.Sprintf("(%s is not part of %s.) %s", strings.Join(unknown, ", "), humanize(task.Name), text)
		}
		return t.emit(model.TokenEvent(text))
	}

	slots := task.Slots()
	conv.EndTask()
	return a.finishTemplate(ctx, task.Name, slots, t)
}

// finishTemplate dispatches a completed slot set. An intent with no backing
// tool is acknowledged with a summary of the collected details.
func (a *Assistant) finishTemplate(ctx context.Context, name string, slots map[string]any, t *turn) bool {
	if !a.dispatcher.Tools().Has(name) {
		return t.emit(model.TokenEvent(summary(name, slots)))
	}
	out := a.dispatcher.DispatchParsed(ctx, name, intent.ParsedArguments{
		Positional: []string{},
		Keyword:    slots,
	})
	return t.emit(model.ToolResultEvent(name, out))
}

// slotValues returns the template slots present in parsed. Positional words
// fill the first required slot that no keyword named.
func slotValues(tmpl Template, parsed intent.ParsedArguments) map[string]any {
	values := map[string]any{}
	for key, v := range parsed.Keyword {
		if tmpl.declares(key) {
			values[key] = v
		}
	}
	if len(parsed.Positional) > 0 {
		for _, slot := range tmpl.Required {
			if _, ok := values[slot]; !ok {
				values[slot] = strings.Join(parsed.Positional, " ")
				break
			}
		}
	}
	return values
}

func missingSlots(tmpl Template, parsed intent.ParsedArguments) []string {
	values := slotValues(tmpl, parsed)
	var missing []string
	for _, slot := range tmpl.Required {
		if _, ok := values[slot]; !ok {
			missing = append(missing, slot)
		}
	}
	return missing
}

func summary(name string, slots map[string]any) string {
	keys := make([]string, 0, len(slots))
	for k := range slots {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s: %v", k, slots[k])
	}
	return fmt.Sprintf("All set for %s. %s.", humanize(name), strings.Join(parts, ", "))
}

func allConversational(matches []intent.Match) bool {
	if len(matches) == 0 {
		return true
	}
	for _, m := range matches {
		if m.Intent != intent.Conversational {
			return false
		}
	}
	return true
}

func isCancel(utterance string) bool {
	return slices.Contains(cancelWords, strings.ToLower(strings.Trim(utterance, " .!")))
}

// withUtterance presents the stored history plus the segment being
// dispatched as the current user message.
type withUtterance struct {
	history   []model.Message
	utterance string
}

func (w withUtterance) History() []model.Message {
	return append(slices.Clone(w.history), model.Message{Role: model.RoleUser, Content: w.utterance})
}

// hasAction reports an explicit action= argument, which addresses the tool
// directly instead of starting a task.
func hasAction(parsed intent.ParsedArguments) bool {
	_, ok := parsed.Keyword["action"]
	return ok
}
