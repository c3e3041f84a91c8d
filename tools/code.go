package tools

import (
	"context"
	"fmt"
	"strings"

	"mic/model"
)

const CodeAssistantName = "code_assistant"

// Code-operation intents share CodeAssistant and are told apart by the
// command argument.
const (
	CommandGenerateCode = "generate_code"
	CommandExplainCode  = "explain_code"
	CommandRefactorCode = "refactor_code"
	CommandGenerateTest = "generate_unit_test"
)

var codePrompts = map[string]string{
	CommandGenerateCode: "You are a senior software engineer. Write the code the user asks for. " +
		"Reply with a single fenced code block followed by at most three sentences of explanation.",
	CommandExplainCode: "You are a patient reviewer. Explain what the user's code does, step by step, " +
		"and point out anything surprising.",
	CommandRefactorCode: "You are a senior software engineer. Refactor the user's code for clarity " +
		"without changing behaviour. Reply with the new code in a fenced block and a short list of changes.",
	CommandGenerateTest: "You are a test engineer. Write unit tests for the user's code covering normal " +
		"cases and edge cases. Reply with the tests in a fenced code block.",
}

// CodeAssistant answers code-operation requests with the model.
type CodeAssistant struct {
	LLM model.LLM
}

// CodeTools registers one CodeAssistant under every code-operation intent.
func CodeTools(llm model.LLM) map[string]Tool {
	assistant := CodeAssistant{LLM: llm}
	return map[string]Tool{
		CommandGenerateCode: assistant,
		CommandExplainCode:  assistant,
		CommandRefactorCode: assistant,
		CommandGenerateTest: assistant,
	}
}

func (CodeAssistant) Description() string {
	return "Generates, explains and refactors code, and writes unit tests. Options: command=, language=."
}

func (c CodeAssistant) Execute(ctx context.Context, args Args) Result {
	if c.LLM == nil {
		return Fail(CodeAssistantName, ErrNoLLM)
	}

	command, ok := args.String("command")
	if !ok {
		command = CommandGenerateCode
	}
	system, ok := codePrompts[command]
	if !ok {
		return Fail(CodeAssistantName, fmt.Errorf("unknown command %q", command))
	}

	request, err := codeRequest(args)
	if err != nil {
		return Fail(CodeAssistantName, err)
	}
	if lang, ok := args.String("language"); ok {
		system += " Use " + lang + "."
	}

	out, err := c.LLM.GetResponse(ctx, []model.Message{
		{Role: model.RoleSystem, Content: system},
		{Role: model.RoleUser, Content: request},
	})
	if err != nil {
		return Fail(CodeAssistantName, err)
	}
	return OK(strings.TrimSpace(out))
}

// codeRequest rebuilds the free-text request. Dispatch always adds command,
// so the text arrives as positional words or as code=/query= keywords.
func codeRequest(args Args) (string, error) {
	if code, ok := args.String("code"); ok && code != "" {
		return code, nil
	}
	q := args.Query()
	if q == "" {
		return "", ErrMissingQuery
	}
	return q, nil
}
