package tools

import "errors"

var (
	ErrUnknownTool    = errors.New("unknown tool")
	ErrToolPanic      = errors.New("tool panicked")
	ErrMissingQuery   = errors.New("missing query")
	ErrDivisionByZero = errors.New("division by zero")
	ErrNoLLM          = errors.New("no language model configured")
)
