package model

import (
	"errors"
	"fmt"
)

// GenericLLMFailure is the user-facing text of the error event emitted when
// a backend request fails. The underlying cause goes to the debug log.
const GenericLLMFailure = "Sorry, I encountered an error while processing your request."

var ErrEmptyResponse = errors.New("empty response from model")

// LLMError reports a failed request to an LLM backend.
type LLMError struct {
	Provider string
	Model    string
	Err      error
}

func (e *LLMError) Error() string {
	if e.Model != "" {
		return fmt.Sprintf("%s (%s): %v", e.Provider, e.Model, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Provider, e.Err)
}

func (e *LLMError) Unwrap() error {
	return e.Err
}
