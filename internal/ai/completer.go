package ai

import (
	"context"
	"fmt"
)

const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

// Request is a single prompt/response exchange with a language model.
type Request struct {
	SystemPrompt    string
	UserPrompt      string
	Temperature     float64
	MaxOutputTokens int
}

// Completer sends a prompt to a language model and returns its raw text answer.
type Completer interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// ModelName returns the model a completer resolved, falling back to the
// configured name for completers that do not report one.
func ModelName(c Completer, configured string) string {
	if named, ok := c.(interface{ Model() string }); ok {
		if model := named.Model(); model != "" {
			return model
		}
	}
	return configured
}

// ModelCallError reports that a model could not be reached or returned nothing usable.
type ModelCallError struct {
	Provider string
	Err      error
}

func (e *ModelCallError) Error() string {
	return fmt.Sprintf("%s model call: %v", e.Provider, e.Err)
}

func (e *ModelCallError) Unwrap() error {
	return e.Err
}
