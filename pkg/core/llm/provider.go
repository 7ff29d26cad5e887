// Package llm wraps the model providers used for report commentary.
package llm

import (
	"context"
	"fmt"
)

// Provider is the interface for all LLM providers.
type Provider interface {
	GenerateResponse(ctx context.Context, prompt string, systemPrompt string, options map[string]interface{}) (string, error)
	// AdaptInstructions transforms raw instructions into model-specific formats
	AdaptInstructions(rawInstructions string) string
}

// NewProvider returns the provider registered under name.
func NewProvider(name string) (Provider, error) {
	switch name {
	case "gemini", "":
		return &GeminiProvider{}, nil
	default:
		return nil, fmt.Errorf("unknown LLM provider %q", name)
	}
}
