package ai

import "context"

// Options are per-call overrides merged over the client defaults.
type Options struct {
	Model        string
	Temperature  float64
	MaxTokens    int
	SystemPrompt string
}

// Client is a provider-agnostic text-completion client.
type Client interface {
	// Complete sends a single user prompt and returns the raw completion
	// text. Callers are responsible for parsing any structure out of it.
	Complete(ctx context.Context, prompt string, opts Options) (string, error)
}
