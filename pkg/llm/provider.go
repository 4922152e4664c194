package llm

import (
	"context"
)

// Message is a chat message in a provider-agnostic format.
type Message struct {
	Role    string `json:"role"` // "user", "assistant", "system"
	Content string `json:"content"`
}

type Option func(*Options)

type Options struct {
	Temperature float64
	MaxTokens   int
	Model       string // Overrides the provider default
	System      string // Prepended as a system message when set
}

func WithTemperature(temp float64) Option {
	return func(o *Options) {
		o.Temperature = temp
	}
}

func WithMaxTokens(n int) Option {
	return func(o *Options) {
		o.MaxTokens = n
	}
}

func WithModel(model string) Option {
	return func(o *Options) {
		o.Model = model
	}
}

func WithSystemPrompt(system string) Option {
	return func(o *Options) {
		o.System = system
	}
}

// ApplyOptions folds opts over defaults.
func ApplyOptions(defaults Options, opts ...Option) Options {
	for _, opt := range opts {
		opt(&defaults)
	}
	return defaults
}

// WithSystem returns history with the system message from o in front.
func (o Options) WithSystem(history []Message) []Message {
	if o.System == "" {
		return history
	}
	out := make([]Message, 0, len(history)+1)
	out = append(out, Message{Role: "system", Content: o.System})
	return append(out, history...)
}

// LLMProvider is the contract for any LLM backend.
type LLMProvider interface {
	// Chat sends a chat history to the model and returns the reply text.
	Chat(ctx context.Context, history []Message, options ...Option) (string, error)

	// Generate sends a single user prompt.
	Generate(ctx context.Context, prompt string, options ...Option) (string, error)
}
