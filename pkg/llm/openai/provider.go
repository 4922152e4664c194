package openai

import (
	"context"
	"errors"
	"fmt"

	"marimo-hub-be/pkg/llm"

	goopenai "github.com/sashabaranov/go-openai"
)

// Provider talks to any OpenAI-compatible chat completions endpoint.
type Provider struct {
	client *goopenai.Client
	model  string
	name   string
}

var _ llm.LLMProvider = &Provider{}

// NewProvider builds a client for apiKey. baseURL overrides the default
// OpenAI endpoint when set.
func NewProvider(apiKey, baseURL, model string) *Provider {
	return newNamed("openai", apiKey, baseURL, model)
}

// NewCompatibleProvider is NewProvider with a different name in error
// messages, for routers that speak the same protocol.
func NewCompatibleProvider(name, apiKey, baseURL, model string) *Provider {
	return newNamed(name, apiKey, baseURL, model)
}

func newNamed(name, apiKey, baseURL, model string) *Provider {
	config := goopenai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	return &Provider{
		client: goopenai.NewClientWithConfig(config),
		model:  model,
		name:   name,
	}
}

func (p *Provider) Chat(ctx context.Context, history []llm.Message, opts ...llm.Option) (string, error) {
	options := llm.ApplyOptions(llm.Options{Model: p.model, Temperature: 0.7}, opts...)

	messages := options.WithSystem(history)
	oaMsgs := make([]goopenai.ChatCompletionMessage, 0, len(messages))
	for _, m := range messages {
		oaMsgs = append(oaMsgs, goopenai.ChatCompletionMessage{Role: m.Role, Content: m.Content})
	}

	req := goopenai.ChatCompletionRequest{
		Model:       options.Model,
		Messages:    oaMsgs,
		Temperature: float32(options.Temperature),
	}
	if options.MaxTokens > 0 {
		req.MaxTokens = options.MaxTokens
	}

	resp, err := p.client.CreateChatCompletion(ctx, req)
	if err != nil {
		var apiErr *goopenai.APIError
		if errors.As(err, &apiErr) {
			return "", fmt.Errorf("%s api error (status %d): %s", p.name, apiErr.HTTPStatusCode, apiErr.Message)
		}
		return "", fmt.Errorf("%s request failed: %w", p.name, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("empty choices from %s", p.name)
	}

	return resp.Choices[0].Message.Content, nil
}

func (p *Provider) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	return p.Chat(ctx, []llm.Message{{Role: "user", Content: prompt}}, opts...)
}
