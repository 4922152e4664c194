package huggingface

import (
	"marimo-hub-be/pkg/llm"
	"marimo-hub-be/pkg/llm/openai"
)

const DefaultBaseURL = "https://router.huggingface.co/v1"

// NewHuggingFaceProvider returns a client for the Hugging Face inference
// router, which exposes the OpenAI chat completions protocol.
func NewHuggingFaceProvider(apiKey, baseURL, model string) llm.LLMProvider {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return openai.NewCompatibleProvider("huggingface", apiKey, baseURL, model)
}
