package factory

import (
	"fmt"

	"marimo-hub-be/pkg/llm"
	"marimo-hub-be/pkg/llm/huggingface"
	"marimo-hub-be/pkg/llm/ollama"
	"marimo-hub-be/pkg/llm/openai"
)

// NewLLMProvider picks a backend by name. apiKey is ignored by ollama.
func NewLLMProvider(providerType, modelName, baseURL, apiKey string) (llm.LLMProvider, error) {
	switch providerType {
	case "openai":
		if apiKey == "" {
			return nil, fmt.Errorf("openai provider requires OPENAI_API_KEY")
		}
		return openai.NewProvider(apiKey, baseURL, modelName), nil
	case "huggingface":
		return huggingface.NewHuggingFaceProvider(apiKey, baseURL, modelName), nil
	case "ollama":
		return ollama.NewOllamaProvider(baseURL, modelName), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", providerType)
	}
}
