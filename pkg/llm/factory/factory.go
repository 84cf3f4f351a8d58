package factory

import (
	"fmt"
	"strings"

	"intelliview-be/pkg/llm"
	"intelliview-be/pkg/llm/gemini"
	"intelliview-be/pkg/llm/ollama"
)

// Config selects and configures the evaluation backend.
type Config struct {
	Provider  string // "gemini" (default) or "ollama"
	Model     string
	APIKey    string
	OllamaURL string
}

func NewLLMProvider(cfg Config) (llm.LLMProvider, error) {
	switch strings.ToLower(cfg.Provider) {
	case "", "gemini":
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("gemini provider requires an API key")
		}
		return gemini.NewGeminiProvider(cfg.APIKey, cfg.Model), nil
	case "ollama":
		baseURL := cfg.OllamaURL
		if baseURL == "" {
			baseURL = "http://localhost:11434" // Default
		}
		return ollama.NewOllamaProvider(baseURL, cfg.Model), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.Provider)
	}
}
