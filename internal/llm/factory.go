package llm

import (
	"fmt"
	"time"
)

// ProviderConfig selects and configures an LLM provider.
type ProviderConfig struct {
	// Provider is one of "ollama", "openai", or "none". "none" disables
	// the generative capability entirely; callers run on heuristics only.
	Provider string

	BaseURL           string
	APIKey            string
	Model             string
	EmbeddingModel    string
	Timeout           time.Duration
	RequestsPerMinute int
}

// NewProvider creates the text and embedding generators for the configured
// provider. Both may be nil when Provider is "none": the pipeline then
// runs entirely on heuristic fallbacks and keyword search.
func NewProvider(cfg ProviderConfig) (TextGenerator, EmbeddingGenerator, error) {
	switch cfg.Provider {
	case "none":
		return nil, nil, nil
	case "openai":
		client, err := NewOpenAIClient(OpenAIConfig{
			APIKey:            cfg.APIKey,
			BaseURL:           cfg.BaseURL,
			Model:             cfg.Model,
			EmbeddingModel:    cfg.EmbeddingModel,
			Timeout:           cfg.Timeout,
			RequestsPerMinute: cfg.RequestsPerMinute,
		})
		if err != nil {
			return nil, nil, err
		}
		return client, client, nil
	case "ollama", "":
		client := NewOllamaClient(OllamaConfig{
			BaseURL:           cfg.BaseURL,
			Model:             cfg.Model,
			EmbeddingModel:    cfg.EmbeddingModel,
			Timeout:           cfg.Timeout,
			RequestsPerMinute: cfg.RequestsPerMinute,
		})
		return client, client, nil
	default:
		return nil, nil, fmt.Errorf("unsupported LLM provider: %q", cfg.Provider)
	}
}
