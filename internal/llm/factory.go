package llm

import (
	"fmt"

	"github.com/huimingz/autocommit-go/internal/config"
)

// ProviderFactory creates LLM providers based on configuration
type ProviderFactory struct{}

// NewProviderFactory creates a new ProviderFactory
func NewProviderFactory() *ProviderFactory {
	return &ProviderFactory{}
}

// Create creates a Provider based on the model configuration
func (f *ProviderFactory) Create(cfg config.ModelConfig) (Provider, error) {
	switch cfg.Provider {
	case "gemini":
		return NewGeminiProvider(cfg), nil
	case "openai", "deepseek", "ollama", "grok", "groq", "github":
		return NewCompatibleProvider(cfg.Provider, cfg), nil
	default:
		return nil, fmt.Errorf("unsupported provider: %s", cfg.Provider)
	}
}
