package llm

import (
	"context"

	"github.com/cloudwego/eino-ext/components/model/openai"

	"github.com/huimingz/autocommit-go/internal/config"
)

// CompatibleProvider implements Provider for every service that speaks the
// OpenAI chat completions API (OpenAI, DeepSeek, Ollama, Grok, Groq, GitHub Models)
type CompatibleProvider struct {
	name string
	cfg  config.ModelConfig
}

// NewCompatibleProvider creates a provider for an OpenAI-compatible endpoint.
// An empty base URL falls back to the provider's registered default.
func NewCompatibleProvider(name string, cfg config.ModelConfig) *CompatibleProvider {
	if p, ok := config.LookupProvider(name); ok {
		if cfg.BaseURL == "" {
			cfg.BaseURL = p.BaseURL
		}
		if cfg.Model == "" {
			cfg.Model = p.DefaultModel
		}
		// Ollama ignores the key but the client refuses an empty one
		if cfg.APIKey == "" && !p.RequiresKey {
			cfg.APIKey = name
		}
	}
	return &CompatibleProvider{name: name, cfg: cfg}
}

// Name returns the provider name
func (p *CompatibleProvider) Name() string {
	return p.name
}

// GetConfig returns the model configuration
func (p *CompatibleProvider) GetConfig() config.ModelConfig {
	return p.cfg
}

// CreateChatModel creates an Eino ChatModel constrained to JSON object replies
func (p *CompatibleProvider) CreateChatModel(ctx context.Context) (ChatModel, error) {
	cfg := &openai.ChatModelConfig{
		APIKey:  p.cfg.APIKey,
		Model:   p.cfg.Model,
		BaseURL: p.cfg.BaseURL,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	}
	if p.cfg.Temperature != nil {
		temperature := *p.cfg.Temperature
		cfg.Temperature = &temperature
	}

	return openai.NewChatModel(ctx, cfg)
}
