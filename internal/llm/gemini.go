package llm

import (
	"context"

	"github.com/cloudwego/eino-ext/components/model/gemini"
	"github.com/eino-contrib/jsonschema"
	"google.golang.org/genai"

	"github.com/huimingz/autocommit-go/internal/config"
)

// GeminiProvider implements Provider for Google Gemini
type GeminiProvider struct {
	cfg config.ModelConfig
}

// NewGeminiProvider creates a new Gemini provider
func NewGeminiProvider(cfg config.ModelConfig) *GeminiProvider {
	if cfg.Model == "" {
		if p, ok := config.LookupProvider("gemini"); ok {
			cfg.Model = p.DefaultModel
		}
	}
	if cfg.ResponseField == "" {
		cfg.ResponseField = config.DefaultResponseField
	}
	return &GeminiProvider{cfg: cfg}
}

// Name returns the provider name
func (p *GeminiProvider) Name() string {
	return "gemini"
}

// GetConfig returns the model configuration
func (p *GeminiProvider) GetConfig() config.ModelConfig {
	return p.cfg
}

// CreateChatModel creates an Eino ChatModel for Gemini whose replies are
// constrained to a JSON object with one required string property
func (p *GeminiProvider) CreateChatModel(ctx context.Context) (ChatModel, error) {
	clientCfg := &genai.ClientConfig{
		APIKey:  p.cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if p.cfg.BaseURL != "" {
		clientCfg.HTTPOptions = genai.HTTPOptions{BaseURL: p.cfg.BaseURL}
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		return nil, err
	}

	cfg := &gemini.Config{
		Client:             client,
		Model:              p.cfg.Model,
		ResponseJSONSchema: responseSchema(p.cfg.ResponseField),
	}
	if p.cfg.Temperature != nil {
		temperature := *p.cfg.Temperature
		cfg.Temperature = &temperature
	}

	return gemini.NewChatModel(ctx, cfg)
}

// responseSchema describes {"<field>": "<commit message>"}
func responseSchema(field string) *jsonschema.Schema {
	props := jsonschema.NewProperties()
	props.Set(field, &jsonschema.Schema{
		Type:        "string",
		Description: "single-line Conventional Commits message",
	})
	return &jsonschema.Schema{
		Type:       "object",
		Properties: props,
		Required:   []string{field},
	}
}
