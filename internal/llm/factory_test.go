package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/huimingz/autocommit-go/internal/config"
)

func TestNewProviderFactory(t *testing.T) {
	factory := NewProviderFactory()
	assert.NotNil(t, factory)
}

func TestProviderFactory_Create(t *testing.T) {
	tests := []struct {
		name        string
		cfg         config.ModelConfig
		wantBaseURL string
	}{
		{
			name:        "openai",
			cfg:         config.ModelConfig{Provider: "openai", APIKey: "sk-test", Model: "gpt-4o"},
			wantBaseURL: "https://api.openai.com/v1",
		},
		{
			name:        "deepseek",
			cfg:         config.ModelConfig{Provider: "deepseek", APIKey: "sk-test", Model: "deepseek-chat"},
			wantBaseURL: "https://api.deepseek.com/v1",
		},
		{
			name:        "ollama",
			cfg:         config.ModelConfig{Provider: "ollama", Model: "qwen2.5:14b"},
			wantBaseURL: "http://localhost:11434/v1",
		},
		{
			name:        "grok",
			cfg:         config.ModelConfig{Provider: "grok", APIKey: "xai-test", Model: "grok-beta"},
			wantBaseURL: "https://api.x.ai/v1",
		},
		{
			name:        "groq",
			cfg:         config.ModelConfig{Provider: "groq", APIKey: "gsk-test"},
			wantBaseURL: "https://api.groq.com/openai/v1",
		},
		{
			name:        "github",
			cfg:         config.ModelConfig{Provider: "github", APIKey: "ghp-test"},
			wantBaseURL: "https://models.inference.ai.azure.com",
		},
		{
			name: "gemini",
			cfg:  config.ModelConfig{Provider: "gemini", APIKey: "test-key", Model: "gemini-1.5-pro"},
		},
	}

	factory := NewProviderFactory()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider, err := factory.Create(tt.cfg)
			require.NoError(t, err)
			assert.Equal(t, tt.name, provider.Name())
			assert.Equal(t, tt.wantBaseURL, provider.GetConfig().BaseURL)
			assert.NotEmpty(t, provider.GetConfig().Model)
		})
	}
}

func TestProviderFactory_Create_UnsupportedProvider(t *testing.T) {
	factory := NewProviderFactory()

	cfg := config.ModelConfig{
		Provider: "unsupported",
		APIKey:   "test",
		Model:    "test-model",
	}

	provider, err := factory.Create(cfg)
	assert.Error(t, err)
	assert.Nil(t, provider)
	assert.Contains(t, err.Error(), "unsupported provider")
}

func TestProvider_GetConfig(t *testing.T) {
	factory := NewProviderFactory()

	cfg := config.ModelConfig{
		Provider: "openai",
		APIKey:   "sk-test",
		Model:    "gpt-4o",
		BaseURL:  "https://custom.api.com/v1",
	}

	provider, err := factory.Create(cfg)
	require.NoError(t, err)

	// Provider should expose its config
	providerCfg := provider.GetConfig()
	assert.Equal(t, "openai", providerCfg.Provider)
	assert.Equal(t, "gpt-4o", providerCfg.Model)
	assert.Equal(t, "https://custom.api.com/v1", providerCfg.BaseURL)
}

func TestOllamaProvider_PlaceholderKey(t *testing.T) {
	provider, err := NewProviderFactory().Create(config.ModelConfig{Provider: "ollama", Model: "llama3.2"})
	require.NoError(t, err)
	assert.Equal(t, "ollama", provider.GetConfig().APIKey)
}

func TestProviderFactory_EveryRegisteredProvider(t *testing.T) {
	factory := NewProviderFactory()
	for _, name := range config.SupportedProviders() {
		provider, err := factory.Create(config.ModelConfig{Provider: name, APIKey: "k"})
		require.NoError(t, err, name)
		assert.Equal(t, name, provider.Name())
	}
}
