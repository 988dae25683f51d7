package config

import (
	"slices"
	"sort"
)

// Provider describes a supported text-generation provider
type Provider struct {
	Name         string
	DefaultModel string
	BaseURL      string   // empty means the client library default
	KeyEnv       []string // environment variables searched for the API key, in order
	RequiresKey  bool
	Temperature  float32 // 0 means leave the service default
	Description  string
}

var providers = map[string]Provider{
	"gemini": {
		Name:         "gemini",
		DefaultModel: "gemini-2.0-flash",
		KeyEnv:       []string{"GOOGLE_GEMINI_API_KEY", "GOOGLE_API_KEY", "GEMINI_API_KEY"},
		RequiresKey:  true,
		Description:  "Google Gemini",
	},
	"openai": {
		Name:         "openai",
		DefaultModel: "gpt-4o-mini",
		BaseURL:      "https://api.openai.com/v1",
		KeyEnv:       []string{"OPENAI_API_KEY"},
		RequiresKey:  true,
		Description:  "OpenAI",
	},
	"deepseek": {
		Name:         "deepseek",
		DefaultModel: "deepseek-chat",
		BaseURL:      "https://api.deepseek.com/v1",
		KeyEnv:       []string{"DEEPSEEK_API_KEY"},
		RequiresKey:  true,
		Description:  "DeepSeek",
	},
	"ollama": {
		Name:         "ollama",
		DefaultModel: "qwen2.5:7b",
		BaseURL:      "http://localhost:11434/v1",
		Description:  "Ollama (local, OpenAI-compatible API)",
	},
	"grok": {
		Name:         "grok",
		DefaultModel: "grok-2-latest",
		BaseURL:      "https://api.x.ai/v1",
		KeyEnv:       []string{"XAI_API_KEY", "GROK_API_KEY"},
		RequiresKey:  true,
		Description:  "xAI Grok",
	},
	"groq": {
		Name:         "groq",
		DefaultModel: "deepseek-r1-distill-llama-70b",
		BaseURL:      "https://api.groq.com/openai/v1",
		KeyEnv:       []string{"GROQ_API_KEY"},
		RequiresKey:  true,
		Temperature:  0.6,
		Description:  "Groq",
	},
	"github": {
		Name:         "github",
		DefaultModel: "gpt-4o",
		BaseURL:      "https://models.inference.ai.azure.com",
		KeyEnv:       []string{"GITHUB_TOKEN"},
		RequiresKey:  true,
		Description:  "GitHub Models",
	},
}

// DefaultProvider is used when no provider is configured
const DefaultProvider = "gemini"

// SupportedProviders returns the names of all supported providers, sorted
func SupportedProviders() []string {
	names := make([]string, 0, len(providers))
	for name := range providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// LookupProvider returns the provider registered under name
func LookupProvider(name string) (Provider, bool) {
	p, ok := providers[name]
	if ok {
		p.KeyEnv = slices.Clone(p.KeyEnv)
	}
	return p, ok
}
