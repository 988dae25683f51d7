package llm

import (
	"context"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"github.com/huimingz/autocommit-go/internal/config"
)

// ChatModel is the single-shot part of an Eino chat model
type ChatModel interface {
	Generate(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error)
}

// Provider defines the interface for LLM providers
type Provider interface {
	// Name returns the provider name
	Name() string

	// GetConfig returns the model configuration
	GetConfig() config.ModelConfig

	// CreateChatModel creates a chat model that replies with a JSON object
	CreateChatModel(ctx context.Context) (ChatModel, error)
}
