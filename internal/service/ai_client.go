package service

import (
	"context"

	"github.com/ZavgorodnevAAlDvfu/AutoAssistant/internal/model"
)

// Completer sends a conversation to a language model and returns its reply
type Completer interface {
	Complete(ctx context.Context, messages []model.ChatMessage) (string, error)
}

// Embedder turns texts into vectors, one per input, in input order
type Embedder interface {
	CreateEmbeddings(ctx context.Context, texts []string) ([][]float32, error)
}

// AIClient is the interface for AI service providers
type AIClient interface {
	Completer
	Embedder

	// IsEnabled returns whether the AI client is configured and ready
	IsEnabled() bool
}

// Ensure OpenAIClient implements AIClient
var _ AIClient = (*OpenAIClient)(nil)
