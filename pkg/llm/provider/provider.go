package provider

import (
	"context"

	"github.com/papercomputeco/sqlchat/pkg/llm"
)

// Provider is a chat completion service.
type Provider interface {
	// Name returns the canonical provider name (e.g., "anthropic", "openai", "ollama")
	Name() string

	// Complete sends a single, non-streaming completion request and returns
	// the service's top answer.
	Complete(ctx context.Context, req *llm.ChatRequest) (*llm.ChatResponse, error)
}
