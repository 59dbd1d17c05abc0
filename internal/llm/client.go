package llm

import (
	"context"
)

// LLMClient is the model backend the intent router classifies with.
// Implementations are constructed once and injected.
type LLMClient interface {
	InvokeModel(ctx context.Context, request LLMRequest) (*LLMResponse, error)
	InvokeModelWithRetry(ctx context.Context, request LLMRequest) (*LLMResponse, error)
}
