package gpt

import (
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

type Client struct {
	Client     openai.Client
	ModelID    string
	MaxRetries int
}

func NewClient(apiKey string, model string) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}
	if model == "" {
		return nil, fmt.Errorf("OpenAI model ID is required")
	}

	// Plain InvokeModel calls never retry, the SDK retries only through
	// InvokeModelWithRetry.
	openaiClient := openai.NewClient(
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	)

	return &Client{
		Client:     openaiClient,
		ModelID:    model,
		MaxRetries: 3,
	}, nil
}
