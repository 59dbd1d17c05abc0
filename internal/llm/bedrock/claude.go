package bedrock

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"
	"github.com/povarna/generative-ai-agents/classroom-agent/internal/llm"
)

const (
	anthropicVersion = "bedrock-2023-05-31"

	// Routing replies are a single small JSON object.
	defaultMaxTokens = 256
	maxTemperature   = 1.0
)

var errEmptyCompletion = errors.New("claude returned no text content")

type routeMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type routeRequest struct {
	AnthropicVersion string         `json:"anthropic_version"`
	MaxTokens        int            `json:"max_tokens"`
	Temperature      float64        `json:"temperature"`
	System           string         `json:"system,omitempty"`
	Messages         []routeMessage `json:"messages"`
}

type routeResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
}

// encodeRouteRequest builds the Messages API body for one classification.
// Missing token budgets get the routing default and temperature is kept in
// the range the model accepts.
func encodeRouteRequest(request llm.LLMRequest) ([]byte, error) {
	maxTokens := request.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}

	return json.Marshal(routeRequest{
		AnthropicVersion: anthropicVersion,
		MaxTokens:        maxTokens,
		Temperature:      math.Max(0, math.Min(maxTemperature, request.Temperature)),
		System:           strings.TrimSpace(request.System),
		Messages:         []routeMessage{{Role: "user", Content: request.Prompt}},
	})
}

// decodeRouteResponse joins every text block of the reply.
func decodeRouteResponse(body []byte) (*llm.LLMResponse, error) {
	var response routeResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("failed to unmarshal bedrock response: %w", err)
	}

	var sb strings.Builder
	for _, block := range response.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	if strings.TrimSpace(sb.String()) == "" {
		return nil, errEmptyCompletion
	}

	return &llm.LLMResponse{
		Content:    sb.String(),
		StopReason: response.StopReason,
	}, nil
}

func (c *Client) InvokeModel(ctx context.Context, request llm.LLMRequest) (*llm.LLMResponse, error) {
	body, err := encodeRouteRequest(request)
	if err != nil {
		return nil, fmt.Errorf("unable to serialize claude request: %w", err)
	}

	output, err := c.Client.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     aws.String(c.ModelID),
		Body:        body,
		Accept:      aws.String("application/json"),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return nil, fmt.Errorf("unable to invoke claude model: %w", err)
	}

	return decodeRouteResponse(output.Body)
}

// InvokeModelWithRetry retries throttling, server and network failures. The
// router's own deadline bounds the whole loop through ctx.
func (c *Client) InvokeModelWithRetry(ctx context.Context, request llm.LLMRequest) (*llm.LLMResponse, error) {
	attempts := max(c.MaxRetries, 1)

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		response, err := c.InvokeModel(ctx, request)
		if err == nil {
			return response, nil
		}
		lastErr = err

		if !isRetryableError(err) {
			return nil, fmt.Errorf("non-retryable error: %w", err)
		}
		if attempt == attempts-1 {
			break
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(calculateBackoff(attempt, c.InitialDelay, c.MaxDelay)):
		}
	}

	return nil, fmt.Errorf("max retries %d exceeded: %w", attempts, lastErr)
}

func isRetryableError(err error) bool {
	if err == nil {
		return false
	}

	var (
		throttled   *types.ThrottlingException
		unavailable *types.ServiceUnavailableException
		internal    *types.InternalServerException
		timeout     *types.ModelTimeoutException
	)
	if errors.As(err, &throttled) || errors.As(err, &unavailable) ||
		errors.As(err, &internal) || errors.As(err, &timeout) {
		return true
	}

	// Errors that lost their type on the way, plus transport failures.
	errStr := err.Error()
	for _, marker := range []string{
		"ThrottlingException",
		"TooManyRequestsException",
		"ServiceUnavailableException",
		"InternalServerException",
		"StatusCode: 500",
		"StatusCode: 503",
		"connection reset",
		"EOF",
	} {
		if strings.Contains(errStr, marker) {
			return true
		}
	}
	return false
}

// calculateBackoff doubles the initial delay per attempt, caps it at
// maxDelay and adds +/-20% jitter.
func calculateBackoff(attempt int, initialDelay, maxDelay time.Duration) time.Duration {
	backoff := math.Min(float64(initialDelay)*math.Pow(2, float64(attempt)), float64(maxDelay))
	backoff += backoff * 0.2 * (2*rand.Float64() - 1)
	return time.Duration(backoff)
}
