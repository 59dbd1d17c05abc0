package router

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"text/template"

	"github.com/povarna/generative-ai-agents/classroom-agent/internal/config"
	"github.com/povarna/generative-ai-agents/classroom-agent/internal/llm"
	"github.com/povarna/generative-ai-agents/classroom-agent/internal/models"
	"github.com/rs/zerolog"
)

const defaultModelConfidence = 0.75

// ErrInvalidOutput marks a model reply that could not be decoded into a decision.
var ErrInvalidOutput = errors.New("invalid classifier output")

var intentAliases = map[string]models.Intent{
	"ASK_PEER":  models.IntentAskClassmate,
	"OFF_TOPIC": models.IntentOffTopic,
	"CLARIFY":   models.IntentClarification,
	"REFUSE":    models.IntentOffTopic,
	"FINISH":    models.IntentEnd,
}

// LLMClassifier asks a language model for the routing decision. Its output
// is untrusted: enums are coerced and confidence is clamped.
type LLMClassifier struct {
	client llm.LLMClient
	cfg    config.Router
	prompt *template.Template
	logger *zerolog.Logger
}

type modelDecision struct {
	Intent                string          `json:"intent"`
	TargetAgent           string          `json:"targetAgent"`
	Confidence            json.RawMessage `json:"confidence"`
	NormalizedUserMessage string          `json:"normalizedUserMessage"`
	Reason                string          `json:"reason"`
}

func NewLLMClassifier(client llm.LLMClient, cfg config.Router, logger *zerolog.Logger) (*LLMClassifier, error) {
	if client == nil {
		return nil, fmt.Errorf("llm client is required")
	}

	tmpl, err := template.New("router").Parse(cfg.Prompt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse router prompt: %w", err)
	}

	return &LLMClassifier{
		client: client,
		cfg:    cfg,
		prompt: tmpl,
		logger: logger,
	}, nil
}

func (c *LLMClassifier) Classify(ctx context.Context, input models.RouteInput) (models.RoutingDecision, error) {
	prompt, err := c.render(input)
	if err != nil {
		return models.RoutingDecision{}, err
	}

	request := llm.LLMRequest{
		System:      c.cfg.System,
		Prompt:      prompt,
		MaxTokens:   c.cfg.Model.MaxTokens,
		Temperature: c.cfg.Model.Temperature,
	}

	var response *llm.LLMResponse
	if c.cfg.Model.Retry {
		response, err = c.client.InvokeModelWithRetry(ctx, request)
	} else {
		response, err = c.client.InvokeModel(ctx, request)
	}
	if err != nil {
		return models.RoutingDecision{}, fmt.Errorf("router model call failed: %w", err)
	}

	decision, err := parseDecision(response.Content, input)
	if err != nil {
		c.logger.Debug().Str("content", response.Content).Msg("Unparseable router output")
		return models.RoutingDecision{}, err
	}

	return decision, nil
}

func (c *LLMClassifier) render(input models.RouteInput) (string, error) {
	var buf bytes.Buffer
	if err := c.prompt.Execute(&buf, input); err != nil {
		return "", fmt.Errorf("failed to render router prompt: %w", err)
	}
	return buf.String(), nil
}

func parseDecision(content string, input models.RouteInput) (models.RoutingDecision, error) {
	body := extractJSONObject(stripMarkdownCodeBlock(content))

	var raw modelDecision
	if err := json.Unmarshal([]byte(body), &raw); err != nil {
		return models.RoutingDecision{}, fmt.Errorf("%w: %v", ErrInvalidOutput, err)
	}
	if strings.TrimSpace(raw.Intent) == "" {
		return models.RoutingDecision{}, fmt.Errorf("%w: missing intent", ErrInvalidOutput)
	}

	intent := coerceIntent(raw.Intent)
	target := coerceTarget(raw.TargetAgent)

	normalized := normalizeMessage(raw.NormalizedUserMessage)
	if normalized == "" {
		normalized = normalizeMessage(input.UserText)
	}

	reason := strings.TrimSpace(raw.Reason)
	if reason == "" {
		reason = "Model routing classification."
	}

	return buildDecision(intent, target, parseConfidence(raw.Confidence), normalized, reason, SourceModel, input), nil
}

func coerceIntent(v string) models.Intent {
	key := strings.ToUpper(strings.TrimSpace(v))
	key = strings.NewReplacer("-", "_", " ", "_").Replace(key)

	if intent := models.Intent(key); intent.Valid() {
		return intent
	}
	if intent, ok := intentAliases[key]; ok {
		return intent
	}
	return models.IntentAnswer
}

func coerceTarget(v string) models.Target {
	target := models.Target(strings.ToLower(strings.TrimSpace(v)))
	if target.Valid() {
		return target
	}
	return models.TargetTeacher
}

// parseConfidence accepts a number or a numeric string.
func parseConfidence(raw json.RawMessage) float64 {
	if len(raw) == 0 {
		return defaultModelConfidence
	}

	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return clampConfidence(f)
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if f, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			return clampConfidence(f)
		}
	}

	return defaultModelConfidence
}

func stripMarkdownCodeBlock(content string) string {
	content = strings.TrimSpace(content)

	if strings.HasPrefix(content, "```") {
		firstNewline := strings.Index(content, "\n")
		if firstNewline == -1 {
			return content
		}

		closingBackticks := strings.LastIndex(content, "```")
		if closingBackticks == -1 || closingBackticks <= firstNewline {
			return content
		}

		content = strings.TrimSpace(content[firstNewline+1 : closingBackticks])
	}

	return content
}

// extractJSONObject trims any prose around the outermost JSON object.
func extractJSONObject(content string) string {
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start == -1 || end <= start {
		return content
	}
	return content[start : end+1]
}
