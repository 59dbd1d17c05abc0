package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/povarna/generative-ai-agents/classroom-agent/internal/models"
	"github.com/redis/go-redis/v9"
)

const eventMaxLen = 50000

// Publisher appends turn telemetry to a capped stream.
type Publisher struct {
	client *redis.Client
	stream string
}

func NewPublisher(client *redis.Client, stream string) *Publisher {
	if stream == "" {
		stream = DefaultEventStream
	}
	return &Publisher{client: client, stream: stream}
}

func (p *Publisher) Publish(ctx context.Context, event models.TurnEvent) error {
	values, err := encodeEvent(event)
	if err != nil {
		return err
	}
	if err := p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		MaxLen: eventMaxLen,
		Approx: true,
		Values: values,
	}).Err(); err != nil {
		return fmt.Errorf("failed to publish turn event to %s: %w", p.stream, err)
	}
	return nil
}

func encodeEvent(event models.TurnEvent) (map[string]any, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("failed to encode turn event: %w", err)
	}
	return map[string]any{
		fieldSessionID: event.SessionID,
		"branch":       event.Evaluation.Branch,
		"stage":        event.Evaluation.Stage,
		fieldPayload:   string(payload),
	}, nil
}
