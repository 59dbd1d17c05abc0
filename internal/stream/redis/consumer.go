package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/povarna/generative-ai-agents/classroom-agent/internal/models"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const (
	fieldPayload   = "payload"
	fieldSessionID = "sessionId"
	fieldRequestID = "requestId"
	resultMaxLen   = 10000
)

var errMissingPayload = errors.New("missing payload field")

// TurnExecutor runs one classroom turn.
type TurnExecutor interface {
	Execute(ctx context.Context, req models.TurnRequest) models.TurnResult
}

// Consumer reads queued turn requests from a stream, runs them and appends
// each result to the result stream.
type Consumer struct {
	client       *redis.Client
	stream       string
	resultStream string
	groupID      string
	consumerName string
	executor     TurnExecutor
	logger       *zerolog.Logger
}

func NewConsumer(client *redis.Client, cfg *RedisStreamConfig, exec TurnExecutor, logger *zerolog.Logger) *Consumer {
	resultStream := cfg.ResultStream
	if resultStream == "" {
		resultStream = DefaultResultStream
	}
	return &Consumer{
		client:       client,
		stream:       cfg.Stream,
		resultStream: resultStream,
		groupID:      cfg.Group,
		consumerName: cfg.ConsumerName,
		executor:     exec,
		logger:       logger,
	}
}

func (c *Consumer) Setup(ctx context.Context) error {
	err := c.client.XGroupCreateMkStream(ctx, c.stream, c.groupID, "0").Err()
	if err != nil && !strings.HasPrefix(err.Error(), "BUSYGROUP") {
		return fmt.Errorf("failed to create consumer group %s: %w", c.groupID, err)
	}
	return nil
}

func (c *Consumer) Start(ctx context.Context) error {
	c.logger.Info().
		Str("stream", c.stream).
		Str("group", c.groupID).
		Str("consumer", c.consumerName).
		Msg("Consumer started")

	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		streams, err := c.client.XReadGroup(ctx, &redis.XReadGroupArgs{
			Group:    c.groupID,
			Consumer: c.consumerName,
			Streams:  []string{c.stream, ">"},
			Count:    10,
			Block:    2 * time.Second,
		}).Result()

		if err != nil {
			if errors.Is(err, redis.Nil) {
				continue
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			c.logger.Error().Err(err).Msg("Failed to read from stream")
			continue
		}

		for _, s := range streams {
			for _, msg := range s.Messages {
				c.process(ctx, msg)
			}
		}
	}
}

func (c *Consumer) Stop() error {
	return c.client.Close()
}

func (c *Consumer) process(ctx context.Context, msg redis.XMessage) {
	req, err := decodeRequest(msg.Values)
	if err != nil {
		c.logger.Error().Err(err).Str("id", msg.ID).Msg("Dropping malformed turn request")
		c.ack(ctx, msg.ID)
		return
	}

	result := c.executor.Execute(ctx, req)

	values, err := encodeResult(msg.ID, result)
	if err != nil {
		c.logger.Error().Err(err).Str("id", msg.ID).Msg("Failed to encode turn result")
		c.ack(ctx, msg.ID)
		return
	}

	if err := c.client.XAdd(ctx, &redis.XAddArgs{
		Stream: c.resultStream,
		MaxLen: resultMaxLen,
		Approx: true,
		Values: values,
	}).Err(); err != nil {
		// Leave the message pending so it can be claimed and retried.
		c.logger.Error().Err(err).Str("id", msg.ID).Msg("Failed to write turn result")
		return
	}

	c.logger.Info().
		Str("id", msg.ID).
		Str("session_id", result.Session.ID).
		Str("branch", result.Evaluation.Branch).
		Msg("Turn processed")

	c.ack(ctx, msg.ID)
}

func (c *Consumer) ack(ctx context.Context, msgID string) {
	if err := c.client.XAck(ctx, c.stream, c.groupID, msgID).Err(); err != nil {
		c.logger.Error().Err(err).Str("id", msgID).Msg("Failed to ACK message")
	}
}

func decodeRequest(values map[string]any) (models.TurnRequest, error) {
	var req models.TurnRequest
	payload, ok := values[fieldPayload].(string)
	if !ok || payload == "" {
		return req, errMissingPayload
	}
	if err := json.Unmarshal([]byte(payload), &req); err != nil {
		return req, fmt.Errorf("failed to decode turn request: %w", err)
	}
	return req, nil
}

func encodeResult(requestID string, result models.TurnResult) (map[string]any, error) {
	payload, err := json.Marshal(result)
	if err != nil {
		return nil, err
	}
	return map[string]any{
		fieldRequestID: requestID,
		fieldSessionID: result.Session.ID,
		fieldPayload:   string(payload),
	}, nil
}

// EncodeRequest builds the stream fields for a queued turn request.
func EncodeRequest(req models.TurnRequest) (map[string]any, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to encode turn request: %w", err)
	}
	return map[string]any{fieldPayload: string(payload)}, nil
}
