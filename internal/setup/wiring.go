package setup

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/povarna/generative-ai-agents/classroom-agent/internal/config"
	"github.com/povarna/generative-ai-agents/classroom-agent/internal/controller"
	"github.com/povarna/generative-ai-agents/classroom-agent/internal/executor"
	"github.com/povarna/generative-ai-agents/classroom-agent/internal/llm"
	"github.com/povarna/generative-ai-agents/classroom-agent/internal/llm/bedrock"
	"github.com/povarna/generative-ai-agents/classroom-agent/internal/llm/gpt"
	"github.com/povarna/generative-ai-agents/classroom-agent/internal/prechecks"
	"github.com/povarna/generative-ai-agents/classroom-agent/internal/redis"
	"github.com/povarna/generative-ai-agents/classroom-agent/internal/router"
	streamredis "github.com/povarna/generative-ai-agents/classroom-agent/internal/stream/redis"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const (
	ProviderBedrock = "bedrock"
	ProviderOpenAI  = "openai"
	ProviderNone    = "none"
)

type Config struct {
	AWSRegion        string
	ClaudeModelID    string
	OpenAIKey        string
	OpenAIModelID    string
	DefaultProvider  string
	RouterTimeoutMS  int
	RedisAddr        string
	RedisPassword    string
	EvaluationStream string
	LogLevel         string
}

type Dependencies struct {
	Executor  *executor.Executor
	Publisher executor.EvaluationPublisher
	Redis     *goredis.Client
	Logger    *zerolog.Logger
}

func LoadConfig() *Config {
	return &Config{
		AWSRegion:        getEnv("AWS_REGION", "us-east-1"),
		ClaudeModelID:    getEnv("CLAUDE_MODEL_ID", ""),
		OpenAIKey:        getEnv("OPEN_AI_KEY", ""),
		OpenAIModelID:    getEnv("OPEN_AI_MODEL_ID", ""),
		DefaultProvider:  getEnv("DEFAULT_LLM_PROVIDER", ProviderBedrock),
		RouterTimeoutMS:  getEnvInt("ROUTER_TIMEOUT_MS", 0),
		RedisAddr:        getEnv("REDIS_ADDR", ""),
		RedisPassword:    getEnv("REDIS_PASSWORD", ""),
		EvaluationStream: getEnv("EVALUATION_STREAM", streamredis.DefaultEventStream),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
	}
}

// Wire builds the turn pipeline. The model-backed classifier and the Redis
// publisher are optional: when either cannot be built the pipeline still runs
// on the rule-based router and without telemetry.
func Wire(ctx context.Context, cfg *Config, logger *zerolog.Logger) (*Dependencies, error) {
	routerCfg, err := loadRouterConfig(logger)
	if err != nil {
		return nil, err
	}
	if cfg.RouterTimeoutMS > 0 {
		routerCfg.Router.TimeoutMS = cfg.RouterTimeoutMS
		if err := routerCfg.Validate(); err != nil {
			return nil, fmt.Errorf("invalid ROUTER_TIMEOUT_MS: %w", err)
		}
	}

	primary := buildClassifier(ctx, cfg, routerCfg.Router, logger)
	turnRouter := router.NewRouter(
		primary,
		logger,
		router.WithTimeout(routerCfg.Router.Timeout()),
		router.WithRecentTurns(routerCfg.Router.RecentTurns),
	)

	deps := &Dependencies{Logger: logger}

	if cfg.RedisAddr != "" {
		client, err := redis.Connect(ctx, redis.Config{
			Addr:       cfg.RedisAddr,
			Password:   cfg.RedisPassword,
			MaxRetries: 3,
		})
		if err != nil {
			logger.Warn().Err(err).Msg("Redis unavailable, turn telemetry disabled")
		} else {
			deps.Redis = client
			deps.Publisher = streamredis.NewPublisher(client, cfg.EvaluationStream)
		}
	}

	ctrl := controller.NewController(prechecks.NewEvaluator(), logger)
	deps.Executor = executor.NewExecutor(ctrl, turnRouter, deps.Publisher, routerCfg.Router.RecentTurns, logger)

	return deps, nil
}

// Close releases connections opened by Wire.
func (d *Dependencies) Close() error {
	if d.Redis == nil {
		return nil
	}
	return d.Redis.Close()
}

func loadRouterConfig(logger *zerolog.Logger) (*config.RouterConfig, error) {
	cfg, err := config.LoadRouterConfig()
	if errors.Is(err, config.ErrConfigNotFound) {
		logger.Warn().Err(err).Msg("Router config not found, using built-in defaults")
		return config.DefaultRouterConfig(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load router config: %w", err)
	}
	return cfg, nil
}

func buildClassifier(ctx context.Context, cfg *Config, routerCfg config.Router, logger *zerolog.Logger) router.Classifier {
	if !routerCfg.Enabled || cfg.DefaultProvider == ProviderNone {
		logger.Info().Msg("Model router disabled, using rule-based routing")
		return nil
	}

	client, err := createLLMClient(ctx, cfg.DefaultProvider, cfg)
	if err != nil {
		logger.Warn().Err(err).Str("provider", cfg.DefaultProvider).Msg("LLM client unavailable, using rule-based routing")
		return nil
	}

	classifier, err := router.NewLLMClassifier(client, routerCfg, logger)
	if err != nil {
		logger.Warn().Err(err).Msg("Invalid classifier configuration, using rule-based routing")
		return nil
	}
	return classifier
}

func createLLMClient(ctx context.Context, provider string, cfg *Config) (llm.LLMClient, error) {
	switch provider {
	case ProviderOpenAI:
		return gpt.NewClient(cfg.OpenAIKey, cfg.OpenAIModelID)
	case ProviderBedrock, "":
		if cfg.ClaudeModelID == "" {
			return nil, fmt.Errorf("CLAUDE_MODEL_ID is required for the bedrock provider")
		}
		return bedrock.NewClient(ctx, cfg.AWSRegion, cfg.ClaudeModelID)
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", provider)
	}
}

func getEnv(key string, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		value = defaultValue
	}

	return value
}

func getEnvInt(key string, defaultValue int) int {
	value, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return value
}

// GetEnvDuration reads a Go duration string such as "30s".
func GetEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value, err := time.ParseDuration(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return value
}
