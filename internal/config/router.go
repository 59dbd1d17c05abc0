package config

import (
	"errors"
	"fmt"
	"os"
	"text/template"

	"gopkg.in/yaml.v3"
)

const (
	defaultConfigPath  = "configs/router.yaml"
	defaultTimeoutMS   = 3500
	defaultRecentTurns = 6
	defaultMaxTokens   = 256
	maxTimeoutMS       = 30000
)

// ErrConfigNotFound is returned when the router config file does not exist.
var ErrConfigNotFound = errors.New("router config not found")

// LoadRouterConfig reads the router config from ROUTER_CONFIG_PATH, or
// configs/router.yaml when unset.
func LoadRouterConfig() (*RouterConfig, error) {
	path := os.Getenv("ROUTER_CONFIG_PATH")
	if path == "" {
		path = defaultConfigPath
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	return ParseRouterConfig(data)
}

func ParseRouterConfig(data []byte) (*RouterConfig, error) {
	var cfg RouterConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// DefaultRouterConfig is used when no config file is deployed.
func DefaultRouterConfig() *RouterConfig {
	cfg := &RouterConfig{
		Router: Router{
			Enabled: true,
			Model: ModelConfig{
				Temperature: 0,
			},
		},
	}
	applyDefaults(cfg)
	return cfg
}

func applyDefaults(cfg *RouterConfig) {
	r := &cfg.Router
	if r.TimeoutMS == 0 {
		r.TimeoutMS = defaultTimeoutMS
	}
	if r.RecentTurns == 0 {
		r.RecentTurns = defaultRecentTurns
	}
	if r.Model.MaxTokens == 0 {
		r.Model.MaxTokens = defaultMaxTokens
	}
	if r.System == "" {
		r.System = defaultSystem
	}
	if r.Prompt == "" {
		r.Prompt = defaultPrompt
	}
}

func (c *RouterConfig) Validate() error {
	r := c.Router
	if r.TimeoutMS < 0 || r.TimeoutMS > maxTimeoutMS {
		return fmt.Errorf("router.timeout_ms must be between 0 and %d, got %d", maxTimeoutMS, r.TimeoutMS)
	}
	if r.RecentTurns < 1 || r.RecentTurns > 20 {
		return fmt.Errorf("router.recent_turns must be between 1 and 20, got %d", r.RecentTurns)
	}
	if r.Model.Temperature < 0 || r.Model.Temperature > 1 {
		return fmt.Errorf("router.model.temperature must be between 0 and 1, got %f", r.Model.Temperature)
	}
	if r.Model.MaxTokens < 0 {
		return fmt.Errorf("router.model.max_tokens must not be negative, got %d", r.Model.MaxTokens)
	}
	if _, err := template.New("router").Parse(r.Prompt); err != nil {
		return fmt.Errorf("router.prompt is not a valid template: %w", err)
	}
	return nil
}
