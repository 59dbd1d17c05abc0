package config

import "time"

type RouterConfig struct {
	Router Router `yaml:"router"`
}

type Router struct {
	Enabled     bool        `yaml:"enabled"`
	TimeoutMS   int         `yaml:"timeout_ms"`
	RecentTurns int         `yaml:"recent_turns"`
	Model       ModelConfig `yaml:"model"`
	System      string      `yaml:"system"`
	Prompt      string      `yaml:"prompt"`
}

type ModelConfig struct {
	MaxTokens   int     `yaml:"max_tokens"`
	Temperature float64 `yaml:"temperature"`
	Retry       bool    `yaml:"retry"`
}

func (r Router) Timeout() time.Duration {
	return time.Duration(r.TimeoutMS) * time.Millisecond
}
