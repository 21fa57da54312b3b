package config

import (
	"context"

	"github.com/caarlos0/env/v11"
	"github.com/sandevgo/solace/pkg/log"
)

type LLMConfig struct {
	Provider string `env:"LLM_PROVIDER" envDefault:"openai"`

	OpenAIBaseURL string `env:"OPENAI_BASE_URL" envDefault:"https://api.openai.com"`
	OpenAIAPIKey  string `env:"OPENAI_API_KEY"`
	OpenAIModel   string `env:"OPENAI_MODEL" envDefault:"gpt-4o-mini"`

	AnthropicAPIKey string `env:"ANTHROPIC_API_KEY"`
	AnthropicModel  string `env:"ANTHROPIC_MODEL" envDefault:"claude-sonnet-4-20250514"`

	// Per-call ceiling for the generation request.
	TimeoutSeconds int `env:"LLM_TIMEOUT_SECONDS" envDefault:"60"`
}

func NewLLMConfig(ctx context.Context) *LLMConfig {
	c := &LLMConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse LLM config")
	}
	return c
}
