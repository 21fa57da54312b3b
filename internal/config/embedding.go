package config

import (
	"context"

	"github.com/caarlos0/env/v11"
	"github.com/sandevgo/solace/pkg/log"
)

type EmbeddingConfig struct {
	Provider string `env:"EMBEDDING_PROVIDER" envDefault:"openai"`

	BaseURL string `env:"EMBEDDING_BASE_URL" envDefault:"https://api.openai.com"`
	APIKey  string `env:"EMBEDDING_API_KEY"`
	Model   string `env:"EMBEDDING_MODEL" envDefault:"text-embedding-3-small"`

	// Vector length is fixed per deployment; every record in a namespace
	// carries the same dimensionality.
	Dimensions int `env:"EMBEDDING_DIMENSIONS" envDefault:"1536"`

	TimeoutSeconds int `env:"EMBEDDING_TIMEOUT_SECONDS" envDefault:"15"`
}

func NewEmbeddingConfig(ctx context.Context) *EmbeddingConfig {
	c := &EmbeddingConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse embedding config")
	}
	return c
}
