package embed

import (
	"context"
	"fmt"
	"time"

	"github.com/sandevgo/solace/internal/config"
	"github.com/sandevgo/solace/internal/core"
	"github.com/sandevgo/solace/pkg/log"
)

// NewEmbedder creates the configured Embedder implementation.
func NewEmbedder(ctx context.Context, cfg *config.EmbeddingConfig) (core.Embedder, error) {
	log.FromCtx(ctx).Info().
		Str("provider", cfg.Provider).
		Int("dimensions", cfg.Dimensions).
		Msg("starting embedder")

	switch cfg.Provider {
	case "openai":
		return NewOpenAIEmbedder(OpenAIConfig{
			BaseURL:    cfg.BaseURL,
			APIKey:     cfg.APIKey,
			Model:      cfg.Model,
			Dimensions: cfg.Dimensions,
			Timeout:    time.Duration(cfg.TimeoutSeconds) * time.Second,
		}), nil
	case "mock":
		return NewMockEmbedder(cfg.Dimensions), nil
	default:
		return nil, fmt.Errorf("unknown embedding provider: %s", cfg.Provider)
	}
}
