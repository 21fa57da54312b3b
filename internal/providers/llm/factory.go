package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/sandevgo/solace/internal/config"
	"github.com/sandevgo/solace/internal/core"
	"github.com/sandevgo/solace/pkg/log"
)

// NewProvider creates the appropriate Generator based on configuration.
func NewProvider(ctx context.Context, cfg *config.LLMConfig) (core.Generator, error) {
	log.FromCtx(ctx).Info().
		Str("provider", cfg.Provider).
		Msg("starting llm provider")

	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second

	switch cfg.Provider {
	case "openai":
		return NewOpenAICompatible(OpenAICompatibleConfig{
			BaseURL:    cfg.OpenAIBaseURL,
			APIKey:     cfg.OpenAIAPIKey,
			Model:      cfg.OpenAIModel,
			AuthHeader: "Authorization",
			AuthPrefix: "Bearer ",
			Timeout:    timeout,
		}), nil
	case "anthropic":
		return NewAnthropic(cfg.AnthropicAPIKey, cfg.AnthropicModel, timeout), nil
	default:
		return nil, fmt.Errorf("unknown llm provider: %s", cfg.Provider)
	}
}
