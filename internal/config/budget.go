package config

import (
	"context"
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/sandevgo/solace/pkg/log"
)

// BudgetConfig holds the prompt token ceiling and the per-source allocation
// fractions. Fractions must sum to at most 1.0; anything left over is slack.
type BudgetConfig struct {
	TotalTokens      int     `env:"PROMPT_TOTAL_TOKENS" envDefault:"3000"`
	SystemFraction   float64 `env:"PROMPT_SYSTEM_FRACTION" envDefault:"0.15"`
	InsightFraction  float64 `env:"PROMPT_INSIGHT_FRACTION" envDefault:"0.15"`
	EpisodicFraction float64 `env:"PROMPT_EPISODIC_FRACTION" envDefault:"0.25"`
	WorkingFraction  float64 `env:"PROMPT_WORKING_FRACTION" envDefault:"0.35"`
}

func NewBudgetConfig(ctx context.Context) *BudgetConfig {
	c := &BudgetConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse budget config")
	}
	if err := c.Validate(); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("invalid budget config")
	}
	return c
}

func (c BudgetConfig) Validate() error {
	if c.TotalTokens <= 0 {
		return fmt.Errorf("total tokens must be positive, got %d", c.TotalTokens)
	}
	fractions := []float64{c.SystemFraction, c.InsightFraction, c.EpisodicFraction, c.WorkingFraction}
	sum := 0.0
	for _, f := range fractions {
		if f < 0 {
			return fmt.Errorf("allocation fraction must not be negative, got %v", f)
		}
		sum += f
	}
	if sum > 1.0 {
		return fmt.Errorf("allocation fractions sum to %.3f, must not exceed 1.0", sum)
	}
	return nil
}
