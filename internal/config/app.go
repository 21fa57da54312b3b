package config

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/caarlos0/env/v11"
	"github.com/sandevgo/solace/pkg/log"
)

type AppConfig struct {
	RuntimePath string `env:"SOLACE_RUNTIME_PATH" envDefault:".solace"`

	// Working memory caps. Oldest entries are evicted first once either
	// limit is exceeded.
	WorkingMemoryEntries int `env:"WORKING_MEMORY_ENTRIES" envDefault:"30"`
	WorkingMemoryTokens  int `env:"WORKING_MEMORY_TOKENS" envDefault:"1500"`

	// Long-term retrieval depth per turn.
	RecallDepth int `env:"RECALL_DEPTH" envDefault:"5"`

	// Insight extraction cadence: every N user turns, plus session end.
	InsightEveryTurns int `env:"INSIGHT_EVERY_TURNS" envDefault:"10"`
}

func NewAppConfig(ctx context.Context) *AppConfig {
	c := &AppConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse app config")
	}
	if err := c.Validate(); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("invalid app config")
	}
	return c
}

func (c AppConfig) Validate() error {
	if c.WorkingMemoryEntries <= 0 {
		return fmt.Errorf("working memory entry cap must be positive, got %d", c.WorkingMemoryEntries)
	}
	if c.WorkingMemoryTokens <= 0 {
		return fmt.Errorf("working memory token cap must be positive, got %d", c.WorkingMemoryTokens)
	}
	if c.RecallDepth <= 0 {
		return fmt.Errorf("recall depth must be positive, got %d", c.RecallDepth)
	}
	// Zero disables the per-turn cadence; session-end extraction still runs.
	if c.InsightEveryTurns < 0 {
		return fmt.Errorf("insight cadence must not be negative, got %d", c.InsightEveryTurns)
	}
	return nil
}

func (c AppConfig) GetDatabasePath() string {
	return filepath.Join(c.RuntimePath, "solace.db")
}

func (c AppConfig) GetVectorStorePath() string {
	return filepath.Join(c.RuntimePath, "vectors")
}
