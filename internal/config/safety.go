package config

import (
	"context"

	"github.com/caarlos0/env/v11"
	"github.com/sandevgo/solace/pkg/log"
)

type SafetyConfig struct {
	// Extra comma-separated high-risk phrases merged into the built-in list.
	ExtraRiskPhrases []string `env:"SAFETY_EXTRA_PHRASES" envSeparator:","`

	// Outbound checking can be disabled for trusted generators.
	CheckOutbound bool `env:"SAFETY_CHECK_OUTBOUND" envDefault:"true"`
}

func NewSafetyConfig(ctx context.Context) *SafetyConfig {
	c := &SafetyConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse safety config")
	}
	return c
}
