package main

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/sandevgo/solace/internal/config"
	"github.com/sandevgo/solace/pkg/env"
	"github.com/sandevgo/solace/pkg/log"
	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:           "init",
	Short:         "Create the runtime directory and a starter .env",
	SilenceUsage:  true,
	SilenceErrors: false,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, flushLog := setupLogger(cmd.Context())
		defer flushLog()

		logger := log.FromCtx(ctx)

		runtimePath := config.GetRuntimePath()
		if err := os.MkdirAll(runtimePath, 0755); err != nil {
			return err
		}

		envPath := filepath.Join(runtimePath, ".env")
		if _, err := os.Stat(envPath); err == nil {
			logger.Info().Str("path", envPath).Msg(".env already exists, leaving it untouched")
			return nil
		}

		// Dump the effective defaults so every knob is visible and editable.
		var sections []string
		for _, cfg := range []any{
			config.NewAppConfig(ctx),
			config.NewBudgetConfig(ctx),
			config.NewSafetyConfig(ctx),
			config.NewLLMConfig(ctx),
			config.NewEmbeddingConfig(ctx),
		} {
			content, err := env.MarshalEnv(cfg)
			if err != nil {
				return err
			}
			if content != "" {
				sections = append(sections, content)
			}
		}

		if err := os.WriteFile(envPath, []byte(strings.Join(sections, "\n")), 0600); err != nil {
			return err
		}

		logger.Info().Str("path", envPath).Msg("runtime directory initialized")
		logger.Info().Msg("Edit the .env to add API keys, then run 'solace start'.")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
