package main

import (
	"context"
	"os"

	"github.com/sandevgo/solace/internal/config"
	"github.com/sandevgo/solace/internal/core"
	"github.com/sandevgo/solace/pkg/log"
	"github.com/spf13/cobra"
)

var (
	debug bool
)

var rootCmd = &cobra.Command{
	Use:     "solace",
	Short:   core.SolaceName + ", a memory-backed conversational companion",
	Long:    core.SolaceName + ` is a conversational companion with layered memory, crisis-aware safety gating and token-budgeted prompt assembly.`,
	Version: core.SolaceVersion,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	// Global flags available to all subcommands
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", config.IsDebug(), "enable debug logging")
}

func setupLogger(ctx context.Context) (context.Context, func()) {
	isDebug := debug || config.IsDebug()
	return log.NewContextWithLogger(ctx, isDebug)
}
