package main

import (
	"context"
	"fmt"

	"github.com/sandevgo/solace/internal/core"
	"github.com/sandevgo/solace/pkg/log"
	"github.com/sandevgo/solace/pkg/srv"
	"github.com/spf13/cobra"
)

var (
	recallKind  string
	recallDepth int
	turnsLimit  int
)

var memoryCmd = &cobra.Command{
	Use:   "memory",
	Short: "Inspect and maintain long-term memory",
}

var recallCmd = &cobra.Command{
	Use:   "recall <user> <query>",
	Short: "Query long-term memory by similarity",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, flushLog := setupLogger(cmd.Context())
		defer flushLog()

		orchestrator, services, _ := newOrchestrator(ctx)
		defer shutdownAll(ctx, services)

		result, err := orchestrator.RetrieveMemory(ctx, args[0], args[1], recallDepth, core.MemoryKind(recallKind))
		if err != nil {
			return err
		}

		if result.Empty() {
			fmt.Println("no matching memories")
			return nil
		}
		for _, rec := range result.Records {
			fmt.Printf("%.3f  [%s]  %s  %s\n", rec.Similarity, rec.Kind, rec.CreatedAt.Format("2006-01-02 15:04"), rec.Text)
		}
		return nil
	},
}

var turnsCmd = &cobra.Command{
	Use:   "turns <user>",
	Short: "Show the recent audited turns for a user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, flushLog := setupLogger(cmd.Context())
		defer flushLog()

		orchestrator, services, _ := newOrchestrator(ctx)
		defer shutdownAll(ctx, services)

		turns, err := orchestrator.RecentTurns(ctx, args[0], turnsLimit)
		if err != nil {
			return err
		}

		if len(turns) == 0 {
			fmt.Println("no recorded turns")
			return nil
		}
		for _, t := range turns {
			risk := ""
			if t.Risk != core.RiskNone {
				risk = fmt.Sprintf(" [risk=%s signal=%q]", t.Risk, t.MatchedSignal)
			}
			fmt.Printf("%s  %-9s%s  %s\n", t.CreatedAt.Format("2006-01-02 15:04:05"), t.Role, risk, t.Content)
		}
		return nil
	},
}

func shutdownAll(ctx context.Context, services []srv.Service) {
	for _, s := range services {
		if err := s.Shutdown(ctx); err != nil {
			log.FromCtx(ctx).Error().Err(err).Msgf("%T failed to shutdown", s)
		}
	}
}

func init() {
	recallCmd.Flags().StringVarP(&recallKind, "kind", "k", "", "filter by memory kind (episodic, insight, profile)")
	recallCmd.Flags().IntVarP(&recallDepth, "depth", "n", 5, "number of records to return")
	turnsCmd.Flags().IntVarP(&turnsLimit, "limit", "n", 20, "number of turns to show")

	memoryCmd.AddCommand(recallCmd)
	memoryCmd.AddCommand(turnsCmd)
	rootCmd.AddCommand(memoryCmd)
}
