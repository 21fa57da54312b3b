package main

import (
	"context"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/sandevgo/solace/internal/config"
	"github.com/sandevgo/solace/internal/providers/embed"
	"github.com/sandevgo/solace/internal/providers/llm"
	"github.com/sandevgo/solace/internal/service/chat"
	"github.com/sandevgo/solace/internal/service/memory"
	"github.com/sandevgo/solace/internal/service/prompt"
	"github.com/sandevgo/solace/internal/service/safety"
	"github.com/sandevgo/solace/internal/storage/chromem"
	"github.com/sandevgo/solace/internal/storage/sqlite"
	"github.com/sandevgo/solace/internal/transport/cli"
	"github.com/sandevgo/solace/pkg/log"
	"github.com/sandevgo/solace/pkg/srv"
)

// newOrchestrator wires the full turn engine: config, storage, providers
// and services. Fatal on any configuration or storage failure.
func newOrchestrator(ctx context.Context) (*chat.Orchestrator, []srv.Service, *config.AppConfig) {
	logger := log.FromCtx(ctx)
	services := make([]srv.Service, 0)

	if err := initEnv(ctx, config.GetRuntimePath()); err != nil {
		logger.Fatal().Err(err).Msg("failed to init env")
	}

	appCfg := config.NewAppConfig(ctx)
	budgetCfg := config.NewBudgetConfig(ctx)
	safetyCfg := config.NewSafetyConfig(ctx)
	llmCfg := config.NewLLMConfig(ctx)
	embedCfg := config.NewEmbeddingConfig(ctx)

	if err := os.MkdirAll(appCfg.RuntimePath, 0755); err != nil {
		logger.Fatal().Err(err).Msg("failed to create runtime directory")
	}

	// Audit log
	db, err := sqlite.NewDB(ctx, appCfg.GetDatabasePath())
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize turn database")
	}
	services = append(services, srv.NewCleanup(db.Close))
	turnsRepo := sqlite.NewTurnsRepo(db)

	// Vector store
	vectors, err := chromem.NewPersistent(appCfg.GetVectorStorePath())
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize vector store")
	}
	services = append(services, srv.NewCleanup(vectors.Close))

	// Providers
	generator, err := llm.NewProvider(ctx, llmCfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize LLM provider")
	}

	embedder, err := embed.NewEmbedder(ctx, embedCfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize embedder")
	}

	// Services
	longTerm := memory.NewLongTerm(vectors, embedder)
	extractor := memory.NewExtractor(longTerm, generator)
	safetyEngine := safety.NewEngine(safetyCfg)

	budget, err := prompt.NewBudget(budgetCfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("invalid prompt budget")
	}
	assembler := prompt.NewAssembler(budget)

	orchestrator := chat.NewOrchestrator(appCfg, chat.Deps{
		LongTerm:  longTerm,
		Extractor: extractor,
		Assembler: assembler,
		Safety:    safetyEngine,
		Generator: generator,
		Turns:     turnsRepo,
	})

	return orchestrator, services, appCfg
}

// NewServices builds the full service stack including the chat transport.
func NewServices(ctx context.Context) []srv.Service {
	logger := log.FromCtx(ctx)

	orchestrator, services, appCfg := newOrchestrator(ctx)

	chatTransport, err := cli.NewChat(orchestrator, appCfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize chat transport")
	}
	services = append(services, chatTransport)

	return services
}

func initEnv(ctx context.Context, runtimePath string) error {
	logger := log.FromCtx(ctx)
	envFile := filepath.Join(runtimePath, ".env")

	if _, err := os.Stat(envFile); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	if err := godotenv.Load(envFile); err != nil {
		logger.Warn().Err(err).Str("path", envFile).Msg("failed to load .env file")
		return err
	}

	logger.Debug().Str("path", envFile).Msg("loaded .env file")
	return nil
}
