package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sandevgo/solace/internal/config"
	"github.com/sandevgo/solace/internal/core"
	"github.com/sandevgo/solace/internal/service/chat"
	"github.com/sandevgo/solace/pkg/log"
)

const defaultUserID = "cli-local"

// Chat is the interactive terminal transport. One local user, stdin in,
// stdout out.
type Chat struct {
	cfg          *config.AppConfig
	orchestrator *chat.Orchestrator
	in           io.Reader
	out          io.Writer
}

func NewChat(orchestrator *chat.Orchestrator, cfg *config.AppConfig) (*Chat, error) {
	if err := os.MkdirAll(cfg.RuntimePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create runtime directory: %w", err)
	}

	return &Chat{
		cfg:          cfg,
		orchestrator: orchestrator,
		in:           os.Stdin,
		out:          os.Stdout,
	}, nil
}

func (c *Chat) Start(ctx context.Context) error {
	logger := log.FromCtx(ctx)
	logger.Info().Msg("chat started. Type 'exit' to quit.")

	scanner := bufio.NewScanner(c.in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for {
		select {
		case <-ctx.Done():
			c.orchestrator.EndSession(ctx, defaultUserID)
			return nil
		default:
		}

		fmt.Fprint(c.out, ">>> ")
		if !scanner.Scan() {
			c.orchestrator.EndSession(ctx, defaultUserID)
			return scanner.Err()
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "exit" {
			c.orchestrator.EndSession(ctx, defaultUserID)
			return nil
		}
		if line == "" {
			continue
		}

		result, err := c.orchestrator.ProcessTurn(ctx, defaultUserID, line)
		if err != nil {
			if errors.Is(err, core.ErrBudgetExceeded) {
				fmt.Fprintln(c.out, "That message is too long for me to take in at once. Could you break it into smaller parts?")
				continue
			}
			logger.Error().Err(err).Msg("turn failed")
			fmt.Fprintln(c.out, "Something went wrong on my end. Please try again.")
			continue
		}

		fmt.Fprintf(c.out, "%s\n", result.ResponseText)
	}
}

func (c *Chat) Shutdown(ctx context.Context) error {
	c.orchestrator.EndSession(ctx, defaultUserID)
	return nil
}
