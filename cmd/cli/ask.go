// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/adiadia/research-engine/internal/config"
	"github.com/adiadia/research-engine/internal/llm"
	"github.com/adiadia/research-engine/internal/persistence/postgres"
	"github.com/adiadia/research-engine/internal/repository"
	"github.com/adiadia/research-engine/internal/workflow"
)

// runAsk executes one research workflow from the command line and prints
// the trace as it is produced, then the final answer.
func runAsk(ctx context.Context, logger *slog.Logger, args []string) error {
	question := strings.TrimSpace(strings.Join(args, " "))
	if question == "" {
		return errors.New("a question is required")
	}

	cfg := config.Load()

	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("db connect: %w", err)
	}
	defer pool.Close()

	if cfg.AutoMigrate {
		if err := postgres.EnsureSchema(ctx, pool, logger); err != nil {
			return fmt.Errorf("schema bootstrap: %w", err)
		}
	}

	model, err := llm.New(llm.Options{
		APIKey:    cfg.OpenRouterAPIKey,
		BaseURL:   cfg.OpenRouterBaseURL,
		Model:     cfg.OpenRouterModel,
		MaxTokens: cfg.LLMMaxTokens,
	})
	if err != nil {
		return fmt.Errorf("model client init: %w", err)
	}

	engine := workflow.New(workflow.Deps{
		Documents:   repository.NewDocumentRepository(pool, logger),
		Traces:      repository.NewTraceRepository(pool, logger),
		Model:       model,
		Logger:      logger,
		SearchLimit: cfg.RetrieveLimit,
		TopN:        cfg.RankTopN,
	})

	for ev := range engine.Stream(ctx, question) {
		switch ev.Type {
		case workflow.EventTrace:
			fmt.Fprintf(os.Stdout, "[%s] %v\n", ev.Step.Node, ev.Step.Output)
		case workflow.EventComplete:
			fmt.Fprintf(os.Stdout, "\nquery id: %s\n\n%s\n", ev.Complete.QueryID, ev.Complete.FinalAnswer)
		case workflow.EventError:
			return ev.Err
		}
	}

	return ctx.Err()
}
