// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/adiadia/research-engine/internal/config"
	"github.com/adiadia/research-engine/internal/llm"
	"github.com/adiadia/research-engine/internal/logging"
	"github.com/adiadia/research-engine/internal/persistence/postgres"
	"github.com/adiadia/research-engine/internal/repository"
	httptransport "github.com/adiadia/research-engine/internal/transport/http"
	"github.com/adiadia/research-engine/internal/workflow"
)

var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
)

func main() {
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
	)
	defer stop()

	logger := logging.NewLogger(cfg.Env)

	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db connect failed: %v", err)
	}
	defer pool.Close()

	if cfg.AutoMigrate {
		if err := postgres.EnsureSchema(ctx, pool, logger); err != nil {
			log.Fatalf("schema bootstrap failed: %v", err)
		}
	}

	model, err := llm.New(llm.Options{
		APIKey:    cfg.OpenRouterAPIKey,
		BaseURL:   cfg.OpenRouterBaseURL,
		Model:     cfg.OpenRouterModel,
		MaxTokens: cfg.LLMMaxTokens,
	})
	if err != nil {
		log.Fatalf("model client init failed: %v", err)
	}

	documents := repository.NewDocumentRepository(pool, logger)
	traces := repository.NewTraceRepository(pool, logger)

	engine := workflow.New(workflow.Deps{
		Documents:     documents,
		Traces:        traces,
		Model:         model,
		Logger:        logger,
		SearchLimit:   cfg.RetrieveLimit,
		TopN:          cfg.RankTopN,
		WebhookURL:    cfg.WebhookURL,
		WebhookSecret: cfg.WebhookSecret,
	})

	handler := httptransport.NewRouter(httptransport.Deps{
		Engine:    engine,
		Documents: documents,
		Traces:    traces,
		Health:    postgres.NewSchemaHealthChecker(pool),
		Logger:    logger,
		Version:   Version,
		Commit:    Commit,
		BuildDate: BuildDate,
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("api listening",
			"addr", cfg.HTTPAddr,
			"version", Version,
			"commit", Commit,
			"build_date", BuildDate,
		)

		if err := srv.ListenAndServe(); err != nil &&
			err != http.ErrServerClosed {
			logger.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		5*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}
}
