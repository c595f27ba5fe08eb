package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"masrag/internal/api"
	"masrag/internal/config"
	"masrag/internal/enrich"
	"masrag/internal/pipeline"
	"masrag/internal/retrieve"
	"masrag/internal/vecstore"
)

func main() {
	// Load .env if present; real env vars take precedence.
	_ = godotenv.Load()

	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize the node store.
	store, err := vecstore.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	if err := store.EnsureSchema(ctx); err != nil {
		log.Error("schema setup failed", "error", err)
		os.Exit(1)
	}

	gemini := enrich.NewGeminiClient(cfg.GeminiAPIKey, cfg.GeminiModel, cfg.GeminiEmbedModel)

	// Initialize pipeline.
	orch := pipeline.NewOrchestrator(cfg, gemini, store, log)
	orch.Start(ctx)

	// Initialize retrieval and HTTP server.
	ret := retrieve.New(store, gemini, gemini, log)
	srv := api.NewServer(orch, ret, log, cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		orch.Stop()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)

		gemini.Close()
		store.Close()
	}()

	log.Info("starting masrag", "port", cfg.Port)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}
