package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	concordia "github.com/lusotexts/concordia"
	"github.com/lusotexts/concordia/pkg/config"
	"github.com/lusotexts/concordia/pkg/corpus"
	"github.com/lusotexts/concordia/pkg/embedder"
	"github.com/lusotexts/concordia/pkg/llm"
	"github.com/lusotexts/concordia/pkg/server"
	"github.com/lusotexts/concordia/pkg/synthesis"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the search and consultation HTTP server",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := newLogger(cfg.Log.Level, cfg.Log.Format)

	store := corpus.NewStore(cfg.Corpus.DataDir, logger)

	// The embedding client must match the index's declared model and
	// dimensionality; prefer the index metadata over config defaults.
	embModel, embDims := cfg.Embedding.Model, cfg.Embedding.Dims
	if index, err := store.Index(); err == nil {
		if index.Model != "" {
			embModel = index.Model
		}
		if index.Dims > 0 {
			embDims = index.Dims
		}
	} else {
		logger.Warn("search index unavailable at startup", "error", err)
	}

	var emb embedder.Client
	if embClient, err := embedder.NewOpenAIClient(embedder.Config{
		APIKey:  cfg.Embedding.APIKey,
		BaseURL: cfg.Embedding.BaseURL,
		Model:   embModel,
		Dims:    embDims,
	}); err != nil {
		logger.Warn("embedding provider not configured; search will be lexical-only", "error", err)
	} else {
		emb = embClient
	}

	var synth *synthesis.Client
	if chatClient, err := llm.NewOpenAIClient(llm.Config{
		APIKey:  cfg.Generate.APIKey,
		BaseURL: cfg.Generate.BaseURL,
		Model:   cfg.Generate.Model,
	}); err != nil {
		logger.Warn("generation provider not configured; consult requests will fail", "error", err)
	} else {
		wrapped := llm.NewCircuitBreakerClient(chatClient, llm.DefaultBreakerConfig(), logger)
		synth = synthesis.NewClient(wrapped, synthesis.Options{
			Timeout:     time.Duration(cfg.Generate.TimeoutSeconds) * time.Second,
			Temperature: cfg.Generate.Temperature,
			MaxTokens:   cfg.Generate.MaxTokens,
		}, logger)
	}

	client := concordia.NewClient(concordia.Options{
		Store:       store,
		Embedder:    emb,
		Synthesizer: synth,
		Logger:      logger,
	})

	srv := server.New(cfg, client, logger)
	srv.Setup()

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case sig := <-quit:
		logger.Info("shutting down", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Stop(ctx)
}
