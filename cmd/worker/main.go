// Package main provides the lecture processing worker entrypoint.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/lecturalab/slide-worker/internal/analyze"
	"github.com/lecturalab/slide-worker/internal/artifacts"
	"github.com/lecturalab/slide-worker/internal/callback"
	"github.com/lecturalab/slide-worker/internal/config"
	"github.com/lecturalab/slide-worker/internal/llm"
	"github.com/lecturalab/slide-worker/internal/observability"
	"github.com/lecturalab/slide-worker/internal/pdf"
	"github.com/lecturalab/slide-worker/internal/pipeline"
	"github.com/lecturalab/slide-worker/internal/storage"
)

func main() {
	// Load configuration
	cfgPath := os.Getenv("CONFIG_PATH")
	if len(os.Args) > 2 && os.Args[1] == "--config" {
		cfgPath = os.Args[2]
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger := observability.NewLogger(observability.LogConfig{
		Level:       cfg.Log.Level,
		Format:      cfg.Log.Format,
		ServiceName: "slide-worker",
	})

	logger.Info().
		Str("host", cfg.Server.Host).
		Int("port", cfg.Server.Port).
		Msg("Starting lecture processing worker")

	if missing := cfg.Missing(); len(missing) > 0 {
		// The server still starts so /health can report what is absent.
		logger.Warn().Strs("missing", missing).Msg("Required environment variables not set")
	}

	// Wire the pipeline
	store, err := storage.NewS3Store(context.Background(), storage.S3Config{
		AccessKeyID:     cfg.AWSAccessKeyID,
		SecretAccessKey: cfg.AWSSecretAccessKey,
		Region:          cfg.AWSRegion,
		Bucket:          cfg.S3Bucket,
	}, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize S3 store")
	}

	visionClient := llm.NewClient(cfg.OpenAIAPIKey, cfg.LLMModel, logger)
	analyzer := analyze.NewAnalyzer(visionClient, logger)
	extractor := pdf.NewExtractor()
	builder := artifacts.NewBuilder(logger)
	notifier := callback.NewNotifier(cfg.CallbackURL, cfg.CallbackSecret, logger)

	runner := pipeline.NewRunner(logger, store, extractor, analyzer, builder, notifier)

	// Initialize router
	router := NewRouter(logger, cfg, runner)

	// Create server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start server in goroutine
	serverErrors := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", addr).Msg("HTTP server listening")
		serverErrors <- srv.ListenAndServe()
	}()

	// Wait for interrupt or error
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		logger.Error().Err(err).Msg("Server error")
	case sig := <-shutdown:
		logger.Info().Str("signal", sig.String()).Msg("Shutdown signal received")
	}

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.GracefulShutdown)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("Graceful shutdown failed")
		if err := srv.Close(); err != nil {
			logger.Error().Err(err).Msg("Forced shutdown failed")
		}
	}

	logger.Info().Msg("Server stopped")
}
