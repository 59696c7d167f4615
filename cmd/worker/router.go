// Package main provides the worker router setup.
package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/lecturalab/slide-worker/cmd/worker/handlers"
	"github.com/lecturalab/slide-worker/internal/config"
	"github.com/lecturalab/slide-worker/internal/observability"
)

// NewRouter creates the API router with all routes configured.
func NewRouter(logger *observability.Logger, cfg *config.Config, runner handlers.JobProcessor) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)

	healthHandler := handlers.NewHealthHandler(logger, cfg.Missing)
	processHandler := handlers.NewProcessHandler(logger, runner)

	r.Get("/health", healthHandler.Health)
	r.Post("/process", processHandler.Process)

	return r
}
