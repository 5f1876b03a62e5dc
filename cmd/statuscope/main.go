// Package main provides the entrypoint for the statuscope daemon: it
// reconciles the status backend's product catalog and serves it over a
// local HTTP API.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/statuscope/statuscope/internal/api"
	"github.com/statuscope/statuscope/internal/config"
	"github.com/statuscope/statuscope/internal/dashboard"
	"github.com/statuscope/statuscope/internal/status/productsapi"
	"github.com/statuscope/statuscope/internal/telemetry"
)

// Version and BuildTime are set at compile time via ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	const serviceName = "statuscope"

	log := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("service", serviceName).
		Str("version", Version).
		Logger()

	log.Info().
		Str("build_time", BuildTime).
		Msg("starting statuscope")

	cfg := config.Load()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tp, err := telemetry.Init(ctx, telemetry.Config{
		ServiceName:    serviceName,
		ServiceVersion: Version,
		Environment:    cfg.Environment,
		OTLPEndpoint:   cfg.OTLPEndpoint,
		Enabled:        cfg.OTELEnabled,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize telemetry")
	}
	defer func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if shutdownErr := tp.Shutdown(shutdownCtx); shutdownErr != nil {
			log.Error().Err(shutdownErr).Msg("failed to shutdown telemetry")
		}
	}()

	client := productsapi.NewClient(productsapi.ClientConfig{
		BaseURL: cfg.BackendBaseURL,
		Timeout: cfg.RequestTimeout,
	})
	log.Info().Str("backend", cfg.BackendBaseURL).Msg("backend client initialized")

	reconciler := dashboard.NewReconciler(dashboard.ReconcilerConfig{
		API:             client,
		Logger:          log,
		Tracer:          tp.Tracer,
		PageSize:        cfg.PageSize,
		RefreshInterval: cfg.RefreshInterval,
		DebounceDelay:   cfg.DebounceDelay,
	})
	if err := reconciler.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to start reconciler")
	}
	defer reconciler.Stop()

	coordinator := dashboard.NewCoordinator(client, reconciler, log)

	router := api.NewRouter(api.RouterConfig{
		Version:     Version,
		BuildTime:   BuildTime,
		Logger:      log,
		Reconciler:  reconciler,
		Coordinator: coordinator,
	})

	server := &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Info().Str("addr", cfg.ListenAddr).Msg("local API listening")
		if serveErr := server.ListenAndServe(); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			log.Error().Err(serveErr).Msg("local API server failed")
			cancel()
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}
}
