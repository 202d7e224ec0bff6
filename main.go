package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"certifyrpg/internal/app"
	"certifyrpg/internal/config"
	"certifyrpg/internal/logger"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		bootLog := logger.InitLogger("info")
		bootLog.Fatal().Err(err).Msg("Invalid configuration")
	}

	log := logger.InitLogger(cfg.LogLevel)
	log.Info().Msg("Starting credit service")
	if cfg.UsesDefaultSecret() {
		log.Warn().Msg("JWT_SECRET not set, using default key")
	}
	if cfg.StripeWebhookSecret == "" {
		log.Warn().Msg("STRIPE_WEBHOOK_SECRET not set, every webhook will be rejected")
	}

	ctx := context.Background()
	ledger, err := app.OpenStore(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Unable to open ledger store")
	}
	defer ledger.Close()

	a, err := app.New(cfg, ledger, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Unable to build application")
	}

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           a.Router(cfg, log),
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      cfg.LLMTimeout + 30*time.Second,
	}

	go func() {
		log.Info().Msgf("Server listening on port %s", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Graceful shutdown failed")
	}

	log.Info().Msg("Server stopped")
}
