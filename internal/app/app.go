// Package app assembles the store and services from configuration.
package app

import (
	"context"
	"fmt"
	"net/http"

	"certifyrpg/internal/catalog"
	"certifyrpg/internal/config"
	"certifyrpg/internal/db"
	"certifyrpg/internal/handlers"
	"certifyrpg/internal/llm"
	"certifyrpg/internal/payments"
	"certifyrpg/internal/router"
	"certifyrpg/internal/services"
	"certifyrpg/internal/store"
	"certifyrpg/internal/store/memory"

	"github.com/rs/zerolog"
)

type App struct {
	Store        store.LedgerStore
	Balance      *services.BalanceService
	Users        *services.UserService
	Auth         *services.AuthService
	Referrals    *services.ReferralService
	Generations  *services.GenerationService
	Certificates *services.CertificateService
	Settlement   *services.SettlementService
	Checkout     *services.CheckoutService
}

// OpenStore connects the configured ledger backend and migrates SQL schemas.
func OpenStore(ctx context.Context, cfg config.Config, logger zerolog.Logger) (store.LedgerStore, error) {
	if cfg.StoreDriver == "memory" {
		logger.Warn().Msg("Using in-memory store, data is lost on exit")
		return memory.New(), nil
	}

	dialect, err := db.ParseDialect(cfg.StoreDriver)
	if err != nil {
		return nil, err
	}

	conn, err := db.InitDB(ctx, dialect, cfg.DBUrl)
	if err != nil {
		return nil, err
	}
	if err := db.RunMigrations(ctx, conn, dialect); err != nil {
		conn.Close()
		return nil, err
	}

	logger.Info().Str("driver", string(dialect)).Msg("Ledger store ready")
	return db.NewStore(conn, dialect, logger), nil
}

// New wires the services on top of s with the production providers.
func New(cfg config.Config, s store.LedgerStore, logger zerolog.Logger) (*App, error) {
	products, err := catalog.Load(cfg.ProductsFile)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}

	var llmClient llm.Client = llm.NewOpenAIClient(cfg.OpenAIKey, cfg.OpenAIModel, logger)
	if cfg.OpenAIBaseURL != "" {
		llmClient = llm.NewOpenAIClientWithBaseURL(cfg.OpenAIKey, cfg.OpenAIBaseURL, cfg.OpenAIModel, logger)
	}
	checkout := payments.NewStripeCheckout(cfg.StripeSecretKey, cfg.Currency, logger)

	return NewWithProviders(cfg, s, products, llmClient, checkout, logger), nil
}

func NewWithProviders(cfg config.Config, s store.LedgerStore, products *catalog.Catalog, llmClient llm.Client, checkout services.CheckoutProvider, logger zerolog.Logger) *App {
	balance := services.NewBalanceService(s, logger)
	referrals := services.NewReferralService(s, balance, logger)
	users := services.NewUserService(s, balance, referrals, cfg.WelcomeBonus, cfg.AdminEmails, logger)

	return &App{
		Store:        s,
		Balance:      balance,
		Users:        users,
		Auth:         services.NewAuthService(cfg.JWTSecret, users, logger),
		Referrals:    referrals,
		Generations:  services.NewGenerationService(s, balance, llmClient, cfg.LLMTimeout, logger),
		Certificates: services.NewCertificateService(s, balance, logger),
		Settlement:   services.NewSettlementService(balance, cfg.StripeWebhookSecret, logger),
		Checkout:     services.NewCheckoutService(products, balance, checkout, cfg.AppURL, logger),
	}
}

func (a *App) Router(cfg config.Config, logger zerolog.Logger) http.Handler {
	return router.SetupRouter(router.Handlers{
		Auth:         handlers.NewAuthHandler(a.Users, a.Auth, a.Balance, logger),
		Credits:      handlers.NewCreditsHandler(a.Balance, a.Checkout, logger),
		AI:           handlers.NewAIHandler(a.Generations, logger),
		Certificates: handlers.NewCertificateHandler(a.Certificates, logger),
		Webhook:      handlers.NewWebhookHandler(a.Settlement, logger),
		Admin:        handlers.NewAdminHandler(a.Balance, logger),
	}, router.Options{
		Verifier:       a.Auth,
		RateLimitRPS:   cfg.RateLimitRPS,
		RateLimitBurst: cfg.RateLimitBurst,
	}, logger)
}
