package app

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"certifyrpg/internal/config"
	"certifyrpg/internal/models"

	"github.com/rs/zerolog"
)

func testConfig(driver, dsn string) config.Config {
	return config.Config{
		StoreDriver:  driver,
		DBUrl:        dsn,
		JWTSecret:    "app-test-secret",
		WelcomeBonus: 100,
		Currency:     "brl",
		OpenAIModel:  "gpt-4",
		LLMTimeout:   time.Second,
	}
}

func TestOpenStoreBackends(t *testing.T) {
	ctx := context.Background()
	backends := []config.Config{
		testConfig("memory", ""),
		testConfig("sqlite", "file:"+filepath.Join(t.TempDir(), "app.db")),
	}

	for _, cfg := range backends {
		t.Run(cfg.StoreDriver, func(t *testing.T) {
			s, err := OpenStore(ctx, cfg, zerolog.Nop())
			if err != nil {
				t.Fatalf("OpenStore: %v", err)
			}

			a, err := New(cfg, s, zerolog.Nop())
			if err != nil {
				t.Fatalf("New: %v", err)
			}

			user, account, err := a.Users.Register(ctx, &models.RegisterRequest{
				Username: "gm", Email: "gm@example.com", Password: "s3cret-pass",
			})
			if err != nil {
				t.Fatalf("Register: %v", err)
			}
			if account.Balance != 100 {
				t.Errorf("Expected welcome balance 100, got %d", account.Balance)
			}
			if err := a.Balance.Reconcile(ctx, user.ID); err != nil {
				t.Errorf("Reconcile: %v", err)
			}
			offers, err := a.Checkout.Offers(ctx, user.ID)
			if err != nil || len(offers) != 4 {
				t.Errorf("Expected 4 offers, got %d (%v)", len(offers), err)
			}
		})
	}
}

func TestOpenStoreUnknownDriver(t *testing.T) {
	if _, err := OpenStore(context.Background(), testConfig("postgres", "x"), zerolog.Nop()); err == nil {
		t.Fatal("Expected error for unsupported driver")
	}
}

func TestNewMissingCatalog(t *testing.T) {
	cfg := testConfig("memory", "")
	cfg.ProductsFile = filepath.Join(t.TempDir(), "missing.yaml")

	s, _ := OpenStore(context.Background(), cfg, zerolog.Nop())
	if _, err := New(cfg, s, zerolog.Nop()); err == nil {
		t.Fatal("Expected error for missing products file")
	}
}
