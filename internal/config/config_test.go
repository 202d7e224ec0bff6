package config

import (
	"testing"
	"time"
)

func TestFromEnv_Defaults(t *testing.T) {
	for _, k := range []string{"PORT", "STORE_DRIVER", "DB_URL", "WELCOME_BONUS", "LLM_TIMEOUT", "RATE_LIMIT_RPS", "RATE_LIMIT_BURST", "JWT_SECRET", "OPENAI_MODEL"} {
		t.Setenv(k, "")
	}

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv failed: %v", err)
	}

	if cfg.Port != "8080" {
		t.Errorf("Expected port 8080, got %s", cfg.Port)
	}
	if cfg.StoreDriver != "sqlite" || cfg.DBUrl != "certifyrpg.db" {
		t.Errorf("Expected sqlite default store, got %s %s", cfg.StoreDriver, cfg.DBUrl)
	}
	if cfg.WelcomeBonus != 100 {
		t.Errorf("Expected welcome bonus 100, got %d", cfg.WelcomeBonus)
	}
	if cfg.LLMTimeout != 60*time.Second {
		t.Errorf("Expected 60s LLM timeout, got %s", cfg.LLMTimeout)
	}
	if cfg.RateLimitRPS != 10 || cfg.RateLimitBurst != 20 {
		t.Errorf("Expected 10/20 rate limit, got %v/%d", cfg.RateLimitRPS, cfg.RateLimitBurst)
	}
	if !cfg.UsesDefaultSecret() {
		t.Error("Expected default JWT secret")
	}
	if cfg.OpenAIModel != "gpt-4" {
		t.Errorf("Expected gpt-4, got %s", cfg.OpenAIModel)
	}
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("STORE_DRIVER", "MEMORY")
	t.Setenv("LLM_TIMEOUT", "15s")
	t.Setenv("WELCOME_BONUS", "25")
	t.Setenv("ADMIN_EMAILS", "a@example.com, b@example.com ,")

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv failed: %v", err)
	}
	if cfg.StoreDriver != "memory" {
		t.Errorf("Expected memory store, got %s", cfg.StoreDriver)
	}
	if cfg.LLMTimeout != 15*time.Second || cfg.WelcomeBonus != 25 {
		t.Errorf("Unexpected overrides: %s %d", cfg.LLMTimeout, cfg.WelcomeBonus)
	}
	if len(cfg.AdminEmails) != 2 || cfg.AdminEmails[1] != "b@example.com" {
		t.Errorf("Unexpected admin emails: %v", cfg.AdminEmails)
	}
}

func TestFromEnv_Invalid(t *testing.T) {
	tests := []struct {
		name, key, value string
	}{
		{"duration", "LLM_TIMEOUT", "soon"},
		{"bonus", "WELCOME_BONUS", "lots"},
		{"negative bonus", "WELCOME_BONUS", "-1"},
		{"rps", "RATE_LIMIT_RPS", "fast"},
		{"burst", "RATE_LIMIT_BURST", "1.5"},
		{"driver", "STORE_DRIVER", "postgres"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("STORE_DRIVER", "memory")
			t.Setenv(tt.key, tt.value)
			if _, err := FromEnv(); err == nil {
				t.Errorf("Expected error for %s=%s", tt.key, tt.value)
			}
		})
	}

	t.Run("mysql without dsn", func(t *testing.T) {
		t.Setenv("STORE_DRIVER", "mysql")
		t.Setenv("DB_URL", "")
		if _, err := FromEnv(); err == nil {
			t.Error("Expected error for mysql without DB_URL")
		}
	})
}
