package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const defaultJWTSecret = "default-secret-key-change-in-production"

type Config struct {
	Port         string
	StoreDriver  string
	DBUrl        string
	JWTSecret    string
	AdminEmails  []string
	LogLevel     string
	WelcomeBonus int64

	StripeSecretKey     string
	StripeWebhookSecret string
	Currency            string
	AppURL              string
	ProductsFile        string

	OpenAIKey     string
	OpenAIModel   string
	OpenAIBaseURL string
	LLMTimeout    time.Duration

	RateLimitRPS   float64
	RateLimitBurst int
}

// LoadConfig reads .env when present and then the process environment.
func LoadConfig() (Config, error) {
	_ = godotenv.Load()
	return FromEnv()
}

func FromEnv() (Config, error) {
	cfg := Config{
		Port:                getEnv("PORT", "8080"),
		StoreDriver:         strings.ToLower(getEnv("STORE_DRIVER", "sqlite")),
		DBUrl:               os.Getenv("DB_URL"),
		JWTSecret:           getEnv("JWT_SECRET", defaultJWTSecret),
		AdminEmails:         splitList(os.Getenv("ADMIN_EMAILS")),
		LogLevel:            getEnv("LOG_LEVEL", "info"),
		StripeSecretKey:     os.Getenv("STRIPE_SECRET_KEY"),
		StripeWebhookSecret: os.Getenv("STRIPE_WEBHOOK_SECRET"),
		Currency:            strings.ToLower(getEnv("CURRENCY", "brl")),
		AppURL:              getEnv("APP_URL", "http://localhost:3000"),
		ProductsFile:        os.Getenv("PRODUCTS_FILE"),
		OpenAIKey:           os.Getenv("OPENAI_API_KEY"),
		OpenAIModel:         getEnv("OPENAI_MODEL", "gpt-4"),
		OpenAIBaseURL:       os.Getenv("OPENAI_BASE_URL"),
	}

	var err error
	if cfg.WelcomeBonus, err = getInt64("WELCOME_BONUS", 100); err != nil {
		return Config{}, err
	}
	if cfg.LLMTimeout, err = getDuration("LLM_TIMEOUT", 60*time.Second); err != nil {
		return Config{}, err
	}
	if cfg.RateLimitRPS, err = getFloat("RATE_LIMIT_RPS", 10); err != nil {
		return Config{}, err
	}
	burst, err := getInt64("RATE_LIMIT_BURST", 20)
	if err != nil {
		return Config{}, err
	}
	cfg.RateLimitBurst = int(burst)

	switch cfg.StoreDriver {
	case "mysql":
		if cfg.DBUrl == "" {
			return Config{}, fmt.Errorf("DB_URL is required when STORE_DRIVER=mysql")
		}
	case "sqlite", "sqlite3":
		if cfg.DBUrl == "" {
			cfg.DBUrl = "certifyrpg.db"
		}
	case "memory":
	default:
		return Config{}, fmt.Errorf("unsupported STORE_DRIVER %q", cfg.StoreDriver)
	}

	if cfg.WelcomeBonus < 0 {
		return Config{}, fmt.Errorf("WELCOME_BONUS must not be negative")
	}

	return cfg, nil
}

// UsesDefaultSecret reports whether JWT_SECRET was left unset.
func (c Config) UsesDefaultSecret() bool {
	return c.JWTSecret == defaultJWTSecret
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt64(key string, fallback int64) (int64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return n, nil
}

func getFloat(key string, fallback float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return f, nil
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return d, nil
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
