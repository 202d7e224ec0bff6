package router

import (
	"net/http"

	"certifyrpg/internal/handlers"
	"certifyrpg/internal/middleware"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

type Handlers struct {
	Auth         *handlers.AuthHandler
	Credits      *handlers.CreditsHandler
	AI           *handlers.AIHandler
	Certificates *handlers.CertificateHandler
	Webhook      *handlers.WebhookHandler
	Admin        *handlers.AdminHandler
}

type Options struct {
	Verifier       middleware.AccessVerifier
	RateLimitRPS   float64
	RateLimitBurst int
}

// SetupRouter wraps the routes in CORS so preflight requests are answered
// before method matching.
func SetupRouter(h Handlers, opts Options, logger zerolog.Logger) http.Handler {
	r := mux.NewRouter()

	rateLimiter := middleware.NewRateLimiter(rate.Limit(opts.RateLimitRPS), opts.RateLimitBurst)
	authenticate := middleware.Authentication(opts.Verifier, logger)

	r.Use(middleware.Observe(logger))
	r.Use(middleware.Recover(logger))
	r.Use(middleware.SecurityHeaders())

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")
	r.Handle("/metrics", promhttp.Handler()).Methods("GET")

	api := r.PathPrefix("/api/v1").Subrouter()

	// Provider callbacks are signed and must not be throttled per address.
	api.HandleFunc("/stripe/webhook", h.Webhook.Stripe).Methods("POST")

	auth := api.PathPrefix("/auth").Subrouter()
	auth.Use(rateLimiter.Middleware())
	auth.Use(middleware.RequireJSON())
	auth.HandleFunc("/register", h.Auth.Register).Methods("POST")
	auth.HandleFunc("/login", h.Auth.Login).Methods("POST")
	auth.HandleFunc("/refresh", h.Auth.Refresh).Methods("POST")

	protected := api.NewRoute().Subrouter()
	protected.Use(rateLimiter.Middleware())
	protected.Use(authenticate)
	protected.Use(middleware.RequireJSON())

	protected.HandleFunc("/users/me", h.Auth.Me).Methods("GET")

	protected.HandleFunc("/credits", h.Credits.GetCredits).Methods("GET")
	protected.HandleFunc("/credits/transactions", h.Credits.GetTransactions).Methods("GET")
	protected.HandleFunc("/credits/products", h.Credits.GetProducts).Methods("GET")
	protected.HandleFunc("/credits/checkout", h.Credits.Checkout).Methods("POST")

	protected.HandleFunc("/ai/generate", h.AI.Generate).Methods("POST")
	protected.HandleFunc("/ai/generations", h.AI.ListGenerations).Methods("GET")

	protected.HandleFunc("/certificates", h.Certificates.Create).Methods("POST")
	protected.HandleFunc("/certificates", h.Certificates.List).Methods("GET")

	admin := protected.PathPrefix("/admin").Subrouter()
	admin.Use(middleware.RequireAdmin())
	admin.HandleFunc("/accounts/{id}/reconcile", h.Admin.Reconcile).Methods("POST")
	admin.HandleFunc("/accounts/{id}/bonus", h.Admin.GrantBonus).Methods("POST")

	return middleware.CORS()(r)
}
