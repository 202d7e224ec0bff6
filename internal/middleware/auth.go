package middleware

import (
	"context"
	"net/http"
	"strings"

	"certifyrpg/internal/models"

	"github.com/rs/zerolog"
)

// AccessVerifier turns a bearer token into the caller's identity.
type AccessVerifier interface {
	VerifyAccess(token string) (models.Principal, error)
}

func Authentication(verifier AccessVerifier, logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				respondWithError(w, http.StatusUnauthorized, "missing_authorization", "Authorization header is required")
				return
			}

			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				respondWithError(w, http.StatusUnauthorized, "invalid_authorization", "Invalid authorization header format")
				return
			}

			principal, err := verifier.VerifyAccess(token)
			if err != nil {
				logger.Debug().Err(err).Str("request_id", RequestID(r)).Msg("Rejected bearer token")
				respondWithError(w, http.StatusUnauthorized, "invalid_token", "Invalid or expired token")
				return
			}

			ctx := context.WithValue(r.Context(), principalKey, principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin must run after Authentication.
func RequireAdmin() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, ok := GetPrincipal(r)
			if !ok || !principal.IsAdmin() {
				respondWithError(w, http.StatusForbidden, "forbidden", "Insufficient permissions")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func GetPrincipal(r *http.Request) (models.Principal, bool) {
	p, ok := r.Context().Value(principalKey).(models.Principal)
	return p, ok
}

func GetUserID(r *http.Request) (string, bool) {
	p, ok := GetPrincipal(r)
	return p.UserID, ok && p.UserID != ""
}
