package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"certifyrpg/internal/models"
	"certifyrpg/internal/services"

	"github.com/rs/zerolog"
)

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

type insufficientCreditsResponse struct {
	Error     string `json:"error"`
	Message   string `json:"message"`
	Required  int64  `json:"required"`
	Available int64  `json:"available"`
}

func respondWithError(w http.ResponseWriter, code int, errorCode, message string) {
	respondWithJSON(w, code, errorResponse{
		Error:   errorCode,
		Message: message,
	})
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(payload)
}

// respondWithServiceError maps service and store errors onto HTTP statuses.
func respondWithServiceError(w http.ResponseWriter, logger zerolog.Logger, err error) {
	var insufficient *models.InsufficientCreditsError
	switch {
	case errors.As(err, &insufficient):
		respondWithJSON(w, http.StatusPaymentRequired, insufficientCreditsResponse{
			Error:     "insufficient_credits",
			Message:   "Not enough credits for this action",
			Required:  insufficient.Required,
			Available: insufficient.Available,
		})
	case errors.Is(err, services.ErrInvalidRequest), errors.Is(err, models.ErrInvalidAmount):
		respondWithError(w, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.Is(err, services.ErrUnknownProduct):
		respondWithError(w, http.StatusBadRequest, "unknown_product", err.Error())
	case errors.Is(err, models.ErrAccountNotFound):
		respondWithError(w, http.StatusNotFound, "account_not_found", "Credit account not found")
	case errors.Is(err, models.ErrUserNotFound):
		respondWithError(w, http.StatusNotFound, "user_not_found", "User not found")
	case errors.Is(err, services.ErrUserExists):
		respondWithError(w, http.StatusConflict, "user_exists", err.Error())
	case errors.Is(err, services.ErrInvalidCredentials):
		respondWithError(w, http.StatusUnauthorized, "authentication_failed", "Invalid email or password")
	case errors.Is(err, services.ErrInvalidToken):
		respondWithError(w, http.StatusUnauthorized, "invalid_token", "Invalid or expired token")
	case errors.Is(err, services.ErrBalanceMismatch):
		respondWithError(w, http.StatusConflict, "balance_mismatch", err.Error())
	case errors.Is(err, services.ErrProviderUnavailable):
		respondWithError(w, http.StatusBadGateway, "provider_unavailable", "Upstream provider failed, no credits were charged")
	case errors.Is(err, services.ErrLedgerUnavailable):
		respondWithError(w, http.StatusServiceUnavailable, "ledger_unavailable", "Credit ledger is temporarily unavailable")
	default:
		logger.Error().Err(err).Msg("Unhandled service error")
		respondWithError(w, http.StatusInternalServerError, "internal_error", "An internal error occurred")
	}
}

// pagination reads limit and offset query parameters, ignoring bad values.
func pagination(r *http.Request) (limit, offset int) {
	limit, _ = strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ = strconv.Atoi(r.URL.Query().Get("offset"))
	if limit > 100 {
		limit = 100
	}
	return limit, offset
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	return dec.Decode(v)
}
