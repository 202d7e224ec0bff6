package handlers

import (
	"net/http"

	"certifyrpg/internal/middleware"
	"certifyrpg/internal/models"
	"certifyrpg/internal/services"

	"github.com/rs/zerolog"
)

type CreditsHandler struct {
	balance  *services.BalanceService
	checkout *services.CheckoutService
	logger   zerolog.Logger
}

func NewCreditsHandler(balance *services.BalanceService, checkout *services.CheckoutService, logger zerolog.Logger) *CreditsHandler {
	return &CreditsHandler{
		balance:  balance,
		checkout: checkout,
		logger:   logger,
	}
}

func (h *CreditsHandler) GetCredits(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "unauthorized", "User not authenticated")
		return
	}

	summary, err := h.balance.GetAccount(r.Context(), userID)
	if err != nil {
		respondWithServiceError(w, h.logger, err)
		return
	}

	respondWithJSON(w, http.StatusOK, summary)
}

func (h *CreditsHandler) GetTransactions(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "unauthorized", "User not authenticated")
		return
	}

	limit, offset := pagination(r)
	history, err := h.balance.GetHistory(r.Context(), userID, limit, offset)
	if err != nil {
		respondWithServiceError(w, h.logger, err)
		return
	}
	if history == nil {
		history = []*models.Transaction{}
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"transactions": history,
		"limit":        limit,
		"offset":       offset,
	})
}

func (h *CreditsHandler) GetProducts(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "unauthorized", "User not authenticated")
		return
	}

	offers, err := h.checkout.Offers(r.Context(), userID)
	if err != nil {
		respondWithServiceError(w, h.logger, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{"products": offers})
}

func (h *CreditsHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "unauthorized", "User not authenticated")
		return
	}

	var req models.CheckoutRequest
	if err := decodeJSON(w, r, &req); err != nil || req.ProductKey == "" {
		respondWithError(w, http.StatusBadRequest, "invalid_request", "productKey is required")
		return
	}

	session, err := h.checkout.CreateSession(r.Context(), userID, req.ProductKey)
	if err != nil {
		respondWithServiceError(w, h.logger, err)
		return
	}

	respondWithJSON(w, http.StatusOK, session)
}
