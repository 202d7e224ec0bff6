package handlers

import (
	"errors"
	"net/http"
	"time"

	"certifyrpg/internal/services"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
)

type AdminHandler struct {
	balance *services.BalanceService
	logger  zerolog.Logger
}

func NewAdminHandler(balance *services.BalanceService, logger zerolog.Logger) *AdminHandler {
	return &AdminHandler{
		balance: balance,
		logger:  logger,
	}
}

func (h *AdminHandler) Reconcile(w http.ResponseWriter, r *http.Request) {
	accountID := mux.Vars(r)["id"]

	err := h.balance.Reconcile(r.Context(), accountID)
	if err != nil && !errors.Is(err, services.ErrBalanceMismatch) {
		respondWithServiceError(w, h.logger, err)
		return
	}

	resp := map[string]interface{}{
		"account_id": accountID,
		"consistent": err == nil,
	}
	if err != nil {
		resp["detail"] = err.Error()
	}
	respondWithJSON(w, http.StatusOK, resp)
}

func (h *AdminHandler) GrantBonus(w http.ResponseWriter, r *http.Request) {
	accountID := mux.Vars(r)["id"]
	period := r.URL.Query().Get("period")
	if period == "" {
		period = time.Now().UTC().Format("2006-01")
	}

	tx, err := h.balance.GrantMonthlyBonus(r.Context(), accountID, period)
	if err != nil {
		respondWithServiceError(w, h.logger, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"account_id":  accountID,
		"period":      period,
		"granted":     tx != nil,
		"transaction": tx,
	})
}
