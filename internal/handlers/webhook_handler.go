package handlers

import (
	"errors"
	"io"
	"net/http"

	"certifyrpg/internal/services"

	"github.com/rs/zerolog"
)

const maxWebhookBody = 1 << 20

type WebhookHandler struct {
	settlement *services.SettlementService
	logger     zerolog.Logger
}

func NewWebhookHandler(settlement *services.SettlementService, logger zerolog.Logger) *WebhookHandler {
	return &WebhookHandler{
		settlement: settlement,
		logger:     logger,
	}
}

// Stripe answers 4xx for events that will never succeed and 5xx for those
// the provider should redeliver.
func (h *WebhookHandler) Stripe(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBody))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid_request", "Unable to read request body")
		return
	}

	signature := r.Header.Get("Stripe-Signature")
	if signature == "" {
		respondWithError(w, http.StatusBadRequest, "missing_signature", "Stripe-Signature header is required")
		return
	}

	outcome, err := h.settlement.SettlePurchase(r.Context(), payload, signature)
	switch {
	case errors.Is(err, services.ErrInvalidSignature):
		respondWithError(w, http.StatusBadRequest, "invalid_signature", "Webhook signature verification failed")
		return
	case errors.Is(err, services.ErrMalformedEvent):
		h.logger.Warn().Err(err).Msg("Malformed webhook event")
		respondWithError(w, http.StatusBadRequest, "malformed_event", err.Error())
		return
	case err != nil:
		h.logger.Error().Err(err).Msg("Webhook processing failed")
		respondWithError(w, http.StatusInternalServerError, "processing_failed", "Webhook processing failed")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"received": true,
		"outcome":  outcome,
	})
}
