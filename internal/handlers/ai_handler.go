package handlers

import (
	"net/http"

	"certifyrpg/internal/middleware"
	"certifyrpg/internal/models"
	"certifyrpg/internal/services"

	"github.com/rs/zerolog"
)

type AIHandler struct {
	generations *services.GenerationService
	logger      zerolog.Logger
}

func NewAIHandler(generations *services.GenerationService, logger zerolog.Logger) *AIHandler {
	return &AIHandler{
		generations: generations,
		logger:      logger,
	}
}

func (h *AIHandler) Generate(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "unauthorized", "User not authenticated")
		return
	}

	var req models.GenerationRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid_request", "Invalid request body")
		return
	}

	result, err := h.generations.Generate(r.Context(), userID, &req)
	if err != nil {
		respondWithServiceError(w, h.logger, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, result)
}

func (h *AIHandler) ListGenerations(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "unauthorized", "User not authenticated")
		return
	}

	limit, offset := pagination(r)
	gens, err := h.generations.History(r.Context(), userID, limit, offset)
	if err != nil {
		respondWithServiceError(w, h.logger, err)
		return
	}
	if gens == nil {
		gens = []*models.Generation{}
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{"generations": gens})
}
