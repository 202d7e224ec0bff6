package handlers

import (
	"net/http"

	"certifyrpg/internal/middleware"
	"certifyrpg/internal/models"
	"certifyrpg/internal/services"

	"github.com/rs/zerolog"
)

type CertificateHandler struct {
	certificates *services.CertificateService
	logger       zerolog.Logger
}

func NewCertificateHandler(certificates *services.CertificateService, logger zerolog.Logger) *CertificateHandler {
	return &CertificateHandler{
		certificates: certificates,
		logger:       logger,
	}
}

func (h *CertificateHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "unauthorized", "User not authenticated")
		return
	}

	var req models.CertificateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid_request", "Invalid request body")
		return
	}

	result, err := h.certificates.Create(r.Context(), userID, &req)
	if err != nil {
		respondWithServiceError(w, h.logger, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, result)
}

func (h *CertificateHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "unauthorized", "User not authenticated")
		return
	}

	limit, offset := pagination(r)
	certs, err := h.certificates.List(r.Context(), userID, limit, offset)
	if err != nil {
		respondWithServiceError(w, h.logger, err)
		return
	}
	if certs == nil {
		certs = []*models.Certificate{}
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{"certificates": certs})
}
