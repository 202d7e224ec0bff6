package handlers

import (
	"net/http"

	"certifyrpg/internal/middleware"
	"certifyrpg/internal/models"
	"certifyrpg/internal/services"

	"github.com/rs/zerolog"
)

type AuthHandler struct {
	userService *services.UserService
	authService *services.AuthService
	balance     *services.BalanceService
	logger      zerolog.Logger
}

func NewAuthHandler(userService *services.UserService, authService *services.AuthService, balance *services.BalanceService, logger zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		userService: userService,
		authService: authService,
		balance:     balance,
		logger:      logger,
	}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid_request", "Invalid request body")
		return
	}

	user, account, err := h.userService.Register(r.Context(), &req)
	if err != nil {
		h.logger.Warn().Err(err).Msg("Registration failed")
		respondWithServiceError(w, h.logger, err)
		return
	}

	h.respondWithTokens(w, http.StatusCreated, user, account)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid_request", "Invalid request body")
		return
	}

	user, err := h.userService.Authenticate(r.Context(), &req)
	if err != nil {
		respondWithServiceError(w, h.logger, err)
		return
	}

	summary, err := h.balance.GetAccount(r.Context(), user.ID)
	if err != nil {
		respondWithServiceError(w, h.logger, err)
		return
	}

	h.respondWithTokens(w, http.StatusOK, user, summary.Account)
}

func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req models.RefreshRequest
	if err := decodeJSON(w, r, &req); err != nil || req.RefreshToken == "" {
		respondWithError(w, http.StatusBadRequest, "invalid_request", "refreshToken is required")
		return
	}

	token, err := h.authService.RefreshToken(r.Context(), req.RefreshToken)
	if err != nil {
		respondWithServiceError(w, h.logger, err)
		return
	}

	respondWithJSON(w, http.StatusOK, models.AuthResponse{Token: token})
}

// Me returns the caller's profile and credit account.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "unauthorized", "User not authenticated")
		return
	}

	user, err := h.userService.GetUserByID(r.Context(), userID)
	if err != nil {
		respondWithServiceError(w, h.logger, err)
		return
	}
	summary, err := h.balance.GetAccount(r.Context(), userID)
	if err != nil {
		respondWithServiceError(w, h.logger, err)
		return
	}

	respondWithJSON(w, http.StatusOK, models.AuthResponse{User: user, Account: summary.Account})
}

func (h *AuthHandler) respondWithTokens(w http.ResponseWriter, code int, user *models.User, account *models.Account) {
	token, err := h.authService.GenerateToken(user)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "token_generation_failed", "Failed to generate token")
		return
	}
	refresh, err := h.authService.GenerateRefreshToken(user.ID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "token_generation_failed", "Failed to generate token")
		return
	}

	respondWithJSON(w, code, models.AuthResponse{
		User:         user,
		Account:      account,
		Token:        token,
		RefreshToken: refresh,
	})
}
