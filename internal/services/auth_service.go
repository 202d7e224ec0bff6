package services

import (
	"context"
	"errors"
	"time"

	"certifyrpg/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
)

const (
	accessTokenTTL  = 24 * time.Hour
	refreshTokenTTL = 7 * 24 * time.Hour

	tokenUseAccess  = "access"
	tokenUseRefresh = "refresh"
)

var ErrInvalidToken = errors.New("invalid token")

type AuthService struct {
	secretKey []byte
	users     *UserService
	logger    zerolog.Logger
}

type Claims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email,omitempty"`
	Role   string `json:"role,omitempty"`
	Use    string `json:"use"`
	jwt.RegisteredClaims
}

func NewAuthService(secret string, users *UserService, logger zerolog.Logger) *AuthService {
	return &AuthService{
		secretKey: []byte(secret),
		users:     users,
		logger:    logger,
	}
}

func (s *AuthService) GenerateToken(user *models.User) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
		Use:    tokenUseAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			ExpiresAt: jwt.NewNumericDate(now.Add(accessTokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}
	return s.sign(claims)
}

func (s *AuthService) GenerateRefreshToken(userID string) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID: userID,
		Use:    tokenUseRefresh,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(now.Add(refreshTokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	return s.sign(claims)
}

func (s *AuthService) sign(claims *Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.secretKey)
	if err != nil {
		s.logger.Error().Err(err).Msg("Error generating token")
		return "", err
	}
	return tokenString, nil
}

func (s *AuthService) ValidateToken(tokenString string) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return s.secretKey, nil
	})
	if err != nil {
		return nil, errors.Join(ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

// VerifyAccess accepts only unexpired access tokens that name a user.
func (s *AuthService) VerifyAccess(tokenString string) (models.Principal, error) {
	claims, err := s.ValidateToken(tokenString)
	if err != nil {
		return models.Principal{}, err
	}
	if claims.Use != tokenUseAccess || claims.UserID == "" {
		return models.Principal{}, ErrInvalidToken
	}
	return models.Principal{UserID: claims.UserID, Email: claims.Email, Role: claims.Role}, nil
}

// RefreshToken exchanges a refresh token for a new access token, reloading
// the user so role changes take effect.
func (s *AuthService) RefreshToken(ctx context.Context, refreshToken string) (string, error) {
	claims, err := s.ValidateToken(refreshToken)
	if err != nil {
		return "", err
	}
	if claims.Use != tokenUseRefresh {
		return "", ErrInvalidToken
	}

	user, err := s.users.GetUserByID(ctx, claims.UserID)
	if err != nil {
		return "", err
	}
	return s.GenerateToken(user)
}
