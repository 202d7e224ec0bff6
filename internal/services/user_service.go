package services

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"certifyrpg/internal/models"
	"certifyrpg/internal/store"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLength = 8

type UserService struct {
	store        store.LedgerStore
	balance      *BalanceService
	referrals    *ReferralService
	welcomeBonus int64
	adminEmails  map[string]bool
	logger       zerolog.Logger
}

func NewUserService(s store.LedgerStore, balance *BalanceService, referrals *ReferralService, welcomeBonus int64, adminEmails []string, logger zerolog.Logger) *UserService {
	admins := make(map[string]bool, len(adminEmails))
	for _, e := range adminEmails {
		admins[strings.ToLower(strings.TrimSpace(e))] = true
	}
	return &UserService{
		store:        s,
		balance:      balance,
		referrals:    referrals,
		welcomeBonus: welcomeBonus,
		adminEmails:  admins,
		logger:       logger,
	}
}

// Register creates the user, opens its credit account and grants the welcome
// bonus. The account id is the user id. A valid referral code also rewards
// the referrer.
func (s *UserService) Register(ctx context.Context, req *models.RegisterRequest) (*models.User, *models.Account, error) {
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)
	if req.Username == "" || req.Email == "" || req.Password == "" {
		return nil, nil, fmt.Errorf("%w: username, email, and password are required", ErrInvalidRequest)
	}
	if _, err := mail.ParseAddress(req.Email); err != nil {
		return nil, nil, fmt.Errorf("%w: invalid email address", ErrInvalidRequest)
	}
	if len(req.Password) < minPasswordLength {
		return nil, nil, fmt.Errorf("%w: password must be at least %d characters", ErrInvalidRequest, minPasswordLength)
	}

	exists, err := s.store.UserExists(ctx, req.Email, req.Username)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrLedgerUnavailable, err)
	}
	if exists {
		return nil, nil, ErrUserExists
	}

	var referrer *models.User
	if req.ReferralCode != "" {
		if referrer, err = s.referrals.Resolve(ctx, req.ReferralCode); err != nil {
			return nil, nil, err
		}
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error().Err(err).Msg("Error hashing password")
		return nil, nil, fmt.Errorf("failed to hash password: %w", err)
	}

	role := string(models.RoleUser)
	if s.adminEmails[strings.ToLower(req.Email)] {
		role = string(models.RoleAdmin)
	}

	user := &models.User{
		ID:           uuid.New().String(),
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: string(hashedPassword),
		Role:         role,
		ReferralCode: NewCode(),
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrLedgerUnavailable, err)
	}

	if _, err := s.store.CreateAccount(ctx, user.ID); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrLedgerUnavailable, err)
	}

	if s.welcomeBonus > 0 {
		_, err := s.balance.Credit(ctx, &models.CreditRequest{
			AccountID:   user.ID,
			Amount:      s.welcomeBonus,
			Kind:        models.KindReward,
			Description: "Welcome bonus",
			ExternalID:  "welcome-bonus:" + user.ID,
		})
		if err != nil && !errors.Is(err, models.ErrDuplicateTransaction) {
			return nil, nil, err
		}
	}

	if referrer != nil {
		if _, err := s.referrals.Reward(ctx, referrer.ID, user.ID); err != nil {
			s.logger.Warn().Err(err).Str("user_id", user.ID).Msg("Referral reward not applied")
		}
	}

	account, err := s.store.GetAccount(ctx, user.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrLedgerUnavailable, err)
	}

	s.logger.Info().Str("user_id", user.ID).Str("email", user.Email).Msg("User registered successfully")
	return user, account, nil
}

func (s *UserService) Authenticate(ctx context.Context, req *models.LoginRequest) (*models.User, error) {
	if req.Email == "" || req.Password == "" {
		return nil, fmt.Errorf("%w: email and password are required", ErrInvalidRequest)
	}

	user, err := s.store.GetUserByEmail(ctx, strings.TrimSpace(req.Email))
	if errors.Is(err, models.ErrUserNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		s.logger.Error().Err(err).Msg("Error querying user")
		return nil, fmt.Errorf("%w: %v", ErrLedgerUnavailable, err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		s.logger.Warn().Str("email", req.Email).Msg("Failed authentication attempt")
		return nil, ErrInvalidCredentials
	}

	s.logger.Info().Str("user_id", user.ID).Str("email", user.Email).Msg("User authenticated successfully")
	return user, nil
}

func (s *UserService) GetUserByID(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil && !errors.Is(err, models.ErrUserNotFound) {
		s.logger.Error().Err(err).Str("user_id", userID).Msg("Error fetching user")
		return nil, fmt.Errorf("%w: %v", ErrLedgerUnavailable, err)
	}
	return user, err
}
