package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"certifyrpg/internal/models"
	"certifyrpg/internal/store"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type ReferralService struct {
	store   store.LedgerStore
	balance *BalanceService
	logger  zerolog.Logger
}

func NewReferralService(s store.LedgerStore, balance *BalanceService, logger zerolog.Logger) *ReferralService {
	return &ReferralService{
		store:   s,
		balance: balance,
		logger:  logger,
	}
}

// NewCode returns a fresh shareable referral code.
func NewCode() string {
	return strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", "")[:8])
}

// Resolve returns the owner of a referral code.
func (s *ReferralService) Resolve(ctx context.Context, code string) (*models.User, error) {
	user, err := s.store.GetUserByReferralCode(ctx, strings.ToUpper(strings.TrimSpace(code)))
	if errors.Is(err, models.ErrUserNotFound) {
		return nil, fmt.Errorf("%w: unknown referral code", ErrInvalidRequest)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLedgerUnavailable, err)
	}
	return user, nil
}

// Reward credits the referrer once per referred user.
func (s *ReferralService) Reward(ctx context.Context, referrerID, referredID string) (*models.Transaction, error) {
	tx, err := s.balance.Credit(ctx, &models.CreditRequest{
		AccountID:   referrerID,
		Amount:      models.ReferralBonus,
		Kind:        models.KindReferral,
		Description: "Referral bonus",
		ReferenceID: referredID,
		ExternalID:  "referral:" + referredID,
	})
	if errors.Is(err, models.ErrDuplicateTransaction) {
		return nil, nil
	}
	if err != nil {
		s.logger.Error().Err(err).Str("account_id", referrerID).Str("referred_id", referredID).Msg("Referral bonus failed")
		return nil, err
	}

	s.logger.Info().Str("account_id", referrerID).Str("referred_id", referredID).Msg("Referral bonus granted")
	return tx, nil
}
