package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"certifyrpg/internal/metrics"
	"certifyrpg/internal/models"
	"certifyrpg/internal/store"

	"github.com/rs/zerolog"
)

const defaultHistoryLimit = 50

var periodPattern = regexp.MustCompile(`^\d{4}-(0[1-9]|1[0-2])$`)

type BalanceService struct {
	store  store.LedgerStore
	logger zerolog.Logger
}

func NewBalanceService(s store.LedgerStore, logger zerolog.Logger) *BalanceService {
	return &BalanceService{
		store:  s,
		logger: logger,
	}
}

// AuthorizeAndSpend debits cost credits in one atomic step. The balance check
// and the debit are never split, so concurrent spends cannot overdraw.
func (s *BalanceService) AuthorizeAndSpend(ctx context.Context, req *models.SpendRequest) (*models.SpendResult, error) {
	if req.Cost <= 0 {
		return nil, models.ErrInvalidAmount
	}
	if !req.Kind.Valid() {
		return nil, fmt.Errorf("%w: unknown transaction kind %q", ErrInvalidRequest, req.Kind)
	}

	tx, err := s.store.AppendTransaction(ctx, store.AppendParams{
		AccountID:   req.AccountID,
		Amount:      -req.Cost,
		Kind:        req.Kind,
		Description: req.Description,
		ReferenceID: req.ReferenceID,
	})
	if err != nil {
		if errors.Is(err, models.ErrInsufficientCredits) {
			metrics.InsufficientCredits.WithLabelValues(string(req.Kind)).Inc()
			s.logger.Info().
				Str("account_id", req.AccountID).
				Int64("cost", req.Cost).
				Msg("Spend rejected for insufficient credits")
			return nil, err
		}
		return nil, s.ledgerError(err, req.AccountID, "spend")
	}

	metrics.CreditsSpent.WithLabelValues(string(req.Kind)).Add(float64(req.Cost))
	s.logger.Info().
		Str("account_id", req.AccountID).
		Str("transaction_id", tx.ID).
		Str("reference_id", req.ReferenceID).
		Int64("cost", req.Cost).
		Int64("new_balance", tx.BalanceAfter).
		Msg("Credits spent")

	return &models.SpendResult{Transaction: tx, NewBalance: tx.BalanceAfter}, nil
}

// Credit adds credits to an account. A repeated ExternalID returns
// models.ErrDuplicateTransaction and leaves the balance unchanged.
func (s *BalanceService) Credit(ctx context.Context, req *models.CreditRequest) (*models.Transaction, error) {
	if req.Amount <= 0 {
		return nil, models.ErrInvalidAmount
	}
	if !req.Kind.Valid() {
		return nil, fmt.Errorf("%w: unknown transaction kind %q", ErrInvalidRequest, req.Kind)
	}

	tx, err := s.store.AppendTransaction(ctx, store.AppendParams{
		AccountID:   req.AccountID,
		Amount:      req.Amount,
		Kind:        req.Kind,
		Description: req.Description,
		ReferenceID: req.ReferenceID,
		ExternalID:  req.ExternalID,
	})
	if err != nil {
		if errors.Is(err, models.ErrDuplicateTransaction) {
			return nil, err
		}
		return nil, s.ledgerError(err, req.AccountID, "credit")
	}

	metrics.CreditsGranted.WithLabelValues(string(req.Kind)).Add(float64(req.Amount))
	s.logger.Info().
		Str("account_id", req.AccountID).
		Str("transaction_id", tx.ID).
		Str("kind", string(req.Kind)).
		Int64("amount", req.Amount).
		Int64("new_balance", tx.BalanceAfter).
		Msg("Credits added")

	return tx, nil
}

func (s *BalanceService) GetAccount(ctx context.Context, accountID string) (*models.AccountSummary, error) {
	account, err := s.store.GetAccount(ctx, accountID)
	if err != nil {
		return nil, s.ledgerError(err, accountID, "get account")
	}
	return &models.AccountSummary{
		Account:  account,
		Benefits: account.Tier.Benefits(),
	}, nil
}

func (s *BalanceService) GetBalance(ctx context.Context, accountID string) (int64, error) {
	balance, err := s.store.GetBalance(ctx, accountID)
	if err != nil {
		return 0, s.ledgerError(err, accountID, "get balance")
	}
	return balance, nil
}

func (s *BalanceService) GetHistory(ctx context.Context, accountID string, limit, offset int) ([]*models.Transaction, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	if offset < 0 {
		offset = 0
	}

	history, err := s.store.ListTransactions(ctx, accountID, limit, offset)
	if err != nil {
		return nil, s.ledgerError(err, accountID, "history")
	}
	return history, nil
}

// Reconcile compares the stored balance with the sum of the account's log.
func (s *BalanceService) Reconcile(ctx context.Context, accountID string) error {
	balance, err := s.store.GetBalance(ctx, accountID)
	if err != nil {
		return s.ledgerError(err, accountID, "reconcile")
	}

	calculated, err := s.store.SumTransactions(ctx, accountID)
	if err != nil {
		return s.ledgerError(err, accountID, "reconcile")
	}

	if balance != calculated {
		s.logger.Warn().
			Str("account_id", accountID).
			Int64("current_balance", balance).
			Int64("calculated_balance", calculated).
			Msg("Balance discrepancy detected")
		return fmt.Errorf("%w: account %s has %d, ledger sums to %d", ErrBalanceMismatch, accountID, balance, calculated)
	}

	return nil
}

// GrantMonthlyBonus credits the account's tier bonus for period (YYYY-MM).
// It returns a nil transaction when the tier has no bonus or the period was
// already granted.
func (s *BalanceService) GrantMonthlyBonus(ctx context.Context, accountID, period string) (*models.Transaction, error) {
	if !periodPattern.MatchString(period) {
		return nil, fmt.Errorf("%w: period must be YYYY-MM, got %q", ErrInvalidRequest, period)
	}

	account, err := s.store.GetAccount(ctx, accountID)
	if err != nil {
		return nil, s.ledgerError(err, accountID, "monthly bonus")
	}

	benefits := account.Tier.Benefits()
	if benefits.MonthlyBonus == 0 {
		return nil, nil
	}

	tx, err := s.Credit(ctx, &models.CreditRequest{
		AccountID:   accountID,
		Amount:      benefits.MonthlyBonus,
		Kind:        models.KindReward,
		Description: fmt.Sprintf("%s tier monthly bonus %s", benefits.Name, period),
		ExternalID:  fmt.Sprintf("monthly-bonus:%s:%s", accountID, period),
	})
	if errors.Is(err, models.ErrDuplicateTransaction) {
		s.logger.Debug().Str("account_id", accountID).Str("period", period).Msg("Monthly bonus already granted")
		return nil, nil
	}
	return tx, err
}

func (s *BalanceService) ListAccountIDs(ctx context.Context) ([]string, error) {
	ids, err := s.store.ListAccountIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLedgerUnavailable, err)
	}
	return ids, nil
}

// ledgerError passes domain errors through and wraps everything else as
// ErrLedgerUnavailable.
func (s *BalanceService) ledgerError(err error, accountID, op string) error {
	switch {
	case errors.Is(err, models.ErrInsufficientCredits),
		errors.Is(err, models.ErrAccountNotFound),
		errors.Is(err, models.ErrDuplicateTransaction),
		errors.Is(err, models.ErrInvalidAmount):
		return err
	}
	s.logger.Error().Err(err).Str("account_id", accountID).Str("op", op).Msg("Ledger store failure")
	return fmt.Errorf("%w: %s: %v", ErrLedgerUnavailable, op, err)
}
