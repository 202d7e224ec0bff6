package services

import (
	"context"
	"errors"

	"certifyrpg/internal/metrics"
	"certifyrpg/internal/models"
)

// precheck fails fast before any expensive work. It is advisory: the
// authoritative check happens in AuthorizeAndSpend.
func (s *BalanceService) precheck(ctx context.Context, accountID string, cost int64, kind models.TransactionKind) (int64, error) {
	balance, err := s.GetBalance(ctx, accountID)
	if err != nil {
		return 0, err
	}
	if balance < cost {
		metrics.InsufficientCredits.WithLabelValues(string(kind)).Inc()
		return balance, &models.InsufficientCreditsError{Required: cost, Available: balance}
	}
	return balance, nil
}

// chargeArtifact debits an artifact that already exists. A failed debit is
// logged and counted, and the artifact is reported as billing pending with
// the balance observed before the action.
func (s *BalanceService) chargeArtifact(ctx context.Context, req *models.SpendRequest, observed int64) (remaining int64, pending bool) {
	result, err := s.AuthorizeAndSpend(ctx, req)
	if err == nil {
		return result.NewBalance, false
	}

	failure := &PostCreationDebitFailure{
		AccountID:   req.AccountID,
		Cost:        req.Cost,
		ReferenceID: req.ReferenceID,
		Err:         err,
	}
	metrics.DebitFailures.WithLabelValues(string(req.Kind)).Inc()
	s.logger.Error().
		Err(failure).
		Str("account_id", failure.AccountID).
		Int64("cost", failure.Cost).
		Str("reference_id", failure.ReferenceID).
		Bool("insufficient", errors.Is(err, models.ErrInsufficientCredits)).
		Msg("Post-creation debit failed")

	return observed, true
}
