package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"certifyrpg/internal/models"
	"certifyrpg/internal/store"

	"github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	"github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
)

var _ store.LedgerStore = (*Store)(nil)

// Store is the SQL-backed LedgerStore for MySQL and SQLite.
type Store struct {
	db      *sql.DB
	dialect Dialect
	logger  zerolog.Logger
}

func NewStore(db *sql.DB, dialect Dialect, logger zerolog.Logger) *Store {
	return &Store{
		db:      db,
		dialect: dialect,
		logger:  logger,
	}
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) CreateAccount(ctx context.Context, accountID string) (*models.Account, error) {
	now := time.Now().UTC()
	_, err := s.db.ExecContext(ctx, queryInsertAccount, accountID, string(models.TierBronze), now, now)
	if err != nil && !isUniqueViolation(err) {
		s.logger.Error().Err(err).Str("account_id", accountID).Msg("Error creating account")
		return nil, fmt.Errorf("failed to create account: %w", err)
	}
	return s.GetAccount(ctx, accountID)
}

func (s *Store) GetAccount(ctx context.Context, accountID string) (*models.Account, error) {
	var a models.Account
	var tier string
	err := s.db.QueryRowContext(ctx, queryGetAccount, accountID).
		Scan(&a.ID, &a.Balance, &a.TotalSpent, &tier, &a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrAccountNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}
	a.Tier = models.Tier(tier)
	return &a, nil
}

func (s *Store) GetBalance(ctx context.Context, accountID string) (int64, error) {
	a, err := s.GetAccount(ctx, accountID)
	if err != nil {
		return 0, err
	}
	return a.Balance, nil
}

func (s *Store) GetCumulativeSpend(ctx context.Context, accountID string) (int64, error) {
	a, err := s.GetAccount(ctx, accountID)
	if err != nil {
		return 0, err
	}
	return a.TotalSpent, nil
}

func (s *Store) ListAccountIDs(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, queryListAccountIDs)
	if err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("error scanning account id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// lockQuery returns the account read used inside a ledger transaction. MySQL
// takes a row lock; SQLite already holds the database write lock from
// BEGIN IMMEDIATE.
func (s *Store) lockQuery() string {
	if s.dialect == MySQL {
		return queryLockAccount + " FOR UPDATE"
	}
	return queryLockAccount
}

func (s *Store) AppendTransaction(ctx context.Context, p store.AppendParams) (*models.Transaction, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error().Err(err).Msg("Error starting ledger transaction")
		return nil, fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	var balance, totalSpent int64
	err = tx.QueryRowContext(ctx, s.lockQuery(), p.AccountID).Scan(&balance, &totalSpent)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrAccountNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch balance: %w", err)
	}

	// Checked after the account lock so a concurrent redelivery of the same
	// event is already visible here.
	if p.ExternalID != "" {
		var existing string
		err = tx.QueryRowContext(ctx, queryCheckExternalID, p.ExternalID).Scan(&existing)
		if err == nil {
			return nil, models.ErrDuplicateTransaction
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("failed to check for duplicate transaction: %w", err)
		}
	}

	newBalance := balance + p.Amount
	if newBalance < 0 {
		return nil, &models.InsufficientCreditsError{Required: -p.Amount, Available: balance}
	}
	if p.Amount < 0 {
		totalSpent += -p.Amount
	}

	now := time.Now().UTC()
	_, err = tx.ExecContext(ctx, queryUpdateAccount,
		newBalance, totalSpent, string(models.TierFor(totalSpent)), now, p.AccountID)
	if err != nil {
		return nil, fmt.Errorf("failed to update balance: %w", err)
	}

	t := &models.Transaction{
		ID:           uuid.New().String(),
		AccountID:    p.AccountID,
		Amount:       p.Amount,
		Kind:         p.Kind,
		Description:  p.Description,
		ReferenceID:  p.ReferenceID,
		ExternalID:   p.ExternalID,
		BalanceAfter: newBalance,
		CreatedAt:    now,
	}
	_, err = tx.ExecContext(ctx, queryInsertTransaction,
		t.ID, t.AccountID, t.Amount, string(t.Kind), t.Description,
		nullString(t.ReferenceID), nullString(t.ExternalID), t.BalanceAfter, t.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) && p.ExternalID != "" {
			return nil, models.ErrDuplicateTransaction
		}
		return nil, fmt.Errorf("failed to insert transaction: %w", err)
	}

	if err = tx.Commit(); err != nil {
		s.logger.Error().Err(err).Msg("Error committing ledger transaction")
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.logger.Debug().
		Str("transaction_id", t.ID).
		Str("account_id", t.AccountID).
		Int64("amount", t.Amount).
		Int64("old_balance", balance).
		Int64("new_balance", newBalance).
		Msg("Ledger transaction recorded")

	return t, nil
}

func (s *Store) ListTransactions(ctx context.Context, accountID string, limit, offset int) ([]*models.Transaction, error) {
	rows, err := s.db.QueryContext(ctx, queryListTransactions, accountID, limit, offset)
	if err != nil {
		s.logger.Error().Err(err).Str("account_id", accountID).Msg("Error fetching transactions")
		return nil, fmt.Errorf("database error: %w", err)
	}
	defer rows.Close()

	var transactions []*models.Transaction
	for rows.Next() {
		var t models.Transaction
		var kind string
		var referenceID, externalID sql.NullString
		err := rows.Scan(&t.ID, &t.AccountID, &t.Amount, &kind, &t.Description,
			&referenceID, &externalID, &t.BalanceAfter, &t.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("error scanning transaction: %w", err)
		}
		t.Kind = models.TransactionKind(kind)
		t.ReferenceID = referenceID.String
		t.ExternalID = externalID.String
		transactions = append(transactions, &t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transactions: %w", err)
	}
	return transactions, nil
}

func (s *Store) SumTransactions(ctx context.Context, accountID string) (int64, error) {
	var sum int64
	if err := s.db.QueryRowContext(ctx, querySumTransactions, accountID).Scan(&sum); err != nil {
		s.logger.Error().Err(err).Str("account_id", accountID).Msg("Error summing transactions")
		return 0, fmt.Errorf("database error: %w", err)
	}
	return sum, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func isUniqueViolation(err error) bool {
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == 1062
	}
	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return liteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			liteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}
