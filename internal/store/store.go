// Package store defines the persistence contract of the credit ledger. The SQL
// backend lives in internal/db, the in-process backend in store/memory.
package store

import (
	"context"

	"certifyrpg/internal/models"
)

// AppendParams describes one ledger row. Amount is signed: positive credits,
// negative debits. ExternalID, when set, must be unique across the log.
type AppendParams struct {
	AccountID   string
	Amount      int64
	Kind        models.TransactionKind
	Description string
	ReferenceID string
	ExternalID  string
}

type LedgerStore interface {
	// --- Accounts ---
	CreateAccount(ctx context.Context, accountID string) (*models.Account, error)
	GetAccount(ctx context.Context, accountID string) (*models.Account, error)
	GetBalance(ctx context.Context, accountID string) (int64, error)
	GetCumulativeSpend(ctx context.Context, accountID string) (int64, error)
	ListAccountIDs(ctx context.Context) ([]string, error)

	// --- Ledger ---

	// AppendTransaction checks and applies one balance change atomically per
	// account. It returns *models.InsufficientCreditsError when the change
	// would make the balance negative and models.ErrDuplicateTransaction
	// when ExternalID was already recorded; neither case mutates anything.
	AppendTransaction(ctx context.Context, params AppendParams) (*models.Transaction, error)
	ListTransactions(ctx context.Context, accountID string, limit, offset int) ([]*models.Transaction, error)
	SumTransactions(ctx context.Context, accountID string) (int64, error)

	// --- Users ---
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, userID string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByReferralCode(ctx context.Context, code string) (*models.User, error)
	UserExists(ctx context.Context, email, username string) (bool, error)

	// --- Artifacts ---
	CreateGeneration(ctx context.Context, gen *models.Generation) error
	ListGenerations(ctx context.Context, userID string, limit, offset int) ([]*models.Generation, error)
	CreateCertificate(ctx context.Context, cert *models.Certificate) error
	ListCertificates(ctx context.Context, userID string, limit, offset int) ([]*models.Certificate, error)

	Close() error
}
