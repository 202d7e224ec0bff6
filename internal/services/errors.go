package services

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidSignature    = errors.New("invalid webhook signature")
	ErrMalformedEvent      = errors.New("malformed payment event")
	ErrLedgerUnavailable   = errors.New("ledger unavailable")
	ErrBalanceMismatch     = errors.New("balance does not match ledger")
	ErrUnknownProduct      = errors.New("unknown product")
	ErrInvalidRequest      = errors.New("invalid request")
	ErrInvalidCredentials  = errors.New("invalid email or password")
	ErrUserExists          = errors.New("user with this email or username already exists")
	ErrProviderUnavailable = errors.New("upstream provider unavailable")
)

// PostCreationDebitFailure records an artifact that was delivered but could
// not be charged. It is logged and counted; the caller still gets the artifact.
type PostCreationDebitFailure struct {
	AccountID   string
	Cost        int64
	ReferenceID string
	Err         error
}

func (e *PostCreationDebitFailure) Error() string {
	return fmt.Sprintf("debit of %d credits for %s on account %s failed: %v", e.Cost, e.ReferenceID, e.AccountID, e.Err)
}

func (e *PostCreationDebitFailure) Unwrap() error {
	return e.Err
}
