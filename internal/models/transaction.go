package models

import "time"

type Transaction struct {
	ID           string          `json:"id"`
	AccountID    string          `json:"account_id"`
	Amount       int64           `json:"amount"`
	Kind         TransactionKind `json:"kind"`
	Description  string          `json:"description"`
	ReferenceID  string          `json:"reference_id,omitempty"`
	ExternalID   string          `json:"-"`
	BalanceAfter int64           `json:"balance_after"`
	CreatedAt    time.Time       `json:"created_at"`
}

type TransactionKind string

const (
	KindPurchase     TransactionKind = "purchase"
	KindReferral     TransactionKind = "referral"
	KindAIGeneration TransactionKind = "ai_generation"
	KindCertificate  TransactionKind = "certificate"
	KindReward       TransactionKind = "reward"
)

func (k TransactionKind) Valid() bool {
	switch k {
	case KindPurchase, KindReferral, KindAIGeneration, KindCertificate, KindReward:
		return true
	}
	return false
}

// SpendRequest asks for a debit of Cost credits. It is never persisted.
type SpendRequest struct {
	AccountID   string
	Cost        int64
	Kind        TransactionKind
	Description string
	ReferenceID string
}

type SpendResult struct {
	Transaction *Transaction `json:"transaction"`
	NewBalance  int64        `json:"new_balance"`
}

type CreditRequest struct {
	AccountID   string
	Amount      int64
	Kind        TransactionKind
	Description string
	ReferenceID string
	ExternalID  string
}
