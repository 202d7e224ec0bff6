// Package memory is an in-process LedgerStore. Balance mutations are
// serialized per account; different accounts never contend.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"certifyrpg/internal/models"
	"certifyrpg/internal/store"

	"github.com/google/uuid"
)

var _ store.LedgerStore = (*Store)(nil)

type Store struct {
	mu           sync.RWMutex
	accounts     map[string]*models.Account
	transactions map[string][]*models.Transaction
	externalIDs  map[string]string
	users        map[string]*models.User
	generations  []*models.Generation
	certificates []*models.Certificate

	locks sync.Map
}

func New() *Store {
	return &Store{
		accounts:     make(map[string]*models.Account),
		transactions: make(map[string][]*models.Transaction),
		externalIDs:  make(map[string]string),
		users:        make(map[string]*models.User),
	}
}

func (s *Store) accountLock(accountID string) *sync.Mutex {
	mu, _ := s.locks.LoadOrStore(accountID, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

func (s *Store) CreateAccount(_ context.Context, accountID string) (*models.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if a, ok := s.accounts[accountID]; ok {
		cp := *a
		return &cp, nil
	}
	now := time.Now().UTC()
	a := &models.Account{ID: accountID, Tier: models.TierBronze, CreatedAt: now, UpdatedAt: now}
	s.accounts[accountID] = a
	cp := *a
	return &cp, nil
}

func (s *Store) GetAccount(_ context.Context, accountID string) (*models.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.accounts[accountID]
	if !ok {
		return nil, models.ErrAccountNotFound
	}
	cp := *a
	return &cp, nil
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

func (s *Store) ListAccountIDs(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.accounts))
	for id := range s.accounts {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func (s *Store) AppendTransaction(ctx context.Context, p store.AppendParams) (*models.Transaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// The account lock orders all balance changes of one account; s.mu only
	// guards the maps.
	lock := s.accountLock(p.AccountID)
	lock.Lock()
	defer lock.Unlock()

	s.mu.RLock()
	a, ok := s.accounts[p.AccountID]
	var balance int64
	if ok {
		balance = a.Balance
	}
	s.mu.RUnlock()
	if !ok {
		return nil, models.ErrAccountNotFound
	}

	newBalance := balance + p.Amount
	if newBalance < 0 {
		return nil, &models.InsufficientCreditsError{Required: -p.Amount, Available: balance}
	}

	now := time.Now().UTC()
	tx := &models.Transaction{
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

	s.mu.Lock()
	defer s.mu.Unlock()
	if p.ExternalID != "" {
		if _, dup := s.externalIDs[p.ExternalID]; dup {
			return nil, models.ErrDuplicateTransaction
		}
		s.externalIDs[p.ExternalID] = tx.ID
	}

	a.Balance = newBalance
	if p.Amount < 0 {
		a.TotalSpent += -p.Amount
		a.Tier = models.TierFor(a.TotalSpent)
	}
	a.UpdatedAt = now
	s.transactions[p.AccountID] = append(s.transactions[p.AccountID], tx)

	cp := *tx
	return &cp, nil
}

func (s *Store) ListTransactions(_ context.Context, accountID string, limit, offset int) ([]*models.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if offset < 0 {
		offset = 0
	}
	all := s.transactions[accountID]
	var out []*models.Transaction
	for i := len(all) - 1 - offset; i >= 0 && len(out) < limit; i-- {
		cp := *all[i]
		out = append(out, &cp)
	}
	return out, nil
}

func (s *Store) SumTransactions(_ context.Context, accountID string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var sum int64
	for _, tx := range s.transactions[accountID] {
		sum += tx.Amount
	}
	return sum, nil
}

func (s *Store) CreateUser(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now().UTC()
	user.CreatedAt, user.UpdatedAt = now, now
	cp := *user
	s.users[user.ID] = &cp
	return nil
}

func (s *Store) GetUserByID(_ context.Context, userID string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[userID]
	if !ok {
		return nil, models.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *Store) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, models.ErrUserNotFound
}

func (s *Store) GetUserByReferralCode(_ context.Context, code string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if code != "" && u.ReferralCode == code {
			cp := *u
			return &cp, nil
		}
	}
	return nil, models.ErrUserNotFound
}

func (s *Store) UserExists(_ context.Context, email, username string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) || u.Username == username {
			return true, nil
		}
	}
	return false, nil
}

func (s *Store) CreateGeneration(_ context.Context, gen *models.Generation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	gen.CreatedAt = time.Now().UTC()
	cp := *gen
	s.generations = append(s.generations, &cp)
	return nil
}

func (s *Store) ListGenerations(_ context.Context, userID string, limit, offset int) ([]*models.Generation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.Generation
	skipped := 0
	for i := len(s.generations) - 1; i >= 0 && len(out) < limit; i-- {
		g := s.generations[i]
		if g.UserID != userID {
			continue
		}
		if skipped < offset {
			skipped++
			continue
		}
		cp := *g
		out = append(out, &cp)
	}
	return out, nil
}

func (s *Store) CreateCertificate(_ context.Context, cert *models.Certificate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cert.CreatedAt = time.Now().UTC()
	cp := *cert
	s.certificates = append(s.certificates, &cp)
	return nil
}

func (s *Store) ListCertificates(_ context.Context, userID string, limit, offset int) ([]*models.Certificate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.Certificate
	skipped := 0
	for i := len(s.certificates) - 1; i >= 0 && len(out) < limit; i-- {
		c := s.certificates[i]
		if c.UserID != userID {
			continue
		}
		if skipped < offset {
			skipped++
			continue
		}
		cp := *c
		out = append(out, &cp)
	}
	return out, nil
}

func (s *Store) Close() error { return nil }
