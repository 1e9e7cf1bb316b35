package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"restyle/internal/verification/models"
	id "restyle/pkg/domain"
	"restyle/pkg/platform/sentinel"
)

// Error Contract:
// All store methods follow this error pattern:
// - Return sentinel.ErrNotFound when the requested entity does not exist
// - Return sentinel.ErrConflict on duplicate creation
// - Return nil for successful operations

// InMemoryAccountStore stores seller accounts in memory for tests/dev.
type InMemoryAccountStore struct {
	mu       sync.RWMutex
	accounts map[id.SellerID]*models.SellerAccount
}

// NewMemory constructs an empty in-memory account store.
func NewMemory() *InMemoryAccountStore {
	return &InMemoryAccountStore{accounts: make(map[id.SellerID]*models.SellerAccount)}
}

func (s *InMemoryAccountStore) Create(_ context.Context, account *models.SellerAccount) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.accounts[account.ID]; exists {
		return fmt.Errorf("seller %s already exists: %w", account.ID, sentinel.ErrConflict)
	}
	s.accounts[account.ID] = account.Clone()
	return nil
}

func (s *InMemoryAccountStore) FindByID(_ context.Context, sellerID id.SellerID) (*models.SellerAccount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if account, ok := s.accounts[sellerID]; ok {
		return account.Clone(), nil
	}
	return nil, fmt.Errorf("seller %s: %w", sellerID, sentinel.ErrNotFound)
}

// List returns all accounts, optionally filtered by status. Ordering follows
// JoinedAt ascending so the admin directory is stable across calls.
func (s *InMemoryAccountStore) List(_ context.Context, status *models.AccountStatus) ([]*models.SellerAccount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var accounts []*models.SellerAccount
	for _, account := range s.accounts {
		if status != nil && account.Status != *status {
			continue
		}
		accounts = append(accounts, account.Clone())
	}
	sortAccounts(accounts)
	return accounts, nil
}

// CountByStatus returns the number of accounts per status.
func (s *InMemoryAccountStore) CountByStatus(_ context.Context) (map[models.AccountStatus]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	counts := make(map[models.AccountStatus]int)
	for _, account := range s.accounts {
		counts[account.Status]++
	}
	return counts, nil
}

// Execute runs validate-then-mutate atomically against one account. The store
// lock is held for the whole callback pair, so a concurrent Execute on the
// same account observes the committed state of the winner, never a torn write.
// If validate returns an error the account is left untouched.
func (s *InMemoryAccountStore) Execute(
	_ context.Context,
	sellerID id.SellerID,
	validate func(*models.SellerAccount) error,
	mutate func(*models.SellerAccount),
) (*models.SellerAccount, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	account, ok := s.accounts[sellerID]
	if !ok {
		return nil, fmt.Errorf("seller %s: %w", sellerID, sentinel.ErrNotFound)
	}

	// Work on a copy so a failed validation cannot leak partial mutation.
	working := account.Clone()
	if err := validate(working); err != nil {
		return nil, err
	}
	mutate(working)
	s.accounts[sellerID] = working
	return working.Clone(), nil
}

func sortAccounts(accounts []*models.SellerAccount) {
	sort.Slice(accounts, func(i, j int) bool {
		if accounts[i].JoinedAt.Equal(accounts[j].JoinedAt) {
			return accounts[i].ID.String() < accounts[j].ID.String()
		}
		return accounts[i].JoinedAt.Before(accounts[j].JoinedAt)
	})
}
