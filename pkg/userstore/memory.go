package userstore

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/chainsafe/wallet-settlement/pkg/user"
)

// MemoryStore is an in-process Store used by unit tests of the services that
// read profiles, wallets and payout accounts.
type MemoryStore struct {
	mu       sync.RWMutex
	profiles map[uuid.UUID]user.Profile
	wallets  map[uuid.UUID]user.Wallet
	accounts map[uuid.UUID]user.PayoutAccount
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty MemoryStore
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		profiles: make(map[uuid.UUID]user.Profile),
		wallets:  make(map[uuid.UUID]user.Wallet),
		accounts: make(map[uuid.UUID]user.PayoutAccount),
	}
}

func (s *MemoryStore) CreateProfile(_ context.Context, p *user.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *p
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = time.Now().UTC()
	}
	cp.UpdatedAt = cp.CreatedAt
	s.profiles[p.ID] = cp
	return nil
}

func (s *MemoryStore) GetProfile(_ context.Context, userID uuid.UUID) (*user.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.profiles[userID]
	if !ok {
		return nil, ErrProfileNotFound
	}
	return &p, nil
}

func (s *MemoryStore) UpdateVerification(_ context.Context, userID uuid.UUID, status user.KYCStatus, tier user.Tier) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.profiles[userID]
	if !ok {
		return ErrProfileNotFound
	}
	p.KYCStatus = status
	p.Tier = tier
	p.UpdatedAt = time.Now().UTC()
	s.profiles[userID] = p
	return nil
}

func (s *MemoryStore) CreateWallet(_ context.Context, w *user.Wallet) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *w
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = time.Now().UTC()
	}
	s.wallets[w.ID] = cp
	return nil
}

func (s *MemoryStore) GetWallet(_ context.Context, opts ...QueryOption) (*user.Wallet, error) {
	options := &QueryOptions{}
	for _, opt := range opts {
		opt(options)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, w := range s.wallets {
		if options.ID != nil && w.ID != *options.ID {
			continue
		}
		if options.UserID != nil && w.UserID != *options.UserID {
			continue
		}
		if options.Chain != nil && w.Chain != *options.Chain {
			continue
		}
		if options.Address != nil {
			if w.Chain.IsEVM() && !strings.EqualFold(w.Address, *options.Address) {
				continue
			}
			if !w.Chain.IsEVM() && w.Address != *options.Address {
				continue
			}
		}
		found := w
		return &found, nil
	}
	return nil, ErrWalletNotFound
}

func (s *MemoryStore) CreatePayoutAccount(_ context.Context, a *user.PayoutAccount) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts[a.ID] = *a
	return nil
}

func (s *MemoryStore) GetPayoutAccount(_ context.Context, id uuid.UUID) (*user.PayoutAccount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.accounts[id]
	if !ok {
		return nil, ErrPayoutAccountNotFound
	}
	return &a, nil
}
