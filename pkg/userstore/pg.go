package userstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/chainsafe/wallet-settlement/pkg/user"
)

type pgStore struct {
	db *bun.DB
}

// NewStore creates a new postgres implementation of the user store
func NewStore(db *bun.DB) *pgStore {
	return &pgStore{db: db}
}

func (s *pgStore) CreateProfile(ctx context.Context, p *user.Profile) error {
	_, err := s.db.NewInsert().
		Model(toProfileDao(p)).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to create profile: %w", err)
	}
	return nil
}

func (s *pgStore) GetProfile(ctx context.Context, userID uuid.UUID) (*user.Profile, error) {
	dao := new(ProfileDao)
	err := s.db.NewSelect().
		Model(dao).
		Where("id = ?", userID).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return toProfile(dao), nil
}

func (s *pgStore) UpdateVerification(ctx context.Context, userID uuid.UUID, status user.KYCStatus, tier user.Tier) error {
	res, err := s.db.NewUpdate().
		Model((*ProfileDao)(nil)).
		Set("kyc_status = ?", string(status)).
		Set("kyc_tier = ?", string(tier)).
		Set("updated_at = ?", time.Now()).
		Where("id = ?", userID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to update verification: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrProfileNotFound
	}
	return nil
}

func (s *pgStore) CreateWallet(ctx context.Context, w *user.Wallet) error {
	_, err := s.db.NewInsert().
		Model(toWalletDao(w)).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to create wallet: %w", err)
	}
	return nil
}

func (s *pgStore) GetWallet(ctx context.Context, opts ...QueryOption) (*user.Wallet, error) {
	options := &QueryOptions{}
	for _, opt := range opts {
		opt(options)
	}

	dao := new(WalletDao)
	query := s.db.NewSelect().Model(dao)

	if options.ID != nil {
		query = query.Where("id = ?", *options.ID)
	}
	if options.UserID != nil {
		query = query.Where("user_id = ?", *options.UserID)
	}
	if options.Chain != nil {
		query = query.Where("chain = ?", string(*options.Chain))
	}
	if options.Address != nil {
		if options.Chain != nil && options.Chain.IsEVM() {
			query = query.Where("LOWER(address) = LOWER(?)", *options.Address)
		} else {
			query = query.Where("address = ?", *options.Address)
		}
	}

	err := query.Limit(1).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrWalletNotFound
		}
		return nil, fmt.Errorf("failed to get wallet: %w", err)
	}
	return toWallet(dao), nil
}

func (s *pgStore) CreatePayoutAccount(ctx context.Context, a *user.PayoutAccount) error {
	_, err := s.db.NewInsert().
		Model(toPayoutAccountDao(a)).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to create payout account: %w", err)
	}
	return nil
}

func (s *pgStore) GetPayoutAccount(ctx context.Context, id uuid.UUID) (*user.PayoutAccount, error) {
	dao := new(PayoutAccountDao)
	err := s.db.NewSelect().
		Model(dao).
		Where("id = ?", id).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPayoutAccountNotFound
		}
		return nil, fmt.Errorf("failed to get payout account: %w", err)
	}
	return toPayoutAccount(dao), nil
}
