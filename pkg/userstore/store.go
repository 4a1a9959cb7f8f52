package userstore

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/chainsafe/wallet-settlement/pkg/chain"
	"github.com/chainsafe/wallet-settlement/pkg/user"
)

var (
	// ErrProfileNotFound is returned when a user has no compliance profile.
	ErrProfileNotFound = errors.New("user profile not found")
	// ErrWalletNotFound is returned when a wallet lookup finds no matching record.
	ErrWalletNotFound = errors.New("wallet not found")
	// ErrPayoutAccountNotFound is returned when a payout account lookup finds no record.
	ErrPayoutAccountNotFound = errors.New("payout account not found")
)

// ProfileStore reads and maintains user compliance profiles
type ProfileStore interface {
	CreateProfile(ctx context.Context, p *user.Profile) error
	GetProfile(ctx context.Context, userID uuid.UUID) (*user.Profile, error)
	UpdateVerification(ctx context.Context, userID uuid.UUID, status user.KYCStatus, tier user.Tier) error
}

// WalletStore reads registered wallets
type WalletStore interface {
	CreateWallet(ctx context.Context, w *user.Wallet) error
	GetWallet(ctx context.Context, opts ...QueryOption) (*user.Wallet, error)
}

// PayoutAccountStore reads fiat payout accounts
type PayoutAccountStore interface {
	CreatePayoutAccount(ctx context.Context, a *user.PayoutAccount) error
	GetPayoutAccount(ctx context.Context, id uuid.UUID) (*user.PayoutAccount, error)
}

// Store defines the interface for user data persistence
type Store interface {
	ProfileStore
	WalletStore
	PayoutAccountStore
}

// QueryOptions defines options for querying wallets
type QueryOptions struct {
	ID      *uuid.UUID
	UserID  *uuid.UUID
	Chain   *chain.Chain
	Address *string
}

// QueryOption is a functional option for querying wallets
type QueryOption func(*QueryOptions)

// WithID sets the wallet id filter
func WithID(id uuid.UUID) QueryOption {
	return func(opts *QueryOptions) {
		opts.ID = &id
	}
}

// WithUserID sets the owner filter
func WithUserID(userID uuid.UUID) QueryOption {
	return func(opts *QueryOptions) {
		opts.UserID = &userID
	}
}

// WithAddress sets the chain and address filter. EVM addresses match case-insensitively.
func WithAddress(c chain.Chain, address string) QueryOption {
	return func(opts *QueryOptions) {
		opts.Chain = &c
		opts.Address = &address
	}
}
