package userstore

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/chainsafe/wallet-settlement/pkg/chain"
	"github.com/chainsafe/wallet-settlement/pkg/user"
)

// ProfileDao maps to the 'user_profiles' table in PostgreSQL.
type ProfileDao struct {
	bun.BaseModel `bun:"table:user_profiles,alias:up"`
	ID            uuid.UUID `bun:"id,pk,type:uuid"`
	TenantID      uuid.UUID `bun:"tenant_id,notnull,type:uuid"`
	KYCStatus     string    `bun:"kyc_status,notnull,type:varchar(20),default:'unverified'"`
	KYCTier       string    `bun:"kyc_tier,notnull,type:varchar(20),default:'unverified'"`
	CreatedAt     time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt     time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

// WalletDao maps to the 'wallets' table in PostgreSQL.
type WalletDao struct {
	bun.BaseModel `bun:"table:wallets,alias:w"`
	ID            uuid.UUID `bun:"id,pk,type:uuid"`
	UserID        uuid.UUID `bun:"user_id,notnull,type:uuid"`
	TenantID      uuid.UUID `bun:"tenant_id,notnull,type:uuid"`
	Chain         string    `bun:"chain,notnull,type:varchar(20)"`
	Address       string    `bun:"address,notnull,type:varchar(128)"`
	CreatedAt     time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}

// PayoutAccountDao maps to the 'payout_accounts' table in PostgreSQL.
type PayoutAccountDao struct {
	bun.BaseModel `bun:"table:payout_accounts,alias:pa"`
	ID            uuid.UUID `bun:"id,pk,type:uuid"`
	UserID        uuid.UUID `bun:"user_id,notnull,type:uuid"`
	Currency      string    `bun:"currency,notnull,type:varchar(8)"`
	Verified      bool      `bun:"verified,notnull,default:false"`
	CreatedAt     time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}

func toProfileDao(p *user.Profile) *ProfileDao {
	return &ProfileDao{
		ID:        p.ID,
		TenantID:  p.TenantID,
		KYCStatus: string(p.KYCStatus),
		KYCTier:   string(p.Tier),
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

func toProfile(dao *ProfileDao) *user.Profile {
	return &user.Profile{
		ID:        dao.ID,
		TenantID:  dao.TenantID,
		KYCStatus: user.KYCStatus(dao.KYCStatus),
		Tier:      user.Tier(dao.KYCTier),
		CreatedAt: dao.CreatedAt,
		UpdatedAt: dao.UpdatedAt,
	}
}

func toWalletDao(w *user.Wallet) *WalletDao {
	return &WalletDao{
		ID:        w.ID,
		UserID:    w.UserID,
		TenantID:  w.TenantID,
		Chain:     string(w.Chain),
		Address:   w.Address,
		CreatedAt: w.CreatedAt,
	}
}

func toWallet(dao *WalletDao) *user.Wallet {
	return &user.Wallet{
		ID:        dao.ID,
		UserID:    dao.UserID,
		TenantID:  dao.TenantID,
		Chain:     chain.Chain(dao.Chain),
		Address:   dao.Address,
		CreatedAt: dao.CreatedAt,
	}
}

func toPayoutAccountDao(a *user.PayoutAccount) *PayoutAccountDao {
	return &PayoutAccountDao{
		ID:        a.ID,
		UserID:    a.UserID,
		Currency:  a.Currency,
		Verified:  a.Verified,
		CreatedAt: a.CreatedAt,
	}
}

func toPayoutAccount(dao *PayoutAccountDao) *user.PayoutAccount {
	return &user.PayoutAccount{
		ID:        dao.ID,
		UserID:    dao.UserID,
		Currency:  dao.Currency,
		Verified:  dao.Verified,
		CreatedAt: dao.CreatedAt,
	}
}
