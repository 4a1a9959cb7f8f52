package user

import (
	"time"

	"github.com/google/uuid"

	"github.com/chainsafe/wallet-settlement/pkg/chain"
)

// KYCStatus is the outcome of the user's identity verification
type KYCStatus string

const (
	KYCUnverified KYCStatus = "unverified"
	KYCPending    KYCStatus = "pending"
	KYCApproved   KYCStatus = "approved"
	KYCRejected   KYCStatus = "rejected"
)

// Tier is the verification level that gates daily transaction limits
type Tier string

const (
	TierUnverified Tier = "unverified"
	TierBasic      Tier = "basic"
	TierStandard   Tier = "standard"
	TierPremium    Tier = "premium"
)

// Profile holds the compliance state of a user. Profiles are managed by the
// account service; this module only reads them.
type Profile struct {
	ID        uuid.UUID
	TenantID  uuid.UUID
	KYCStatus KYCStatus
	Tier      Tier
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewProfile creates an unverified profile
func NewProfile(id, tenantID uuid.UUID) *Profile {
	return &Profile{
		ID:        id,
		TenantID:  tenantID,
		KYCStatus: KYCUnverified,
		Tier:      TierUnverified,
	}
}

// Wallet is a non-custodial address registered by a user. The server never
// holds its key.
type Wallet struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	TenantID  uuid.UUID
	Chain     chain.Chain
	Address   string
	CreatedAt time.Time
}

// PayoutAccount is a bank or fiat destination used by off-ramp withdrawals
type PayoutAccount struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Currency  string
	Verified  bool
	CreatedAt time.Time
}
