package unlockstore

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/chainsafe/wallet-settlement/pkg/unlock"
)

// SessionDao maps to the 'wallet_unlock_tokens' table. The composite primary key
// keeps at most one live token per (user_id, wallet_id).
type SessionDao struct {
	bun.BaseModel `bun:"table:wallet_unlock_tokens,alias:wut"`
	UserID        uuid.UUID `bun:"user_id,pk,type:uuid"`
	WalletID      uuid.UUID `bun:"wallet_id,pk,type:uuid"`
	TokenHash     string    `bun:"token_hash,notnull,type:varchar(128)"`
	ProofHash     string    `bun:"proof_hash,notnull,type:varchar(128)"`
	ExpiresAt     time.Time `bun:"expires_at,notnull"`
	CreatedAt     time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt     time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

func toSessionDao(s *unlock.Session) *SessionDao {
	return &SessionDao{
		UserID:    s.UserID,
		WalletID:  s.WalletID,
		TokenHash: s.TokenHash,
		ProofHash: s.ProofHash,
		ExpiresAt: s.ExpiresAt,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
}

func toSession(dao *SessionDao) *unlock.Session {
	return &unlock.Session{
		UserID:    dao.UserID,
		WalletID:  dao.WalletID,
		TokenHash: dao.TokenHash,
		ProofHash: dao.ProofHash,
		ExpiresAt: dao.ExpiresAt,
		CreatedAt: dao.CreatedAt,
		UpdatedAt: dao.UpdatedAt,
	}
}
