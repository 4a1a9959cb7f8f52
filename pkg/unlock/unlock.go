// Package unlock defines the wallet lock: a short-lived capability token proving
// the caller recently demonstrated possession of a wallet's signing key on the client.
package unlock

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/chainsafe/wallet-settlement/pkg/chain"
)

// ErrTokenInvalid is returned when a signing-capable request lacks a live unlock token
var ErrTokenInvalid = errors.New("wallet unlock token missing, expired or revoked")

// TokenHeader carries the unlock token when it is not part of the request body
const TokenHeader = "X-Wallet-Unlock-Token"

// DefaultTTL is the lifetime of an unlock token when the caller does not ask for one
const DefaultTTL = 15 * time.Minute

// DefaultProofMaxAge bounds how far an unlock proof's issued_at may drift from server time
const DefaultProofMaxAge = 5 * time.Minute

// Session is the stored state of an unlocked wallet. Only keyed digests of
// the token and of the proof are persisted.
type Session struct {
	UserID    uuid.UUID
	WalletID  uuid.UUID
	TokenHash string
	ProofHash string
	ExpiresAt time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Live reports whether the session has not yet expired at now
func (s *Session) Live(now time.Time) bool {
	return now.Before(s.ExpiresAt)
}

// Issued is the result of creating a session. Token is returned to the client once.
type Issued struct {
	Token     string
	ExpiresAt time.Time
}

// ProofMessage is the text an EVM wallet signs (EIP-191 personal_sign) to unlock
// itself. issuedAt is unix seconds and must be recent when the proof is presented.
func ProofMessage(walletID uuid.UUID, c chain.Chain, address string, issuedAt int64) string {
	return fmt.Sprintf("Unlock wallet %s on %s for address %s at %d", walletID, c, strings.ToLower(address), issuedAt)
}

// UnlockRequest represents a POST /wallets/unlock body
type UnlockRequest struct {
	WalletID        string `json:"wallet_id" validate:"required,uuid"`
	UnlockProof     string `json:"unlock_proof" validate:"required"`
	IssuedAt        int64  `json:"issued_at" validate:"required,gt=0"`
	SessionDuration int64  `json:"session_duration,omitempty" default:"900" validate:"gte=0"`
}

// WalletInfo describes the unlocked wallet
type WalletInfo struct {
	WalletID   uuid.UUID `json:"wallet_id"`
	Address    string    `json:"address"`
	Chain      string    `json:"chain"`
	UnlockedAt time.Time `json:"unlocked_at"`
}

// UnlockResponse represents a successful unlock
type UnlockResponse struct {
	UnlockToken string     `json:"unlock_token"`
	ExpiresAt   time.Time  `json:"expires_at"`
	Wallet      WalletInfo `json:"wallet"`
}

// LockRequest represents a POST /wallets/lock body
type LockRequest struct {
	WalletID string `json:"wallet_id" validate:"required,uuid"`
}

// LockResponse represents a successful lock
type LockResponse struct {
	Success  bool      `json:"success"`
	LockedAt time.Time `json:"locked_at"`
}

// StatusResponse represents GET /wallets/{wallet_id}/unlock-status
type StatusResponse struct {
	WalletID         uuid.UUID  `json:"wallet_id"`
	IsUnlocked       bool       `json:"is_unlocked"`
	ExpiresAt        *time.Time `json:"expires_at,omitempty"`
	RemainingSeconds *int64     `json:"remaining_seconds,omitempty"`
}
