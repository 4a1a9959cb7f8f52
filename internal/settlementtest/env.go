// Package settlementtest assembles the admission stack on in-memory stores for
// service level tests.
package settlementtest

import (
	"context"
	"crypto/ecdsa"
	"math/big"
	"sync"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/chainsafe/wallet-settlement/pkg/admission"
	"github.com/chainsafe/wallet-settlement/pkg/audit"
	"github.com/chainsafe/wallet-settlement/pkg/auth"
	"github.com/chainsafe/wallet-settlement/pkg/chain"
	"github.com/chainsafe/wallet-settlement/pkg/keylock"
	"github.com/chainsafe/wallet-settlement/pkg/order"
	"github.com/chainsafe/wallet-settlement/pkg/orderstore"
	"github.com/chainsafe/wallet-settlement/pkg/pricing"
	"github.com/chainsafe/wallet-settlement/pkg/risk"
	"github.com/chainsafe/wallet-settlement/pkg/signer"
	"github.com/chainsafe/wallet-settlement/pkg/user"
	"github.com/chainsafe/wallet-settlement/pkg/userstore"
)

// UnlockToken is the only token StaticUnlock accepts
const UnlockToken = "0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef"

// ETHPrice is the USD price of one ETH in the test oracle
const ETHPrice = 2000

// StaticUnlock accepts UnlockToken for every wallet unless Locked is set
type StaticUnlock struct {
	Locked bool
}

func (s *StaticUnlock) Verify(_ context.Context, _, _ uuid.UUID, token string) (bool, error) {
	return !s.Locked && token == UnlockToken, nil
}

// Recorder keeps audit records in memory
type Recorder struct {
	mu        sync.Mutex
	Events    []*audit.Event
	Decisions []*audit.Decision
}

func (r *Recorder) Record(_ context.Context, e *audit.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Events = append(r.Events, e)
	return nil
}

func (r *Recorder) RecordDecision(_ context.Context, d *audit.Decision) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Decisions = append(r.Decisions, d)
	return nil
}

// Env is a user with one Ethereum wallet and the real admission pipeline
type Env struct {
	Users    *userstore.MemoryStore
	Ops      *orderstore.MemoryStore
	Audit    *Recorder
	Machine  *order.Machine
	Unlock   *StaticUnlock
	Locker   *keylock.LocalLocker
	Pipeline *admission.Pipeline

	Key    *ecdsa.PrivateKey
	Caller *auth.AuthInfo
	Wallet *user.Wallet
}

// New creates an Env whose user is KYC approved at the basic tier
func New(t testing.TB) *Env {
	t.Helper()

	key, err := crypto.GenerateKey()
	if err != nil {
		t.Fatalf("failed to generate key: %v", err)
	}
	prices, err := pricing.NewStatic(map[string]string{"ETH": "2000"})
	if err != nil {
		t.Fatalf("failed to build prices: %v", err)
	}

	e := &Env{
		Users:  userstore.NewMemoryStore(),
		Ops:    orderstore.NewMemoryStore(),
		Audit:  &Recorder{},
		Unlock: &StaticUnlock{},
		Locker: keylock.NewLocalLocker(),
		Key:    key,
		Caller: &auth.AuthInfo{UserID: uuid.New(), TenantID: uuid.New(), Role: "user"},
	}
	e.Wallet = &user.Wallet{
		ID:       uuid.New(),
		UserID:   e.Caller.UserID,
		TenantID: e.Caller.TenantID,
		Chain:    chain.Ethereum,
		Address:  crypto.PubkeyToAddress(key.PublicKey).Hex(),
	}

	ctx := context.Background()
	profile := user.NewProfile(e.Caller.UserID, e.Caller.TenantID)
	profile.KYCStatus = user.KYCApproved
	profile.Tier = user.TierBasic
	if err := e.Users.CreateProfile(ctx, profile); err != nil {
		t.Fatalf("failed to create profile: %v", err)
	}
	if err := e.Users.CreateWallet(ctx, e.Wallet); err != nil {
		t.Fatalf("failed to create wallet: %v", err)
	}

	logger := zap.NewNop()
	e.Machine = order.NewMachine(e.Ops, e.Audit, logger)
	engine := risk.NewEngine(e.Users, e.Users, e.Ops, e.Audit, risk.DefaultLimits())
	e.Pipeline = admission.New(e.Users, signer.NewParser(nil), e.Unlock, prices, engine, e.Ops, e.Locker, e.Audit, logger)
	return e
}

// SetVerification changes the user's KYC status and tier
func (e *Env) SetVerification(t testing.TB, status user.KYCStatus, tier user.Tier) {
	t.Helper()
	if err := e.Users.UpdateVerification(context.Background(), e.Caller.UserID, status, tier); err != nil {
		t.Fatalf("failed to update verification: %v", err)
	}
}

// SignTransfer returns a hex encoded EIP-155 transfer of wei to to, signed by the wallet key
func (e *Env) SignTransfer(t testing.TB, to string, wei *big.Int, nonce uint64) string {
	t.Helper()
	return SignLegacy(t, e.Key, 1, common.HexToAddress(to), wei, nonce)
}

// SignLegacy signs a legacy value transfer for chainID
func SignLegacy(t testing.TB, key *ecdsa.PrivateKey, chainID int64, to common.Address, wei *big.Int, nonce uint64) string {
	t.Helper()
	tx := types.NewTransaction(nonce, to, wei, 21000, big.NewInt(1_000_000_000), nil)
	signed, err := types.SignTx(tx, types.NewEIP155Signer(big.NewInt(chainID)), key)
	if err != nil {
		t.Fatalf("failed to sign transaction: %v", err)
	}
	raw, err := signed.MarshalBinary()
	if err != nil {
		t.Fatalf("failed to encode transaction: %v", err)
	}
	return hexutil.Encode(raw)
}

// Ether converts a whole number of ETH to wei
func Ether(n int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), big.NewInt(1_000_000_000_000_000_000))
}
