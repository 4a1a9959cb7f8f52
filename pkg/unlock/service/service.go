package service

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/btcsuite/btcd/btcutil/base58"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/blake2b"

	"github.com/chainsafe/wallet-settlement/internal/metrics"
	apperrors "github.com/chainsafe/wallet-settlement/pkg/app/errors"
	"github.com/chainsafe/wallet-settlement/pkg/audit"
	"github.com/chainsafe/wallet-settlement/pkg/auth"
	"github.com/chainsafe/wallet-settlement/pkg/config"
	"github.com/chainsafe/wallet-settlement/pkg/unlock"
	"github.com/chainsafe/wallet-settlement/pkg/unlockstore"
	"github.com/chainsafe/wallet-settlement/pkg/user"
	"github.com/chainsafe/wallet-settlement/pkg/userstore"
)

const (
	// tokenBytes is the entropy of an unlock token
	tokenBytes = 32
	// minProofBytes is the shortest signature accepted from non-EVM wallets
	minProofBytes = 64
)

var (
	ErrInvalidProof   = errors.New("invalid unlock proof")
	ErrWalletNotOwned = errors.New("wallet does not belong to caller")
	ErrTTLOutOfBounds = errors.New("session duration out of bounds")
	ErrStaleProof     = errors.New("unlock proof issued_at outside allowed skew")
	ErrProofReused    = errors.New("unlock proof already used")
)

// Store is the narrow data-access interface for unlock sessions.
//
//go:generate mockery --name Store --output mocks --outpkg mocks --filename mock_store.go --with-expecter
type Store interface {
	UpsertSession(ctx context.Context, sess *unlock.Session) error
	GetSession(ctx context.Context, userID, walletID uuid.UUID) (*unlock.Session, error)
	DeleteSession(ctx context.Context, userID, walletID uuid.UUID) error
}

// WalletStore resolves the wallet being unlocked
type WalletStore interface {
	GetWallet(ctx context.Context, opts ...userstore.QueryOption) (*user.Wallet, error)
}

// Service issues, verifies and revokes wallet unlock tokens
//
//go:generate mockery --name Service --output mocks --outpkg mocks --filename mock_service.go --with-expecter
type Service interface {
	// Create issues a token for (userID, walletID), replacing any previous one
	Create(ctx context.Context, userID, walletID uuid.UUID, proof string, ttl time.Duration) (*unlock.Issued, error)
	// Verify reports whether token is the live token for (userID, walletID)
	Verify(ctx context.Context, userID, walletID uuid.UUID, token string) (bool, error)
	// Lock revokes any token for (userID, walletID)
	Lock(ctx context.Context, userID, walletID uuid.UUID) error

	Unlock(ctx context.Context, userID uuid.UUID, req *unlock.UnlockRequest) (*unlock.UnlockResponse, error)
	LockWallet(ctx context.Context, userID uuid.UUID, req *unlock.LockRequest) (*unlock.LockResponse, error)
	Status(ctx context.Context, userID, walletID uuid.UUID) (*unlock.StatusResponse, error)
}

type unlockService struct {
	store   Store
	wallets WalletStore
	audit   audit.Recorder
	key     []byte
	cfg     config.UnlockConfig
	logger  *zap.Logger
	now     func() time.Time
}

// NewService creates a new unlock service. Token digests are keyed with the
// configured pepper so a leaked table cannot be replayed.
func NewService(
	store Store,
	wallets WalletStore,
	recorder audit.Recorder,
	cfg config.UnlockConfig,
	logger *zap.Logger,
) Service {
	if cfg.DefaultTTL <= 0 {
		cfg.DefaultTTL = unlock.DefaultTTL
	}
	if cfg.MinTTL <= 0 {
		cfg.MinTTL = time.Minute
	}
	if cfg.MaxTTL < cfg.DefaultTTL {
		cfg.MaxTTL = cfg.DefaultTTL
	}
	if cfg.ProofMaxAge <= 0 {
		cfg.ProofMaxAge = unlock.DefaultProofMaxAge
	}
	return &unlockService{
		store:   store,
		wallets: wallets,
		audit:   recorder,
		key:     pepperKey(cfg.TokenPepper),
		cfg:     cfg,
		logger:  logger,
		now:     time.Now,
	}
}

// pepperKey fits the pepper into a BLAKE2b key
func pepperKey(pepper string) []byte {
	if pepper == "" {
		return nil
	}
	if len(pepper) > blake2b.Size {
		sum := blake2b.Sum256([]byte(pepper))
		return sum[:]
	}
	return []byte(pepper)
}

func (s *unlockService) digest(token string) (string, error) {
	h, err := blake2b.New256(s.key)
	if err != nil {
		return "", fmt.Errorf("failed to init token hash: %w", err)
	}
	h.Write([]byte(token))
	return hex.EncodeToString(h.Sum(nil)), nil
}

func newToken() (string, error) {
	b := make([]byte, tokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate unlock token: %w", err)
	}
	return hex.EncodeToString(b), nil
}

func (s *unlockService) Create(
	ctx context.Context,
	userID, walletID uuid.UUID,
	proof string,
	ttl time.Duration,
) (*unlock.Issued, error) {
	if ttl == 0 {
		ttl = s.cfg.DefaultTTL
	}
	if ttl < s.cfg.MinTTL || ttl > s.cfg.MaxTTL {
		return nil, apperrors.BadRequestError(ErrTTLOutOfBounds,
			fmt.Sprintf("session_duration must be between %d and %d seconds",
				int64(s.cfg.MinTTL.Seconds()), int64(s.cfg.MaxTTL.Seconds())))
	}

	token, err := newToken()
	if err != nil {
		return nil, err
	}
	hash, err := s.digest(token)
	if err != nil {
		return nil, err
	}
	proofHash, err := s.digest(proof)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	sess := &unlock.Session{
		UserID:    userID,
		WalletID:  walletID,
		TokenHash: hash,
		ProofHash: proofHash,
		ExpiresAt: now.Add(ttl),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.UpsertSession(ctx, sess); err != nil {
		return nil, fmt.Errorf("failed to store unlock session: %w", err)
	}

	metrics.UnlockSessions.WithLabelValues("unlocked").Inc()
	return &unlock.Issued{Token: token, ExpiresAt: sess.ExpiresAt}, nil
}

func (s *unlockService) Verify(ctx context.Context, userID, walletID uuid.UUID, token string) (bool, error) {
	if token == "" {
		return false, nil
	}
	sess, err := s.store.GetSession(ctx, userID, walletID)
	if err != nil {
		if errors.Is(err, unlockstore.ErrSessionNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("failed to load unlock session: %w", err)
	}
	if !sess.Live(s.now()) {
		return false, nil
	}

	hash, err := s.digest(token)
	if err != nil {
		return false, err
	}
	if subtle.ConstantTimeCompare([]byte(hash), []byte(sess.TokenHash)) != 1 {
		metrics.UnlockSessions.WithLabelValues("verify_failed").Inc()
		return false, nil
	}
	return true, nil
}

func (s *unlockService) Lock(ctx context.Context, userID, walletID uuid.UUID) error {
	if err := s.store.DeleteSession(ctx, userID, walletID); err != nil {
		return fmt.Errorf("failed to delete unlock session: %w", err)
	}
	metrics.UnlockSessions.WithLabelValues("locked").Inc()
	return nil
}

// Unlock checks wallet ownership and the unlock proof, then issues a token
func (s *unlockService) Unlock(
	ctx context.Context,
	userID uuid.UUID,
	req *unlock.UnlockRequest,
) (*unlock.UnlockResponse, error) {
	walletID, err := uuid.Parse(req.WalletID)
	if err != nil {
		return nil, apperrors.BadRequestError(err, "invalid wallet_id")
	}

	wallet, err := s.ownedWallet(ctx, userID, walletID)
	if err != nil {
		return nil, err
	}
	if err := s.checkFresh(req.IssuedAt); err != nil {
		return nil, apperrors.UnAuthorizedError(err, "unlock proof expired, sign a new one")
	}
	if err := verifyProof(wallet, req.UnlockProof, req.IssuedAt); err != nil {
		return nil, apperrors.UnAuthorizedError(err, "invalid unlock proof")
	}
	if err := s.checkUnused(ctx, userID, walletID, req.UnlockProof); err != nil {
		return nil, err
	}

	issued, err := s.Create(ctx, userID, walletID, req.UnlockProof, time.Duration(req.SessionDuration)*time.Second)
	if err != nil {
		return nil, err
	}

	s.record(ctx, audit.EventWalletUnlocked, userID, walletID, map[string]any{
		"chain":      string(wallet.Chain),
		"expires_at": issued.ExpiresAt,
	})

	return &unlock.UnlockResponse{
		UnlockToken: issued.Token,
		ExpiresAt:   issued.ExpiresAt,
		Wallet: unlock.WalletInfo{
			WalletID:   wallet.ID,
			Address:    wallet.Address,
			Chain:      string(wallet.Chain),
			UnlockedAt: s.now().UTC(),
		},
	}, nil
}

// LockWallet revokes the caller's token for the wallet
func (s *unlockService) LockWallet(
	ctx context.Context,
	userID uuid.UUID,
	req *unlock.LockRequest,
) (*unlock.LockResponse, error) {
	walletID, err := uuid.Parse(req.WalletID)
	if err != nil {
		return nil, apperrors.BadRequestError(err, "invalid wallet_id")
	}
	if _, err := s.ownedWallet(ctx, userID, walletID); err != nil {
		return nil, err
	}
	if err := s.Lock(ctx, userID, walletID); err != nil {
		return nil, err
	}

	s.record(ctx, audit.EventWalletLocked, userID, walletID, nil)
	return &unlock.LockResponse{Success: true, LockedAt: s.now().UTC()}, nil
}

// Status reports whether the wallet currently has a live token
func (s *unlockService) Status(ctx context.Context, userID, walletID uuid.UUID) (*unlock.StatusResponse, error) {
	if _, err := s.ownedWallet(ctx, userID, walletID); err != nil {
		return nil, err
	}

	resp := &unlock.StatusResponse{WalletID: walletID}
	sess, err := s.store.GetSession(ctx, userID, walletID)
	if err != nil {
		if errors.Is(err, unlockstore.ErrSessionNotFound) {
			return resp, nil
		}
		return nil, fmt.Errorf("failed to load unlock session: %w", err)
	}

	now := s.now()
	if !sess.Live(now) {
		return resp, nil
	}
	remaining := int64(sess.ExpiresAt.Sub(now).Seconds())
	expiresAt := sess.ExpiresAt
	resp.IsUnlocked = true
	resp.ExpiresAt = &expiresAt
	resp.RemainingSeconds = &remaining
	return resp, nil
}

// checkFresh rejects proofs whose issued_at is outside ProofMaxAge of now
func (s *unlockService) checkFresh(issuedAt int64) error {
	skew := s.now().Sub(time.Unix(issuedAt, 0))
	if skew < 0 {
		skew = -skew
	}
	if skew > s.cfg.ProofMaxAge {
		return fmt.Errorf("%w: %s", ErrStaleProof, skew.Truncate(time.Second))
	}
	return nil
}

// checkUnused rejects a proof that already opened the wallet's current session
func (s *unlockService) checkUnused(ctx context.Context, userID, walletID uuid.UUID, proof string) error {
	sess, err := s.store.GetSession(ctx, userID, walletID)
	if err != nil {
		if errors.Is(err, unlockstore.ErrSessionNotFound) {
			return nil
		}
		return fmt.Errorf("failed to load unlock session: %w", err)
	}
	hash, err := s.digest(proof)
	if err != nil {
		return err
	}
	if subtle.ConstantTimeCompare([]byte(hash), []byte(sess.ProofHash)) == 1 {
		return apperrors.UnAuthorizedError(ErrProofReused, "unlock proof already used, sign a new one")
	}
	return nil
}

func (s *unlockService) ownedWallet(ctx context.Context, userID, walletID uuid.UUID) (*user.Wallet, error) {
	wallet, err := s.wallets.GetWallet(ctx, userstore.WithID(walletID))
	if err != nil {
		if errors.Is(err, userstore.ErrWalletNotFound) {
			return nil, apperrors.ResourceNotFoundError(err, "wallet not found")
		}
		return nil, fmt.Errorf("failed to load wallet: %w", err)
	}
	if wallet.UserID != userID {
		return nil, apperrors.ForbiddenError(ErrWalletNotOwned, "wallet does not belong to caller")
	}
	return wallet, nil
}

func (s *unlockService) record(ctx context.Context, t audit.EventType, userID, walletID uuid.UUID, meta map[string]any) {
	err := s.audit.Record(ctx, &audit.Event{
		Type:         t,
		ResourceType: "wallet",
		ResourceID:   walletID.String(),
		UserID:       userID,
		Metadata:     meta,
	})
	if err != nil {
		s.logger.Warn("failed to audit unlock event", zap.String("event", string(t)), zap.Error(err))
	}
}

// verifyProof checks that the caller signed the unlock message with the
// wallet's key. EVM wallets sign ProofMessage with personal_sign. Other
// families are only checked for a signature-sized blob.
func verifyProof(wallet *user.Wallet, proof string, issuedAt int64) error {
	if wallet.Chain.IsEVM() {
		msg := unlock.ProofMessage(wallet.ID, wallet.Chain, wallet.Address, issuedAt)
		recovered, err := auth.VerifyEIP191Signature(msg, proof)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidProof, err)
		}
		if !strings.EqualFold(recovered.Hex(), wallet.Address) {
			return fmt.Errorf("%w: signed by %s", ErrInvalidProof, recovered.Hex())
		}
		return nil
	}

	raw, err := hex.DecodeString(strings.TrimPrefix(proof, "0x"))
	if err != nil {
		raw = base58.Decode(proof)
	}
	if len(raw) < minProofBytes {
		return fmt.Errorf("%w: expected at least %d signature bytes", ErrInvalidProof, minProofBytes)
	}
	return nil
}
