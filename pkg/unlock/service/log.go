package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/chainsafe/wallet-settlement/pkg/unlock"
)

const serviceName = "UnlockService"

const secretDisplaySize = 12

// logService wraps Service with automatic logging of all method calls
type logService struct {
	svc    Service
	logger *zap.Logger
}

// NewLog creates a logging decorator for the unlock Service.
// Tokens and proofs never reach the log in full.
func NewLog(svc Service, logger *zap.Logger) Service {
	return &logService{
		svc:    svc,
		logger: logger,
	}
}

func (ls *logService) finish(method string, start time.Time, err error, fields ...zap.Field) {
	fields = append(fields,
		zap.String("service", serviceName),
		zap.String("method", method),
		zap.Duration("duration", time.Since(start)),
	)
	if err != nil {
		ls.logger.Error(method+" failed", append(fields, zap.Error(err))...)
		return
	}
	ls.logger.Info(method+" completed", fields...)
}

func (ls *logService) Create(
	ctx context.Context,
	userID, walletID uuid.UUID,
	proof string,
	ttl time.Duration,
) (issued *unlock.Issued, err error) {
	start := time.Now()
	defer func() {
		ls.finish("Create", start, err,
			zap.String("user_id", userID.String()),
			zap.String("wallet_id", walletID.String()),
			zap.Duration("ttl", ttl))
	}()
	return ls.svc.Create(ctx, userID, walletID, proof, ttl)
}

// Verify is called on every signing request; only failures are logged
func (ls *logService) Verify(ctx context.Context, userID, walletID uuid.UUID, token string) (bool, error) {
	ok, err := ls.svc.Verify(ctx, userID, walletID, token)
	if err != nil {
		ls.logger.Error("Verify failed",
			zap.String("service", serviceName),
			zap.String("method", "Verify"),
			zap.String("user_id", userID.String()),
			zap.String("wallet_id", walletID.String()),
			zap.String("token", redactSecret(token)),
			zap.Error(err))
	} else if !ok {
		ls.logger.Debug("Verify rejected token",
			zap.String("service", serviceName),
			zap.String("user_id", userID.String()),
			zap.String("wallet_id", walletID.String()))
	}
	return ok, err
}

func (ls *logService) Lock(ctx context.Context, userID, walletID uuid.UUID) (err error) {
	start := time.Now()
	defer func() {
		ls.finish("Lock", start, err,
			zap.String("user_id", userID.String()),
			zap.String("wallet_id", walletID.String()))
	}()
	return ls.svc.Lock(ctx, userID, walletID)
}

// Unlock wraps the service method with logging
func (ls *logService) Unlock(
	ctx context.Context,
	userID uuid.UUID,
	req *unlock.UnlockRequest,
) (resp *unlock.UnlockResponse, err error) {
	start := time.Now()

	ls.logger.Info("Unlock started",
		zap.String("service", serviceName),
		zap.String("method", "Unlock"),
		zap.String("user_id", userID.String()),
		zap.String("wallet_id", req.WalletID),
		zap.String("unlock_proof", redactSecret(req.UnlockProof)),
		zap.Int64("issued_at", req.IssuedAt),
		zap.Int64("session_duration", req.SessionDuration),
	)

	defer func() {
		if err != nil {
			ls.finish("Unlock", start, err, zap.String("wallet_id", req.WalletID))
			return
		}
		ls.finish("Unlock", start, nil,
			zap.String("wallet_id", req.WalletID),
			zap.String("unlock_token", redactSecret(resp.UnlockToken)),
			zap.Time("expires_at", resp.ExpiresAt))
	}()

	return ls.svc.Unlock(ctx, userID, req)
}

func (ls *logService) LockWallet(
	ctx context.Context,
	userID uuid.UUID,
	req *unlock.LockRequest,
) (resp *unlock.LockResponse, err error) {
	start := time.Now()
	defer func() {
		ls.finish("LockWallet", start, err,
			zap.String("user_id", userID.String()),
			zap.String("wallet_id", req.WalletID))
	}()
	return ls.svc.LockWallet(ctx, userID, req)
}

func (ls *logService) Status(ctx context.Context, userID, walletID uuid.UUID) (*unlock.StatusResponse, error) {
	resp, err := ls.svc.Status(ctx, userID, walletID)
	if err != nil {
		ls.logger.Error("Status failed",
			zap.String("service", serviceName),
			zap.String("method", "Status"),
			zap.String("wallet_id", walletID.String()),
			zap.Error(err))
	}
	return resp, err
}

// redactSecret shows only the length and a short prefix of a token or proof
func redactSecret(s string) string {
	if s == "" {
		return "<empty>"
	}
	if len(s) > secretDisplaySize {
		return fmt.Sprintf("%s... (%d chars)", s[:6], len(s))
	}
	return fmt.Sprintf("<%d chars>", len(s))
}
