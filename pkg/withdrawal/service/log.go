package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/chainsafe/wallet-settlement/pkg/auth"
	"github.com/chainsafe/wallet-settlement/pkg/withdrawal"
)

const serviceName = "WithdrawalService"

// logService wraps Service with automatic logging of all method calls
type logService struct {
	svc    Service
	logger *zap.Logger
}

// NewLog creates a logging decorator for the withdrawal Service
func NewLog(svc Service, logger *zap.Logger) Service {
	return &logService{
		svc:    svc,
		logger: logger,
	}
}

// Create wraps the service method with logging
func (ls *logService) Create(
	ctx context.Context,
	caller *auth.AuthInfo,
	req *withdrawal.CreateRequest,
) (resp *withdrawal.CreateResponse, err error) {
	start := time.Now()

	ls.logger.Info("Create started",
		zap.String("service", serviceName),
		zap.String("method", "Create"),
		zap.String("user_id", caller.UserID.String()),
		zap.String("wallet_id", req.WalletID),
		zap.String("chain", req.Chain),
		zap.String("to_address", req.ToAddress),
		zap.String("amount", req.Amount),
		zap.String("signed_tx", truncateString(req.SignedTx, 18)),
		zap.Bool("has_unlock_token", req.WalletUnlockToken != ""),
		zap.Bool("offramp", req.PayoutAccountID != ""),
	)

	defer func() {
		duration := time.Since(start)
		if err != nil {
			ls.logger.Error("Create failed",
				zap.String("service", serviceName),
				zap.String("method", "Create"),
				zap.String("user_id", caller.UserID.String()),
				zap.Duration("duration", duration),
				zap.Error(err))
			return
		}
		ls.logger.Info("Create completed",
			zap.String("service", serviceName),
			zap.String("method", "Create"),
			zap.String("withdrawal_id", resp.WithdrawalID.String()),
			zap.String("status", string(resp.Status)),
			zap.String("risk_level", resp.RiskLevel),
			zap.Duration("duration", duration))
	}()

	return ls.svc.Create(ctx, caller, req)
}

func (ls *logService) Status(ctx context.Context, caller *auth.AuthInfo, id uuid.UUID) (*withdrawal.StatusResponse, error) {
	resp, err := ls.svc.Status(ctx, caller, id)
	if err != nil {
		ls.logger.Error("Status failed",
			zap.String("service", serviceName),
			zap.String("method", "Status"),
			zap.String("withdrawal_id", id.String()),
			zap.Error(err))
	}
	return resp, err
}

func (ls *logService) Cancel(ctx context.Context, caller *auth.AuthInfo, id uuid.UUID) (resp *withdrawal.StatusResponse, err error) {
	start := time.Now()
	defer ls.done("Cancel", start, caller, id, &err)
	return ls.svc.Cancel(ctx, caller, id)
}

// Review wraps the service method with logging
func (ls *logService) Review(
	ctx context.Context,
	caller *auth.AuthInfo,
	id uuid.UUID,
	req *withdrawal.ReviewRequest,
) (resp *withdrawal.StatusResponse, err error) {
	start := time.Now()
	ls.logger.Info("Review started",
		zap.String("service", serviceName),
		zap.String("method", "Review"),
		zap.String("reviewer_id", caller.UserID.String()),
		zap.String("withdrawal_id", id.String()),
		zap.String("decision", req.Decision))
	defer ls.done("Review", start, caller, id, &err)
	return ls.svc.Review(ctx, caller, id, req)
}

func (ls *logService) done(method string, start time.Time, caller *auth.AuthInfo, id uuid.UUID, errp *error) {
	fields := []zap.Field{
		zap.String("service", serviceName),
		zap.String("method", method),
		zap.String("user_id", caller.UserID.String()),
		zap.String("withdrawal_id", id.String()),
		zap.Duration("duration", time.Since(start)),
	}
	if *errp != nil {
		ls.logger.Error(method+" failed", append(fields, zap.Error(*errp))...)
		return
	}
	ls.logger.Info(method+" completed", fields...)
}

// truncateString shortens s to maxLen characters
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return fmt.Sprintf("%s...(%d chars)", s[:maxLen], len(s))
}
