package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/chainsafe/wallet-settlement/pkg/auth"
	"github.com/chainsafe/wallet-settlement/pkg/bridge"
)

const serviceName = "BridgeService"

// logService wraps Service with automatic logging of all method calls
type logService struct {
	svc    Service
	logger *zap.Logger
}

// NewLog creates a logging decorator for the bridge Service
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
	req *bridge.CreateRequest,
) (resp *bridge.CreateResponse, err error) {
	start := time.Now()

	ls.logger.Info("Create started",
		zap.String("service", serviceName),
		zap.String("method", "Create"),
		zap.String("user_id", caller.UserID.String()),
		zap.String("source_chain", req.SourceChain),
		zap.String("destination_chain", req.DestinationChain),
		zap.String("source_address", req.SourceAddress),
		zap.String("token_symbol", req.TokenSymbol),
		zap.String("amount", req.Amount),
		zap.String("signed_source_tx", redactBlob(req.SignedSourceTx)),
		zap.Bool("has_unlock_token", req.WalletUnlockToken != ""),
		zap.String("idempotency_key", req.IdempotencyKey),
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
			zap.String("bridge_id", resp.BridgeID.String()),
			zap.String("status", string(resp.Status)),
			zap.Duration("duration", duration))
	}()

	return ls.svc.Create(ctx, caller, req)
}

func (ls *logService) Status(ctx context.Context, caller *auth.AuthInfo, id uuid.UUID) (*bridge.StatusResponse, error) {
	resp, err := ls.svc.Status(ctx, caller, id)
	if err != nil {
		ls.logger.Error("Status failed",
			zap.String("service", serviceName),
			zap.String("method", "Status"),
			zap.String("bridge_id", id.String()),
			zap.Error(err))
	}
	return resp, err
}

func (ls *logService) Cancel(ctx context.Context, caller *auth.AuthInfo, id uuid.UUID) (resp *bridge.StatusResponse, err error) {
	start := time.Now()
	defer func() {
		fields := []zap.Field{
			zap.String("service", serviceName),
			zap.String("method", "Cancel"),
			zap.String("user_id", caller.UserID.String()),
			zap.String("bridge_id", id.String()),
			zap.Duration("duration", time.Since(start)),
		}
		if err != nil {
			ls.logger.Error("Cancel failed", append(fields, zap.Error(err))...)
			return
		}
		ls.logger.Info("Cancel completed", fields...)
	}()
	return ls.svc.Cancel(ctx, caller, id)
}

// redactBlob keeps the head of a signed transaction so log lines can be correlated
func redactBlob(s string) string {
	if len(s) <= 18 {
		return s
	}
	return fmt.Sprintf("%s...(%d chars)", s[:18], len(s))
}
