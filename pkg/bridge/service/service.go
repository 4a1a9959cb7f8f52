package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/chainsafe/wallet-settlement/pkg/admission"
	apperrors "github.com/chainsafe/wallet-settlement/pkg/app/errors"
	"github.com/chainsafe/wallet-settlement/pkg/auth"
	"github.com/chainsafe/wallet-settlement/pkg/bridge"
	"github.com/chainsafe/wallet-settlement/pkg/broadcast"
	"github.com/chainsafe/wallet-settlement/pkg/chain"
	"github.com/chainsafe/wallet-settlement/pkg/keylock"
	"github.com/chainsafe/wallet-settlement/pkg/order"
)

const cancelReason = "cancelled by user"

var ErrNotOwner = errors.New("operation does not belong to caller")

// Admitter validates a request and creates its operation
type Admitter interface {
	Admit(ctx context.Context, req *admission.Request) (*admission.Result, error)
}

// Store reads operations
type Store interface {
	GetOperation(ctx context.Context, id uuid.UUID) (*order.Operation, error)
}

// Broadcaster submits the signed source transaction of an operation
type Broadcaster interface {
	Broadcast(ctx context.Context, op *order.Operation) (string, error)
}

// Transitioner applies guarded status changes
type Transitioner interface {
	Transition(ctx context.Context, op *order.Operation, to order.Status, opts ...order.TransitionOption) error
}

// MonitorCanceller stops confirmation tracking for an operation
type MonitorCanceller interface {
	Cancel(id uuid.UUID) bool
}

// Service creates and tracks cross-chain transfers
//
//go:generate mockery --name Service --output mocks --outpkg mocks --filename mock_service.go --with-expecter
type Service interface {
	Create(ctx context.Context, caller *auth.AuthInfo, req *bridge.CreateRequest) (*bridge.CreateResponse, error)
	Status(ctx context.Context, caller *auth.AuthInfo, id uuid.UUID) (*bridge.StatusResponse, error)
	Cancel(ctx context.Context, caller *auth.AuthInfo, id uuid.UUID) (*bridge.StatusResponse, error)
}

type bridgeService struct {
	admitter    Admitter
	store       Store
	broadcaster Broadcaster
	machine     Transitioner
	monitor     MonitorCanceller
	locker      keylock.Locker
	logger      *zap.Logger
	now         func() time.Time
}

// NewService creates a new bridge service
func NewService(
	admitter Admitter,
	store Store,
	broadcaster Broadcaster,
	machine Transitioner,
	monitor MonitorCanceller,
	locker keylock.Locker,
	logger *zap.Logger,
) Service {
	return &bridgeService{
		admitter:    admitter,
		store:       store,
		broadcaster: broadcaster,
		machine:     machine,
		monitor:     monitor,
		locker:      locker,
		logger:      logger,
		now:         time.Now,
	}
}

// Create admits the transfer and broadcasts its source transaction. A
// repeated idempotency key returns the existing transfer untouched.
func (s *bridgeService) Create(
	ctx context.Context,
	caller *auth.AuthInfo,
	req *bridge.CreateRequest,
) (*bridge.CreateResponse, error) {
	source, err := chain.Normalize(req.SourceChain)
	if err != nil {
		return nil, apperrors.BadRequestError(err, "unsupported source_chain")
	}
	dest, err := chain.Normalize(req.DestinationChain)
	if err != nil {
		return nil, apperrors.BadRequestError(err, "unsupported destination_chain")
	}
	if source == dest {
		return nil, apperrors.BadRequestError(errors.New("same chain bridge"), "source_chain and destination_chain must differ")
	}

	res, err := s.admitter.Admit(ctx, &admission.Request{
		UserID:           caller.UserID,
		TenantID:         caller.TenantID,
		Kind:             order.KindBridge,
		SourceChain:      source,
		DestinationChain: dest,
		FromAddress:      req.SourceAddress,
		ToAddress:        req.DestinationAddress,
		TokenSymbol:      strings.ToUpper(req.TokenSymbol),
		Amount:           req.Amount,
		SignedTx:         req.SignedSourceTx,
		UnlockToken:      req.WalletUnlockToken,
		IdempotencyKey:   req.IdempotencyKey,
		BridgeProvider:   req.BridgeProvider,
	})
	if err != nil {
		return nil, err
	}

	op := res.Operation
	if res.Replayed {
		return bridge.NewCreateResponse(op), nil
	}

	if _, err := s.broadcaster.Broadcast(ctx, op); err != nil {
		return nil, broadcastError(err)
	}
	return bridge.NewCreateResponse(op), nil
}

func (s *bridgeService) Status(ctx context.Context, caller *auth.AuthInfo, id uuid.UUID) (*bridge.StatusResponse, error) {
	op, err := s.load(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	return bridge.NewStatusResponse(op, s.now()), nil
}

// Cancel aborts a transfer whose source transaction has not been broadcast
func (s *bridgeService) Cancel(ctx context.Context, caller *auth.AuthInfo, id uuid.UUID) (*bridge.StatusResponse, error) {
	if _, err := s.load(ctx, caller, id); err != nil {
		return nil, err
	}

	release, err := s.locker.Lock(ctx, keylock.OperationKey(id))
	if err != nil {
		return nil, apperrors.ConflictError(err, "transfer is being updated, retry shortly")
	}
	defer release()

	// re-read under the lock
	op, err := s.load(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	if err := s.machine.Transition(ctx, op, order.StatusCancelled, order.WithReason(cancelReason)); err != nil {
		return nil, transitionError(err)
	}
	s.monitor.Cancel(op.ID)
	return bridge.NewStatusResponse(op, s.now()), nil
}

func (s *bridgeService) load(ctx context.Context, caller *auth.AuthInfo, id uuid.UUID) (*order.Operation, error) {
	op, err := s.store.GetOperation(ctx, id)
	if err != nil {
		if errors.Is(err, order.ErrOperationNotFound) {
			return nil, apperrors.ResourceNotFoundError(err, "bridge transfer not found")
		}
		return nil, fmt.Errorf("failed to load bridge transfer: %w", err)
	}
	if op.Kind != order.KindBridge {
		return nil, apperrors.ResourceNotFoundError(order.ErrOperationNotFound, "bridge transfer not found")
	}
	if op.UserID != caller.UserID && !caller.IsAdmin() {
		return nil, apperrors.ForbiddenError(ErrNotOwner, "bridge transfer does not belong to caller")
	}
	return op, nil
}

func broadcastError(err error) error {
	switch {
	case errors.Is(err, broadcast.ErrBroadcastTimeout):
		return apperrors.ConnectionTimeoutError(err, "source chain did not respond in time, the transfer was marked failed")
	case errors.Is(err, broadcast.ErrBroadcastFailed):
		return apperrors.DependencyFailureError(err, "source transaction was rejected, the transfer was marked failed")
	default:
		return err
	}
}

func transitionError(err error) error {
	switch {
	case errors.Is(err, order.ErrInvalidTransition):
		return apperrors.StateTransitionError(err, "transfer can no longer be cancelled")
	case errors.Is(err, order.ErrStaleStatus), errors.Is(err, order.ErrHashAlreadySet):
		return apperrors.ConflictError(err, "transfer changed concurrently, reload and retry")
	default:
		return err
	}
}
