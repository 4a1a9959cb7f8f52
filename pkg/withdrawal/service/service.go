package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/chainsafe/wallet-settlement/pkg/admission"
	apperrors "github.com/chainsafe/wallet-settlement/pkg/app/errors"
	"github.com/chainsafe/wallet-settlement/pkg/auth"
	"github.com/chainsafe/wallet-settlement/pkg/broadcast"
	"github.com/chainsafe/wallet-settlement/pkg/chain"
	"github.com/chainsafe/wallet-settlement/pkg/keylock"
	"github.com/chainsafe/wallet-settlement/pkg/order"
	"github.com/chainsafe/wallet-settlement/pkg/withdrawal"
)

var (
	ErrNotOwner    = errors.New("operation does not belong to caller")
	ErrNotReviewer = errors.New("caller may not review withdrawals")
)

// Admitter validates a request and creates its operation
type Admitter interface {
	Admit(ctx context.Context, req *admission.Request) (*admission.Result, error)
}

// Store reads operations
type Store interface {
	GetOperation(ctx context.Context, id uuid.UUID) (*order.Operation, error)
}

// Broadcaster submits the signed transaction of an operation
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

// Service creates, tracks and reviews withdrawals
//
//go:generate mockery --name Service --output mocks --outpkg mocks --filename mock_service.go --with-expecter
type Service interface {
	// Create admits a withdrawal. Approved withdrawals are broadcast by the reconciler.
	Create(ctx context.Context, caller *auth.AuthInfo, req *withdrawal.CreateRequest) (*withdrawal.CreateResponse, error)
	Status(ctx context.Context, caller *auth.AuthInfo, id uuid.UUID) (*withdrawal.StatusResponse, error)
	Cancel(ctx context.Context, caller *auth.AuthInfo, id uuid.UUID) (*withdrawal.StatusResponse, error)
	// Review approves (and broadcasts) or rejects a withdrawal parked for manual review
	Review(ctx context.Context, caller *auth.AuthInfo, id uuid.UUID, req *withdrawal.ReviewRequest) (*withdrawal.StatusResponse, error)
}

type withdrawalService struct {
	admitter    Admitter
	store       Store
	broadcaster Broadcaster
	machine     Transitioner
	monitor     MonitorCanceller
	locker      keylock.Locker
	logger      *zap.Logger
}

// NewService creates a new withdrawal service
func NewService(
	admitter Admitter,
	store Store,
	broadcaster Broadcaster,
	machine Transitioner,
	monitor MonitorCanceller,
	locker keylock.Locker,
	logger *zap.Logger,
) Service {
	return &withdrawalService{
		admitter:    admitter,
		store:       store,
		broadcaster: broadcaster,
		machine:     machine,
		monitor:     monitor,
		locker:      locker,
		logger:      logger,
	}
}

func (s *withdrawalService) Create(
	ctx context.Context,
	caller *auth.AuthInfo,
	req *withdrawal.CreateRequest,
) (*withdrawal.CreateResponse, error) {
	c, err := chain.Normalize(req.Chain)
	if err != nil {
		return nil, apperrors.BadRequestError(err, "unsupported chain")
	}
	walletID, err := uuid.Parse(req.WalletID)
	if err != nil {
		return nil, apperrors.BadRequestError(err, "invalid wallet_id")
	}

	kind := order.KindWithdrawal
	var payoutAccountID *uuid.UUID
	if req.PayoutAccountID != "" {
		id, err := uuid.Parse(req.PayoutAccountID)
		if err != nil {
			return nil, apperrors.BadRequestError(err, "invalid payout_account_id")
		}
		payoutAccountID = &id
		kind = order.KindOfframp
	}

	res, err := s.admitter.Admit(ctx, &admission.Request{
		UserID:           caller.UserID,
		TenantID:         caller.TenantID,
		Kind:             kind,
		WalletID:         walletID,
		SourceChain:      c,
		DestinationChain: c,
		FromAddress:      req.FromAddress,
		ToAddress:        req.ToAddress,
		TokenSymbol:      c.NativeSymbol(),
		Amount:           req.Amount,
		SignedTx:         req.SignedTx,
		UnlockToken:      req.WalletUnlockToken,
		CheckRecipient:   true,
		IdempotencyKey:   req.IdempotencyKey,
		PayoutAccountID:  payoutAccountID,
	})
	if err != nil {
		return nil, err
	}
	return withdrawal.NewCreateResponse(res.Operation), nil
}

func (s *withdrawalService) Status(ctx context.Context, caller *auth.AuthInfo, id uuid.UUID) (*withdrawal.StatusResponse, error) {
	op, err := s.load(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	return withdrawal.NewStatusResponse(op), nil
}

// Cancel withdraws a request that has not been broadcast yet
func (s *withdrawalService) Cancel(ctx context.Context, caller *auth.AuthInfo, id uuid.UUID) (*withdrawal.StatusResponse, error) {
	op, release, err := s.lockAndLoad(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	defer release()

	if err := s.machine.Transition(ctx, op, order.StatusCancelled, order.WithReason("cancelled by user")); err != nil {
		return nil, transitionError(err, "withdrawal can no longer be cancelled")
	}
	s.monitor.Cancel(op.ID)
	return withdrawal.NewStatusResponse(op), nil
}

func (s *withdrawalService) Review(
	ctx context.Context,
	caller *auth.AuthInfo,
	id uuid.UUID,
	req *withdrawal.ReviewRequest,
) (*withdrawal.StatusResponse, error) {
	if !caller.IsAdmin() {
		return nil, apperrors.ForbiddenError(ErrNotReviewer, "only administrators may review withdrawals")
	}

	op, release, err := s.lockAndLoad(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	defer release()

	if op.Status != order.StatusPendingReview {
		return nil, apperrors.StateTransitionError(
			fmt.Errorf("%w: %s is not pending review", order.ErrInvalidTransition, op.Status),
			"withdrawal is not pending review")
	}

	if req.Decision == withdrawal.DecisionReject {
		reason := "rejected by reviewer"
		if req.Reason != "" {
			reason += ": " + req.Reason
		}
		if err := s.machine.Transition(ctx, op, order.StatusFailed, order.WithReason(reason)); err != nil {
			return nil, transitionError(err, "withdrawal can no longer be rejected")
		}
		return withdrawal.NewStatusResponse(op), nil
	}

	if err := s.machine.Transition(ctx, op, order.StatusApproved); err != nil {
		return nil, transitionError(err, "withdrawal can no longer be approved")
	}
	if _, err := s.broadcaster.Broadcast(ctx, op); err != nil {
		return nil, broadcastError(err)
	}
	return withdrawal.NewStatusResponse(op), nil
}

// lockAndLoad serializes with the reconciler's dispatch of the same operation
func (s *withdrawalService) lockAndLoad(
	ctx context.Context,
	caller *auth.AuthInfo,
	id uuid.UUID,
) (*order.Operation, func(), error) {
	if _, err := s.load(ctx, caller, id); err != nil {
		return nil, nil, err
	}
	release, err := s.locker.Lock(ctx, keylock.OperationKey(id))
	if err != nil {
		return nil, nil, apperrors.ConflictError(err, "withdrawal is being processed, retry shortly")
	}
	op, err := s.load(ctx, caller, id)
	if err != nil {
		release()
		return nil, nil, err
	}
	return op, release, nil
}

func (s *withdrawalService) load(ctx context.Context, caller *auth.AuthInfo, id uuid.UUID) (*order.Operation, error) {
	op, err := s.store.GetOperation(ctx, id)
	if err != nil {
		if errors.Is(err, order.ErrOperationNotFound) {
			return nil, apperrors.ResourceNotFoundError(err, "withdrawal not found")
		}
		return nil, fmt.Errorf("failed to load withdrawal: %w", err)
	}
	if op.Kind != order.KindWithdrawal && op.Kind != order.KindOfframp {
		return nil, apperrors.ResourceNotFoundError(order.ErrOperationNotFound, "withdrawal not found")
	}
	if op.UserID != caller.UserID && !caller.IsAdmin() {
		return nil, apperrors.ForbiddenError(ErrNotOwner, "withdrawal does not belong to caller")
	}
	return op, nil
}

func broadcastError(err error) error {
	switch {
	case errors.Is(err, broadcast.ErrBroadcastTimeout):
		return apperrors.ConnectionTimeoutError(err, "chain did not respond in time, the withdrawal was marked failed")
	case errors.Is(err, broadcast.ErrBroadcastFailed):
		return apperrors.DependencyFailureError(err, "transaction was rejected by the chain, the withdrawal was marked failed")
	default:
		return err
	}
}

func transitionError(err error, msg string) error {
	switch {
	case errors.Is(err, order.ErrInvalidTransition):
		return apperrors.StateTransitionError(err, msg)
	case errors.Is(err, order.ErrStaleStatus), errors.Is(err, order.ErrHashAlreadySet):
		return apperrors.ConflictError(err, "withdrawal changed concurrently, reload and retry")
	default:
		return err
	}
}
