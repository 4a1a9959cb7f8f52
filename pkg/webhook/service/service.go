package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	apperrors "github.com/chainsafe/wallet-settlement/pkg/app/errors"
	"github.com/chainsafe/wallet-settlement/pkg/keylock"
	"github.com/chainsafe/wallet-settlement/pkg/order"
	"github.com/chainsafe/wallet-settlement/pkg/webhook"
)

// Store reads operations
type Store interface {
	GetOperation(ctx context.Context, id uuid.UUID) (*order.Operation, error)
}

// Transitioner applies guarded status changes
type Transitioner interface {
	Transition(ctx context.Context, op *order.Operation, to order.Status, opts ...order.TransitionOption) error
}

// Watcher attaches and detaches confirmation monitors
type Watcher interface {
	Watch(op *order.Operation) bool
	Cancel(id uuid.UUID) bool
}

// Service applies provider events to operations. Redelivered events that
// were already applied succeed without a second transition.
//
//go:generate mockery --name Service --output mocks --outpkg mocks --filename mock_service.go --with-expecter
type Service interface {
	HandleBridgeEvent(ctx context.Context, evt *webhook.BridgeEvent) (*order.Operation, error)
	HandleFiatEvent(ctx context.Context, evt *webhook.FiatEvent) (*order.Operation, error)
}

type webhookService struct {
	store   Store
	machine Transitioner
	watcher Watcher
	locker  keylock.Locker
	logger  *zap.Logger
}

// NewService creates a new webhook service
func NewService(store Store, machine Transitioner, watcher Watcher, locker keylock.Locker, logger *zap.Logger) Service {
	return &webhookService{
		store:   store,
		machine: machine,
		watcher: watcher,
		locker:  locker,
		logger:  logger,
	}
}

func (s *webhookService) HandleBridgeEvent(ctx context.Context, evt *webhook.BridgeEvent) (*order.Operation, error) {
	var (
		to   order.Status
		opts []order.TransitionOption
	)
	switch evt.Event {
	case webhook.BridgeEventDetected:
		to = order.StatusEventDetected
	case webhook.BridgeDestTxBuilding:
		to = order.StatusDestTxBuilding
	case webhook.BridgeDestTxSubmitted:
		to = order.StatusDestTxSubmitted
		opts = append(opts, order.WithDestTxHash(evt.DestTxHash))
	case webhook.BridgeTransferFailed:
		to = order.StatusFailed
		opts = append(opts, order.WithReason(reason(evt.Reason, "bridge provider reported failure")))
	case webhook.BridgeRefundStarted:
		to = order.StatusRefunding
	case webhook.BridgeRefundCompleted:
		to = order.StatusRefunded
	default:
		return nil, apperrors.BadRequestError(fmt.Errorf("unknown bridge event %q", evt.Event), "unknown event")
	}

	return s.apply(ctx, evt.BridgeID, func(k order.Kind) bool { return k == order.KindBridge }, to, opts...)
}

func (s *webhookService) HandleFiatEvent(ctx context.Context, evt *webhook.FiatEvent) (*order.Operation, error) {
	var (
		to   order.Status
		opts []order.TransitionOption
	)
	switch evt.Event {
	case webhook.FiatPayoutCompleted:
		to = order.StatusCompleted
	case webhook.FiatPayoutFailed:
		to = order.StatusFailed
		opts = append(opts, order.WithReason(reason(evt.Reason, "fiat payout failed")))
	default:
		return nil, apperrors.BadRequestError(fmt.Errorf("unknown fiat event %q", evt.Event), "unknown event")
	}

	return s.apply(ctx, evt.WithdrawalID, func(k order.Kind) bool { return k == order.KindOfframp }, to, opts...)
}

func (s *webhookService) apply(
	ctx context.Context,
	id uuid.UUID,
	kindOK func(order.Kind) bool,
	to order.Status,
	opts ...order.TransitionOption,
) (*order.Operation, error) {
	release, err := s.locker.Lock(ctx, keylock.OperationKey(id))
	if err != nil {
		return nil, apperrors.ConflictError(err, "operation is being updated, retry later")
	}
	defer release()

	op, err := s.store.GetOperation(ctx, id)
	if err != nil {
		if errors.Is(err, order.ErrOperationNotFound) {
			return nil, apperrors.ResourceNotFoundError(err, "operation not found")
		}
		return nil, fmt.Errorf("failed to load operation: %w", err)
	}
	if !kindOK(op.Kind) {
		return nil, apperrors.ResourceNotFoundError(order.ErrOperationNotFound, "operation not found")
	}
	if op.Status == to {
		s.logger.Info("Duplicate provider event ignored",
			zap.String("operation_id", op.ID.String()),
			zap.String("status", string(to)))
		return op, nil
	}

	if err := s.machine.Transition(ctx, op, to, opts...); err != nil {
		switch {
		case errors.Is(err, order.ErrInvalidTransition), errors.Is(err, order.ErrStaleStatus):
			// the provider retries until our own progress catches up
			return nil, apperrors.ConflictError(err, fmt.Sprintf("operation is %s", op.Status))
		case errors.Is(err, order.ErrHashAlreadySet):
			return nil, apperrors.ConflictError(err, "destination hash already recorded")
		default:
			return nil, err
		}
	}

	if op.IsFinal() {
		s.watcher.Cancel(op.ID)
	} else {
		s.watcher.Watch(op)
	}
	return op, nil
}

func reason(given, fallback string) string {
	if given == "" {
		return fallback
	}
	return given
}
