// Package broadcast submits client-signed transactions and records the outcome on the order.
package broadcast

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/chainsafe/wallet-settlement/internal/metrics"
	"github.com/chainsafe/wallet-settlement/pkg/audit"
	"github.com/chainsafe/wallet-settlement/pkg/chain"
	"github.com/chainsafe/wallet-settlement/pkg/order"
)

var (
	// ErrBroadcastFailed is returned when the node rejected the transaction or the call errored
	ErrBroadcastFailed = errors.New("broadcast failed")
	// ErrBroadcastTimeout is returned when the node did not answer within the configured timeout
	ErrBroadcastTimeout = errors.New("broadcast timed out")
	// ErrNothingToBroadcast is returned for operations without a signed transaction
	ErrNothingToBroadcast = errors.New("operation has no signed transaction")
)

// DefaultTimeout bounds a single broadcast call
const DefaultTimeout = 10 * time.Second

// BlockchainClient submits signed transactions and reads receipts
//
//go:generate mockery --name BlockchainClient --output ./mocks --outpkg mocks --filename mock_blockchain_client.go --with-expecter
type BlockchainClient interface {
	Broadcast(ctx context.Context, c chain.Chain, raw string) (string, error)
	Receipt(ctx context.Context, c chain.Chain, hash string) (*chain.Receipt, error)
}

// Transitioner applies guarded status changes
type Transitioner interface {
	Transition(ctx context.Context, op *order.Operation, to order.Status, opts ...order.TransitionOption) error
}

// Watcher schedules confirmation tracking for a submitted operation
type Watcher interface {
	Watch(op *order.Operation) bool
}

// Coordinator broadcasts once per call. It never retries: a failed broadcast
// fails the order and the caller decides whether to submit a new one.
type Coordinator struct {
	client  BlockchainClient
	machine Transitioner
	watcher Watcher
	audit   audit.Recorder
	timeout time.Duration
	logger  *zap.Logger
}

// NewCoordinator creates a Coordinator
func NewCoordinator(
	client BlockchainClient,
	machine Transitioner,
	watcher Watcher,
	recorder audit.Recorder,
	timeout time.Duration,
	logger *zap.Logger,
) *Coordinator {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Coordinator{
		client:  client,
		machine: machine,
		watcher: watcher,
		audit:   recorder,
		timeout: timeout,
		logger:  logger,
	}
}

// Broadcast submits op's signed source transaction. On success the hash is
// stored, op moves to its submitted status and a monitor is scheduled. On
// failure op moves to failed without a hash.
func (c *Coordinator) Broadcast(ctx context.Context, op *order.Operation) (string, error) {
	if op.SignedTx == "" {
		return "", ErrNothingToBroadcast
	}

	start := time.Now()
	bctx, cancel := context.WithTimeout(ctx, c.timeout)
	hash, err := c.client.Broadcast(bctx, op.SourceChain, op.SignedTx)
	timedOut := errors.Is(err, context.DeadlineExceeded) || errors.Is(bctx.Err(), context.DeadlineExceeded)
	cancel()
	metrics.BroadcastDuration.WithLabelValues(string(op.SourceChain)).Observe(time.Since(start).Seconds())

	if err != nil {
		return "", c.fail(ctx, op, err, timedOut)
	}
	metrics.BroadcastsTotal.WithLabelValues(string(op.SourceChain), "success").Inc()

	err = c.machine.Transition(ctx, op, order.SubmittedStatus(op.Kind), order.WithSourceTxHash(hash))
	if err != nil {
		// the transaction is on its way; the reconciler repairs the record
		c.logger.Error("Broadcast succeeded but order could not be updated",
			zap.String("operation_id", op.ID.String()),
			zap.String("tx_hash", hash),
			zap.Error(err))
		return hash, fmt.Errorf("failed to record broadcast: %w", err)
	}

	c.watcher.Watch(op)
	c.logger.Info("Transaction broadcast",
		zap.String("operation_id", op.ID.String()),
		zap.String("chain", string(op.SourceChain)),
		zap.String("tx_hash", hash),
		zap.Duration("duration", time.Since(start)))
	return hash, nil
}

func (c *Coordinator) fail(ctx context.Context, op *order.Operation, cause error, timedOut bool) error {
	sentinel := ErrBroadcastFailed
	result := "error"
	if timedOut {
		sentinel = ErrBroadcastTimeout
		result = "timeout"
	}
	metrics.BroadcastsTotal.WithLabelValues(string(op.SourceChain), result).Inc()

	c.logger.Warn("Broadcast failed",
		zap.String("operation_id", op.ID.String()),
		zap.String("chain", string(op.SourceChain)),
		zap.Error(cause))

	// the request context may be the one that expired
	wctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()

	if err := c.machine.Transition(wctx, op, order.StatusFailed, order.WithReason(sentinel.Error())); err != nil {
		c.logger.Error("Failed to mark order failed after broadcast error",
			zap.String("operation_id", op.ID.String()),
			zap.Error(err))
	}
	err := c.audit.Record(wctx, &audit.Event{
		Type:         audit.EventBroadcastFailed,
		ResourceType: string(op.Kind),
		ResourceID:   op.ID.String(),
		UserID:       op.UserID,
		Metadata:     map[string]any{"chain": string(op.SourceChain), "error": cause.Error()},
	})
	if err != nil {
		c.logger.Warn("Failed to audit broadcast failure", zap.Error(err))
	}
	return fmt.Errorf("%w: %v", sentinel, cause)
}
