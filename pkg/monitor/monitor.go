// Package monitor tracks submitted operations in the background and advances
// them as confirmations arrive. Failures are logged and retried on the next
// poll; they never reach a client.
package monitor

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/chainsafe/wallet-settlement/internal/metrics"
	"github.com/chainsafe/wallet-settlement/pkg/chain"
	"github.com/chainsafe/wallet-settlement/pkg/order"
)

const (
	DefaultPollInterval  = 15 * time.Second
	DefaultOrderTimeout  = 24 * time.Hour
	DefaultConfirmations = 12
)

// Store reads operations and records confirmation progress
type Store interface {
	GetOperation(ctx context.Context, id uuid.UUID) (*order.Operation, error)
	UpdateConfirmations(ctx context.Context, id uuid.UUID, status order.Status, source, dest uint64) error
}

// ReceiptClient reads transaction receipts
type ReceiptClient interface {
	Receipt(ctx context.Context, c chain.Chain, hash string) (*chain.Receipt, error)
}

// Transitioner applies guarded status changes
type Transitioner interface {
	Transition(ctx context.Context, op *order.Operation, to order.Status, opts ...order.TransitionOption) error
}

// Config controls polling
type Config struct {
	PollInterval time.Duration
	// OrderTimeout fails operations that are not final this long after creation
	OrderTimeout time.Duration
	// Confirmations is the required depth per chain
	Confirmations map[chain.Chain]uint64
}

func (c Config) required(ch chain.Chain) uint64 {
	if n, ok := c.Confirmations[ch]; ok && n > 0 {
		return n
	}
	return DefaultConfirmations
}

// Monitor runs one polling goroutine per watched operation. Each goroutine has
// its own cancel handle and exits once the operation reaches a final status
// through any path.
type Monitor struct {
	store   Store
	client  ReceiptClient
	machine Transitioner
	cfg     Config
	logger  *zap.Logger
	now     func() time.Time

	mu      sync.Mutex
	handles map[uuid.UUID]context.CancelFunc
	ctx     context.Context
	stop    context.CancelFunc
	wg      sync.WaitGroup
}

// New creates a Monitor
func New(store Store, client ReceiptClient, machine Transitioner, cfg Config, logger *zap.Logger) *Monitor {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultPollInterval
	}
	if cfg.OrderTimeout <= 0 {
		cfg.OrderTimeout = DefaultOrderTimeout
	}
	ctx, stop := context.WithCancel(context.Background())
	return &Monitor{
		store:   store,
		client:  client,
		machine: machine,
		cfg:     cfg,
		logger:  logger,
		now:     time.Now,
		handles: make(map[uuid.UUID]context.CancelFunc),
		ctx:     ctx,
		stop:    stop,
	}
}

// Watch starts tracking op. It returns false when op is final, already
// watched, or the monitor has been stopped.
func (m *Monitor) Watch(op *order.Operation) bool {
	if op.IsFinal() {
		return false
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.ctx.Err() != nil {
		return false
	}
	if _, ok := m.handles[op.ID]; ok {
		return false
	}

	ctx, cancel := context.WithCancel(m.ctx)
	m.handles[op.ID] = cancel
	metrics.ActiveMonitors.Set(float64(len(m.handles)))

	m.wg.Add(1)
	go m.run(ctx, op.ID)
	return true
}

// Cancel stops tracking id. It reports whether a monitor was running.
func (m *Monitor) Cancel(id uuid.UUID) bool {
	m.mu.Lock()
	cancel, ok := m.handles[id]
	m.mu.Unlock()
	if ok {
		cancel()
	}
	return ok
}

// Watching reports whether id currently has a monitor
func (m *Monitor) Watching(id uuid.UUID) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.handles[id]
	return ok
}

// Active returns the number of running monitors
func (m *Monitor) Active() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.handles)
}

// Stop cancels every monitor and waits for them to exit
func (m *Monitor) Stop() {
	m.stop()
	m.wg.Wait()
}

func (m *Monitor) release(id uuid.UUID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if cancel, ok := m.handles[id]; ok {
		cancel()
		delete(m.handles, id)
	}
	metrics.ActiveMonitors.Set(float64(len(m.handles)))
}

func (m *Monitor) run(ctx context.Context, id uuid.UUID) {
	defer m.wg.Done()
	defer m.release(id)

	logger := m.logger.With(zap.String("operation_id", id.String()))
	logger.Debug("Monitor started")

	ticker := time.NewTicker(m.cfg.PollInterval)
	defer ticker.Stop()

	for {
		if m.poll(ctx, logger, id) {
			logger.Debug("Monitor finished")
			return
		}
		select {
		case <-ticker.C:
		case <-ctx.Done():
			logger.Debug("Monitor cancelled")
			return
		}
	}
}

// poll runs one iteration and reports whether monitoring is done
func (m *Monitor) poll(ctx context.Context, logger *zap.Logger, id uuid.UUID) bool {
	op, err := m.store.GetOperation(ctx, id)
	if err != nil {
		if errors.Is(err, order.ErrOperationNotFound) {
			logger.Warn("Monitored operation disappeared")
			return true
		}
		if ctx.Err() == nil {
			logger.Warn("Failed to load monitored operation", zap.Error(err))
			metrics.ErrorsTotal.WithLabelValues("monitor", "store").Inc()
		}
		return false
	}
	if op.IsFinal() {
		return true
	}

	if m.now().Sub(op.CreatedAt) > m.cfg.OrderTimeout {
		m.transition(ctx, logger, op, order.StatusFailed, order.WithReason("order timed out"))
		return op.IsFinal()
	}

	switch op.Status {
	case order.StatusSourceTxSubmitted, order.StatusConfirmingOnchain:
		return m.checkSource(ctx, logger, op)
	case order.StatusDestTxSubmitted:
		return m.checkDestination(ctx, logger, op)
	case order.StatusDestTxConfirmed:
		m.transition(ctx, logger, op, order.StatusCompleted)
		return op.IsFinal()
	case order.StatusCreated, order.StatusPendingReview, order.StatusApproved:
		// not submitted yet; the reconciler re-attaches once it is
		return true
	default:
		// waiting on a provider event
		return false
	}
}

func (m *Monitor) checkSource(ctx context.Context, logger *zap.Logger, op *order.Operation) bool {
	if op.SourceTxHash == nil {
		logger.Error("Submitted operation has no source hash", zap.String("status", string(op.Status)))
		return false
	}

	receipt, ok := m.receipt(ctx, logger, op.SourceChain, *op.SourceTxHash)
	if !ok {
		return false
	}
	switch receipt.Status {
	case chain.ReceiptPending:
		return false
	case chain.ReceiptFailed:
		m.transition(ctx, logger, op, order.StatusFailed,
			order.WithReason("source transaction reverted"),
			order.WithSourceConfirmations(receipt.Confirmations))
		return op.IsFinal()
	}

	if receipt.Confirmations < m.cfg.required(op.SourceChain) {
		m.recordDepth(ctx, logger, op, receipt.Confirmations, op.DestConfirmations)
		return false
	}

	next := order.StatusSourceTxConfirmed
	switch op.Kind {
	case order.KindWithdrawal:
		next = order.StatusCompleted
	case order.KindOfframp:
		next = order.StatusProcessingFiat
	}
	m.transition(ctx, logger, op, next, order.WithSourceConfirmations(receipt.Confirmations))
	// bridges and off-ramps keep polling for the timeout while the provider works
	return op.IsFinal()
}

func (m *Monitor) checkDestination(ctx context.Context, logger *zap.Logger, op *order.Operation) bool {
	if op.DestTxHash == nil {
		logger.Error("Destination leg submitted without hash")
		return false
	}

	receipt, ok := m.receipt(ctx, logger, op.DestinationChain, *op.DestTxHash)
	if !ok {
		return false
	}
	switch receipt.Status {
	case chain.ReceiptPending:
		return false
	case chain.ReceiptFailed:
		m.transition(ctx, logger, op, order.StatusFailed,
			order.WithReason("destination transaction reverted"),
			order.WithDestConfirmations(receipt.Confirmations))
		return op.IsFinal()
	}

	if receipt.Confirmations < m.cfg.required(op.DestinationChain) {
		m.recordDepth(ctx, logger, op, op.SourceConfirmations, receipt.Confirmations)
		return false
	}

	if !m.transition(ctx, logger, op, order.StatusDestTxConfirmed, order.WithDestConfirmations(receipt.Confirmations)) {
		return false
	}
	m.transition(ctx, logger, op, order.StatusCompleted)
	return op.IsFinal()
}

func (m *Monitor) receipt(ctx context.Context, logger *zap.Logger, c chain.Chain, hash string) (*chain.Receipt, bool) {
	receipt, err := m.client.Receipt(ctx, c, hash)
	if err != nil {
		if ctx.Err() == nil {
			logger.Warn("Failed to fetch receipt",
				zap.String("chain", string(c)),
				zap.String("tx_hash", hash),
				zap.Error(err))
			metrics.ErrorsTotal.WithLabelValues("monitor", "receipt").Inc()
		}
		return nil, false
	}
	return receipt, true
}

func (m *Monitor) recordDepth(ctx context.Context, logger *zap.Logger, op *order.Operation, source, dest uint64) {
	if source == op.SourceConfirmations && dest == op.DestConfirmations {
		return
	}
	if err := m.store.UpdateConfirmations(ctx, op.ID, op.Status, source, dest); err != nil {
		logger.Warn("Failed to record confirmations", zap.Error(err))
	}
}

// transition applies to and reports whether it was persisted. A transition
// that lost a race is retried against the fresh status on the next poll.
func (m *Monitor) transition(
	ctx context.Context,
	logger *zap.Logger,
	op *order.Operation,
	to order.Status,
	opts ...order.TransitionOption,
) bool {
	err := m.machine.Transition(ctx, op, to, opts...)
	switch {
	case err == nil:
		logger.Info("Operation advanced", zap.String("status", string(to)))
		return true
	case errors.Is(err, order.ErrStaleStatus):
		logger.Debug("Operation changed concurrently", zap.String("to", string(to)))
		return false
	default:
		if ctx.Err() == nil {
			logger.Error("Monitor transition failed", zap.String("to", string(to)), zap.Error(err))
			metrics.ErrorsTotal.WithLabelValues("monitor", "transition").Inc()
		}
		return false
	}
}
