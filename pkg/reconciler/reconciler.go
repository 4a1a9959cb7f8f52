// Package reconciler repairs and advances operations that no request is
// currently driving: it re-attaches monitors after a restart, dispatches
// auto-approved withdrawals and orphaned bridges, fails orders past their deadline and sweeps
// expired unlock sessions.
package reconciler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/chainsafe/wallet-settlement/internal/metrics"
	"github.com/chainsafe/wallet-settlement/pkg/keylock"
	"github.com/chainsafe/wallet-settlement/pkg/order"
	"github.com/chainsafe/wallet-settlement/pkg/orderstore"
)

const (
	DefaultBatchSize     = 100
	DefaultOrderTimeout  = 24 * time.Hour
	DefaultDispatchGrace = 2 * time.Minute
)

// OperationStore provides the queries a reconciliation pass needs
type OperationStore interface {
	GetOperation(ctx context.Context, id uuid.UUID) (*order.Operation, error)
	ListByStatus(ctx context.Context, statuses []order.Status, limit int) ([]*order.Operation, error)
	ListStale(ctx context.Context, cutoff time.Time, limit int) ([]*order.Operation, error)
	CountByStatus(ctx context.Context) ([]orderstore.StatusCount, error)
}

// SessionSweeper removes expired wallet unlock sessions
type SessionSweeper interface {
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// Broadcaster submits an operation's signed transaction
type Broadcaster interface {
	Broadcast(ctx context.Context, op *order.Operation) (string, error)
}

// Watcher tracks submitted operations
type Watcher interface {
	Watch(op *order.Operation) bool
	Cancel(id uuid.UUID) bool
}

// Transitioner applies guarded status changes
type Transitioner interface {
	Transition(ctx context.Context, op *order.Operation, to order.Status, opts ...order.TransitionOption) error
}

// Config controls a reconciliation pass
type Config struct {
	BatchSize    int
	OrderTimeout time.Duration
	// DispatchGrace is how long a created bridge is left to its own request
	// before the reconciler broadcasts it
	DispatchGrace time.Duration
}

// Reconciler runs reconciliation passes on demand or periodically
type Reconciler struct {
	store       OperationStore
	sessions    SessionSweeper
	broadcaster Broadcaster
	watcher     Watcher
	machine     Transitioner
	locker      keylock.Locker
	cfg         Config
	logger      *zap.Logger
	now         func() time.Time

	stopCh chan struct{}
	wg     sync.WaitGroup
}

// New creates a new Reconciler
func New(
	store OperationStore,
	sessions SessionSweeper,
	broadcaster Broadcaster,
	watcher Watcher,
	machine Transitioner,
	locker keylock.Locker,
	cfg Config,
	logger *zap.Logger,
) *Reconciler {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}
	if cfg.OrderTimeout <= 0 {
		cfg.OrderTimeout = DefaultOrderTimeout
	}
	if cfg.DispatchGrace <= 0 {
		cfg.DispatchGrace = DefaultDispatchGrace
	}
	return &Reconciler{
		store:       store,
		sessions:    sessions,
		broadcaster: broadcaster,
		watcher:     watcher,
		machine:     machine,
		locker:      locker,
		cfg:         cfg,
		logger:      logger,
		now:         time.Now,
		stopCh:      make(chan struct{}),
	}
}

// ReconcileAll runs one full pass. Each step is independent; a failing step is
// logged and the remaining steps still run.
//  1. Fails operations older than the order timeout
//  2. Broadcasts approved withdrawals and orphaned bridges
//  3. Re-attaches monitors to in-flight operations
//  4. Deletes expired unlock sessions
//  5. Refreshes the pending operation gauges
func (r *Reconciler) ReconcileAll(ctx context.Context) error {
	start := time.Now()
	r.logger.Debug("Starting reconciliation")

	var errs []error
	steps := []struct {
		name string
		run  func(context.Context) error
	}{
		{"expire_stale", r.ExpireStale},
		{"dispatch_approved", r.DispatchApproved},
		{"reattach_monitors", r.ReattachMonitors},
		{"sweep_sessions", r.SweepSessions},
		{"refresh_gauges", r.RefreshGauges},
	}
	for _, step := range steps {
		if err := step.run(ctx); err != nil {
			r.logger.Error("Reconciliation step failed", zap.String("step", step.name), zap.Error(err))
			metrics.ErrorsTotal.WithLabelValues("reconciler", step.name).Inc()
			errs = append(errs, fmt.Errorf("%s: %w", step.name, err))
		}
	}

	metrics.LastReconcileRun.SetToCurrentTime()
	r.logger.Debug("Reconciliation completed", zap.Duration("duration", time.Since(start)))
	return errors.Join(errs...)
}

// ExpireStale fails every non-final operation created before the order timeout
func (r *Reconciler) ExpireStale(ctx context.Context) error {
	cutoff := r.now().Add(-r.cfg.OrderTimeout)
	ops, err := r.store.ListStale(ctx, cutoff, r.cfg.BatchSize)
	if err != nil {
		return err
	}

	var expired int
	for _, op := range ops {
		if !order.CanTransition(op.Kind, op.Status, order.StatusFailed) {
			continue
		}
		err := r.machine.Transition(ctx, op, order.StatusFailed, order.WithReason("order timed out"))
		if err != nil {
			if !errors.Is(err, order.ErrStaleStatus) {
				r.logger.Warn("Failed to expire operation",
					zap.String("operation_id", op.ID.String()),
					zap.Error(err))
			}
			continue
		}
		r.watcher.Cancel(op.ID)
		expired++
	}

	if expired > 0 {
		r.logger.Info("Expired stale operations", zap.Int("count", expired))
	}
	return nil
}

// DispatchApproved broadcasts withdrawals that passed risk screening without
// review. It also broadcasts bridges still in created after DispatchGrace,
// which happens when the process stops between insert and broadcast. Each
// dispatch holds the operation lock so an admin review or cancel of the same
// order cannot race it.
func (r *Reconciler) DispatchApproved(ctx context.Context) error {
	ops, err := r.store.ListByStatus(ctx, []order.Status{order.StatusApproved, order.StatusCreated}, r.cfg.BatchSize)
	if err != nil {
		return err
	}

	cutoff := r.now().Add(-r.cfg.DispatchGrace)
	for _, op := range ops {
		if !dispatchable(op, cutoff) {
			continue
		}
		if err := r.dispatch(ctx, op); err != nil {
			r.logger.Warn("Failed to dispatch approved operation",
				zap.String("operation_id", op.ID.String()),
				zap.Error(err))
		}
	}
	return nil
}

func dispatchable(op *order.Operation, cutoff time.Time) bool {
	switch op.Status {
	case order.StatusApproved:
		return true
	case order.StatusCreated:
		return op.Kind == order.KindBridge && op.SignedTx != "" && op.CreatedAt.Before(cutoff)
	default:
		return false
	}
}

func (r *Reconciler) dispatch(ctx context.Context, op *order.Operation) error {
	release, err := r.locker.Lock(ctx, keylock.OperationKey(op.ID))
	if err != nil {
		return fmt.Errorf("failed to lock operation: %w", err)
	}
	defer release()

	// the order may have been cancelled or reviewed since it was listed
	current, err := r.store.GetOperation(ctx, op.ID)
	if err != nil {
		return err
	}
	if current.Status != op.Status {
		return nil
	}

	hash, err := r.broadcaster.Broadcast(ctx, current)
	if err != nil {
		return err
	}
	r.logger.Info("Dispatched approved operation",
		zap.String("operation_id", op.ID.String()),
		zap.String("tx_hash", hash))
	return nil
}

// ReattachMonitors watches every in-flight operation. Operations that already
// have a monitor are skipped by the watcher.
func (r *Reconciler) ReattachMonitors(ctx context.Context) error {
	ops, err := r.store.ListByStatus(ctx, order.InFlightStatuses(), r.cfg.BatchSize)
	if err != nil {
		return err
	}

	var attached int
	for _, op := range ops {
		if r.watcher.Watch(op) {
			attached++
		}
	}
	if attached > 0 {
		r.logger.Info("Re-attached monitors", zap.Int("count", attached))
	}
	return nil
}

// SweepSessions deletes unlock sessions past their expiry. Verification never
// relies on this; it only keeps the table small.
func (r *Reconciler) SweepSessions(ctx context.Context) error {
	if r.sessions == nil {
		return nil
	}
	n, err := r.sessions.DeleteExpired(ctx, r.now())
	if err != nil {
		return err
	}
	if n > 0 {
		metrics.UnlockSessions.WithLabelValues("expired").Add(float64(n))
		r.logger.Debug("Swept expired unlock sessions", zap.Int64("count", n))
	}
	return nil
}

// RefreshGauges publishes the number of pending operations per kind and status
func (r *Reconciler) RefreshGauges(ctx context.Context) error {
	counts, err := r.store.CountByStatus(ctx)
	if err != nil {
		return err
	}
	metrics.PendingOperations.Reset()
	for _, c := range counts {
		metrics.PendingOperations.WithLabelValues(c.Kind, c.Status).Set(float64(c.Count))
	}
	return nil
}

// StartPeriodicReconciliation starts a background goroutine that reconciles periodically
func (r *Reconciler) StartPeriodicReconciliation(interval time.Duration) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		r.logger.Info("Started periodic reconciliation", zap.Duration("interval", interval))

		for {
			select {
			case <-ticker.C:
				ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
				if err := r.ReconcileAll(ctx); err != nil {
					r.logger.Error("Periodic reconciliation failed", zap.Error(err))
				}
				cancel()
			case <-r.stopCh:
				r.logger.Info("Stopping periodic reconciliation")
				return
			}
		}
	}()
}

// Stop stops the periodic reconciliation
func (r *Reconciler) Stop() {
	close(r.stopCh)
	r.wg.Wait()
}
