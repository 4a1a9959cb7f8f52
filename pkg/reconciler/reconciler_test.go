package reconciler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/chainsafe/wallet-settlement/pkg/audit"
	"github.com/chainsafe/wallet-settlement/pkg/chain"
	"github.com/chainsafe/wallet-settlement/pkg/keylock"
	"github.com/chainsafe/wallet-settlement/pkg/order"
	"github.com/chainsafe/wallet-settlement/pkg/orderstore"
)

type fakeWatcher struct {
	mu        sync.Mutex
	watched   map[uuid.UUID]bool
	cancelled []uuid.UUID
}

func (w *fakeWatcher) Watch(op *order.Operation) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.watched[op.ID] {
		return false
	}
	w.watched[op.ID] = true
	return true
}

func (w *fakeWatcher) Cancel(id uuid.UUID) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.cancelled = append(w.cancelled, id)
	ok := w.watched[id]
	delete(w.watched, id)
	return ok
}

// fakeBroadcaster moves the operation the way the coordinator does
type fakeBroadcaster struct {
	machine *order.Machine
	err     error
	calls   []uuid.UUID
}

func (b *fakeBroadcaster) Broadcast(ctx context.Context, op *order.Operation) (string, error) {
	b.calls = append(b.calls, op.ID)
	if b.err != nil {
		return "", b.err
	}
	hash := "0x" + op.ID.String()
	return hash, b.machine.Transition(ctx, op, order.SubmittedStatus(op.Kind), order.WithSourceTxHash(hash))
}

type fakeSweeper struct {
	deleted int64
	at      time.Time
}

func (s *fakeSweeper) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	s.at = now
	return s.deleted, nil
}

type harness struct {
	store       *orderstore.MemoryStore
	machine     *order.Machine
	watcher     *fakeWatcher
	broadcaster *fakeBroadcaster
	sweeper     *fakeSweeper
	reconciler  *Reconciler
}

func newHarness() *harness {
	store := orderstore.NewMemoryStore()
	machine := order.NewMachine(store, audit.Nop{}, zap.NewNop())
	h := &harness{
		store:       store,
		machine:     machine,
		watcher:     &fakeWatcher{watched: map[uuid.UUID]bool{}},
		broadcaster: &fakeBroadcaster{machine: machine},
		sweeper:     &fakeSweeper{},
	}
	h.reconciler = New(store, h.sweeper, h.broadcaster, h.watcher, machine,
		keylock.NewLocalLocker(), Config{OrderTimeout: time.Hour}, zap.NewNop())
	return h
}

func (h *harness) create(t *testing.T, kind order.Kind, status order.Status, createdAt time.Time) *order.Operation {
	t.Helper()
	op := &order.Operation{
		ID:          uuid.New(),
		UserID:      uuid.New(),
		Kind:        kind,
		Status:      status,
		SourceChain: chain.Ethereum,
		Amount:      decimal.NewFromInt(1),
		SignedTx:    "0x01",
		CreatedAt:   createdAt,
	}
	if err := h.store.CreateOperation(context.Background(), op); err != nil {
		t.Fatalf("CreateOperation failed: %v", err)
	}
	return op
}

func (h *harness) status(t *testing.T, id uuid.UUID) order.Status {
	t.Helper()
	op, err := h.store.GetOperation(context.Background(), id)
	if err != nil {
		t.Fatalf("GetOperation failed: %v", err)
	}
	return op.Status
}

func TestReconciler_ExpireStale(t *testing.T) {
	h := newHarness()
	old := time.Now().Add(-2 * time.Hour)

	stale := h.create(t, order.KindBridge, order.StatusSourceTxSubmitted, old)
	fresh := h.create(t, order.KindBridge, order.StatusSourceTxSubmitted, time.Now())
	done := h.create(t, order.KindWithdrawal, order.StatusCompleted, old)

	if err := h.reconciler.ExpireStale(context.Background()); err != nil {
		t.Fatalf("ExpireStale failed: %v", err)
	}
	if got := h.status(t, stale.ID); got != order.StatusFailed {
		t.Fatalf("expected stale order failed, got %s", got)
	}
	if got := h.status(t, fresh.ID); got != order.StatusSourceTxSubmitted {
		t.Fatalf("fresh order must be untouched, got %s", got)
	}
	if got := h.status(t, done.ID); got != order.StatusCompleted {
		t.Fatalf("final order must be untouched, got %s", got)
	}
	if len(h.watcher.cancelled) != 1 || h.watcher.cancelled[0] != stale.ID {
		t.Fatalf("expected the expired order's monitor to be cancelled, got %v", h.watcher.cancelled)
	}
}

func TestReconciler_DispatchApproved(t *testing.T) {
	h := newHarness()
	approved := h.create(t, order.KindWithdrawal, order.StatusApproved, time.Now())
	review := h.create(t, order.KindWithdrawal, order.StatusPendingReview, time.Now())

	if err := h.reconciler.DispatchApproved(context.Background()); err != nil {
		t.Fatalf("DispatchApproved failed: %v", err)
	}
	if got := h.status(t, approved.ID); got != order.StatusConfirmingOnchain {
		t.Fatalf("expected approved withdrawal broadcast, got %s", got)
	}
	if got := h.status(t, review.ID); got != order.StatusPendingReview {
		t.Fatalf("orders under review must wait for an admin, got %s", got)
	}
	if len(h.broadcaster.calls) != 1 {
		t.Fatalf("expected one broadcast, got %d", len(h.broadcaster.calls))
	}

	// a second pass finds nothing left to dispatch
	if err := h.reconciler.DispatchApproved(context.Background()); err != nil {
		t.Fatalf("DispatchApproved failed: %v", err)
	}
	if len(h.broadcaster.calls) != 1 {
		t.Fatalf("approved order broadcast twice")
	}
}

func TestReconciler_DispatchOrphanedBridges(t *testing.T) {
	h := newHarness()
	old := time.Now().Add(-10 * time.Minute)

	orphaned := h.create(t, order.KindBridge, order.StatusCreated, old)
	inRequest := h.create(t, order.KindBridge, order.StatusCreated, time.Now())
	unsigned := &order.Operation{
		ID:          uuid.New(),
		UserID:      uuid.New(),
		Kind:        order.KindBridge,
		Status:      order.StatusCreated,
		SourceChain: chain.Ethereum,
		Amount:      decimal.NewFromInt(1),
		CreatedAt:   old,
	}
	if err := h.store.CreateOperation(context.Background(), unsigned); err != nil {
		t.Fatalf("CreateOperation failed: %v", err)
	}

	if err := h.reconciler.DispatchApproved(context.Background()); err != nil {
		t.Fatalf("DispatchApproved failed: %v", err)
	}
	if got := h.status(t, orphaned.ID); got != order.StatusSourceTxSubmitted {
		t.Fatalf("expected orphaned bridge broadcast, got %s", got)
	}
	if got := h.status(t, inRequest.ID); got != order.StatusCreated {
		t.Fatalf("a bridge inside the grace period belongs to its request, got %s", got)
	}
	if got := h.status(t, unsigned.ID); got != order.StatusCreated {
		t.Fatalf("a bridge without a signed tx cannot be broadcast, got %s", got)
	}
	if len(h.broadcaster.calls) != 1 || h.broadcaster.calls[0] != orphaned.ID {
		t.Fatalf("expected only the orphaned bridge broadcast, got %v", h.broadcaster.calls)
	}
}

func TestReconciler_DispatchFailureIsLogged(t *testing.T) {
	h := newHarness()
	h.broadcaster.err = errors.New("rpc unavailable")
	h.create(t, order.KindWithdrawal, order.StatusApproved, time.Now())

	if err := h.reconciler.DispatchApproved(context.Background()); err != nil {
		t.Fatalf("dispatch errors must not fail the pass: %v", err)
	}
}

func TestReconciler_ReattachMonitors(t *testing.T) {
	h := newHarness()
	inflight := h.create(t, order.KindBridge, order.StatusEventDetected, time.Now())
	h.create(t, order.KindBridge, order.StatusCreated, time.Now())
	h.create(t, order.KindWithdrawal, order.StatusCompleted, time.Now())

	if err := h.reconciler.ReattachMonitors(context.Background()); err != nil {
		t.Fatalf("ReattachMonitors failed: %v", err)
	}
	if len(h.watcher.watched) != 1 || !h.watcher.watched[inflight.ID] {
		t.Fatalf("expected only the in-flight order watched, got %v", h.watcher.watched)
	}
}

func TestReconciler_ReconcileAll(t *testing.T) {
	h := newHarness()
	h.sweeper.deleted = 3
	approved := h.create(t, order.KindWithdrawal, order.StatusApproved, time.Now())

	if err := h.reconciler.ReconcileAll(context.Background()); err != nil {
		t.Fatalf("ReconcileAll failed: %v", err)
	}
	if h.sweeper.at.IsZero() {
		t.Fatalf("expected unlock sessions to be swept")
	}
	// dispatched in step 2, picked up by the monitor in step 3
	if !h.watcher.watched[approved.ID] {
		t.Fatalf("expected dispatched withdrawal to be monitored")
	}
}

func TestReconciler_StartStop(t *testing.T) {
	h := newHarness()
	h.reconciler.StartPeriodicReconciliation(5 * time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	h.reconciler.Stop()
}
