package broadcast

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"github.com/chainsafe/wallet-settlement/pkg/audit"
	"github.com/chainsafe/wallet-settlement/pkg/broadcast/mocks"
	"github.com/chainsafe/wallet-settlement/pkg/chain"
	"github.com/chainsafe/wallet-settlement/pkg/order"
	"github.com/chainsafe/wallet-settlement/pkg/orderstore"
)

type fakeWatcher struct {
	mu      sync.Mutex
	watched []uuid.UUID
}

func (w *fakeWatcher) Watch(op *order.Operation) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.watched = append(w.watched, op.ID)
	return true
}

type recordingAudit struct {
	audit.Nop
	mu     sync.Mutex
	events []*audit.Event
}

func (r *recordingAudit) Record(_ context.Context, e *audit.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func setup(t *testing.T, kind order.Kind) (*orderstore.MemoryStore, *mocks.BlockchainClient, *fakeWatcher, *recordingAudit, *Coordinator, *order.Operation) {
	t.Helper()

	store := orderstore.NewMemoryStore()
	client := mocks.NewBlockchainClient(t)
	watcher := &fakeWatcher{}
	rec := &recordingAudit{}
	machine := order.NewMachine(store, rec, zap.NewNop())
	c := NewCoordinator(client, machine, watcher, rec, 50*time.Millisecond, zap.NewNop())

	op := &order.Operation{
		ID:          uuid.New(),
		UserID:      uuid.New(),
		Kind:        kind,
		Status:      order.InitialStatus(kind, false),
		SourceChain: chain.Ethereum,
		Amount:      decimal.NewFromInt(1),
		SignedTx:    "0xf86c",
	}
	if err := store.CreateOperation(context.Background(), op); err != nil {
		t.Fatalf("CreateOperation failed: %v", err)
	}
	return store, client, watcher, rec, c, op
}

func TestCoordinator_BroadcastSuccess(t *testing.T) {
	ctx := context.Background()
	store, client, watcher, _, c, op := setup(t, order.KindBridge)

	client.EXPECT().Broadcast(mock.Anything, chain.Ethereum, "0xf86c").Return("0xabc", nil).Once()

	hash, err := c.Broadcast(ctx, op)
	if err != nil {
		t.Fatalf("Broadcast failed: %v", err)
	}
	if hash != "0xabc" {
		t.Fatalf("unexpected hash %s", hash)
	}
	if op.Status != order.StatusSourceTxSubmitted || op.SourceTxHash == nil || *op.SourceTxHash != "0xabc" {
		t.Fatalf("operation not updated: %+v", op)
	}

	stored, err := store.GetOperation(ctx, op.ID)
	if err != nil {
		t.Fatalf("GetOperation failed: %v", err)
	}
	if stored.Status != order.StatusSourceTxSubmitted || stored.SignedTx != "" {
		t.Fatalf("stored operation not updated: %+v", stored)
	}
	if len(watcher.watched) != 1 || watcher.watched[0] != op.ID {
		t.Fatalf("expected monitor to be scheduled, got %v", watcher.watched)
	}
}

func TestCoordinator_WithdrawalMovesToConfirming(t *testing.T) {
	_, client, _, _, c, op := setup(t, order.KindWithdrawal)

	client.EXPECT().Broadcast(mock.Anything, chain.Ethereum, "0xf86c").Return("0xdef", nil).Once()

	if _, err := c.Broadcast(context.Background(), op); err != nil {
		t.Fatalf("Broadcast failed: %v", err)
	}
	if op.Status != order.StatusConfirmingOnchain {
		t.Fatalf("expected confirming_onchain, got %s", op.Status)
	}
}

func TestCoordinator_BroadcastFailureFailsOrder(t *testing.T) {
	ctx := context.Background()
	store, client, watcher, rec, c, op := setup(t, order.KindBridge)

	client.EXPECT().Broadcast(mock.Anything, chain.Ethereum, "0xf86c").
		Return("", errors.New("insufficient funds for gas")).Once()

	hash, err := c.Broadcast(ctx, op)
	if !errors.Is(err, ErrBroadcastFailed) {
		t.Fatalf("expected ErrBroadcastFailed, got %v", err)
	}
	if hash != "" {
		t.Fatalf("expected no hash, got %s", hash)
	}

	stored, err := store.GetOperation(ctx, op.ID)
	if err != nil {
		t.Fatalf("GetOperation failed: %v", err)
	}
	if stored.Status != order.StatusFailed {
		t.Fatalf("expected failed, got %s", stored.Status)
	}
	if stored.SourceTxHash != nil {
		t.Fatalf("failed broadcast must not store a hash")
	}
	if stored.FailureReason == "" {
		t.Fatalf("expected failure reason")
	}
	if len(watcher.watched) != 0 {
		t.Fatalf("failed broadcast must not be monitored")
	}

	var sawFailure bool
	for _, e := range rec.events {
		if e.Type == audit.EventBroadcastFailed {
			sawFailure = true
		}
	}
	if !sawFailure {
		t.Fatalf("expected broadcast failure to be audited")
	}
}

func TestCoordinator_BroadcastTimeout(t *testing.T) {
	ctx := context.Background()
	store, client, _, _, c, op := setup(t, order.KindBridge)

	client.EXPECT().Broadcast(mock.Anything, chain.Ethereum, "0xf86c").
		RunAndReturn(func(ctx context.Context, _ chain.Chain, _ string) (string, error) {
			<-ctx.Done()
			return "", ctx.Err()
		}).Once()

	_, err := c.Broadcast(ctx, op)
	if !errors.Is(err, ErrBroadcastTimeout) {
		t.Fatalf("expected ErrBroadcastTimeout, got %v", err)
	}

	stored, err := store.GetOperation(ctx, op.ID)
	if err != nil {
		t.Fatalf("GetOperation failed: %v", err)
	}
	if stored.Status != order.StatusFailed {
		t.Fatalf("expected failed after timeout, got %s", stored.Status)
	}
}

func TestCoordinator_DeadlineWithOpaqueClientError(t *testing.T) {
	ctx := context.Background()
	store, client, _, _, c, op := setup(t, order.KindWithdrawal)

	// the client outlives the deadline but reports an unrelated error
	client.EXPECT().Broadcast(mock.Anything, chain.Ethereum, "0xf86c").
		RunAndReturn(func(ctx context.Context, _ chain.Chain, _ string) (string, error) {
			<-ctx.Done()
			return "", errors.New("read tcp: connection reset by peer")
		}).Once()

	_, err := c.Broadcast(ctx, op)
	if !errors.Is(err, ErrBroadcastTimeout) {
		t.Fatalf("expected ErrBroadcastTimeout, got %v", err)
	}

	stored, err := store.GetOperation(ctx, op.ID)
	if err != nil {
		t.Fatalf("GetOperation failed: %v", err)
	}
	if stored.Status != order.StatusFailed {
		t.Fatalf("expected failed after timeout, got %s", stored.Status)
	}
}

func TestCoordinator_NothingToBroadcast(t *testing.T) {
	_, _, _, _, c, op := setup(t, order.KindBridge)
	op.SignedTx = ""

	if _, err := c.Broadcast(context.Background(), op); !errors.Is(err, ErrNothingToBroadcast) {
		t.Fatalf("expected ErrNothingToBroadcast, got %v", err)
	}
	if op.Status != order.StatusCreated {
		t.Fatalf("status must not change, got %s", op.Status)
	}
}
