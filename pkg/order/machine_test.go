package order

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/chainsafe/wallet-settlement/pkg/audit"
)

// memStore is an in-memory StatusWriter with the same compare-and-set semantics as the pg store
type memStore struct {
	mu     sync.Mutex
	status map[uuid.UUID]Status
	hashes map[uuid.UUID]string
	writes int
}

func newMemStore() *memStore {
	return &memStore{status: map[uuid.UUID]Status{}, hashes: map[uuid.UUID]string{}}
}

func (s *memStore) CompareAndSetStatus(_ context.Context, id uuid.UUID, from, to Status, upd *Update) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status[id] != from {
		return false, nil
	}
	if upd.SourceTxHash != nil {
		if h, ok := s.hashes[id]; ok && h != *upd.SourceTxHash {
			return false, nil
		}
		s.hashes[id] = *upd.SourceTxHash
	}
	s.status[id] = to
	s.writes++
	return true, nil
}

func (s *memStore) get(id uuid.UUID) Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status[id]
}

func newOperation(store *memStore, kind Kind, status Status) *Operation {
	op := &Operation{ID: uuid.New(), UserID: uuid.New(), Kind: kind, Status: status}
	store.status[op.ID] = status
	return op
}

func TestMachine_RejectsEveryNonEdge(t *testing.T) {
	for _, kind := range []Kind{KindBridge, KindWithdrawal, KindOfframp} {
		for _, from := range Statuses(kind) {
			for _, to := range Statuses(kind) {
				if CanTransition(kind, from, to) {
					continue
				}
				store := newMemStore()
				m := NewMachine(store, audit.Nop{}, zap.NewNop())
				op := newOperation(store, kind, from)

				err := m.Transition(context.Background(), op, to)
				if !errors.Is(err, ErrInvalidTransition) {
					t.Fatalf("%s %s -> %s: expected ErrInvalidTransition, got %v", kind, from, to, err)
				}
				if op.Status != from || store.get(op.ID) != from {
					t.Fatalf("%s %s -> %s: status changed on rejected transition", kind, from, to)
				}
				if store.writes != 0 {
					t.Fatalf("%s %s -> %s: rejected transition reached the store", kind, from, to)
				}
			}
		}
	}
}

func TestMachine_EveryEdgeSucceedsExactlyOnce(t *testing.T) {
	for _, kind := range []Kind{KindBridge, KindWithdrawal, KindOfframp} {
		for _, from := range Statuses(kind) {
			for _, to := range Statuses(kind) {
				if !CanTransition(kind, from, to) {
					continue
				}
				store := newMemStore()
				m := NewMachine(store, audit.Nop{}, zap.NewNop())
				op := newOperation(store, kind, from)
				stale := *op

				if err := m.Transition(context.Background(), op, to); err != nil {
					t.Fatalf("%s %s -> %s: unexpected error %v", kind, from, to, err)
				}
				if got := store.get(op.ID); got != to {
					t.Fatalf("%s %s -> %s: stored status %s", kind, from, to, got)
				}

				// a second writer holding the old status must lose
				err := m.Transition(context.Background(), &stale, to)
				if !errors.Is(err, ErrStaleStatus) {
					t.Fatalf("%s %s -> %s: expected ErrStaleStatus on replay, got %v", kind, from, to, err)
				}
				if store.writes != 1 {
					t.Fatalf("%s %s -> %s: expected 1 write, got %d", kind, from, to, store.writes)
				}
			}
		}
	}
}

func TestMachine_CompletedCannotMoveBackward(t *testing.T) {
	store := newMemStore()
	m := NewMachine(store, audit.Nop{}, zap.NewNop())
	op := newOperation(store, KindBridge, StatusCompleted)

	for _, to := range []Status{StatusDestTxConfirmed, StatusFailed, StatusCreated, StatusRefunding} {
		if err := m.Transition(context.Background(), op, to); !errors.Is(err, ErrInvalidTransition) {
			t.Fatalf("completed -> %s: expected ErrInvalidTransition, got %v", to, err)
		}
	}
}

func TestMachine_WithdrawalCannotSkipOnchainConfirmation(t *testing.T) {
	if CanTransition(KindWithdrawal, StatusPendingReview, StatusCompleted) {
		t.Fatalf("pending_review must not complete directly")
	}
	if CanTransition(KindOfframp, StatusConfirmingOnchain, StatusCompleted) {
		t.Fatalf("off-ramp must pass through processing_fiat")
	}
}

func TestMachine_TxHashIsWriteOnce(t *testing.T) {
	store := newMemStore()
	m := NewMachine(store, audit.Nop{}, zap.NewNop())
	op := newOperation(store, KindBridge, StatusCreated)
	ctx := context.Background()

	if err := m.Transition(ctx, op, StatusSourceTxSubmitted, WithSourceTxHash("0xaaa")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if op.SourceTxHash == nil || *op.SourceTxHash != "0xaaa" {
		t.Fatalf("source hash not applied: %v", op.SourceTxHash)
	}

	err := m.Transition(ctx, op, StatusSourceTxConfirmed, WithSourceTxHash("0xbbb"))
	if !errors.Is(err, ErrHashAlreadySet) {
		t.Fatalf("expected ErrHashAlreadySet, got %v", err)
	}
	if op.Status != StatusSourceTxSubmitted {
		t.Fatalf("status changed on rejected overwrite: %s", op.Status)
	}

	// the same value is accepted
	if err := m.Transition(ctx, op, StatusSourceTxConfirmed, WithSourceTxHash("0xaaa")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestMachine_ConcurrentWritersOneWins(t *testing.T) {
	store := newMemStore()
	m := NewMachine(store, audit.Nop{}, zap.NewNop())
	op := newOperation(store, KindWithdrawal, StatusConfirmingOnchain)

	var wg sync.WaitGroup
	results := make(chan error, 2)
	for _, to := range []Status{StatusCompleted, StatusFailed} {
		wg.Add(1)
		go func(to Status) {
			defer wg.Done()
			cp := *op
			results <- m.Transition(context.Background(), &cp, to)
		}(to)
	}
	wg.Wait()
	close(results)

	var wins, conflicts int
	for err := range results {
		switch {
		case err == nil:
			wins++
		case errors.Is(err, ErrStaleStatus):
			conflicts++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if wins != 1 || conflicts != 1 {
		t.Fatalf("expected one winner and one conflict, got %d/%d", wins, conflicts)
	}
}

func TestMachine_SetsCompletedAt(t *testing.T) {
	store := newMemStore()
	m := NewMachine(store, audit.Nop{}, zap.NewNop())
	op := newOperation(store, KindWithdrawal, StatusConfirmingOnchain)

	if err := m.Transition(context.Background(), op, StatusCompleted); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if op.CompletedAt == nil {
		t.Fatalf("expected completed_at to be set")
	}
}
