package orderstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/chainsafe/wallet-settlement/pkg/order"
)

// MemoryStore is an in-process Store with the same compare-and-set and
// idempotency semantics as the postgres store. It backs unit tests of the
// components that sit on top of the store.
type MemoryStore struct {
	mu  sync.Mutex
	ops map[uuid.UUID]*order.Operation
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty MemoryStore
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{ops: make(map[uuid.UUID]*order.Operation)}
}

func clone(op *order.Operation) *order.Operation {
	cp := *op
	if op.SourceTxHash != nil {
		h := *op.SourceTxHash
		cp.SourceTxHash = &h
	}
	if op.DestTxHash != nil {
		h := *op.DestTxHash
		cp.DestTxHash = &h
	}
	if op.IdempotencyKey != nil {
		k := *op.IdempotencyKey
		cp.IdempotencyKey = &k
	}
	if op.PayoutAccountID != nil {
		id := *op.PayoutAccountID
		cp.PayoutAccountID = &id
	}
	if op.CompletedAt != nil {
		at := *op.CompletedAt
		cp.CompletedAt = &at
	}
	return &cp
}

func (s *MemoryStore) CreateOperation(_ context.Context, op *order.Operation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if op.IdempotencyKey != nil {
		for _, existing := range s.ops {
			if existing.UserID == op.UserID && existing.IdempotencyKey != nil && *existing.IdempotencyKey == *op.IdempotencyKey {
				return order.ErrDuplicateIdempotencyKey
			}
		}
	}
	now := time.Now().UTC()
	if op.CreatedAt.IsZero() {
		op.CreatedAt = now
	}
	op.UpdatedAt = now
	s.ops[op.ID] = clone(op)
	return nil
}

func (s *MemoryStore) GetOperation(_ context.Context, id uuid.UUID) (*order.Operation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	op, ok := s.ops[id]
	if !ok {
		return nil, order.ErrOperationNotFound
	}
	return clone(op), nil
}

func (s *MemoryStore) GetByIdempotencyKey(_ context.Context, userID uuid.UUID, key string) (*order.Operation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, op := range s.ops {
		if op.UserID == userID && op.IdempotencyKey != nil && *op.IdempotencyKey == key {
			return clone(op), nil
		}
	}
	return nil, order.ErrOperationNotFound
}

func (s *MemoryStore) CompareAndSetStatus(_ context.Context, id uuid.UUID, from, to order.Status, upd *order.Update) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	op, ok := s.ops[id]
	if !ok || op.Status != from {
		return false, nil
	}
	if upd != nil {
		if upd.SourceTxHash != nil && op.SourceTxHash != nil && *op.SourceTxHash != *upd.SourceTxHash {
			return false, nil
		}
		if upd.DestTxHash != nil && op.DestTxHash != nil && *op.DestTxHash != *upd.DestTxHash {
			return false, nil
		}
	}

	op.Status = to
	op.UpdatedAt = time.Now().UTC()
	if upd == nil {
		return true, nil
	}
	if upd.SourceTxHash != nil {
		h := *upd.SourceTxHash
		op.SourceTxHash = &h
	}
	if upd.DestTxHash != nil {
		h := *upd.DestTxHash
		op.DestTxHash = &h
	}
	if upd.SourceConfirmations != nil {
		op.SourceConfirmations = *upd.SourceConfirmations
	}
	if upd.DestConfirmations != nil {
		op.DestConfirmations = *upd.DestConfirmations
	}
	if upd.FailureReason != nil {
		op.FailureReason = *upd.FailureReason
	}
	if upd.CompletedAt != nil {
		at := *upd.CompletedAt
		op.CompletedAt = &at
	}
	if to == order.StatusFailed || upd.SourceTxHash != nil {
		op.SignedTx = ""
	}
	return true, nil
}

func (s *MemoryStore) UpdateConfirmations(_ context.Context, id uuid.UUID, status order.Status, source, dest uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	op, ok := s.ops[id]
	if !ok || op.Status != status {
		return nil
	}
	op.SourceConfirmations = source
	op.DestConfirmations = dest
	op.UpdatedAt = time.Now().UTC()
	return nil
}

func (s *MemoryStore) sorted(keep func(*order.Operation) bool, limit int) []*order.Operation {
	var out []*order.Operation
	for _, op := range s.ops {
		if keep(op) {
			out = append(out, clone(op))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

func (s *MemoryStore) ListByStatus(_ context.Context, statuses []order.Status, limit int) ([]*order.Operation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	want := make(map[order.Status]bool, len(statuses))
	for _, st := range statuses {
		want[st] = true
	}
	return s.sorted(func(op *order.Operation) bool { return want[op.Status] }, limit), nil
}

func (s *MemoryStore) ListStale(_ context.Context, cutoff time.Time, limit int) ([]*order.Operation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sorted(func(op *order.Operation) bool {
		return !order.IsFinal(op.Kind, op.Status) && op.CreatedAt.Before(cutoff)
	}, limit), nil
}

func (s *MemoryStore) RollingOutflowUSD(_ context.Context, userID uuid.UUID, since time.Time) (decimal.Decimal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := decimal.Zero
	for _, op := range s.ops {
		if op.UserID != userID || op.CreatedAt.Before(since) {
			continue
		}
		switch op.Status {
		case order.StatusFailed, order.StatusCancelled, order.StatusRefunded:
			continue
		}
		total = total.Add(op.AmountUSD)
	}
	return total, nil
}

func (s *MemoryStore) CountByStatus(_ context.Context) ([]StatusCount, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	pending := make(map[string]bool)
	for _, st := range pendingStatuses() {
		pending[st] = true
	}
	counts := make(map[[2]string]int)
	for _, op := range s.ops {
		if pending[string(op.Status)] {
			counts[[2]string{string(op.Kind), string(op.Status)}]++
		}
	}
	out := make([]StatusCount, 0, len(counts))
	for k, n := range counts {
		out = append(out, StatusCount{Kind: k[0], Status: k[1], Count: n})
	}
	return out, nil
}
