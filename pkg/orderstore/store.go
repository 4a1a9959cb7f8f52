package orderstore

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/chainsafe/wallet-settlement/pkg/order"
)

// Store defines the interface for operation persistence
type Store interface {
	order.StatusWriter

	CreateOperation(ctx context.Context, op *order.Operation) error
	GetOperation(ctx context.Context, id uuid.UUID) (*order.Operation, error)
	GetByIdempotencyKey(ctx context.Context, userID uuid.UUID, key string) (*order.Operation, error)
	UpdateConfirmations(ctx context.Context, id uuid.UUID, status order.Status, source, dest uint64) error
	ListByStatus(ctx context.Context, statuses []order.Status, limit int) ([]*order.Operation, error)
	ListStale(ctx context.Context, cutoff time.Time, limit int) ([]*order.Operation, error)
	RollingOutflowUSD(ctx context.Context, userID uuid.UUID, since time.Time) (decimal.Decimal, error)
	CountByStatus(ctx context.Context) ([]StatusCount, error)
}

var _ Store = (*pgStore)(nil)
