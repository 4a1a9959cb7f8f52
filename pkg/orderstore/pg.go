package orderstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/driver/pgdriver"

	"github.com/chainsafe/wallet-settlement/pkg/order"
)

const uniqueViolation = "23505"

// usageExcluded lists statuses whose amounts no longer count against a user's limit
var usageExcluded = []string{
	string(order.StatusFailed),
	string(order.StatusCancelled),
	string(order.StatusRefunded),
}

type pgStore struct {
	db *bun.DB
}

// NewStore creates a postgres backed operation store
func NewStore(db *bun.DB) *pgStore {
	return &pgStore{db: db}
}

func (s *pgStore) CreateOperation(ctx context.Context, op *order.Operation) error {
	dao := toOperationDao(op)
	_, err := s.db.NewInsert().
		Model(dao).
		Returning("created_at, updated_at").
		Exec(ctx)
	if err != nil {
		var pgErr pgdriver.Error
		if errors.As(err, &pgErr) && pgErr.Field('C') == uniqueViolation && op.IdempotencyKey != nil {
			return order.ErrDuplicateIdempotencyKey
		}
		return fmt.Errorf("failed to create operation: %w", err)
	}
	op.CreatedAt = dao.CreatedAt
	op.UpdatedAt = dao.UpdatedAt
	return nil
}

func (s *pgStore) GetOperation(ctx context.Context, id uuid.UUID) (*order.Operation, error) {
	dao := new(OperationDao)
	err := s.db.NewSelect().
		Model(dao).
		Where("id = ?", id).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, order.ErrOperationNotFound
		}
		return nil, fmt.Errorf("failed to get operation: %w", err)
	}
	return toOperation(dao), nil
}

func (s *pgStore) GetByIdempotencyKey(ctx context.Context, userID uuid.UUID, key string) (*order.Operation, error) {
	dao := new(OperationDao)
	err := s.db.NewSelect().
		Model(dao).
		Where("user_id = ?", userID).
		Where("idempotency_key = ?", key).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, order.ErrOperationNotFound
		}
		return nil, fmt.Errorf("failed to get operation by idempotency key: %w", err)
	}
	return toOperation(dao), nil
}

// CompareAndSetStatus updates the row only while its status is still from.
// Tx hashes are only written when the column is empty or already holds the same value.
func (s *pgStore) CompareAndSetStatus(
	ctx context.Context,
	id uuid.UUID,
	from, to order.Status,
	upd *order.Update,
) (bool, error) {
	q := s.db.NewUpdate().
		Model((*OperationDao)(nil)).
		Set("status = ?", string(to)).
		Set("updated_at = ?", time.Now().UTC()).
		Where("id = ?", id).
		Where("status = ?", string(from))

	if upd != nil {
		if upd.SourceTxHash != nil {
			q = q.Set("source_tx_hash = ?", *upd.SourceTxHash).
				Where("(source_tx_hash IS NULL OR source_tx_hash = ?)", *upd.SourceTxHash)
		}
		if upd.DestTxHash != nil {
			q = q.Set("dest_tx_hash = ?", *upd.DestTxHash).
				Where("(dest_tx_hash IS NULL OR dest_tx_hash = ?)", *upd.DestTxHash)
		}
		if upd.SourceConfirmations != nil {
			q = q.Set("source_confirmations = ?", int64(*upd.SourceConfirmations))
		}
		if upd.DestConfirmations != nil {
			q = q.Set("dest_confirmations = ?", int64(*upd.DestConfirmations))
		}
		if upd.FailureReason != nil {
			q = q.Set("failure_reason = ?", *upd.FailureReason)
		}
		if upd.CompletedAt != nil {
			q = q.Set("completed_at = ?", *upd.CompletedAt)
		}
		// the signed blob is only needed until it has been broadcast
		if to == order.StatusFailed || upd.SourceTxHash != nil {
			q = q.Set("signed_tx = ''")
		}
	}

	res, err := q.Exec(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to update operation status: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return n == 1, nil
}

// UpdateConfirmations records confirmation depth without changing status
func (s *pgStore) UpdateConfirmations(ctx context.Context, id uuid.UUID, status order.Status, source, dest uint64) error {
	_, err := s.db.NewUpdate().
		Model((*OperationDao)(nil)).
		Set("source_confirmations = ?", int64(source)).
		Set("dest_confirmations = ?", int64(dest)).
		Set("updated_at = ?", time.Now().UTC()).
		Where("id = ?", id).
		Where("status = ?", string(status)).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to update confirmations: %w", err)
	}
	return nil
}

// ListByStatus returns operations in any of statuses, oldest first
func (s *pgStore) ListByStatus(ctx context.Context, statuses []order.Status, limit int) ([]*order.Operation, error) {
	values := make([]string, 0, len(statuses))
	for _, st := range statuses {
		values = append(values, string(st))
	}

	var daos []*OperationDao
	err := s.db.NewSelect().
		Model(&daos).
		Where("status IN (?)", bun.In(values)).
		Order("created_at ASC").
		Limit(limit).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list operations: %w", err)
	}

	out := make([]*order.Operation, 0, len(daos))
	for _, dao := range daos {
		out = append(out, toOperation(dao))
	}
	return out, nil
}

// ListStale returns non-final operations created before cutoff
func (s *pgStore) ListStale(ctx context.Context, cutoff time.Time, limit int) ([]*order.Operation, error) {
	var daos []*OperationDao
	err := s.db.NewSelect().
		Model(&daos).
		Where("status NOT IN (?)", bun.In([]string{
			string(order.StatusCompleted),
			string(order.StatusFailed),
			string(order.StatusCancelled),
			string(order.StatusRefunded),
		})).
		Where("created_at < ?", cutoff).
		Order("created_at ASC").
		Limit(limit).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list stale operations: %w", err)
	}

	out := make([]*order.Operation, 0, len(daos))
	for _, dao := range daos {
		out = append(out, toOperation(dao))
	}
	return out, nil
}

// RollingOutflowUSD sums the USD value of a user's operations created since
// the given time, excluding those that moved no funds. The sum is computed by
// the database.
func (s *pgStore) RollingOutflowUSD(ctx context.Context, userID uuid.UUID, since time.Time) (decimal.Decimal, error) {
	var total decimal.NullDecimal
	err := s.db.NewSelect().
		Model((*OperationDao)(nil)).
		ColumnExpr("SUM(amount_usd)").
		Where("user_id = ?", userID).
		Where("created_at >= ?", since).
		Where("status NOT IN (?)", bun.In(usageExcluded)).
		Scan(ctx, &total)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum rolling usage: %w", err)
	}
	if !total.Valid {
		return decimal.Zero, nil
	}
	return total.Decimal, nil
}

// StatusCount is the number of operations of a kind in a status
type StatusCount struct {
	Kind   string `bun:"kind"`
	Status string `bun:"status"`
	Count  int    `bun:"count"`
}

// CountByStatus groups non-final operations by kind and status
func (s *pgStore) CountByStatus(ctx context.Context) ([]StatusCount, error) {
	var counts []StatusCount
	err := s.db.NewSelect().
		Model((*OperationDao)(nil)).
		Column("kind", "status").
		ColumnExpr("COUNT(*) AS count").
		Where("status IN (?)", bun.In(pendingStatuses())).
		Group("kind", "status").
		Scan(ctx, &counts)
	if err != nil {
		return nil, fmt.Errorf("failed to count operations: %w", err)
	}
	return counts, nil
}

func pendingStatuses() []string {
	statuses := append([]order.Status{
		order.StatusCreated,
		order.StatusPendingReview,
		order.StatusApproved,
	}, order.InFlightStatuses()...)

	out := make([]string, 0, len(statuses))
	for _, st := range statuses {
		out = append(out, string(st))
	}
	return out
}
