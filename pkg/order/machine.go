package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/chainsafe/wallet-settlement/internal/metrics"
	"github.com/chainsafe/wallet-settlement/pkg/audit"
)

var (
	// ErrInvalidTransition is returned when (current, requested) is not an edge of the lifecycle
	ErrInvalidTransition = errors.New("invalid state transition")
	// ErrStaleStatus is returned when the stored status no longer matches the expected one
	ErrStaleStatus = errors.New("operation status changed concurrently")
	// ErrHashAlreadySet is returned when a transition would overwrite a tx hash with a different value
	ErrHashAlreadySet = errors.New("transaction hash already set")
	// ErrOperationNotFound is returned when no operation matches the lookup
	ErrOperationNotFound = errors.New("operation not found")
	// ErrDuplicateIdempotencyKey is returned when the user already created an operation with the key
	ErrDuplicateIdempotencyKey = errors.New("duplicate idempotency key")
)

// StatusWriter persists a status change only if the stored status still equals from
type StatusWriter interface {
	// CompareAndSetStatus reports false when no row matched (id, from).
	CompareAndSetStatus(ctx context.Context, id uuid.UUID, from, to Status, upd *Update) (bool, error)
}

// TransitionOption adds column changes to a transition
type TransitionOption func(*Update)

// WithSourceTxHash records the source leg transaction hash
func WithSourceTxHash(hash string) TransitionOption {
	return func(u *Update) { u.SourceTxHash = &hash }
}

// WithDestTxHash records the destination leg transaction hash
func WithDestTxHash(hash string) TransitionOption {
	return func(u *Update) { u.DestTxHash = &hash }
}

// WithReason records why an operation failed or was cancelled
func WithReason(reason string) TransitionOption {
	return func(u *Update) { u.FailureReason = &reason }
}

// WithSourceConfirmations records the source leg confirmation depth
func WithSourceConfirmations(n uint64) TransitionOption {
	return func(u *Update) { u.SourceConfirmations = &n }
}

// WithDestConfirmations records the destination leg confirmation depth
func WithDestConfirmations(n uint64) TransitionOption {
	return func(u *Update) { u.DestConfirmations = &n }
}

// Machine applies lifecycle transitions. Every write is a conditional update
// on the expected current status, so the request path and background monitors
// can race on the same operation without a read-then-write window.
type Machine struct {
	store  StatusWriter
	audit  audit.Recorder
	logger *zap.Logger
	now    func() time.Time
}

// NewMachine creates a Machine
func NewMachine(store StatusWriter, recorder audit.Recorder, logger *zap.Logger) *Machine {
	return &Machine{
		store:  store,
		audit:  recorder,
		logger: logger,
		now:    time.Now,
	}
}

// Transition moves op from its current status to to. On success op is updated
// in place; on any error op and the stored row are left unchanged.
func (m *Machine) Transition(ctx context.Context, op *Operation, to Status, opts ...TransitionOption) error {
	from := op.Status
	if !CanTransition(op.Kind, from, to) {
		return fmt.Errorf("%w: %s %s -> %s", ErrInvalidTransition, op.Kind, from, to)
	}

	upd := &Update{}
	for _, opt := range opts {
		opt(upd)
	}
	if err := checkWriteOnce(op.SourceTxHash, upd.SourceTxHash); err != nil {
		return fmt.Errorf("source leg: %w", err)
	}
	if err := checkWriteOnce(op.DestTxHash, upd.DestTxHash); err != nil {
		return fmt.Errorf("destination leg: %w", err)
	}
	if to == StatusCompleted || to == StatusRefunded {
		now := m.now().UTC()
		upd.CompletedAt = &now
	}

	ok, err := m.store.CompareAndSetStatus(ctx, op.ID, from, to, upd)
	if err != nil {
		return fmt.Errorf("failed to persist transition: %w", err)
	}
	if !ok {
		metrics.TransitionConflicts.WithLabelValues(string(op.Kind)).Inc()
		return fmt.Errorf("%w: expected %s", ErrStaleStatus, from)
	}

	apply(op, to, upd)
	metrics.StateTransitions.WithLabelValues(string(op.Kind), string(from), string(to)).Inc()

	meta := map[string]any{"from": string(from), "to": string(to)}
	if upd.FailureReason != nil {
		meta["reason"] = *upd.FailureReason
	}
	err = m.audit.Record(ctx, &audit.Event{
		Type:         audit.EventStateTransition,
		ResourceType: string(op.Kind),
		ResourceID:   op.ID.String(),
		UserID:       op.UserID,
		Metadata:     meta,
	})
	if err != nil {
		// the transition is already committed
		m.logger.Warn("failed to audit state transition",
			zap.String("operation_id", op.ID.String()),
			zap.String("to", string(to)),
			zap.Error(err))
	}
	return nil
}

func checkWriteOnce(current, next *string) error {
	if current == nil || next == nil {
		return nil
	}
	if *current != *next {
		return ErrHashAlreadySet
	}
	return nil
}

func apply(op *Operation, to Status, upd *Update) {
	op.Status = to
	op.UpdatedAt = time.Now().UTC()
	if upd.SourceTxHash != nil {
		op.SourceTxHash = upd.SourceTxHash
	}
	if upd.DestTxHash != nil {
		op.DestTxHash = upd.DestTxHash
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
		op.CompletedAt = upd.CompletedAt
	}
}
