package audit

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type pgStore struct {
	db *bun.DB
}

// NewStore creates a postgres backed Recorder
func NewStore(db *bun.DB) *pgStore {
	return &pgStore{db: db}
}

func (s *pgStore) Record(ctx context.Context, e *Event) error {
	_, err := s.db.NewInsert().
		Model(toEventDao(e)).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to record audit event: %w", err)
	}
	return nil
}

func (s *pgStore) RecordDecision(ctx context.Context, d *Decision) error {
	_, err := s.db.NewInsert().
		Model(toDecisionDao(d)).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to record risk decision: %w", err)
	}
	return nil
}

// ListDecisions returns a user's risk decisions, newest first
func (s *pgStore) ListDecisions(ctx context.Context, userID uuid.UUID, limit int) ([]*Decision, error) {
	var daos []*DecisionDao
	err := s.db.NewSelect().
		Model(&daos).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list risk decisions: %w", err)
	}

	out := make([]*Decision, 0, len(daos))
	for _, dao := range daos {
		out = append(out, toDecision(dao))
	}
	return out, nil
}

// Nop discards every record. Used by tools that run without an audit sink.
type Nop struct{}

func (Nop) Record(context.Context, *Event) error            { return nil }
func (Nop) RecordDecision(context.Context, *Decision) error { return nil }
