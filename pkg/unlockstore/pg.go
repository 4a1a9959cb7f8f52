// Package unlockstore persists wallet unlock sessions in PostgreSQL.
package unlockstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/chainsafe/wallet-settlement/pkg/unlock"
)

// ErrSessionNotFound is returned when a wallet has no unlock session
var ErrSessionNotFound = errors.New("unlock session not found")

type pgStore struct {
	db *bun.DB
}

// NewStore creates a new postgres implementation of the unlock session store
func NewStore(db *bun.DB) *pgStore {
	return &pgStore{db: db}
}

// UpsertSession stores s, replacing any previous session for the same
// (user_id, wallet_id) in a single statement.
func (s *pgStore) UpsertSession(ctx context.Context, sess *unlock.Session) error {
	dao := toSessionDao(sess)
	_, err := s.db.NewInsert().
		Model(dao).
		On("CONFLICT (user_id, wallet_id) DO UPDATE").
		Set("token_hash = EXCLUDED.token_hash").
		Set("proof_hash = EXCLUDED.proof_hash").
		Set("expires_at = EXCLUDED.expires_at").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to upsert unlock session: %w", err)
	}
	return nil
}

func (s *pgStore) GetSession(ctx context.Context, userID, walletID uuid.UUID) (*unlock.Session, error) {
	dao := new(SessionDao)
	err := s.db.NewSelect().
		Model(dao).
		Where("user_id = ?", userID).
		Where("wallet_id = ?", walletID).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get unlock session: %w", err)
	}
	return toSession(dao), nil
}

func (s *pgStore) DeleteSession(ctx context.Context, userID, walletID uuid.UUID) error {
	_, err := s.db.NewDelete().
		Model((*SessionDao)(nil)).
		Where("user_id = ?", userID).
		Where("wallet_id = ?", walletID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete unlock session: %w", err)
	}
	return nil
}

// DeleteExpired removes sessions whose expiry is at or before now and returns how many were removed
func (s *pgStore) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := s.db.NewDelete().
		Model((*SessionDao)(nil)).
		Where("expires_at <= ?", now).
		Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired unlock sessions: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}
