// Package audit keeps the append-only trail of security relevant events and risk decisions.
package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// EventType names an audited action
type EventType string

const (
	EventWalletUnlocked   EventType = "WALLET_UNLOCKED"
	EventWalletLocked     EventType = "WALLET_LOCKED"
	EventOperationCreated EventType = "OPERATION_CREATED"
	EventStateTransition  EventType = "STATE_TRANSITION"
	EventBroadcastFailed  EventType = "BROADCAST_FAILED"
	EventRiskEvaluated    EventType = "RISK_EVALUATED"
)

// Event is a single audit log entry
type Event struct {
	ID           uuid.UUID
	Type         EventType
	ResourceType string
	ResourceID   string
	UserID       uuid.UUID
	Metadata     map[string]any
	CreatedAt    time.Time
}

// Decision is the audit record of one risk evaluation, written for every outcome
type Decision struct {
	ID                   uuid.UUID
	UserID               uuid.UUID
	WalletID             uuid.UUID
	Operation            string
	Chain                string
	AmountUSD            decimal.Decimal
	Allow                bool
	RequiresManualReview bool
	RiskLevel            string
	Rule                 string
	Reason               string
	Suggestion           string
	CreatedAt            time.Time
}

// Recorder appends audit entries
type Recorder interface {
	Record(ctx context.Context, e *Event) error
	RecordDecision(ctx context.Context, d *Decision) error
}
