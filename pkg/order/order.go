// Package order models pending money-movement operations and the guarded
// lifecycle they move through from submission to settlement.
package order

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/chainsafe/wallet-settlement/pkg/chain"
)

// Kind distinguishes the lifecycles an operation can follow
type Kind string

const (
	KindBridge     Kind = "bridge"
	KindWithdrawal Kind = "withdrawal"
	// KindOfframp is a withdrawal whose proceeds are paid out in fiat
	KindOfframp Kind = "offramp"
)

// Operation is a bridge transfer or a withdrawal. Rows are never deleted;
// cancellation is a status.
type Operation struct {
	ID       uuid.UUID
	TenantID uuid.UUID
	UserID   uuid.UUID
	WalletID uuid.UUID
	Kind     Kind
	Status   Status

	SourceChain        chain.Chain
	DestinationChain   chain.Chain
	SourceAddress      string
	DestinationAddress string
	TokenSymbol        string
	Amount             decimal.Decimal
	AmountUSD          decimal.Decimal

	// SignedTx is the client-signed source transaction, kept until it is broadcast
	SignedTx     string
	SourceTxHash *string
	DestTxHash   *string

	SourceConfirmations uint64
	DestConfirmations   uint64

	RiskLevel            string
	RequiresManualReview bool
	BridgeProvider       string
	PayoutAccountID      *uuid.UUID
	IdempotencyKey       *string
	FailureReason        string

	CreatedAt   time.Time
	UpdatedAt   time.Time
	CompletedAt *time.Time
}

// IsFinal reports whether the operation's status can no longer change on its own
func (op *Operation) IsFinal() bool {
	return IsFinal(op.Kind, op.Status)
}

// Update carries the optional column changes applied together with a status transition
type Update struct {
	SourceTxHash        *string
	DestTxHash          *string
	SourceConfirmations *uint64
	DestConfirmations   *uint64
	FailureReason       *string
	CompletedAt         *time.Time
}

// Step is one entry of the progress timeline shown to the user
type Step struct {
	Name   string `json:"name"`
	Status string `json:"status"`
}

// Step statuses
const (
	StepCompleted  = "completed"
	StepInProgress = "in_progress"
	StepPending    = "pending"
	StepFailed     = "failed"
)
