// Package withdrawal defines the request and response types of on-chain
// withdrawals and fiat off-ramps.
package withdrawal

import (
	"time"

	"github.com/google/uuid"

	"github.com/chainsafe/wallet-settlement/pkg/order"
)

// Review decisions
const (
	DecisionApprove = "approve"
	DecisionReject  = "reject"
)

// CreateRequest represents a POST /withdrawals/create body. Setting
// PayoutAccountID turns the withdrawal into a fiat off-ramp.
type CreateRequest struct {
	WalletID          string `json:"wallet_id" validate:"required,uuid"`
	Chain             string `json:"chain" validate:"required"`
	FromAddress       string `json:"from_address" validate:"required"`
	ToAddress         string `json:"to_address" validate:"required"`
	Amount            string `json:"amount" validate:"required"`
	SignedTx          string `json:"signed_tx" validate:"required"`
	IdempotencyKey    string `json:"idempotency_key,omitempty" validate:"max=128"`
	PayoutAccountID   string `json:"payout_account_id,omitempty" validate:"omitempty,uuid"`
	WalletUnlockToken string `json:"wallet_unlock_token,omitempty"`
}

// CreateResponse is returned once the withdrawal is accepted
type CreateResponse struct {
	WithdrawalID            uuid.UUID    `json:"withdrawal_id"`
	Status                  order.Status `json:"status"`
	RiskLevel               string       `json:"risk_level"`
	RequiresManualReview    bool         `json:"requires_manual_review"`
	EstimatedCompletionTime *time.Time   `json:"estimated_completion_time,omitempty"`
}

// StatusResponse represents GET /withdrawals/status/{id}
type StatusResponse struct {
	WithdrawalID  uuid.UUID    `json:"withdrawal_id"`
	Status        order.Status `json:"status"`
	TxHash        *string      `json:"tx_hash,omitempty"`
	Confirmations uint64       `json:"confirmations"`
	CompletedAt   *time.Time   `json:"completed_at,omitempty"`
	FailureReason string       `json:"failure_reason,omitempty"`
}

// ReviewRequest represents a POST /withdrawals/{id}/review body
type ReviewRequest struct {
	Decision string `json:"decision" validate:"required,oneof=approve reject"`
	Reason   string `json:"reason,omitempty" validate:"max=512"`
}

// NewCreateResponse renders a newly admitted op
func NewCreateResponse(op *order.Operation) *CreateResponse {
	return &CreateResponse{
		WithdrawalID:            op.ID,
		Status:                  op.Status,
		RiskLevel:               op.RiskLevel,
		RequiresManualReview:    op.RequiresManualReview,
		EstimatedCompletionTime: order.EstimatedCompletion(op.Kind, op.Status, op.CreatedAt),
	}
}

// NewStatusResponse renders op for the status endpoint
func NewStatusResponse(op *order.Operation) *StatusResponse {
	return &StatusResponse{
		WithdrawalID:  op.ID,
		Status:        op.Status,
		TxHash:        op.SourceTxHash,
		Confirmations: op.SourceConfirmations,
		CompletedAt:   op.CompletedAt,
		FailureReason: op.FailureReason,
	}
}
