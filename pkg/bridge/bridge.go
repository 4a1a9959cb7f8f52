// Package bridge defines the request and response types of cross-chain transfers.
package bridge

import (
	"time"

	"github.com/google/uuid"

	"github.com/chainsafe/wallet-settlement/pkg/order"
)

// DefaultProvider is used when the client does not name a bridge provider
const DefaultProvider = "wormhole"

// CreateRequest represents a POST /bridge/create-enhanced body
type CreateRequest struct {
	SourceChain        string `json:"source_chain" validate:"required"`
	SourceAddress      string `json:"source_address" validate:"required"`
	DestinationChain   string `json:"destination_chain" validate:"required"`
	DestinationAddress string `json:"destination_address" validate:"required"`
	TokenSymbol        string `json:"token_symbol" validate:"required,max=16"`
	Amount             string `json:"amount" validate:"required"`
	SignedSourceTx     string `json:"signed_source_tx" validate:"required"`
	WalletUnlockToken  string `json:"wallet_unlock_token"`
	BridgeProvider     string `json:"bridge_provider,omitempty" default:"wormhole" validate:"max=64"`
	IdempotencyKey     string `json:"idempotency_key,omitempty" validate:"max=128"`
}

// CreateResponse is returned once the source transaction has been broadcast
type CreateResponse struct {
	BridgeID            uuid.UUID    `json:"bridge_id"`
	Status              order.Status `json:"status"`
	SourceTxHash        *string      `json:"source_tx_hash,omitempty"`
	ProgressSteps       []order.Step `json:"progress_steps"`
	EstimatedCompletion *time.Time   `json:"estimated_completion,omitempty"`
}

// StatusResponse represents GET /bridge/{id}/status-enhanced
type StatusResponse struct {
	BridgeID            uuid.UUID    `json:"bridge_id"`
	Status              order.Status `json:"status"`
	SourceTxHash        *string      `json:"source_tx_hash,omitempty"`
	SourceConfirmations uint64       `json:"source_confirmations"`
	DestTxHash          *string      `json:"dest_tx_hash,omitempty"`
	DestConfirmations   uint64       `json:"dest_confirmations"`
	ProgressPercentage  int          `json:"progress_percentage"`
	ProgressSteps       []order.Step `json:"progress_steps"`
	// EstimatedRemainingTime is in seconds
	EstimatedRemainingTime int64  `json:"estimated_remaining_time"`
	FailureReason          string `json:"failure_reason,omitempty"`
}

// NewCreateResponse renders op for the create endpoint
func NewCreateResponse(op *order.Operation) *CreateResponse {
	return &CreateResponse{
		BridgeID:            op.ID,
		Status:              op.Status,
		SourceTxHash:        op.SourceTxHash,
		ProgressSteps:       order.BridgeSteps(op.Status),
		EstimatedCompletion: order.EstimatedCompletion(op.Kind, op.Status, op.UpdatedAt),
	}
}

// NewStatusResponse renders op for the status endpoint as seen at now
func NewStatusResponse(op *order.Operation, now time.Time) *StatusResponse {
	resp := &StatusResponse{
		BridgeID:            op.ID,
		Status:              op.Status,
		SourceTxHash:        op.SourceTxHash,
		SourceConfirmations: op.SourceConfirmations,
		DestTxHash:          op.DestTxHash,
		DestConfirmations:   op.DestConfirmations,
		ProgressPercentage:  order.Progress(op.Kind, op.Status),
		ProgressSteps:       order.BridgeSteps(op.Status),
		FailureReason:       op.FailureReason,
	}
	if eta := order.EstimatedCompletion(op.Kind, op.Status, op.UpdatedAt); eta != nil && eta.After(now) {
		resp.EstimatedRemainingTime = int64(eta.Sub(now).Seconds())
	}
	return resp
}
